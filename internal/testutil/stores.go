package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/repository"
)

func clone(r *model.Registration) *model.Registration {
	c := *r
	c.SupplementaryDocuments = slices.Clone(r.SupplementaryDocuments)
	if c.SupplementaryDocuments == nil {
		c.SupplementaryDocuments = []string{}
	}
	return &c
}

// RegistrationStore is an in-memory registration table with the unique
// national ID index.
type RegistrationStore struct {
	mu   sync.Mutex
	rows map[string]*model.Registration
	now  func() time.Time
}

func NewRegistrationStore() *RegistrationStore {
	return &RegistrationStore{rows: map[string]*model.Registration{}, now: time.Now}
}

// Len returns the number of stored registrations.
func (s *RegistrationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Put stores reg as-is, bypassing the unique index.
func (s *RegistrationStore) Put(reg *model.Registration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	s.rows[reg.ID] = clone(reg)
}

func (s *RegistrationStore) Create(_ context.Context, reg *model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.IDCardOrPassport == reg.IDCardOrPassport {
			return repository.ErrDuplicateNationalID
		}
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.Status == "" {
		reg.Status = model.StatusPending
	}
	reg.CreatedAt, reg.UpdatedAt = s.now(), s.now()
	s.rows[reg.ID] = clone(reg)
	return nil
}

func (s *RegistrationStore) get(id string) (*model.Registration, error) {
	r, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (s *RegistrationStore) GetByID(_ context.Context, id string) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return clone(r), nil
}

func (s *RegistrationStore) GetByNationalID(_ context.Context, nationalID string) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.IDCardOrPassport == nationalID {
			return clone(r), nil
		}
	}
	return nil, repository.ErrNotFound
}

func matches(r *model.Registration, f model.RegistrationFilter) bool {
	if f.GradeLevel != "" && r.GradeLevel != f.GradeLevel {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.IsSpecialISM != nil && r.IsSpecialISM != *f.IsSpecialISM {
		return false
	}
	if q := strings.ToLower(f.Query); q != "" {
		hay := strings.ToLower(strings.Join([]string{
			r.FirstNameTH, r.LastNameTH, r.SchoolName, r.IDCardOrPassport, r.Phone, model.ReferenceCode(r.ID),
		}, " "))
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

func (s *RegistrationStore) filtered(f model.RegistrationFilter) []model.Registration {
	var out []model.Registration
	for _, r := range s.rows {
		if matches(r, f) {
			out = append(out, *clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *RegistrationStore) List(_ context.Context, f model.RegistrationFilter) ([]model.Registration, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.filtered(f)
	start := min(f.Offset(), len(all))
	end := len(all)
	if f.PerPage > 0 {
		end = min(start+f.PerPage, len(all))
	}
	return all[start:end], len(all), nil
}

func (s *RegistrationStore) Each(_ context.Context, f model.RegistrationFilter, fn func(*model.Registration) error) error {
	s.mu.Lock()
	all := s.filtered(f)
	s.mu.Unlock()
	for i := range all {
		if err := fn(&all[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *RegistrationStore) ListAdmitted(ctx context.Context, level registration.GradeLevel) ([]model.Registration, error) {
	regs, _, err := s.List(ctx, model.RegistrationFilter{GradeLevel: level, Status: model.StatusApproved})
	return regs, err
}

// UpdateFields overlays cols through the JSON column names.
func (s *RegistrationStore) UpdateFields(_ context.Context, id string, cols map[string]any) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if _, ok := cols["id_card_or_passport"]; ok {
		return nil, fmt.Errorf("column %q is not editable", "id_card_or_passport")
	}
	raw, _ := json.Marshal(r)
	var fields map[string]any
	_ = json.Unmarshal(raw, &fields)
	for k, v := range cols {
		fields[k] = v
	}
	raw, _ = json.Marshal(fields)
	var updated model.Registration
	if err := json.Unmarshal(raw, &updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.now()
	s.rows[id] = clone(&updated)
	return clone(&updated), nil
}

func (s *RegistrationStore) UpdateStatus(_ context.Context, id string, status model.RegistrationStatus) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	if err != nil {
		return nil, err
	}
	r.Status = status
	r.UpdatedAt = s.now()
	return clone(r), nil
}

func (s *RegistrationStore) SetDocument(_ context.Context, id string, slot registration.DocumentSlot, url *string) (*model.Registration, *string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	if err != nil {
		return nil, nil, err
	}
	previous := r.DocumentURL(slot)
	switch slot {
	case registration.SlotHouseRegistration:
		r.HouseRegistrationURL = url
	case registration.SlotTranscript:
		r.TranscriptURL = url
	case registration.SlotPhoto:
		r.PhotoURL = url
	default:
		return nil, nil, registration.ErrUnknownSlot
	}
	return clone(r), previous, nil
}

func (s *RegistrationStore) AppendDocument(_ context.Context, id, url string) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	if err != nil {
		return nil, err
	}
	r.SupplementaryDocuments = append(r.SupplementaryDocuments, url)
	return clone(r), nil
}

func (s *RegistrationStore) RemoveDocument(_ context.Context, id, url string) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	if err != nil {
		return nil, err
	}
	r.SupplementaryDocuments = slices.DeleteFunc(r.SupplementaryDocuments, func(u string) bool { return u == url })
	return clone(r), nil
}

func (s *RegistrationStore) Delete(_ context.Context, id string) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.get(id)
	if err != nil {
		return nil, err
	}
	delete(s.rows, id)
	return r, nil
}

// AdmissionStore keeps settings per grade level, created with defaults on
// first read.
type AdmissionStore struct {
	mu    sync.Mutex
	rows  map[registration.GradeLevel]model.AdmissionSettings
	Reads int
}

func NewAdmissionStore() *AdmissionStore {
	return &AdmissionStore{rows: map[registration.GradeLevel]model.AdmissionSettings{}}
}

// Open stores accepting settings for level with both programs allowed.
func (s *AdmissionStore) Open(level registration.GradeLevel) {
	st := model.DefaultAdmissionSettings(level)
	st.IsOpen = true
	_ = s.Upsert(context.Background(), &st)
}

func (s *AdmissionStore) GetByGrade(_ context.Context, level registration.GradeLevel) (*model.AdmissionSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	st, ok := s.rows[level]
	if !ok {
		st = model.DefaultAdmissionSettings(level)
		s.rows[level] = st
	}
	return &st, nil
}

func (s *AdmissionStore) Upsert(_ context.Context, st *model.AdmissionSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.UpdatedAt = time.Now()
	s.rows[st.GradeLevel] = *st
	return nil
}

// AdminStore is an in-memory admins table with a unique email.
type AdminStore struct {
	mu     sync.Mutex
	rows   map[int]*model.Admin
	nextID int
}

func NewAdminStore() *AdminStore {
	return &AdminStore{rows: map[int]*model.Admin{}, nextID: 1}
}

func (s *AdminStore) GetByID(_ context.Context, id int) (*model.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (s *AdminStore) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.rows {
		if strings.EqualFold(a.Email, email) {
			c := *a
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *AdminStore) List(_ context.Context) ([]model.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Admin, 0, len(s.rows))
	for _, a := range s.rows {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *AdminStore) emailTaken(email string, except int) bool {
	for id, a := range s.rows {
		if id != except && strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

func (s *AdminStore) Create(_ context.Context, a *model.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(a.Email, 0) {
		return repository.ErrDuplicateEmail
	}
	a.ID = s.nextID
	s.nextID++
	a.CreatedAt, a.UpdatedAt = time.Now(), time.Now()
	c := *a
	s.rows[a.ID] = &c
	return nil
}

func (s *AdminStore) Update(_ context.Context, a *model.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.emailTaken(a.Email, a.ID) {
		return repository.ErrDuplicateEmail
	}
	hash := cur.PasswordHash
	if a.PasswordHash != "" {
		hash = a.PasswordHash
	}
	c := *a
	c.PasswordHash = hash
	c.UpdatedAt = time.Now()
	s.rows[a.ID] = &c
	return nil
}

func (s *AdminStore) UpdatePassword(_ context.Context, id int, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (s *AdminStore) CountByRole(_ context.Context, role model.Role) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.rows {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *AdminStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// NewsStore keeps news items in insertion order.
type NewsStore struct {
	mu     sync.Mutex
	rows   []model.News
	nextID int
}

func NewNewsStore() *NewsStore { return &NewsStore{nextID: 1} }

func (s *NewsStore) List(_ context.Context, publishedOnly bool, page, perPage int) ([]model.News, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.News
	for i := len(s.rows) - 1; i >= 0; i-- {
		if !publishedOnly || s.rows[i].IsPublished {
			out = append(out, s.rows[i])
		}
	}
	total := len(out)
	start := min(max(page-1, 0)*perPage, total)
	end := min(start+perPage, total)
	return out[start:end], total, nil
}

func (s *NewsStore) index(id int) int {
	return slices.IndexFunc(s.rows, func(n model.News) bool { return n.ID == id })
}

func (s *NewsStore) GetByID(_ context.Context, id int) (*model.News, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	n := s.rows[i]
	return &n, nil
}

func (s *NewsStore) Create(_ context.Context, n *model.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.nextID
	s.nextID++
	n.CreatedAt, n.UpdatedAt = time.Now(), time.Now()
	s.rows = append(s.rows, *n)
	return nil
}

func (s *NewsStore) Update(_ context.Context, n *model.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(n.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	n.UpdatedAt = time.Now()
	s.rows[i] = *n
	return nil
}

func (s *NewsStore) Delete(_ context.Context, id int) (*model.News, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	n := s.rows[i]
	s.rows = slices.Delete(s.rows, i, i+1)
	return &n, nil
}

// HeroImageStore keeps carousel slides ordered by SortOrder.
type HeroImageStore struct {
	mu     sync.Mutex
	rows   []model.HeroImage
	nextID int
}

func NewHeroImageStore() *HeroImageStore { return &HeroImageStore{nextID: 1} }

func (s *HeroImageStore) List(_ context.Context, activeOnly bool) ([]model.HeroImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.HeroImage{}
	for _, h := range s.rows {
		if !activeOnly || h.IsActive {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *HeroImageStore) index(id int) int {
	return slices.IndexFunc(s.rows, func(h model.HeroImage) bool { return h.ID == id })
}

func (s *HeroImageStore) GetByID(_ context.Context, id int) (*model.HeroImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	h := s.rows[i]
	return &h, nil
}

func (s *HeroImageStore) Create(_ context.Context, h *model.HeroImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.nextID
	s.nextID++
	h.CreatedAt, h.UpdatedAt = time.Now(), time.Now()
	s.rows = append(s.rows, *h)
	return nil
}

func (s *HeroImageStore) Update(_ context.Context, h *model.HeroImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(h.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	h.UpdatedAt = time.Now()
	s.rows[i] = *h
	return nil
}

func (s *HeroImageStore) Delete(_ context.Context, id int) (*model.HeroImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	h := s.rows[i]
	s.rows = slices.Delete(s.rows, i, i+1)
	return &h, nil
}

// DashboardStore aggregates over a RegistrationStore.
type DashboardStore struct {
	Registrations *RegistrationStore
}

func (s *DashboardStore) CountBy(ctx context.Context, dim string) (map[string]int, error) {
	out := map[string]int{}
	err := s.Registrations.Each(ctx, model.RegistrationFilter{}, func(r *model.Registration) error {
		switch dim {
		case "status":
			out[string(r.Status)]++
		case "grade_level":
			out[string(r.GradeLevel)]++
		case "program":
			if r.IsSpecialISM {
				out["ism"]++
			} else {
				out["regular"]++
			}
		default:
			return fmt.Errorf("unknown dimension %q", dim)
		}
		return nil
	})
	return out, err
}

func (s *DashboardStore) GetRecent(ctx context.Context, limit int) ([]model.RegistrationSummary, error) {
	regs, _, err := s.Registrations.List(ctx, model.RegistrationFilter{Page: 1, PerPage: limit})
	if err != nil {
		return nil, err
	}
	out := make([]model.RegistrationSummary, 0, len(regs))
	for _, r := range regs {
		out = append(out, model.RegistrationSummary{
			ID:            r.ID,
			ReferenceCode: model.ReferenceCode(r.ID),
			Name:          r.FullName(),
			GradeLevel:    string(r.GradeLevel),
			IsSpecialISM:  r.IsSpecialISM,
			Status:        r.Status,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out, nil
}
