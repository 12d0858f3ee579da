package service

import (
	"context"
	"errors"
	"slices"

	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/repository"
	ws "github.com/nbwschool/admission-backend/internal/websocket"
	"github.com/rs/zerolog"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrDuplicateNationalID  = repository.ErrDuplicateNationalID
)

// Storer is the document side of the registration service.
type Storer interface {
	UploadSupplementary(ctx context.Context, file registration.File) (string, error)
	Upload(ctx context.Context, slot registration.DocumentSlot, file registration.File) (string, error)
	Discard(ctx context.Context, urls ...string)
}

// RegistrationService handles registration records after submission.
type RegistrationService struct {
	repo   RegistrationStore
	docs   Storer
	events *EventPublisher
	log    zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(repo RegistrationStore, docs Storer, events *EventPublisher, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		repo:   repo,
		docs:   docs,
		events: events,
		log:    log.With().Str("component", "registration_service").Logger(),
	}
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRegistrationNotFound
	}
	return err
}

// Create stores a new pending registration. Duplicates are detected only by
// the unique index on the national ID.
func (s *RegistrationService) Create(ctx context.Context, reg *model.Registration) error {
	if err := s.repo.Create(ctx, reg); err != nil {
		return err
	}
	s.log.Info().
		Str("registration_id", reg.ID).
		Str("grade_level", string(reg.GradeLevel)).
		Bool("is_special_ism", reg.IsSpecialISM).
		Msg("registration created")
	s.events.Publish(ctx, ws.EventRegistrationCreated, reg, nil)
	return nil
}

// Get returns one registration by ID.
func (s *RegistrationService) Get(ctx context.Context, id string) (*model.Registration, error) {
	reg, err := s.repo.GetByID(ctx, id)
	return reg, notFound(err)
}

// Search looks a registration up by national ID and returns only its public
// projection.
func (s *RegistrationService) Search(ctx context.Context, nationalID string) (*model.RegistrationLookup, error) {
	reg, err := s.repo.GetByNationalID(ctx, nationalID)
	if err != nil {
		return nil, notFound(err)
	}
	return &model.RegistrationLookup{Name: reg.FullName(), Status: reg.Status, CreatedAt: reg.CreatedAt}, nil
}

// Admitted lists approved applicants, optionally for one grade level.
func (s *RegistrationService) Admitted(ctx context.Context, level registration.GradeLevel) ([]model.AdmittedApplicant, error) {
	regs, err := s.repo.ListAdmitted(ctx, level)
	if err != nil {
		return nil, err
	}
	out := make([]model.AdmittedApplicant, 0, len(regs))
	for i := range regs {
		out = append(out, model.AdmittedApplicant{
			ReferenceCode: model.ReferenceCode(regs[i].ID),
			Name:          regs[i].FullName(),
			GradeLevel:    regs[i].GradeLevel,
			IsSpecialISM:  regs[i].IsSpecialISM,
			SchoolName:    regs[i].SchoolName,
		})
	}
	return out, nil
}

// List returns one filtered page of registrations.
func (s *RegistrationService) List(ctx context.Context, f model.RegistrationFilter) ([]model.RegistrationDetail, int, error) {
	regs, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.RegistrationDetail, 0, len(regs))
	for i := range regs {
		out = append(out, model.NewRegistrationDetail(&regs[i]))
	}
	return out, total, nil
}

// UpdateStatus sets any status from any status.
func (s *RegistrationService) UpdateStatus(ctx context.Context, actorID int, id string, status model.RegistrationStatus) (*model.Registration, error) {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	reg, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, notFound(err)
	}

	s.log.Info().
		Int("admin_id", actorID).
		Str("registration_id", id).
		Str("from", string(before.Status)).
		Str("to", string(status)).
		Msg("registration status changed")
	s.events.Publish(ctx, ws.EventRegistrationStatusChanged, reg, func(e *ws.RegistrationEvent) {
		e.PreviousStatus = string(before.Status)
		e.ActorID = actorID
	})
	return reg, nil
}

// UpdateFields applies an admin edit. The national ID is never editable.
// Scores of the grade branch that is inactive after the edit are cleared.
func (s *RegistrationService) UpdateFields(ctx context.Context, actorID int, id string, patch model.RegistrationPatch) (*model.Registration, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	cols := patch.Columns()

	level := current.GradeLevel
	if patch.GradeLevel != nil {
		level = *patch.GradeLevel
	}
	branch := registration.ResolveGrade(level)
	active := make([]string, 0, len(branch.ScoreFields))
	for _, o := range branch.ScoreFields {
		active = append(active, o.Value)
	}
	for _, field := range []string{
		registration.ScoreGrade4, registration.ScoreGrade5, registration.ScoreScience,
		registration.ScoreMath, registration.ScoreEnglish, registration.ScoreCumulative,
	} {
		if !slices.Contains(active, field) {
			if _, set := cols[field]; set || patch.GradeLevel != nil {
				cols[field] = nil
			}
		}
	}

	if patch.EducationStatus != nil || patch.GradeLevel != nil {
		status := current.EducationStatus
		if patch.EducationStatus != nil {
			status = *patch.EducationStatus
		}
		if !branch.AllowsEducationStatus(status) {
			return nil, &registration.Violation{Field: "education_status", Message: "กรุณาเลือกสถานะการศึกษา"}
		}
	}

	siblings, inSchool := current.Siblings, current.SiblingsInSchool
	if patch.Siblings != nil {
		siblings = *patch.Siblings
	}
	if patch.SiblingsInSchool != nil {
		inSchool = *patch.SiblingsInSchool
	}
	if inSchool > siblings {
		return nil, &registration.Violation{Field: "siblings_in_school", Message: "จำนวนพี่น้องที่กำลังศึกษาในโรงเรียนนี้ต้องไม่เกินจำนวนพี่น้องทั้งหมด"}
	}

	reg, err := s.repo.UpdateFields(ctx, id, cols)
	if err != nil {
		return nil, notFound(err)
	}
	s.log.Info().Int("admin_id", actorID).Str("registration_id", id).Int("fields", len(cols)).Msg("registration edited")
	s.events.Publish(ctx, ws.EventRegistrationUpdated, reg, func(e *ws.RegistrationEvent) { e.ActorID = actorID })
	return reg, nil
}

// Delete removes a registration and schedules its documents for deletion.
func (s *RegistrationService) Delete(ctx context.Context, actorID int, id string) error {
	reg, err := s.repo.Delete(ctx, id)
	if err != nil {
		return notFound(err)
	}

	urls := slices.Clone(reg.SupplementaryDocuments)
	for _, slot := range registration.UploadOrder {
		if u := reg.DocumentURL(slot); u != nil {
			urls = append(urls, *u)
		}
	}
	s.docs.Discard(ctx, urls...)

	s.log.Info().Int("admin_id", actorID).Str("registration_id", id).Msg("registration deleted")
	s.events.Publish(ctx, ws.EventRegistrationDeleted, reg, func(e *ws.RegistrationEvent) { e.ActorID = actorID })
	return nil
}

// AddDocument uploads a supplementary document and appends its URL.
func (s *RegistrationService) AddDocument(ctx context.Context, id string, file registration.File) (*model.Registration, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, notFound(err)
	}
	url, err := s.docs.UploadSupplementary(ctx, file)
	if err != nil {
		return nil, err
	}
	reg, err := s.repo.AppendDocument(ctx, id, url)
	if err != nil {
		s.docs.Discard(ctx, url)
		return nil, notFound(err)
	}
	return reg, nil
}

// RemoveDocument drops every supplementary entry equal to url. The blob is
// deleted best effort, after the reference is gone.
func (s *RegistrationService) RemoveDocument(ctx context.Context, id, url string) (*model.Registration, error) {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	reg, err := s.repo.RemoveDocument(ctx, id, url)
	if err != nil {
		return nil, notFound(err)
	}
	if slices.Contains(before.SupplementaryDocuments, url) {
		s.docs.Discard(ctx, url)
	}
	return reg, nil
}

// ReplaceDocument uploads file into a named slot. The previous blob is only
// discarded once the new reference is stored.
func (s *RegistrationService) ReplaceDocument(ctx context.Context, id string, slot registration.DocumentSlot, file registration.File) (*model.Registration, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, notFound(err)
	}
	url, err := s.docs.Upload(ctx, slot, file)
	if err != nil {
		return nil, &registration.UploadError{Slot: slot, Err: err}
	}
	reg, previous, err := s.repo.SetDocument(ctx, id, slot, &url)
	if err != nil {
		s.docs.Discard(ctx, url)
		return nil, notFound(err)
	}
	if previous != nil && *previous != url {
		s.docs.Discard(ctx, *previous)
	}
	return reg, nil
}

// ClearDocument empties a named slot and discards its blob.
func (s *RegistrationService) ClearDocument(ctx context.Context, id string, slot registration.DocumentSlot) (*model.Registration, error) {
	reg, previous, err := s.repo.SetDocument(ctx, id, slot, nil)
	if err != nil {
		return nil, notFound(err)
	}
	if previous != nil {
		s.docs.Discard(ctx, *previous)
	}
	return reg, nil
}
