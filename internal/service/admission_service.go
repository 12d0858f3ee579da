package service

import (
	"context"
	"errors"
	"time"

	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

var (
	ErrAdmissionClosed   = errors.New("admission is closed for this grade level")
	ErrProgramNotAllowed = errors.New("selected program is not open for this grade level")
	ErrInvalidWindow     = errors.New("close_at must be after open_at")
)

// AdmissionService reads and updates per-grade admission settings. Reads go
// through a short in-process cache; updates invalidate it.
type AdmissionService struct {
	repo  AdmissionStore
	cache *cache.Cache
	now   func() time.Time
	log   zerolog.Logger
}

// NewAdmissionService creates a new AdmissionService. ttl <= 0 disables
// caching.
func NewAdmissionService(repo AdmissionStore, ttl time.Duration, log zerolog.Logger) *AdmissionService {
	c := cache.New(ttl, 2*ttl)
	if ttl <= 0 {
		c = nil
	}
	return &AdmissionService{
		repo:  repo,
		cache: c,
		now:   time.Now,
		log:   log.With().Str("component", "admission_service").Logger(),
	}
}

// GetByGrade returns settings for level, creating the defaults on first use.
func (s *AdmissionService) GetByGrade(ctx context.Context, level registration.GradeLevel) (*model.AdmissionSettings, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(string(level)); ok {
			settings := v.(model.AdmissionSettings)
			return &settings, nil
		}
	}

	settings, err := s.repo.GetByGrade(ctx, level)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetDefault(string(level), *settings)
	}
	return settings, nil
}

// View returns settings for level with the computed accepting flag.
func (s *AdmissionService) View(ctx context.Context, level registration.GradeLevel) (*model.AdmissionView, error) {
	settings, err := s.GetByGrade(ctx, level)
	if err != nil {
		return nil, err
	}
	return &model.AdmissionView{AdmissionSettings: *settings, Accepting: settings.Accepting(s.now())}, nil
}

// Views returns the view of every grade level keyed by level.
func (s *AdmissionService) Views(ctx context.Context) (map[string]model.AdmissionView, error) {
	out := make(map[string]model.AdmissionView, len(registration.GradeLevels))
	for _, level := range registration.GradeLevels {
		v, err := s.View(ctx, level)
		if err != nil {
			return nil, err
		}
		out[string(level)] = *v
	}
	return out, nil
}

// Update merges req into the stored settings.
func (s *AdmissionService) Update(ctx context.Context, level registration.GradeLevel, req model.UpdateAdmissionRequest) (*model.AdmissionView, error) {
	settings, err := s.repo.GetByGrade(ctx, level)
	if err != nil {
		return nil, err
	}
	req.Apply(settings)
	if settings.OpenAt != nil && settings.CloseAt != nil && !settings.CloseAt.After(*settings.OpenAt) {
		return nil, ErrInvalidWindow
	}

	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Delete(string(level))
	}

	s.log.Info().
		Str("grade_level", string(level)).
		Bool("is_open", settings.IsOpen).
		Bool("allow_ism", settings.AllowISM).
		Bool("allow_regular", settings.AllowRegular).
		Msg("admission settings updated")

	return &model.AdmissionView{AdmissionSettings: *settings, Accepting: settings.Accepting(s.now())}, nil
}

// CheckAccepting returns ErrAdmissionClosed unless level takes applications now.
func (s *AdmissionService) CheckAccepting(ctx context.Context, level registration.GradeLevel) (*model.AdmissionSettings, error) {
	settings, err := s.GetByGrade(ctx, level)
	if err != nil {
		return nil, err
	}
	if !settings.Accepting(s.now()) {
		return settings, ErrAdmissionClosed
	}
	return settings, nil
}

// CheckProgram applies the program rule of settings to isSpecialISM.
func CheckProgram(settings *model.AdmissionSettings, isSpecialISM bool) error {
	if !settings.AllowsProgram(isSpecialISM) {
		return ErrProgramNotAllowed
	}
	return nil
}

// FormView answers the register form request: no layout while closed.
func (s *AdmissionService) FormView(ctx context.Context, level registration.GradeLevel) (*model.RegisterFormView, error) {
	view, err := s.View(ctx, level)
	if err != nil {
		return nil, err
	}
	out := &model.RegisterFormView{Open: view.Accepting, Settings: *view}
	if view.Accepting {
		layout := registration.BuildLayout(&registration.Form{GradeLevel: level}, view.AllowISM, view.AllowRegular)
		out.Layout = &layout
	}
	return out, nil
}
