package model

import (
	"time"

	"github.com/nbwschool/admission-backend/internal/registration"
)

// AdmissionSettings gates the public form for one grade level.
type AdmissionSettings struct {
	GradeLevel   registration.GradeLevel `json:"grade_level"`
	IsOpen       bool                    `json:"is_open"`
	AllowISM     bool                    `json:"allow_ism"`
	AllowRegular bool                    `json:"allow_regular"`
	OpenAt       *time.Time              `json:"open_at"`
	CloseAt      *time.Time              `json:"close_at"`
	Schedule     string                  `json:"schedule"`
	Requirements string                  `json:"requirements"`
	Announcement string                  `json:"announcement"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// DefaultAdmissionSettings is the row created the first time a grade level is
// queried: closed, both programs allowed.
func DefaultAdmissionSettings(level registration.GradeLevel) AdmissionSettings {
	return AdmissionSettings{
		GradeLevel:   level,
		IsOpen:       false,
		AllowISM:     true,
		AllowRegular: true,
	}
}

// Accepting reports whether applications are taken at now.
func (s *AdmissionSettings) Accepting(now time.Time) bool {
	if !s.IsOpen {
		return false
	}
	if s.OpenAt != nil && now.Before(*s.OpenAt) {
		return false
	}
	if s.CloseAt != nil && !now.Before(*s.CloseAt) {
		return false
	}
	return true
}

// ProgramSelectable reports whether the applicant may choose a program.
func (s *AdmissionSettings) ProgramSelectable() bool {
	return s.AllowISM || s.AllowRegular
}

// AllowsProgram reports whether the is_special_ism value is admissible. With
// both programs disabled only the regular value is accepted.
func (s *AdmissionSettings) AllowsProgram(isSpecialISM bool) bool {
	if !s.ProgramSelectable() {
		return !isSpecialISM
	}
	if isSpecialISM {
		return s.AllowISM
	}
	return s.AllowRegular
}

// AdmissionView is the public settings response.
type AdmissionView struct {
	AdmissionSettings
	Accepting bool `json:"accepting"`
}

// UpdateAdmissionRequest is the admin payload; nil fields are left unchanged.
type UpdateAdmissionRequest struct {
	IsOpen       *bool      `json:"is_open"`
	AllowISM     *bool      `json:"allow_ism"`
	AllowRegular *bool      `json:"allow_regular"`
	OpenAt       *time.Time `json:"open_at"`
	CloseAt      *time.Time `json:"close_at"`
	ClearWindow  bool       `json:"clear_window"`
	Schedule     *string    `json:"schedule" binding:"omitempty,max=5000"`
	Requirements *string    `json:"requirements" binding:"omitempty,max=5000"`
	Announcement *string    `json:"announcement" binding:"omitempty,max=5000"`
}

// Apply merges the request into s.
func (r *UpdateAdmissionRequest) Apply(s *AdmissionSettings) {
	if r.IsOpen != nil {
		s.IsOpen = *r.IsOpen
	}
	if r.AllowISM != nil {
		s.AllowISM = *r.AllowISM
	}
	if r.AllowRegular != nil {
		s.AllowRegular = *r.AllowRegular
	}
	if r.ClearWindow {
		s.OpenAt, s.CloseAt = nil, nil
	}
	if r.OpenAt != nil {
		s.OpenAt = r.OpenAt
	}
	if r.CloseAt != nil {
		s.CloseAt = r.CloseAt
	}
	if r.Schedule != nil {
		s.Schedule = *r.Schedule
	}
	if r.Requirements != nil {
		s.Requirements = *r.Requirements
	}
	if r.Announcement != nil {
		s.Announcement = *r.Announcement
	}
}

// RegisterFormView answers GET /register/form. Layout is nil while admission
// is closed so no inputs are rendered.
type RegisterFormView struct {
	Open     bool                 `json:"open"`
	Settings AdmissionView        `json:"settings"`
	Layout   *registration.Layout `json:"layout,omitempty"`
}
