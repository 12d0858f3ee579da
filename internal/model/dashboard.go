package model

import "time"

// DashboardStats summarises applications for the admin dashboard.
type DashboardStats struct {
	Total        int                        `json:"total"`
	ByStatus     map[RegistrationStatus]int `json:"by_status"`
	ByGradeLevel map[string]int             `json:"by_grade_level"`
	ByProgram    map[string]int             `json:"by_program"`
	Recent       []RegistrationSummary      `json:"recent"`
	Admission    map[string]AdmissionView   `json:"admission"`
}

// RegistrationSummary is a list row for admin views.
type RegistrationSummary struct {
	ID            string             `json:"id"`
	ReferenceCode string             `json:"reference_code"`
	Name          string             `json:"name"`
	GradeLevel    string             `json:"grade_level"`
	IsSpecialISM  bool               `json:"is_special_ism"`
	Status        RegistrationStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
}
