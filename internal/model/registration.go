package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/nbwschool/admission-backend/internal/registration"
)

// RegistrationStatus is the admin-controlled review outcome.
type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "pending"
	StatusApproved RegistrationStatus = "approved"
	StatusRejected RegistrationStatus = "rejected"
)

// RegistrationStatuses lists every status value.
var RegistrationStatuses = []RegistrationStatus{StatusPending, StatusApproved, StatusRejected}

// ParseRegistrationStatus converts a raw string to a RegistrationStatus.
func ParseRegistrationStatus(s string) (RegistrationStatus, error) {
	st := RegistrationStatus(s)
	switch st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown registration status %q", s)
}

// Registration is one application submission.
type Registration struct {
	ID               string                  `json:"id"`
	IDCardOrPassport string                  `json:"id_card_or_passport"`
	GradeLevel       registration.GradeLevel `json:"grade_level"`
	IsSpecialISM     bool                    `json:"is_special_ism"`

	Title       string `json:"title"`
	FirstNameTH string `json:"first_name_th"`
	LastNameTH  string `json:"last_name_th"`
	BirthDate   string `json:"birth_date"`
	Ethnicity   string `json:"ethnicity"`
	Nationality string `json:"nationality"`
	Religion    string `json:"religion"`
	Phone       string `json:"phone"`

	Siblings         int `json:"siblings"`
	SiblingsInSchool int `json:"siblings_in_school"`

	EducationStatus   string `json:"education_status"`
	SchoolName        string `json:"school_name"`
	SchoolProvince    string `json:"school_province"`
	SchoolDistrict    string `json:"school_district"`
	SchoolSubdistrict string `json:"school_subdistrict"`

	VillageName string `json:"village_name"`
	HouseNumber string `json:"house_number"`
	Moo         string `json:"moo"`
	Road        string `json:"road"`
	Soi         string `json:"soi"`
	Province    string `json:"province"`
	District    string `json:"district"`
	Subdistrict string `json:"subdistrict"`
	PostalCode  string `json:"postal_code"`

	GPAGrade4     *float64 `json:"gpa_grade4"`
	GPAGrade5     *float64 `json:"gpa_grade5"`
	GPAScience    *float64 `json:"gpa_science"`
	GPAMath       *float64 `json:"gpa_math"`
	GPAEnglish    *float64 `json:"gpa_english"`
	GPACumulative *float64 `json:"gpa_cumulative"`

	HouseRegistrationURL   *string  `json:"house_registration_url"`
	TranscriptURL          *string  `json:"transcript_url"`
	PhotoURL               *string  `json:"photo_url"`
	SupplementaryDocuments []string `json:"supplementary_documents"`

	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ReferenceCode is the short code shown to applicants: the last eight
// characters of the ID, uppercased.
func ReferenceCode(id string) string {
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}

// FullName joins title, first and last name.
func (r *Registration) FullName() string {
	return strings.TrimSpace(r.Title + r.FirstNameTH + " " + r.LastNameTH)
}

// DocumentURL returns the URL stored in a named document slot.
func (r *Registration) DocumentURL(slot registration.DocumentSlot) *string {
	switch slot {
	case registration.SlotHouseRegistration:
		return r.HouseRegistrationURL
	case registration.SlotTranscript:
		return r.TranscriptURL
	case registration.SlotPhoto:
		return r.PhotoURL
	}
	return nil
}

// NewRegistration builds a pending record from a validated form. Scores of
// the inactive grade branch are dropped.
func NewRegistration(f registration.Form) *Registration {
	f.Trim()
	registration.ResolveGrade(f.GradeLevel).Normalize(&f)

	r := &Registration{
		IDCardOrPassport:       f.IDCardOrPassport,
		GradeLevel:             f.GradeLevel,
		IsSpecialISM:           f.IsSpecialISM,
		Title:                  f.Title,
		FirstNameTH:            f.FirstNameTH,
		LastNameTH:             f.LastNameTH,
		BirthDate:              f.BirthDate,
		Ethnicity:              f.Ethnicity,
		Nationality:            f.Nationality,
		Religion:               f.Religion,
		Phone:                  f.Phone,
		EducationStatus:        f.EducationStatus,
		SchoolName:             f.SchoolName,
		SchoolProvince:         f.SchoolProvince,
		SchoolDistrict:         f.SchoolDistrict,
		SchoolSubdistrict:      f.SchoolSubdistrict,
		VillageName:            f.VillageName,
		HouseNumber:            f.HouseNumber,
		Moo:                    f.Moo,
		Road:                   f.Road,
		Soi:                    f.Soi,
		Province:               f.Province,
		District:               f.District,
		Subdistrict:            f.Subdistrict,
		PostalCode:             f.PostalCode,
		GPAGrade4:              f.GPAGrade4,
		GPAGrade5:              f.GPAGrade5,
		GPAScience:             f.GPAScience,
		GPAMath:                f.GPAMath,
		GPAEnglish:             f.GPAEnglish,
		GPACumulative:          f.GPACumulative,
		HouseRegistrationURL:   f.HouseRegistrationURL,
		TranscriptURL:          f.TranscriptURL,
		PhotoURL:               f.PhotoURL,
		SupplementaryDocuments: f.SupplementaryDocuments,
		Status:                 StatusPending,
	}
	if f.Siblings != nil {
		r.Siblings = *f.Siblings
	}
	if f.SiblingsInSchool != nil {
		r.SiblingsInSchool = *f.SiblingsInSchool
	}
	if r.SupplementaryDocuments == nil {
		r.SupplementaryDocuments = []string{}
	}
	return r
}

// RegistrationDetail is the full record plus its reference code.
type RegistrationDetail struct {
	*Registration
	ReferenceCode string `json:"reference_code"`
}

// NewRegistrationDetail wraps r for output.
func NewRegistrationDetail(r *Registration) RegistrationDetail {
	return RegistrationDetail{Registration: r, ReferenceCode: ReferenceCode(r.ID)}
}

// RegistrationLookup is the public projection returned by national-ID search.
type RegistrationLookup struct {
	Name      string             `json:"name"`
	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

// AdmittedApplicant is one row of the public admitted list.
type AdmittedApplicant struct {
	ReferenceCode string                  `json:"reference_code"`
	Name          string                  `json:"name"`
	GradeLevel    registration.GradeLevel `json:"grade_level"`
	IsSpecialISM  bool                    `json:"is_special_ism"`
	SchoolName    string                  `json:"school_name"`
}

// RegistrationFilter narrows the admin list.
type RegistrationFilter struct {
	GradeLevel   registration.GradeLevel
	Status       RegistrationStatus
	IsSpecialISM *bool
	Query        string
	Page         int
	PerPage      int
}

// Offset returns the row offset for the current page.
func (f RegistrationFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PerPage
}

// ─── Requests ────────────────────────────────────────────────────────────

// RegisterRequest is the one-shot registration payload, with document URLs
// returned by the public upload endpoint and the captcha answer attached.
type RegisterRequest struct {
	registration.Form
	CaptchaID string `json:"captcha_id" binding:"required,uuid"`
	Captcha   string `json:"captcha" binding:"required,len=4,numeric"`
}

// UpdateStatusRequest is the payload for changing a registration's status.
type UpdateStatusRequest struct {
	Status RegistrationStatus `json:"status" binding:"required,reg_status"`
}

// RemoveDocumentRequest names a supplementary document to remove.
type RemoveDocumentRequest struct {
	URL string `json:"url" binding:"required,max=2048"`
}

// RegistrationPatch is the admin field edit. Only the fields listed here are
// editable; anything else in the body, the national ID included, is ignored.
type RegistrationPatch struct {
	GradeLevel   *registration.GradeLevel `json:"grade_level" binding:"omitempty,grade_level"`
	IsSpecialISM *bool                    `json:"is_special_ism"`

	Title       *string `json:"title" binding:"omitempty,min=1,max=50"`
	FirstNameTH *string `json:"first_name_th" binding:"omitempty,min=1,max=100"`
	LastNameTH  *string `json:"last_name_th" binding:"omitempty,min=1,max=100"`
	BirthDate   *string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Ethnicity   *string `json:"ethnicity" binding:"omitempty,max=50"`
	Nationality *string `json:"nationality" binding:"omitempty,max=50"`
	Religion    *string `json:"religion" binding:"omitempty,max=50"`
	Phone       *string `json:"phone" binding:"omitempty,thai_mobile"`

	Siblings         *int `json:"siblings" binding:"omitempty,min=0,max=30"`
	SiblingsInSchool *int `json:"siblings_in_school" binding:"omitempty,min=0,max=30"`

	EducationStatus   *string `json:"education_status" binding:"omitempty,max=30"`
	SchoolName        *string `json:"school_name" binding:"omitempty,max=200"`
	SchoolProvince    *string `json:"school_province" binding:"omitempty,max=100"`
	SchoolDistrict    *string `json:"school_district" binding:"omitempty,max=100"`
	SchoolSubdistrict *string `json:"school_subdistrict" binding:"omitempty,max=100"`

	VillageName *string `json:"village_name" binding:"omitempty,max=100"`
	HouseNumber *string `json:"house_number" binding:"omitempty,max=50"`
	Moo         *string `json:"moo" binding:"omitempty,max=20"`
	Road        *string `json:"road" binding:"omitempty,max=100"`
	Soi         *string `json:"soi" binding:"omitempty,max=100"`
	Province    *string `json:"province" binding:"omitempty,max=100"`
	District    *string `json:"district" binding:"omitempty,max=100"`
	Subdistrict *string `json:"subdistrict" binding:"omitempty,max=100"`
	PostalCode  *string `json:"postal_code" binding:"omitempty,postal_code"`

	GPAGrade4     *float64 `json:"gpa_grade4" binding:"omitempty,min=0,max=4"`
	GPAGrade5     *float64 `json:"gpa_grade5" binding:"omitempty,min=0,max=4"`
	GPAScience    *float64 `json:"gpa_science" binding:"omitempty,min=0,max=4"`
	GPAMath       *float64 `json:"gpa_math" binding:"omitempty,min=0,max=4"`
	GPAEnglish    *float64 `json:"gpa_english" binding:"omitempty,min=0,max=4"`
	GPACumulative *float64 `json:"gpa_cumulative" binding:"omitempty,min=0,max=4"`
}

// Columns returns the set fields keyed by column name.
func (p *RegistrationPatch) Columns() map[string]any {
	cols := map[string]any{}
	set := func(name string, ok bool, v any) {
		if ok {
			cols[name] = v
		}
	}
	if p.GradeLevel != nil {
		cols["grade_level"] = string(*p.GradeLevel)
	}
	set("is_special_ism", p.IsSpecialISM != nil, deref(p.IsSpecialISM))
	set("title", p.Title != nil, deref(p.Title))
	set("first_name_th", p.FirstNameTH != nil, deref(p.FirstNameTH))
	set("last_name_th", p.LastNameTH != nil, deref(p.LastNameTH))
	set("birth_date", p.BirthDate != nil, deref(p.BirthDate))
	set("ethnicity", p.Ethnicity != nil, deref(p.Ethnicity))
	set("nationality", p.Nationality != nil, deref(p.Nationality))
	set("religion", p.Religion != nil, deref(p.Religion))
	set("phone", p.Phone != nil, deref(p.Phone))
	set("siblings", p.Siblings != nil, deref(p.Siblings))
	set("siblings_in_school", p.SiblingsInSchool != nil, deref(p.SiblingsInSchool))
	set("education_status", p.EducationStatus != nil, deref(p.EducationStatus))
	set("school_name", p.SchoolName != nil, deref(p.SchoolName))
	set("school_province", p.SchoolProvince != nil, deref(p.SchoolProvince))
	set("school_district", p.SchoolDistrict != nil, deref(p.SchoolDistrict))
	set("school_subdistrict", p.SchoolSubdistrict != nil, deref(p.SchoolSubdistrict))
	set("village_name", p.VillageName != nil, deref(p.VillageName))
	set("house_number", p.HouseNumber != nil, deref(p.HouseNumber))
	set("moo", p.Moo != nil, deref(p.Moo))
	set("road", p.Road != nil, deref(p.Road))
	set("soi", p.Soi != nil, deref(p.Soi))
	set("province", p.Province != nil, deref(p.Province))
	set("district", p.District != nil, deref(p.District))
	set("subdistrict", p.Subdistrict != nil, deref(p.Subdistrict))
	set("postal_code", p.PostalCode != nil, deref(p.PostalCode))
	set(registration.ScoreGrade4, p.GPAGrade4 != nil, deref(p.GPAGrade4))
	set(registration.ScoreGrade5, p.GPAGrade5 != nil, deref(p.GPAGrade5))
	set(registration.ScoreScience, p.GPAScience != nil, deref(p.GPAScience))
	set(registration.ScoreMath, p.GPAMath != nil, deref(p.GPAMath))
	set(registration.ScoreEnglish, p.GPAEnglish != nil, deref(p.GPAEnglish))
	set(registration.ScoreCumulative, p.GPACumulative != nil, deref(p.GPACumulative))
	return cols
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
