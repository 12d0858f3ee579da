package registration

import (
	"strings"
)

// BirthDateLayout is the wire format of Form.BirthDate.
const BirthDateLayout = "2006-01-02"

// Form is the accumulated applicant input across all wizard steps. It is also
// the body of a one-shot registration submit.
type Form struct {
	IDCardOrPassport string     `json:"id_card_or_passport"`
	GradeLevel       GradeLevel `json:"grade_level" binding:"required,grade_level"`
	IsSpecialISM     bool       `json:"is_special_ism"`

	Title       string `json:"title"`
	FirstNameTH string `json:"first_name_th"`
	LastNameTH  string `json:"last_name_th"`
	BirthDate   string `json:"birth_date"`
	Ethnicity   string `json:"ethnicity"`
	Nationality string `json:"nationality"`
	Religion    string `json:"religion"`
	Phone       string `json:"phone"`

	Siblings         *int `json:"siblings"`
	SiblingsInSchool *int `json:"siblings_in_school"`

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

	GPAGrade4     *float64 `json:"gpa_grade4,omitempty"`
	GPAGrade5     *float64 `json:"gpa_grade5,omitempty"`
	GPAScience    *float64 `json:"gpa_science,omitempty"`
	GPAMath       *float64 `json:"gpa_math,omitempty"`
	GPAEnglish    *float64 `json:"gpa_english,omitempty"`
	GPACumulative *float64 `json:"gpa_cumulative,omitempty"`

	HouseRegistrationURL   *string  `json:"house_registration_url,omitempty"`
	TranscriptURL          *string  `json:"transcript_url,omitempty"`
	PhotoURL               *string  `json:"photo_url,omitempty"`
	SupplementaryDocuments []string `json:"supplementary_documents,omitempty"`
}

// Trim collapses surrounding whitespace on every text field and repeated
// inner whitespace in names.
func (f *Form) Trim() {
	for _, p := range []*string{
		&f.IDCardOrPassport, &f.Title, &f.BirthDate, &f.Ethnicity, &f.Nationality,
		&f.Religion, &f.Phone, &f.EducationStatus, &f.SchoolName, &f.SchoolProvince,
		&f.SchoolDistrict, &f.SchoolSubdistrict, &f.VillageName, &f.HouseNumber,
		&f.Moo, &f.Road, &f.Soi, &f.Province, &f.District, &f.Subdistrict, &f.PostalCode,
	} {
		*p = strings.TrimSpace(*p)
	}
	f.FirstNameTH = strings.Join(strings.Fields(f.FirstNameTH), " ")
	f.LastNameTH = strings.Join(strings.Fields(f.LastNameTH), " ")
}

// HomeCascade returns the applicant's home address cascade.
func (f *Form) HomeCascade() Cascade {
	return Cascade{Province: f.Province, District: f.District, Subdistrict: f.Subdistrict}
}

// SchoolCascade returns the prior school's address cascade.
func (f *Form) SchoolCascade() Cascade {
	return Cascade{Province: f.SchoolProvince, District: f.SchoolDistrict, Subdistrict: f.SchoolSubdistrict}
}

func (f *Form) setHomeCascade(c Cascade) {
	f.Province, f.District, f.Subdistrict = c.Province, c.District, c.Subdistrict
}

func (f *Form) setSchoolCascade(c Cascade) {
	f.SchoolProvince, f.SchoolDistrict, f.SchoolSubdistrict = c.Province, c.District, c.Subdistrict
}

// Scores returns the score values keyed by field name, including nils.
func (f *Form) Scores() map[string]*float64 {
	return map[string]*float64{
		ScoreGrade4:     f.GPAGrade4,
		ScoreGrade5:     f.GPAGrade5,
		ScoreScience:    f.GPAScience,
		ScoreMath:       f.GPAMath,
		ScoreEnglish:    f.GPAEnglish,
		ScoreCumulative: f.GPACumulative,
	}
}

// DocumentURL returns the URL stored for a named document slot.
func (f *Form) DocumentURL(slot DocumentSlot) *string {
	switch slot {
	case SlotHouseRegistration:
		return f.HouseRegistrationURL
	case SlotTranscript:
		return f.TranscriptURL
	case SlotPhoto:
		return f.PhotoURL
	}
	return nil
}

// SetDocumentURL stores url under the named document slot.
func (f *Form) SetDocumentURL(slot DocumentSlot, url *string) {
	switch slot {
	case SlotHouseRegistration:
		f.HouseRegistrationURL = url
	case SlotTranscript:
		f.TranscriptURL = url
	case SlotPhoto:
		f.PhotoURL = url
	}
}
