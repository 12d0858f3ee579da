package testutil

import (
	"bytes"
	"io"

	"github.com/nbwschool/admission-backend/internal/registration"
)

// PDF is the smallest body sniffed as application/pdf.
var PDF = []byte("%PDF-1.4\n1 0 obj << >> endobj\n%%EOF\n")

func intPtr(v int) *int            { return &v }
func floatPtr(v float64) *float64 { return &v }

// ValidM1Form returns a lower-secondary form that passes every rule.
func ValidM1Form() registration.Form {
	return registration.Form{
		IDCardOrPassport:  "1609900123456",
		GradeLevel:        registration.GradeM1,
		Title:             "เด็กชาย",
		FirstNameTH:       "สมชาย",
		LastNameTH:        "ใจดี",
		BirthDate:         "2014-05-20",
		Ethnicity:         "ไทย",
		Nationality:       "ไทย",
		Religion:          "พุทธ",
		Phone:             "0812345678",
		Siblings:          intPtr(2),
		SiblingsInSchool:  intPtr(1),
		EducationStatus:   registration.EducationStudyingP6,
		SchoolName:        "โรงเรียนอนุบาลหนองบัว",
		SchoolProvince:    registration.HomeProvince,
		SchoolDistrict:    registration.HomeDistrict,
		SchoolSubdistrict: "หนองบัว",
		HouseNumber:       "12/3",
		Moo:               "4",
		Province:          registration.HomeProvince,
		District:          registration.HomeDistrict,
		Subdistrict:       "หนองกลับ",
		PostalCode:        "60110",
		GPAGrade4:         floatPtr(3.5),
		GPAGrade5:         floatPtr(3.75),
	}
}

// File wraps data as a selected document.
func File(name string, data []byte) registration.File {
	return registration.File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}
