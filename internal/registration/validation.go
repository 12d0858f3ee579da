package registration

import (
	"regexp"
	"strings"
	"time"
)

var (
	nationalIDPattern = regexp.MustCompile(`^\d{13}$`)
	phonePattern      = regexp.MustCompile(`^0\d{9}$`)
	postalCodePattern = regexp.MustCompile(`^\d{5}$`)
)

// ValidNationalID reports whether s is exactly 13 ASCII digits.
func ValidNationalID(s string) bool { return nationalIDPattern.MatchString(s) }

// ValidPhone reports whether s is a local mobile number: 0 followed by 9 digits.
func ValidPhone(s string) bool { return phonePattern.MatchString(s) }

// ValidPostalCode reports whether s is exactly 5 ASCII digits.
func ValidPostalCode(s string) bool { return postalCodePattern.MatchString(s) }

// MaxGPA is the upper bound of every score field.
const MaxGPA = 4.0

// Violation is a single failed rule.
type Violation struct {
	Field   string
	Message string
}

func (v *Violation) Error() string { return v.Message }

// FieldErrors maps a JSON field name to its first failing message.
type FieldErrors map[string]string

// Clear drops the errors of the given fields.
func (e FieldErrors) Clear(fields ...string) {
	for _, f := range fields {
		delete(e, f)
	}
}

func (e FieldErrors) add(v Violation) {
	if _, exists := e[v.Field]; !exists {
		e[v.Field] = v.Message
	}
}

// rule returns every violation of one numbered rule, in field order.
type rule func(f *Form, now time.Time) []Violation

// rules is ordered by precedence: the first violation of the first failing
// rule is the whole-form message.
var rules = []rule{
	ruleNationalID,  // 1
	ruleTitle,       // 2
	ruleName,        // 3
	ruleBirthDate,   // 4
	rulePersonal,    // 5
	rulePhone,       // 6
	ruleSiblings,    // 7
	ruleHomeAddress, // 8
	rulePostalCode,  // 9
	ruleEducation,   // 10
	ruleSchool,      // 11
	ruleScores,      // 12
}

// stepRules lists the rule indexes (into rules) that gate leaving each step.
var stepRules = map[Step][]int{
	1: {0, 1, 2, 3, 4, 5, 6},
	2: {7, 8},
	3: {9, 10},
}

// ValidateAll runs every rule in precedence order and returns the first
// violation, or nil when the form may be submitted.
func ValidateAll(f *Form, now time.Time) *Violation {
	for _, r := range rules {
		if vs := r(f, now); len(vs) > 0 {
			v := vs[0]
			return &v
		}
	}
	return nil
}

// ValidateStep returns every violation of the rules scoped to step. Steps
// without blocking rules always return an empty map.
func ValidateStep(step Step, f *Form, now time.Time) FieldErrors {
	errs := FieldErrors{}
	for _, i := range stepRules[step] {
		for _, v := range rules[i](f, now) {
			errs.add(v)
		}
	}
	return errs
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func required(field, value, message string) []Violation {
	if blank(value) {
		return []Violation{{Field: field, Message: message}}
	}
	return nil
}

func ruleNationalID(f *Form, _ time.Time) []Violation {
	id := strings.TrimSpace(f.IDCardOrPassport)
	switch {
	case id == "":
		return []Violation{{Field: "id_card_or_passport", Message: "กรุณากรอกเลขประจำตัวประชาชน"}}
	case !ValidNationalID(id):
		return []Violation{{Field: "id_card_or_passport", Message: "เลขประจำตัวประชาชนต้องเป็นตัวเลข 13 หลัก"}}
	}
	return nil
}

func ruleTitle(f *Form, _ time.Time) []Violation {
	return required("title", f.Title, "กรุณาเลือกคำนำหน้าชื่อ")
}

func ruleName(f *Form, _ time.Time) []Violation {
	var vs []Violation
	vs = append(vs, required("first_name_th", f.FirstNameTH, "กรุณากรอกชื่อ (ภาษาไทย)")...)
	vs = append(vs, required("last_name_th", f.LastNameTH, "กรุณากรอกนามสกุล (ภาษาไทย)")...)
	return vs
}

func ruleBirthDate(f *Form, now time.Time) []Violation {
	raw := strings.TrimSpace(f.BirthDate)
	if raw == "" {
		return []Violation{{Field: "birth_date", Message: "กรุณาระบุวันเกิด"}}
	}
	birth, err := time.ParseInLocation(BirthDateLayout, raw, now.Location())
	if err != nil {
		return []Violation{{Field: "birth_date", Message: "รูปแบบวันเกิดไม่ถูกต้อง"}}
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch {
	case birth.After(today):
		return []Violation{{Field: "birth_date", Message: "วันเกิดต้องไม่เป็นวันในอนาคต"}}
	case birth.Before(today.AddDate(-100, 0, 0)):
		return []Violation{{Field: "birth_date", Message: "วันเกิดต้องไม่เกิน 100 ปีนับจากปัจจุบัน"}}
	}
	return nil
}

func rulePersonal(f *Form, _ time.Time) []Violation {
	var vs []Violation
	vs = append(vs, required("ethnicity", f.Ethnicity, "กรุณากรอกเชื้อชาติ")...)
	vs = append(vs, required("nationality", f.Nationality, "กรุณากรอกสัญชาติ")...)
	vs = append(vs, required("religion", f.Religion, "กรุณากรอกศาสนา")...)
	return vs
}

func rulePhone(f *Form, _ time.Time) []Violation {
	phone := strings.TrimSpace(f.Phone)
	switch {
	case phone == "":
		return []Violation{{Field: "phone", Message: "กรุณากรอกเบอร์โทรศัพท์"}}
	case !ValidPhone(phone):
		return []Violation{{Field: "phone", Message: "เบอร์โทรศัพท์ต้องขึ้นต้นด้วย 0 และมีทั้งหมด 10 หลัก"}}
	}
	return nil
}

func ruleSiblings(f *Form, _ time.Time) []Violation {
	var vs []Violation
	switch {
	case f.Siblings == nil:
		vs = append(vs, Violation{Field: "siblings", Message: "กรุณากรอกจำนวนพี่น้อง"})
	case *f.Siblings < 0:
		vs = append(vs, Violation{Field: "siblings", Message: "จำนวนพี่น้องต้องไม่ติดลบ"})
	}
	switch {
	case f.SiblingsInSchool == nil:
		vs = append(vs, Violation{Field: "siblings_in_school", Message: "กรุณากรอกจำนวนพี่น้องที่กำลังศึกษาในโรงเรียนนี้"})
	case *f.SiblingsInSchool < 0:
		vs = append(vs, Violation{Field: "siblings_in_school", Message: "จำนวนพี่น้องที่กำลังศึกษาในโรงเรียนนี้ต้องไม่ติดลบ"})
	case f.Siblings != nil && *f.SiblingsInSchool > *f.Siblings:
		vs = append(vs, Violation{Field: "siblings_in_school", Message: "จำนวนพี่น้องที่กำลังศึกษาในโรงเรียนนี้ต้องไม่เกินจำนวนพี่น้องทั้งหมด"})
	}
	return vs
}

func ruleHomeAddress(f *Form, _ time.Time) []Violation {
	var vs []Violation
	vs = append(vs, required("house_number", f.HouseNumber, "กรุณากรอกบ้านเลขที่")...)
	vs = append(vs, required("province", f.Province, "กรุณาเลือกจังหวัด")...)
	vs = append(vs, required("district", f.District, "กรุณาเลือกอำเภอ")...)
	vs = append(vs, required("subdistrict", f.Subdistrict, "กรุณาเลือกตำบล")...)
	return vs
}

func rulePostalCode(f *Form, _ time.Time) []Violation {
	if !ValidPostalCode(strings.TrimSpace(f.PostalCode)) {
		return []Violation{{Field: "postal_code", Message: "รหัสไปรษณีย์ต้องเป็นตัวเลข 5 หลัก"}}
	}
	return nil
}

func ruleEducation(f *Form, _ time.Time) []Violation {
	status := strings.TrimSpace(f.EducationStatus)
	if status == "" || !ResolveGrade(f.GradeLevel).AllowsEducationStatus(status) {
		return []Violation{{Field: "education_status", Message: "กรุณาเลือกสถานะการศึกษา"}}
	}
	return nil
}

func ruleSchool(f *Form, _ time.Time) []Violation {
	var vs []Violation
	vs = append(vs, required("school_name", f.SchoolName, "กรุณากรอกชื่อโรงเรียนเดิม")...)
	vs = append(vs, required("school_province", f.SchoolProvince, "กรุณาเลือกจังหวัดของโรงเรียนเดิม")...)
	vs = append(vs, required("school_district", f.SchoolDistrict, "กรุณาเลือกอำเภอของโรงเรียนเดิม")...)
	vs = append(vs, required("school_subdistrict", f.SchoolSubdistrict, "กรุณาเลือกตำบลของโรงเรียนเดิม")...)
	return vs
}

func ruleScores(f *Form, _ time.Time) []Violation {
	var vs []Violation
	for _, o := range ResolveGrade(f.GradeLevel).ScoreFields {
		v := f.Scores()[o.Value]
		if v != nil && (*v < 0 || *v > MaxGPA) {
			vs = append(vs, Violation{Field: o.Value, Message: o.Label + "ต้องอยู่ระหว่าง 0.00 ถึง 4.00"})
		}
	}
	return vs
}
