package registration

// StepInfo describes one wizard page.
type StepInfo struct {
	Number Step     `json:"number"`
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

// Program is one admissible value of is_special_ism.
type Program struct {
	IsSpecialISM bool   `json:"is_special_ism"`
	Label        string `json:"label"`
}

// Layout is everything a client needs to render the form for one applicant.
type Layout struct {
	Grade           Branch        `json:"grade"`
	Steps           []StepInfo    `json:"steps"`
	Programs        []Program     `json:"programs"`
	ProgramDisabled bool          `json:"program_disabled"`
	Home            CascadeFields `json:"home_address"`
	School          CascadeFields `json:"school_address"`
	Schools         []School      `json:"schools,omitempty"`
	Documents       []Option      `json:"documents"`
}

// Steps returns the six pages for a grade branch.
func Steps(b Branch) []StepInfo {
	scores := make([]string, 0, len(b.ScoreFields)+len(UploadOrder))
	for _, o := range b.ScoreFields {
		scores = append(scores, o.Value)
	}
	for _, slot := range UploadOrder {
		scores = append(scores, string(slot))
	}
	return []StepInfo{
		{Number: 1, Title: "ข้อมูลผู้สมัคร", Fields: []string{
			"id_card_or_passport", "is_special_ism", "title", "first_name_th", "last_name_th",
			"birth_date", "ethnicity", "nationality", "religion", "phone", "siblings", "siblings_in_school",
		}},
		{Number: 2, Title: "ที่อยู่ตามทะเบียนบ้าน", Fields: []string{
			"village_name", "house_number", "moo", "road", "soi", "province", "district", "subdistrict", "postal_code",
		}},
		{Number: 3, Title: "ข้อมูลการศึกษา", Fields: []string{
			"education_status", "school_name", "school_province", "school_district", "school_subdistrict",
		}},
		{Number: 4, Title: "ผลการเรียนและเอกสาร", Fields: scores},
		{Number: 5, Title: "ข้อมูลผู้ปกครอง", Fields: []string{}},
		{Number: 6, Title: "ยืนยันการสมัคร", Fields: []string{"captcha"}},
	}
}

// BuildLayout describes the form for f given which programs are offered.
func BuildLayout(f *Form, allowISM, allowRegular bool) Layout {
	b := ResolveGrade(f.GradeLevel)
	l := Layout{
		Grade:   b,
		Steps:   Steps(b),
		Home:    f.HomeCascade().Fields(),
		School:  SchoolFields(f),
		Schools: Schools(f.SchoolProvince, f.SchoolDistrict),
	}
	if allowRegular {
		l.Programs = append(l.Programs, Program{IsSpecialISM: false, Label: "ห้องเรียนปกติ"})
	}
	if allowISM {
		l.Programs = append(l.Programs, Program{IsSpecialISM: true, Label: "ห้องเรียนพิเศษ ISM"})
	}
	l.ProgramDisabled = !allowISM && !allowRegular
	for _, slot := range UploadOrder {
		l.Documents = append(l.Documents, Option{Value: string(slot), Label: slot.Label()})
	}
	return l
}
