// Package registration holds the applicant-facing enrollment workflow: the
// validation engine, the grade-branch and address-cascade resolvers, the
// document upload orchestrator and the six-step wizard state machine.
//
// Nothing in this package touches the network or the database; stores and
// uploaders are passed in as interfaces.
package registration

import (
	"errors"
	"fmt"
	"strings"
)

// GradeLevel is the grade an applicant is applying for.
type GradeLevel string

const (
	GradeM1 GradeLevel = "m1"
	GradeM4 GradeLevel = "m4"
)

// GradeLevels lists every supported grade level.
var GradeLevels = []GradeLevel{GradeM1, GradeM4}

var ErrUnknownGradeLevel = errors.New("unknown grade level")

// ParseGradeLevel converts a raw string to a GradeLevel, rejecting anything
// outside the closed set.
func ParseGradeLevel(s string) (GradeLevel, error) {
	g := GradeLevel(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case GradeM1, GradeM4:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGradeLevel, s)
}

// Valid reports whether g is one of the supported grade levels.
func (g GradeLevel) Valid() bool {
	_, err := ParseGradeLevel(string(g))
	return err == nil
}

// Education status values. Each grade branch accepts its own pair.
const (
	EducationStudyingP6  = "studying_p6"
	EducationGraduatedP6 = "graduated_p6"
	EducationStudyingM3  = "studying_m3"
	EducationGraduatedM3 = "graduated_m3"
)

// Score field names, matching the JSON keys of Form.
const (
	ScoreGrade4     = "gpa_grade4"
	ScoreGrade5     = "gpa_grade5"
	ScoreScience    = "gpa_science"
	ScoreMath       = "gpa_math"
	ScoreEnglish    = "gpa_english"
	ScoreCumulative = "gpa_cumulative"
)

// Option is a value/label pair offered to the applicant.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Branch describes everything that varies with the grade level.
type Branch struct {
	Level               GradeLevel `json:"grade_level"`
	DisplayName         string     `json:"display_name"`
	PriorEducationLabel string     `json:"prior_education_label"`
	SchoolNameLabel     string     `json:"school_name_label"`
	EducationStatuses   []Option   `json:"education_statuses"`
	ScoreFields         []Option   `json:"score_fields"`
}

var (
	m1Branch = Branch{
		Level:               GradeM1,
		DisplayName:         "มัธยมศึกษาปีที่ 1",
		PriorEducationLabel: "ระดับชั้นประถมศึกษาปีที่ 6",
		SchoolNameLabel:     "โรงเรียนเดิม (ชั้นประถมศึกษาปีที่ 6)",
		EducationStatuses: []Option{
			{Value: EducationStudyingP6, Label: "กำลังศึกษาชั้นประถมศึกษาปีที่ 6"},
			{Value: EducationGraduatedP6, Label: "จบการศึกษาชั้นประถมศึกษาปีที่ 6"},
		},
		ScoreFields: []Option{
			{Value: ScoreGrade4, Label: "ผลการเรียนเฉลี่ยชั้นประถมศึกษาปีที่ 4"},
			{Value: ScoreGrade5, Label: "ผลการเรียนเฉลี่ยชั้นประถมศึกษาปีที่ 5"},
		},
	}

	m4Branch = Branch{
		Level:               GradeM4,
		DisplayName:         "มัธยมศึกษาปีที่ 4",
		PriorEducationLabel: "ระดับชั้นมัธยมศึกษาปีที่ 3",
		SchoolNameLabel:     "โรงเรียนเดิม (ชั้นมัธยมศึกษาปีที่ 3)",
		EducationStatuses: []Option{
			{Value: EducationStudyingM3, Label: "กำลังศึกษาชั้นมัธยมศึกษาปีที่ 3"},
			{Value: EducationGraduatedM3, Label: "จบการศึกษาชั้นมัธยมศึกษาปีที่ 3"},
		},
		ScoreFields: []Option{
			{Value: ScoreScience, Label: "ผลการเรียนเฉลี่ยสะสมวิชาวิทยาศาสตร์"},
			{Value: ScoreMath, Label: "ผลการเรียนเฉลี่ยสะสมวิชาคณิตศาสตร์"},
			{Value: ScoreEnglish, Label: "ผลการเรียนเฉลี่ยสะสมวิชาภาษาอังกฤษ"},
			{Value: ScoreCumulative, Label: "ผลการเรียนเฉลี่ยสะสม (GPAX)"},
		},
	}
)

// ResolveGrade returns the branch for level. Anything other than m4 resolves
// to the m1 branch; callers reject unknown levels with ParseGradeLevel first.
func ResolveGrade(level GradeLevel) Branch {
	if level == GradeM4 {
		return m4Branch
	}
	return m1Branch
}

// AllowsEducationStatus reports whether status is offered by this branch.
func (b Branch) AllowsEducationStatus(status string) bool {
	for _, o := range b.EducationStatuses {
		if o.Value == status {
			return true
		}
	}
	return false
}

// EducationStatusLabel returns the display label for status, or status itself.
func (b Branch) EducationStatusLabel(status string) string {
	for _, o := range b.EducationStatuses {
		if o.Value == status {
			return o.Label
		}
	}
	return status
}

// Normalize clears the score fields that belong to the other branch.
func (b Branch) Normalize(f *Form) {
	if b.Level == GradeM4 {
		f.GPAGrade4, f.GPAGrade5 = nil, nil
		return
	}
	f.GPAScience, f.GPAMath, f.GPAEnglish, f.GPACumulative = nil, nil, nil, nil
}
