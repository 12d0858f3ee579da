package registration

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var fixedNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

// validM1Form returns a form that passes every rule.
func validM1Form() Form {
	return Form{
		IDCardOrPassport:  "1609900123456",
		GradeLevel:        GradeM1,
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
		EducationStatus:   EducationStudyingP6,
		SchoolName:        "โรงเรียนอนุบาลหนองบัว",
		SchoolProvince:    HomeProvince,
		SchoolDistrict:    HomeDistrict,
		SchoolSubdistrict: "หนองบัว",
		HouseNumber:       "12/3",
		Moo:               "4",
		Province:          HomeProvince,
		District:          HomeDistrict,
		Subdistrict:       "หนองกลับ",
		PostalCode:        "60110",
		GPAGrade4:         floatPtr(3.5),
		GPAGrade5:         floatPtr(3.75),
	}
}

func TestValidateAll_ValidForm(t *testing.T) {
	f := validM1Form()
	assert.Nil(t, ValidateAll(&f, fixedNow))
}

func TestValidateAll_Precedence(t *testing.T) {
	f := validM1Form()
	f.IDCardOrPassport = ""
	f.Phone = ""
	f.PostalCode = ""

	v := ValidateAll(&f, fixedNow)
	require.NotNil(t, v)
	assert.Equal(t, "id_card_or_passport", v.Field)

	f.IDCardOrPassport = "1609900123456"
	v = ValidateAll(&f, fixedNow)
	require.NotNil(t, v)
	assert.Equal(t, "phone", v.Field)

	f.Phone = "0812345678"
	v = ValidateAll(&f, fixedNow)
	require.NotNil(t, v)
	assert.Equal(t, "postal_code", v.Field)
}

func TestValidateAll_BirthDate(t *testing.T) {
	cases := []struct {
		name  string
		value string
		ok    bool
	}{
		{"today", "2026-03-15", true},
		{"tomorrow", "2026-03-16", false},
		{"exactly 100 years", "1926-03-15", true},
		{"over 100 years", "1926-03-14", false},
		{"bad format", "15/03/2014", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validM1Form()
			f.BirthDate = tc.value
			v := ValidateAll(&f, fixedNow)
			if tc.ok {
				assert.Nil(t, v)
				return
			}
			require.NotNil(t, v)
			assert.Equal(t, "birth_date", v.Field)
		})
	}
}

func TestValidateAll_SiblingsInSchoolExceedsSiblings(t *testing.T) {
	f := validM1Form()
	f.Siblings = intPtr(1)
	f.SiblingsInSchool = intPtr(2)

	v := ValidateAll(&f, fixedNow)
	require.NotNil(t, v)
	assert.Equal(t, "siblings_in_school", v.Field)
}

func TestValidateAll_EducationStatusMustMatchBranch(t *testing.T) {
	f := validM1Form()
	f.EducationStatus = EducationGraduatedM3

	v := ValidateAll(&f, fixedNow)
	require.NotNil(t, v)
	assert.Equal(t, "education_status", v.Field)
}

func TestValidateAll_ScoreRange(t *testing.T) {
	f := validM1Form()
	f.GPAGrade5 = floatPtr(4.01)

	v := ValidateAll(&f, fixedNow)
	require.NotNil(t, v)
	assert.Equal(t, ScoreGrade5, v.Field)

	f.GPAGrade5 = nil
	assert.Nil(t, ValidateAll(&f, fixedNow), "scores are optional")
}

func TestValidateStep_CollectsEveryFailure(t *testing.T) {
	errs := ValidateStep(1, &Form{GradeLevel: GradeM1}, fixedNow)

	for _, field := range []string{
		"id_card_or_passport", "title", "first_name_th", "last_name_th", "birth_date",
		"ethnicity", "nationality", "religion", "phone", "siblings", "siblings_in_school",
	} {
		assert.Contains(t, errs, field)
	}
	assert.NotContains(t, errs, "postal_code", "step 1 must not check step 2 fields")
}

func TestValidateStep_Step1SiblingsError(t *testing.T) {
	f := validM1Form()
	f.Siblings = intPtr(0)
	f.SiblingsInSchool = intPtr(3)

	errs := ValidateStep(1, &f, fixedNow)
	require.Len(t, errs, 1)
	assert.Contains(t, errs, "siblings_in_school")
}

func TestValidateStep_ScopedSteps(t *testing.T) {
	empty := &Form{GradeLevel: GradeM4}

	step2 := ValidateStep(2, empty, fixedNow)
	assert.ElementsMatch(t,
		[]string{"house_number", "province", "district", "subdistrict", "postal_code"},
		keys(step2))

	step3 := ValidateStep(3, empty, fixedNow)
	assert.ElementsMatch(t,
		[]string{"education_status", "school_name", "school_province", "school_district", "school_subdistrict"},
		keys(step3))

	for _, step := range []Step{4, 5, 6} {
		assert.Empty(t, ValidateStep(step, empty, fixedNow), "step %d has no blocking rules", step)
	}
}

func TestFieldErrors_Clear(t *testing.T) {
	errs := FieldErrors{"phone": "x", "title": "y"}
	errs.Clear("phone", "missing")
	assert.Equal(t, FieldErrors{"title": "y"}, errs)
}

func TestValidPostalCode(t *testing.T) {
	assert.True(t, ValidPostalCode("60110"))
	for _, bad := range []string{"6011", "601100", "ABCDE", "", "๖๐๑๑๐"} {
		assert.False(t, ValidPostalCode(bad), bad)
	}
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("0812345678"))
	for _, bad := range []string{"0912345", "1812345678", "08123456789", "08-1234567"} {
		assert.False(t, ValidPhone(bad), bad)
	}
}

func TestValidNationalID_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.StringMatching(`[0-9]{13}`).Draw(rt, "id")
		if !ValidNationalID(id) {
			rt.Fatalf("13 digits rejected: %q", id)
		}

		n := rapid.IntRange(0, 30).Filter(func(n int) bool { return n != 13 }).Draw(rt, "len")
		wrong := strings.Repeat("1", n)
		if ValidNationalID(wrong) {
			rt.Fatalf("%d digits accepted", n)
		}

		pos := rapid.IntRange(0, 12).Draw(rt, "pos")
		ch := rapid.SampledFrom([]string{"a", "-", " ", "X", "๑"}).Draw(rt, "char")
		tainted := id[:pos] + ch + id[pos+1:]
		if ValidNationalID(tainted) {
			rt.Fatalf("non-digit accepted: %q", tainted)
		}
	})
}

func TestValidPhone_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rest := rapid.StringMatching(`[0-9]{9}`).Draw(rt, "rest")
		if !ValidPhone("0" + rest) {
			rt.Fatalf("rejected 0%s", rest)
		}
		lead := rapid.SampledFrom([]string{"1", "2", "5", "9"}).Draw(rt, "lead")
		if ValidPhone(lead + rest) {
			rt.Fatalf("accepted %s%s", lead, rest)
		}
	})
}

func TestValidateAll_SiblingsInvariant_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := validM1Form()
		siblings := rapid.IntRange(0, 20).Draw(rt, "siblings")
		inSchool := rapid.IntRange(0, 20).Draw(rt, "inSchool")
		f.Siblings = intPtr(siblings)
		f.SiblingsInSchool = intPtr(inSchool)

		v := ValidateAll(&f, fixedNow)
		if inSchool > siblings && v == nil {
			rt.Fatalf("accepted %d in school of %d siblings", inSchool, siblings)
		}
		if inSchool <= siblings && v != nil {
			rt.Fatalf("rejected valid siblings: %v", v)
		}
	})
}

func keys(m FieldErrors) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
