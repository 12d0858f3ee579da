package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseGradeLevel(t *testing.T) {
	g, err := ParseGradeLevel(" M4 ")
	require.NoError(t, err)
	assert.Equal(t, GradeM4, g)

	for _, bad := range []string{"", "m2", "m6", "p6"} {
		_, err := ParseGradeLevel(bad)
		assert.ErrorIs(t, err, ErrUnknownGradeLevel, bad)
	}
}

func TestResolveGrade_Branches(t *testing.T) {
	m1 := ResolveGrade(GradeM1)
	assert.Equal(t, GradeM1, m1.Level)
	assert.True(t, m1.AllowsEducationStatus(EducationStudyingP6))
	assert.False(t, m1.AllowsEducationStatus(EducationStudyingM3))
	require.Len(t, m1.ScoreFields, 2)

	m4 := ResolveGrade(GradeM4)
	assert.Equal(t, GradeM4, m4.Level)
	assert.True(t, m4.AllowsEducationStatus(EducationGraduatedM3))
	require.Len(t, m4.ScoreFields, 4)
	assert.Equal(t, ScoreCumulative, m4.ScoreFields[3].Value)
}

func TestResolveGrade_UnknownDefaultsToM1(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.String().Filter(func(s string) bool { return s != string(GradeM4) }).Draw(rt, "level")
		b := ResolveGrade(GradeLevel(raw))
		if b.Level != GradeM1 {
			rt.Fatalf("level %q resolved to %s", raw, b.Level)
		}
	})
}

func TestBranchNormalize(t *testing.T) {
	f := validM1Form()
	f.GPAScience = floatPtr(3.0)
	f.GPACumulative = floatPtr(2.5)

	ResolveGrade(GradeM1).Normalize(&f)
	assert.Nil(t, f.GPAScience)
	assert.Nil(t, f.GPACumulative)
	assert.NotNil(t, f.GPAGrade4)

	ResolveGrade(GradeM4).Normalize(&f)
	assert.Nil(t, f.GPAGrade4)
	assert.Nil(t, f.GPAGrade5)
}
