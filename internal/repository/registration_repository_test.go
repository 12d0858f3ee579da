package repository

import (
	"testing"

	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\temp`, escapeLike(`c:\temp`))
	assert.Equal(t, "สมชาย", escapeLike("สมชาย"))
}

func TestRegistrationWhere_QueryIsLiteral(t *testing.T) {
	where, args := registrationWhere(model.RegistrationFilter{GradeLevel: registration.GradeM1, Query: " %_ "})

	assert.Contains(t, where, "grade_level = $1")
	assert.Contains(t, where, `first_name_th ILIKE $2 ESCAPE '\'`)
	assert.Contains(t, where, `phone LIKE $2 ESCAPE '\'`)
	assert.Contains(t, where, "UPPER($3)")
	assert.Equal(t, []any{"m1", `%\%\_%`, "%_"}, args)
}

func TestRegistrationWhere_Empty(t *testing.T) {
	where, args := registrationWhere(model.RegistrationFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}
