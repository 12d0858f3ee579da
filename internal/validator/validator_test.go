package validator

import (
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	NationalID string  `json:"id_card_or_passport" validate:"thai_id"`
	Phone      string  `json:"phone" validate:"thai_mobile"`
	Postal     string  `json:"postal_code" validate:"postal_code"`
	Grade      string  `json:"grade_level" validate:"grade_level"`
	Status     *string `json:"status" validate:"omitempty,reg_status"`
}

func newValidate(t *testing.T) *govalidator.Validate {
	t.Helper()
	v := govalidator.New()
	register(v)
	return v
}

func TestCustomTags_Accept(t *testing.T) {
	v := newValidate(t)
	status := "approved"
	err := v.Struct(sample{
		NationalID: "1234567890123",
		Phone:      "0812345678",
		Postal:     "60110",
		Grade:      "m4",
		Status:     &status,
	})
	assert.NoError(t, err)
}

func TestCustomTags_Reject(t *testing.T) {
	v := newValidate(t)
	status := "archived"
	err := v.Struct(sample{
		NationalID: "12345",
		Phone:      "812345678",
		Postal:     "6011",
		Grade:      "m2",
		Status:     &status,
	})
	require.Error(t, err)

	fields := TranslateErrors(err)
	assert.Len(t, fields, 5)
	assert.Equal(t, "grade_level must be one of m1 m4", fields["grade_level"])
	assert.Equal(t, "phone must start with 0 and have 10 digits", fields["phone"])
}
