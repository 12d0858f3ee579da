package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
)

// trans is the singleton English translator for validation errors.
var (
	trans ut.Translator
	once  sync.Once
)

// customTags are the domain rules registered on top of the built-in tags.
var customTags = []struct {
	tag     string
	fn      govalidator.Func
	message string
}{
	{"thai_id", func(fl govalidator.FieldLevel) bool {
		return registration.ValidNationalID(fl.Field().String())
	}, "{0} must be a 13-digit national ID"},
	{"thai_mobile", func(fl govalidator.FieldLevel) bool {
		return registration.ValidPhone(fl.Field().String())
	}, "{0} must start with 0 and have 10 digits"},
	{"postal_code", func(fl govalidator.FieldLevel) bool {
		return registration.ValidPostalCode(fl.Field().String())
	}, "{0} must be 5 digits"},
	{"grade_level", func(fl govalidator.FieldLevel) bool {
		return registration.GradeLevel(fl.Field().String()).Valid()
	}, "{0} must be one of m1 m4"},
	{"reg_status", func(fl govalidator.FieldLevel) bool {
		_, err := model.ParseRegistrationStatus(fl.Field().String())
		return err == nil
	}, "{0} must be one of pending approved rejected"},
}

// Setup registers the validator with English translations on Gin's binding engine.
// Safe to call more than once.
func Setup() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
			register(v)
		}
	})
}

func register(v *govalidator.Validate) {
	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	en_translations.RegisterDefaultTranslations(v, trans)

	for _, ct := range customTags {
		_ = v.RegisterValidation(ct.tag, ct.fn)
		message := ct.message
		_ = v.RegisterTranslation(ct.tag, trans,
			func(u ut.Translator) error { return u.Add(ct.tag, message, true) },
			func(u ut.Translator, fe govalidator.FieldError) string {
				t, _ := u.T(fe.Tag(), fe.Field())
				return t
			})
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name -> human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindForm is Bind for multipart and urlencoded bodies.
func BindForm(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBind(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
