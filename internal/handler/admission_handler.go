package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nbwschool/admission-backend/internal/middleware"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/response"
	"github.com/nbwschool/admission-backend/internal/service"
	"github.com/nbwschool/admission-backend/internal/validator"
	"github.com/rs/zerolog"
)

// AdmissionHandler exposes admission windows and the form layout.
type AdmissionHandler struct {
	admission *service.AdmissionService
	captcha   *service.CaptchaService
	log       zerolog.Logger
}

func NewAdmissionHandler(admission *service.AdmissionService, captcha *service.CaptchaService, log zerolog.Logger) *AdmissionHandler {
	return &AdmissionHandler{
		admission: admission,
		captcha:   captcha,
		log:       log.With().Str("component", "admission_handler").Logger(),
	}
}

// GetAdmission godoc
// GET /api/v1/admission?grade_level=
// Settings are created with defaults the first time a grade level is read.
func (h *AdmissionHandler) GetAdmission(c *gin.Context) {
	level, ok := gradeLevel(c, c.Query("grade_level"))
	if !ok {
		return
	}

	view, err := h.admission.View(c.Request.Context(), level)
	if err != nil {
		h.log.Error().Err(err).Str("grade_level", string(level)).Msg("admission lookup failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// GetRegisterForm godoc
// GET /api/v1/register/form?grade_level=
// While admission is closed only the settings are returned, no layout.
func (h *AdmissionHandler) GetRegisterForm(c *gin.Context) {
	level, ok := gradeLevel(c, c.Query("grade_level"))
	if !ok {
		return
	}

	form, err := h.admission.FormView(c.Request.Context(), level)
	if err != nil {
		h.log.Error().Err(err).Str("grade_level", string(level)).Msg("register form lookup failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, form)
}

// ListAdmissions godoc
// GET /api/v1/admin/admission
func (h *AdmissionHandler) ListAdmissions(c *gin.Context) {
	views, err := h.admission.Views(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("admission list failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, views)
}

// UpdateAdmission godoc
// PUT /api/v1/admin/admission/:grade_level
func (h *AdmissionHandler) UpdateAdmission(c *gin.Context) {
	level, ok := gradeLevel(c, c.Param("grade_level"))
	if !ok {
		return
	}
	var req model.UpdateAdmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.admission.Update(c.Request.Context(), level, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWindow) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"close_at": "close_at must be after open_at"})
			return
		}
		h.log.Error().Err(err).Str("grade_level", string(level)).Msg("admission update failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.log.Info().
		Int("admin_id", middleware.GetClaims(c).UserID).
		Str("grade_level", string(level)).
		Bool("is_open", view.IsOpen).
		Msg("admission settings updated")
	response.Success(c, http.StatusOK, view)
}

// NewCaptcha godoc
// GET /api/v1/captcha
func (h *AdmissionHandler) NewCaptcha(c *gin.Context) {
	challenge, err := h.captcha.Issue(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("captcha issue failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, challenge)
}
