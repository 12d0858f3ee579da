package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/response"
	"github.com/nbwschool/admission-backend/internal/service"
	"github.com/nbwschool/admission-backend/internal/validator"
	"github.com/rs/zerolog"
)

// RegistrationHandler serves the public registration endpoints.
type RegistrationHandler struct {
	registrations *service.RegistrationService
	submission    *service.SubmissionService
	log           zerolog.Logger
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService, submission *service.SubmissionService, log zerolog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registrations: registrations,
		submission:    submission,
		log:           log.With().Str("component", "registration_handler").Logger(),
	}
}

// submitFailure is sent with a failed submit so the client can keep the
// documents it already uploaded and show the replacement captcha.
type submitFailure struct {
	Uploaded registration.Progress `json:"uploaded,omitempty"`
	Captcha  *service.Captcha      `json:"captcha,omitempty"`
}

// Register godoc
// POST /api/v1/register
// Creates a registration from a JSON payload whose document URLs were
// already obtained through /uploads.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.submission.Submit(c.Request.Context(), service.Submission{
		Form:      req.Form,
		CaptchaID: req.CaptchaID,
		Captcha:   req.Captcha,
	})
	if err != nil {
		failSubmission(c, h.log, err, submitFailure{Captcha: res.NewCaptcha})
		return
	}

	response.Success(c, http.StatusCreated, model.NewRegistrationDetail(res.Registration))
}

// Submit godoc
// POST /api/v1/register/submit
// One-shot multipart submit: a "payload" JSON field plus optional document
// files, uploaded in order before the record is created.
func (h *RegistrationHandler) Submit(c *gin.Context) {
	raw := c.PostForm("payload")
	if raw == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			map[string]string{"payload": "payload is required"})
		return
	}
	var req model.RegisterRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			map[string]string{"payload": err.Error()})
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	files := map[registration.DocumentSlot]registration.File{}
	for _, slot := range registration.UploadOrder {
		if header, err := c.FormFile(string(slot)); err == nil {
			files[slot] = registration.FromMultipart(header)
		}
	}

	res, err := h.submission.Submit(c.Request.Context(), service.Submission{
		Form:      req.Form,
		CaptchaID: req.CaptchaID,
		Captcha:   req.Captcha,
		Files:     files,
	})
	if err != nil {
		failSubmission(c, h.log, err, submitFailure{Uploaded: res.Uploaded, Captcha: res.NewCaptcha})
		return
	}

	response.Success(c, http.StatusCreated, model.NewRegistrationDetail(res.Registration))
}

// Search godoc
// GET /api/v1/registration/search?idCard=
// Looks an application up by national ID and returns its public status.
func (h *RegistrationHandler) Search(c *gin.Context) {
	idCard := strings.TrimSpace(c.Query("idCard"))
	if idCard == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrNationalIDMissing)
		return
	}

	lookup, err := h.registrations.Search(c.Request.Context(), idCard)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrRegistrationNotFound)
			return
		}
		h.log.Error().Err(err).Msg("registration search failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, lookup)
}

// GetByID godoc
// GET /api/v1/registration/:id
func (h *RegistrationHandler) GetByID(c *gin.Context) {
	reg, err := h.registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrRegistrationNotFound)
			return
		}
		h.log.Error().Err(err).Msg("registration lookup failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.NewRegistrationDetail(reg))
}

// Admitted godoc
// GET /api/v1/registrations/admitted?grade_level=
// Lists approved applicants. Without grade_level every level is listed.
func (h *RegistrationHandler) Admitted(c *gin.Context) {
	var level registration.GradeLevel
	if raw := c.Query("grade_level"); raw != "" {
		var ok bool
		if level, ok = gradeLevel(c, raw); !ok {
			return
		}
	}

	applicants, err := h.registrations.Admitted(c.Request.Context(), level)
	if err != nil {
		h.log.Error().Err(err).Msg("admitted list failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"applicants": applicants})
}
