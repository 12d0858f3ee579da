package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/response"
	"github.com/nbwschool/admission-backend/internal/service"
	"github.com/nbwschool/admission-backend/internal/validator"
	"github.com/rs/zerolog"
)

const maxPatchBytes = 64 << 10

// WizardHandler drives the step-by-step application form.
type WizardHandler struct {
	wizards *service.WizardService
	log     zerolog.Logger
}

// NewWizardHandler creates a new WizardHandler.
func NewWizardHandler(wizards *service.WizardService, log zerolog.Logger) *WizardHandler {
	return &WizardHandler{
		wizards: wizards,
		log:     log.With().Str("component", "wizard_handler").Logger(),
	}
}

type startWizardRequest struct {
	GradeLevel string `json:"grade_level" binding:"required,grade_level"`
}

type submitWizardRequest struct {
	Captcha string `form:"captcha" json:"captcha" binding:"required,len=4,numeric"`
}

func (h *WizardHandler) fail(c *gin.Context, err error, view *service.WizardView) {
	switch {
	case errors.Is(err, registration.ErrInvalidPatch):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			map[string]string{"detail": err.Error()})
	default:
		var data interface{}
		if view != nil {
			data = view
		}
		failSubmission(c, h.log, err, data)
	}
}

// Start godoc
// POST /api/v1/register/wizard
// Opens a wizard for a grade level that is currently accepting applications.
func (h *WizardHandler) Start(c *gin.Context) {
	var req startWizardRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.wizards.Start(c.Request.Context(), registration.GradeLevel(req.GradeLevel))
	if err != nil {
		h.fail(c, err, nil)
		return
	}

	response.Success(c, http.StatusCreated, view)
}

// Get godoc
// GET /api/v1/register/wizard/:id
func (h *WizardHandler) Get(c *gin.Context) {
	view, err := h.wizards.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Patch godoc
// PATCH /api/v1/register/wizard/:id
// Overlays field values. Address cascades reset dependent levels.
func (h *WizardHandler) Patch(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPatchBytes+1))
	if err != nil || len(body) == 0 || len(body) > maxPatchBytes {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	view, err := h.wizards.Patch(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Next godoc
// POST /api/v1/register/wizard/:id/next
// Validates the current step. The wizard stays put when errors remain;
// they are listed in wizard.errors.
func (h *WizardHandler) Next(c *gin.Context) {
	view, err := h.wizards.Next(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Previous godoc
// POST /api/v1/register/wizard/:id/previous
func (h *WizardHandler) Previous(c *gin.Context) {
	view, err := h.wizards.Previous(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// RefreshCaptcha godoc
// POST /api/v1/register/wizard/:id/captcha
func (h *WizardHandler) RefreshCaptcha(c *gin.Context) {
	view, err := h.wizards.RefreshCaptcha(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Submit godoc
// POST /api/v1/register/wizard/:id/submit
// Multipart: "captcha" plus optional house_registration, transcript and
// photo files. Slots uploaded by an earlier attempt are not sent again
// unless a new file is attached.
func (h *WizardHandler) Submit(c *gin.Context) {
	var req submitWizardRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	files := map[registration.DocumentSlot]registration.File{}
	for _, slot := range registration.UploadOrder {
		if header, err := c.FormFile(string(slot)); err == nil {
			files[slot] = registration.FromMultipart(header)
		}
	}

	view, err := h.wizards.Submit(c.Request.Context(), c.Param("id"), req.Captcha, files)
	if err != nil {
		h.fail(c, err, view)
		return
	}
	response.Success(c, http.StatusCreated, view)
}
