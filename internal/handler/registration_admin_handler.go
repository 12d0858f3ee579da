package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nbwschool/admission-backend/internal/middleware"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/response"
	"github.com/nbwschool/admission-backend/internal/service"
	"github.com/nbwschool/admission-backend/internal/validator"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RegistrationAdminHandler serves the staff side of registrations.
type RegistrationAdminHandler struct {
	registrations *service.RegistrationService
	export        *service.ExportService
	log           zerolog.Logger
}

// NewRegistrationAdminHandler creates a new RegistrationAdminHandler.
func NewRegistrationAdminHandler(registrations *service.RegistrationService, export *service.ExportService, log zerolog.Logger) *RegistrationAdminHandler {
	return &RegistrationAdminHandler{
		registrations: registrations,
		export:        export,
		log:           log.With().Str("component", "registration_admin_handler").Logger(),
	}
}

func (h *RegistrationAdminHandler) fail(c *gin.Context, err error) {
	var violation *registration.Violation
	switch {
	case errors.As(err, &violation):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, violation.Message,
			map[string]string{violation.Field: violation.Message})
	case errors.Is(err, service.ErrRegistrationNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrRegistrationNotFound)
	default:
		h.log.Error().Err(err).Msg("registration admin request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// filter reads list filters from the query string.
func (h *RegistrationAdminHandler) filter(c *gin.Context) (model.RegistrationFilter, bool) {
	var f model.RegistrationFilter
	if raw := c.Query("grade_level"); raw != "" {
		level, ok := gradeLevel(c, raw)
		if !ok {
			return f, false
		}
		f.GradeLevel = level
	}
	if raw := c.Query("status"); raw != "" {
		status, err := model.ParseRegistrationStatus(raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"status": "must be one of pending approved rejected"})
			return f, false
		}
		f.Status = status
	}
	if raw := c.Query("is_special_ism"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"is_special_ism": "must be true or false"})
			return f, false
		}
		f.IsSpecialISM = &v
	}
	f.Query = strings.TrimSpace(c.Query("q"))
	f.Page, f.PerPage = pageParams(c)
	return f, true
}

// List godoc
// GET /api/v1/admin/registrations
// Filters by grade_level, status, is_special_ism and a free-text q.
func (h *RegistrationAdminHandler) List(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}

	regs, total, err := h.registrations.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, regs, response.NewPagination(f.Page, f.PerPage, total))
}

// Export godoc
// GET /api/v1/admin/registrations/export
// Streams every registration matching the filters as an .xlsx workbook.
func (h *RegistrationAdminHandler) Export(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.export.Filename(f)))
	c.Status(http.StatusOK)

	n, err := h.export.WriteXLSX(c.Request.Context(), c.Writer, f)
	if err != nil {
		h.log.Error().Err(err).Msg("registration export failed")
		if !c.Writer.Written() {
			c.Writer.Header().Del("Content-Type")
			c.Writer.Header().Del("Content-Disposition")
			h.fail(c, err)
		}
		return
	}
	h.log.Info().Int("admin_id", middleware.GetClaims(c).UserID).Int("rows", n).Msg("registrations exported")
}

// Update godoc
// PATCH /api/v1/registration/:id
// Edits allow-listed fields. id_card_or_passport is never changed.
func (h *RegistrationAdminHandler) Update(c *gin.Context) {
	var patch model.RegistrationPatch
	if fields := validator.Bind(c, &patch); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	reg, err := h.registrations.UpdateFields(c.Request.Context(), claims.UserID, c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.NewRegistrationDetail(reg))
}

// UpdateStatus godoc
// PATCH /api/v1/registration/:id/status
func (h *RegistrationAdminHandler) UpdateStatus(c *gin.Context) {
	var req model.UpdateStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	reg, err := h.registrations.UpdateStatus(c.Request.Context(), claims.UserID, c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.NewRegistrationDetail(reg))
}

// Delete godoc
// DELETE /api/v1/admin/registrations/:id
func (h *RegistrationAdminHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.registrations.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id")})
}

// AddDocument godoc
// POST /api/v1/registration/:id/documents
// Appends a supplementary document uploaded as multipart "file".
func (h *RegistrationAdminHandler) AddDocument(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	reg, err := h.registrations.AddDocument(c.Request.Context(), c.Param("id"), registration.FromMultipart(header))
	if err != nil {
		failDocument(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, model.NewRegistrationDetail(reg))
}

// RemoveDocument godoc
// DELETE /api/v1/registration/:id/documents
// Removes every supplementary entry equal to the given url.
func (h *RegistrationAdminHandler) RemoveDocument(c *gin.Context) {
	var req model.RemoveDocumentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	reg, err := h.registrations.RemoveDocument(c.Request.Context(), c.Param("id"), req.URL)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.NewRegistrationDetail(reg))
}

func slotParam(c *gin.Context) (registration.DocumentSlot, bool) {
	slot, err := registration.ParseDocumentSlot(c.Param("slot"))
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"slot": "must be one of house_registration transcript photo"})
		return "", false
	}
	return slot, true
}

// ReplaceDocument godoc
// PUT /api/v1/registration/:id/documents/:slot
// Stores a new file in a named slot. The old file is deleted afterwards.
func (h *RegistrationAdminHandler) ReplaceDocument(c *gin.Context) {
	slot, ok := slotParam(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	reg, err := h.registrations.ReplaceDocument(c.Request.Context(), c.Param("id"), slot, registration.FromMultipart(header))
	if err != nil {
		failDocument(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, model.NewRegistrationDetail(reg))
}

// ClearDocument godoc
// DELETE /api/v1/registration/:id/documents/:slot
func (h *RegistrationAdminHandler) ClearDocument(c *gin.Context) {
	slot, ok := slotParam(c)
	if !ok {
		return
	}

	reg, err := h.registrations.ClearDocument(c.Request.Context(), c.Param("id"), slot)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.NewRegistrationDetail(reg))
}
