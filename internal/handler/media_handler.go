package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/response"
	"github.com/nbwschool/admission-backend/internal/service"
	"github.com/rs/zerolog"
)

// MediaHandler handles direct file uploads.
type MediaHandler struct {
	documents *service.DocumentService
	log       zerolog.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(documents *service.DocumentService, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		documents: documents,
		log:       log.With().Str("component", "media_handler").Logger(),
	}
}

// UploadDocument godoc
// POST /api/v1/uploads
// Stores one applicant document ("slot" and "file") and returns its URL.
func (h *MediaHandler) UploadDocument(c *gin.Context) {
	slot, err := registration.ParseDocumentSlot(c.PostForm("slot"))
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"slot": "must be one of house_registration transcript photo"})
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	if header.Size > h.documents.MaxBytes() {
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		return
	}

	url, err := h.documents.UploadForApplicant(c.Request.Context(), slot, registration.FromMultipart(header))
	if err != nil {
		failDocument(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"url": url, "slot": slot})
}

// UploadImage godoc
// POST /api/v1/admin/media/upload
// Uploads an image for news content and returns its URL.
func (h *MediaHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	url, err := h.documents.UploadImage(c.Request.Context(), registration.FromMultipart(header))
	if err != nil {
		failDocument(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"url": url})
}
