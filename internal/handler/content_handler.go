package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/response"
	"github.com/nbwschool/admission-backend/internal/service"
	"github.com/nbwschool/admission-backend/internal/validator"
	"github.com/rs/zerolog"
)

// ContentHandler manages news and landing page hero images.
type ContentHandler struct {
	news      *service.NewsService
	heroes    *service.HeroImageService
	documents *service.DocumentService
	log       zerolog.Logger
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(news *service.NewsService, heroes *service.HeroImageService, documents *service.DocumentService, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		news:      news,
		heroes:    heroes,
		documents: documents,
		log:       log.With().Str("component", "content_handler").Logger(),
	}
}

func (h *ContentHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNewsNotFound), errors.Is(err, service.ErrHeroImageNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrImageRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
	default:
		h.log.Error().Err(err).Msg("content request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// ─── News ────────────────────────────────────────────────────────────────

// ListNews godoc
// GET /api/v1/news
func (h *ContentHandler) ListNews(c *gin.Context) {
	h.listNews(c, true)
}

// ListAllNews godoc
// GET /api/v1/admin/news
// Includes drafts.
func (h *ContentHandler) ListAllNews(c *gin.Context) {
	h.listNews(c, false)
}

func (h *ContentHandler) listNews(c *gin.Context, publishedOnly bool) {
	page, perPage := pageParams(c)
	items, total, err := h.news.List(c.Request.Context(), publishedOnly, page, perPage)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, response.NewPagination(page, perPage, total))
}

// GetNews godoc
// GET /api/v1/news/:id
func (h *ContentHandler) GetNews(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	item, err := h.news.Get(c.Request.Context(), id, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// CreateNews godoc
// POST /api/v1/admin/news
func (h *ContentHandler) CreateNews(c *gin.Context) {
	var req model.NewsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	item, err := h.news.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateNews godoc
// PUT /api/v1/admin/news/:id
func (h *ContentHandler) UpdateNews(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	var req model.NewsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	item, err := h.news.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DeleteNews godoc
// DELETE /api/v1/admin/news/:id
func (h *ContentHandler) DeleteNews(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	if err := h.news.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// ─── Hero images ─────────────────────────────────────────────────────────

// ListHeroImages godoc
// GET /api/v1/hero-images
func (h *ContentHandler) ListHeroImages(c *gin.Context) {
	h.listHeroImages(c, true)
}

// ListAllHeroImages godoc
// GET /api/v1/admin/hero-images
func (h *ContentHandler) ListAllHeroImages(c *gin.Context) {
	h.listHeroImages(c, false)
}

func (h *ContentHandler) listHeroImages(c *gin.Context, activeOnly bool) {
	items, err := h.heroes.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// bindHeroImage reads a hero image request from JSON or multipart. An
// attached "image" file is uploaded and replaces image_url.
func (h *ContentHandler) bindHeroImage(c *gin.Context) (model.HeroImageRequest, bool) {
	var req model.HeroImageRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return req, false
	}
	header, err := c.FormFile("image")
	if err != nil {
		return req, true
	}
	url, err := h.documents.UploadImage(c.Request.Context(), registration.FromMultipart(header))
	if err != nil {
		failDocument(c, h.log, err)
		return req, false
	}
	req.ImageURL = url
	return req, true
}

// CreateHeroImage godoc
// POST /api/v1/admin/hero-images
func (h *ContentHandler) CreateHeroImage(c *gin.Context) {
	req, ok := h.bindHeroImage(c)
	if !ok {
		return
	}
	item, err := h.heroes.Create(c.Request.Context(), req)
	if err != nil {
		h.discardUpload(c, req.ImageURL)
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateHeroImage godoc
// PUT /api/v1/admin/hero-images/:id
func (h *ContentHandler) UpdateHeroImage(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	req, ok := h.bindHeroImage(c)
	if !ok {
		return
	}
	item, err := h.heroes.Update(c.Request.Context(), id, req)
	if err != nil {
		h.discardUpload(c, req.ImageURL)
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// discardUpload drops an image uploaded for a request that then failed.
func (h *ContentHandler) discardUpload(c *gin.Context, url string) {
	if url == "" {
		return
	}
	if _, err := c.FormFile("image"); err == nil {
		h.documents.Discard(c.Request.Context(), url)
	}
}

// DeleteHeroImage godoc
// DELETE /api/v1/admin/hero-images/:id
func (h *ContentHandler) DeleteHeroImage(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	if err := h.heroes.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}
