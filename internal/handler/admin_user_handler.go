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

// AdminUserHandler manages staff accounts.
type AdminUserHandler struct {
	service *service.AdminService
	log     zerolog.Logger
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(s *service.AdminService, log zerolog.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		service: s,
		log:     log.With().Str("component", "admin_user_handler").Logger(),
	}
}

func (h *AdminUserHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAdminNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrEmailTaken):
		response.FailWithFields(c, http.StatusConflict, response.ErrConflict,
			map[string]string{"email": "email already registered"})
	case errors.Is(err, service.ErrCannotDeleteSelf), errors.Is(err, service.ErrLastSuperAdmin):
		response.FailWithMessage(c, http.StatusConflict, response.ErrActionForbidden, "", map[string]string{"detail": err.Error()})
	default:
		h.log.Error().Err(err).Msg("admin user request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// GetAdmins godoc
// GET /api/v1/admin/users
func (h *AdminUserHandler) GetAdmins(c *gin.Context) {
	admins, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, admins)
}

// CreateAdmin godoc
// POST /api/v1/admin/users
func (h *AdminUserHandler) CreateAdmin(c *gin.Context) {
	var req model.CreateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.log.Info().Int("admin_id", middleware.GetClaims(c).UserID).Int("created_id", admin.ID).Msg("admin account created")
	response.Success(c, http.StatusCreated, admin)
}

// UpdateAdmin godoc
// PUT /api/v1/admin/users/:id
// An empty password keeps the current one.
func (h *AdminUserHandler) UpdateAdmin(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	var req model.UpdateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, admin)
}

// DeleteAdmin godoc
// DELETE /api/v1/admin/users/:id
func (h *AdminUserHandler) DeleteAdmin(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.service.Delete(c.Request.Context(), claims.UserID, id); err != nil {
		h.fail(c, err)
		return
	}

	h.log.Info().Int("admin_id", claims.UserID).Int("deleted_id", id).Msg("admin account deleted")
	response.Success(c, http.StatusOK, gin.H{"id": id})
}
