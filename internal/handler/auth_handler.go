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

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService  *service.AuthService
	adminService *service.AdminService
	log          zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, adminService *service.AdminService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		adminService: adminService,
		log:          log.With().Str("component", "auth_handler").Logger(),
	}
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Validates email + password, returns JWT with permissions.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.adminService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.log.Warn().Str("email", req.Email).Str("ip", c.ClientIP()).Msg("admin login rejected")
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		h.log.Error().Err(err).Msg("admin login failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.log.Info().Int("admin_id", res.Admin.ID).Msg("admin logged in")
	response.Success(c, http.StatusOK, res)
}

// AdminLogout godoc
// POST /api/v1/auth/admin/logout
// Revokes the session of the presented token.
func (h *AuthHandler) AdminLogout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.log.Error().Err(err).Int("admin_id", claims.UserID).Msg("admin logout failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// GetAdminProfile godoc
// GET /api/v1/auth/admin/me
// Returns the profile of the currently authenticated admin.
func (h *AuthHandler) GetAdminProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	admin, err := h.adminService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, model.AdminProfile{
		Admin:       *admin,
		Permissions: admin.Role.Permissions(),
	})
}

// ChangePassword godoc
// PUT /api/v1/auth/admin/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	var req model.ChangePasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.adminService.ChangePassword(c.Request.Context(), claims.UserID, req); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			response.Fail(c, http.StatusBadRequest, response.ErrWrongPassword)
		case errors.Is(err, service.ErrAdminNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			h.log.Error().Err(err).Int("admin_id", claims.UserID).Msg("password change failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
