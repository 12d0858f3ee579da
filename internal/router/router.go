package router

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/handler"
	"github.com/nbwschool/admission-backend/internal/middleware"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/response"
	"github.com/nbwschool/admission-backend/internal/service"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth              *handler.AuthHandler
	Registration      *handler.RegistrationHandler
	RegistrationAdmin *handler.RegistrationAdminHandler
	Wizard            *handler.WizardHandler
	Admission         *handler.AdmissionHandler
	Address           *handler.AddressHandler
	Media             *handler.MediaHandler
	Content           *handler.ContentHandler
	Dashboard         *handler.DashboardHandler
	AdminUser         *handler.AdminUserHandler
	LiveFeed          *handler.LiveFeedHandler
	System            *handler.SystemHandler
}

// Options carries router dependencies that are not handlers.
type Options struct {
	// PublicLimiter throttles anonymous write endpoints. Nil disables it.
	PublicLimiter *middleware.RateLimiter
	Log           zerolog.Logger
}

const uploadsMaxAge = 31536000

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	opts Options,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	// Request ID first so recovery and request logs can carry it.
	router.Use(
		response.RequestIDMiddleware(),
		middleware.Recovery(opts.Log),
		middleware.RequestLogger(opts.Log),
	)

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Spreadsheets and stored files are already compressed.
	uploadsPrefix := cfg.StoragePublicURL + "/"
	brotliConfig := middleware.DefaultBrotliConfig
	brotliConfig.Skipper = func(c *gin.Context) bool {
		p := c.Request.URL.Path
		return strings.HasSuffix(p, "/export") || strings.HasPrefix(p, uploadsPrefix)
	}
	router.Use(middleware.BrotliWithConfig(brotliConfig))

	// Files are served from disk only for the local storage backend; GCS
	// objects are public URLs.
	if cfg.StorageType == config.StorageLocal && strings.HasPrefix(cfg.StoragePublicURL, "/") {
		uploadsGroup := router.Group(cfg.StoragePublicURL)
		uploadsGroup.Use(middleware.CacheControl(uploadsMaxAge))
		{
			uploadsGroup.Static("/", cfg.StorageLocalPath)
		}
	}

	router.GET("/health", handlers.System.Health)

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if opts.PublicLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{opts.PublicLimiter.Middleware(), h}
	}

	adminAuth := []gin.HandlerFunc{
		middleware.RequireAdminJWT(authService),
		middleware.RequireAdminSession(authService),
	}
	can := middleware.RequirePermission

	// ─── 1. Public Group (No Auth) ─────────────────────────────────────
	public := router.Group("/api/v1")
	public.Use(middleware.NoStore())
	{
		public.GET("/admission", handlers.Admission.GetAdmission)
		public.GET("/register/form", handlers.Admission.GetRegisterForm)
		public.GET("/captcha", handlers.Admission.NewCaptcha)

		public.POST("/uploads", limited(handlers.Media.UploadDocument)...)
		public.POST("/register", limited(handlers.Registration.Register)...)
		public.POST("/register/submit", limited(handlers.Registration.Submit)...)

		public.POST("/register/wizard", limited(handlers.Wizard.Start)...)
		public.GET("/register/wizard/:id", handlers.Wizard.Get)
		public.PATCH("/register/wizard/:id", handlers.Wizard.Patch)
		public.POST("/register/wizard/:id/next", handlers.Wizard.Next)
		public.POST("/register/wizard/:id/previous", handlers.Wizard.Previous)
		public.POST("/register/wizard/:id/captcha", handlers.Wizard.RefreshCaptcha)
		public.POST("/register/wizard/:id/submit", limited(handlers.Wizard.Submit)...)

		public.GET("/registration/search", limited(handlers.Registration.Search)...)
		public.GET("/registration/:id", handlers.Registration.GetByID)
		public.GET("/registrations/admitted", handlers.Registration.Admitted)
	}

	// Reference data changes rarely and is safe to cache.
	cached := router.Group("/api/v1")
	cached.Use(middleware.CacheControl(300))
	{
		cached.GET("/addresses/provinces", handlers.Address.Provinces)
		cached.GET("/addresses/districts", handlers.Address.Districts)
		cached.GET("/addresses/subdistricts", handlers.Address.Subdistricts)
		cached.GET("/addresses/schools", handlers.Address.Schools)

		cached.GET("/news", handlers.Content.ListNews)
		cached.GET("/news/:id", handlers.Content.GetNews)
		cached.GET("/hero-images", handlers.Content.ListHeroImages)
	}

	// ─── 2. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.NoStore())
	{
		auth.POST("/admin/login", limited(handlers.Auth.AdminLogin)...)

		authed := auth.Group("/admin", adminAuth...)
		authed.POST("/logout", handlers.Auth.AdminLogout)
		authed.GET("/me", handlers.Auth.GetAdminProfile)
		authed.PUT("/password", handlers.Auth.ChangePassword)
	}

	// ─── 3. Staff edits on a single registration ───────────────────────
	staff := router.Group("/api/v1/registration", adminAuth...)
	staff.Use(middleware.NoStore())
	{
		staff.PATCH("/:id",
			can(model.PermissionRegistrationsWrite),
			handlers.RegistrationAdmin.Update,
		)
		staff.PATCH("/:id/status",
			can(model.PermissionRegistrationsReview),
			handlers.RegistrationAdmin.UpdateStatus,
		)
		staff.POST("/:id/documents",
			can(model.PermissionRegistrationsWrite),
			handlers.RegistrationAdmin.AddDocument,
		)
		staff.DELETE("/:id/documents",
			can(model.PermissionRegistrationsWrite),
			handlers.RegistrationAdmin.RemoveDocument,
		)
		staff.PUT("/:id/documents/:slot",
			can(model.PermissionRegistrationsWrite),
			handlers.RegistrationAdmin.ReplaceDocument,
		)
		staff.DELETE("/:id/documents/:slot",
			can(model.PermissionRegistrationsWrite),
			handlers.RegistrationAdmin.ClearDocument,
		)
	}

	// ─── 4. Admin Group (JWT + Session + RBAC) ─────────────────────────
	adminAPI := router.Group("/api/v1/admin", adminAuth...)
	adminAPI.Use(middleware.NoStore())
	{
		// Registrations
		adminAPI.GET("/registrations",
			can(model.PermissionRegistrationsRead),
			handlers.RegistrationAdmin.List,
		)
		adminAPI.GET("/registrations/export",
			can(model.PermissionRegistrationsExport),
			handlers.RegistrationAdmin.Export,
		)
		adminAPI.DELETE("/registrations/:id",
			can(model.PermissionRegistrationsDelete),
			handlers.RegistrationAdmin.Delete,
		)

		// Dashboard & system
		adminAPI.GET("/dashboard",
			can(model.PermissionDashboardRead),
			handlers.Dashboard.GetDashboardData,
		)
		adminAPI.GET("/system/metrics",
			can(model.PermissionDashboardRead),
			handlers.System.SystemMetricsSSE,
		)

		// Admission windows
		adminAPI.GET("/admission",
			can(model.PermissionDashboardRead),
			handlers.Admission.ListAdmissions,
		)
		adminAPI.PUT("/admission/:grade_level",
			can(model.PermissionAdmissionWrite),
			handlers.Admission.UpdateAdmission,
		)

		// Content
		adminAPI.POST("/media/upload",
			can(model.PermissionContentWrite),
			handlers.Media.UploadImage,
		)
		adminAPI.GET("/news",
			can(model.PermissionContentWrite),
			handlers.Content.ListAllNews,
		)
		adminAPI.POST("/news",
			can(model.PermissionContentWrite),
			handlers.Content.CreateNews,
		)
		adminAPI.PUT("/news/:id",
			can(model.PermissionContentWrite),
			handlers.Content.UpdateNews,
		)
		adminAPI.DELETE("/news/:id",
			can(model.PermissionContentWrite),
			handlers.Content.DeleteNews,
		)
		adminAPI.GET("/hero-images",
			can(model.PermissionContentWrite),
			handlers.Content.ListAllHeroImages,
		)
		adminAPI.POST("/hero-images",
			can(model.PermissionContentWrite),
			handlers.Content.CreateHeroImage,
		)
		adminAPI.PUT("/hero-images/:id",
			can(model.PermissionContentWrite),
			handlers.Content.UpdateHeroImage,
		)
		adminAPI.DELETE("/hero-images/:id",
			can(model.PermissionContentWrite),
			handlers.Content.DeleteHeroImage,
		)

		// Staff accounts
		adminAPI.GET("/users",
			can(model.PermissionAdminsRead),
			handlers.AdminUser.GetAdmins,
		)
		adminAPI.POST("/users",
			can(model.PermissionAdminsWrite),
			handlers.AdminUser.CreateAdmin,
		)
		adminAPI.PUT("/users/:id",
			can(model.PermissionAdminsWrite),
			handlers.AdminUser.UpdateAdmin,
		)
		adminAPI.DELETE("/users/:id",
			can(model.PermissionAdminsWrite),
			handlers.AdminUser.DeleteAdmin,
		)
	}

	// ─── 5. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1", adminAuth...)
	{
		ws.GET("/admin/registrations/stream",
			can(model.PermissionRegistrationsRead),
			handlers.LiveFeed.RegistrationStream,
		)
	}

	return router
}
