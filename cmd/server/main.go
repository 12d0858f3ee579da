package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/database"
	"github.com/nbwschool/admission-backend/internal/handler"
	"github.com/nbwschool/admission-backend/internal/logger"
	"github.com/nbwschool/admission-backend/internal/media"
	"github.com/nbwschool/admission-backend/internal/middleware"
	"github.com/nbwschool/admission-backend/internal/repository"
	"github.com/nbwschool/admission-backend/internal/router"
	"github.com/nbwschool/admission-backend/internal/service"
	"github.com/nbwschool/admission-backend/internal/storage"
	"github.com/nbwschool/admission-backend/internal/validator"
	"github.com/nbwschool/admission-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("storage", cfg.StorageType).
		Msg("Starting Admission Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Object Storage ────────────────────────────────────────────────
	store, err := newStorage(ctx, cfg, logger.Component(log, "storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer store.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	registrationRepo := repository.NewRegistrationRepository(pool)
	admissionRepo := repository.NewAdmissionRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	newsRepo := repository.NewNewsRepository(pool)
	heroRepo := repository.NewHeroImageRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	adminService := service.NewAdminService(adminRepo, authService)
	admissionService := service.NewAdmissionService(admissionRepo, cfg.AdmissionCacheTTL, log)
	captchaService := service.NewCaptchaService(rdb, cfg.CaptchaTTL)
	documentService := service.NewDocumentService(
		store,
		service.NewBlobQueue(rdb, log),
		service.NewUploadClaims(rdb, cfg.WizardTTL),
		cfg.MaxUploadBytes,
		media.Options{Quality: cfg.WebPQuality, MaxDim: cfg.WebPMaxDim},
		log,
	)
	registrationService := service.NewRegistrationService(registrationRepo, documentService, service.NewEventPublisher(rdb, log), log)
	submissionService := service.NewSubmissionService(admissionService, captchaService, documentService, registrationService, cfg.MaxUploadBytes, log)
	wizardService := service.NewWizardService(rdb, cfg.WizardTTL, admissionService, captchaService, submissionService, log)
	exportService := service.NewExportService(registrationRepo)
	newsService := service.NewNewsService(newsRepo, documentService)
	heroService := service.NewHeroImageService(heroRepo, documentService)
	dashboardService := service.NewDashboardService(dashboardRepo, admissionService)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:              handler.NewAuthHandler(authService, adminService, log),
		Registration:      handler.NewRegistrationHandler(registrationService, submissionService, log),
		RegistrationAdmin: handler.NewRegistrationAdminHandler(registrationService, exportService, log),
		Wizard:            handler.NewWizardHandler(wizardService, log),
		Admission:         handler.NewAdmissionHandler(admissionService, captchaService, log),
		Address:           handler.NewAddressHandler(),
		Media:             handler.NewMediaHandler(documentService, log),
		Content:           handler.NewContentHandler(newsService, heroService, documentService, log),
		Dashboard:         handler.NewDashboardHandler(dashboardService, log),
		AdminUser:         handler.NewAdminUserHandler(adminService, log),
		LiveFeed:          handler.NewLiveFeedHandler(rdb, log, cfg.AllowedOrigins),
		System:            handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	cleanupWorker := worker.NewBlobCleanupWorker(rdb, store, log)
	go func() {
		defer close(workerDone)
		cleanupWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	var limiter *middleware.RateLimiter
	if cfg.PublicRateLimitRPM > 0 {
		limiter = middleware.NewRateLimiter(ctx, cfg.PublicRateLimitRPM, time.Minute)
	}
	r := router.SetupRouter(authService, handlers, cfg, router.Options{
		PublicLimiter: limiter,
		Log:           log,
	})

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the cleanup worker and wait for it to drain the queue.
	workerCancel()
	<-workerDone

	log.Info().Msg("Shutdown complete")
}

func newStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Client, error) {
	switch cfg.StorageType {
	case config.StorageGCS:
		client, err := storage.NewGCSClient(ctx, cfg.GCSBucket, cfg.GCSProjectID, cfg.GCSCredentials)
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.GCSBucket).Msg("Using GCS storage")
		return client, nil
	default:
		client, err := storage.NewLocalClient(cfg.StorageLocalPath, cfg.StoragePublicURL)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.StorageLocalPath).Str("url", cfg.StoragePublicURL).Msg("Using local storage")
		return client, nil
	}
}

