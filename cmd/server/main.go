package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stemsi/wma-backend/internal/config"
	"github.com/stemsi/wma-backend/internal/database"
	"github.com/stemsi/wma-backend/internal/handler"
	"github.com/stemsi/wma-backend/internal/logger"
	"github.com/stemsi/wma-backend/internal/middleware"
	"github.com/stemsi/wma-backend/internal/repository"
	"github.com/stemsi/wma-backend/internal/router"
	"github.com/stemsi/wma-backend/internal/service"
	"github.com/stemsi/wma-backend/internal/validator"
	"github.com/stemsi/wma-backend/internal/worker"
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
		Msg("Starting WMA Backend")

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

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	yearRepo := repository.NewAcademicYearRepository(pool)
	unitRepo := repository.NewUnitRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	gpaRepo := repository.NewGPARepository(pool)
	notifRepo := repository.NewNotificationRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	gradingService := service.NewGradingService(cfg, rdb, resultRepo, settingRepo, notifRepo, gpaRepo, log)
	studentService := service.NewStudentService(studentRepo, authService, gradingService, log)
	adminService := service.NewAdminService(adminRepo, roleRepo)
	academicYearService := service.NewAcademicYearService(yearRepo)
	unitService := service.NewUnitService(unitRepo, yearRepo, gradingService, log)
	resultService := service.NewResultService(resultRepo, unitRepo, gradingService, log)
	notificationService := service.NewNotificationService(notifRepo)
	settingService := service.NewSettingService(settingRepo, studentRepo, gradingService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth: handler.NewAuthHandler(authService, studentService, adminService, log),
		StudentPortal: handler.NewStudentPortalHandler(
			gradingService, resultService, unitService, academicYearService, notificationService,
		),
		StudentMgmt:  handler.NewStudentManagementHandler(studentService, authService, gradingService),
		Admin:        handler.NewAdminHandler(adminService),
		AcademicYear: handler.NewAcademicYearHandler(academicYearService),
		Unit:         handler.NewUnitHandler(unitService),
		Result:       handler.NewResultHandler(resultService),
		Setting:      handler.NewSettingHandler(settingService),
		WS:           handler.NewWSHandler(rdb, gradingService, log, cfg.AllowedOrigins),
		System:       handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	recalcWorker := worker.NewRecalcWorker(rdb, gradingService, notificationService, gpaRepo, log)
	scheduler := worker.NewScheduler(cfg.RecalcCron, studentService, gradingService, log)

	workers.Add(2)
	go func() {
		defer workers.Done()
		recalcWorker.Start(workerCtx)
	}()
	go func() {
		defer workers.Done()
		if err := scheduler.Start(workerCtx); err != nil {
			log.Error().Err(err).Msg("Scheduler not started")
		}
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	authLimiter, err := middleware.NewAuthLimiter(cfg.RateLimitStore, rdb, cfg.AuthRateLimit, time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid rate limiter configuration")
	}
	if mem, ok := authLimiter.(*middleware.MemoryLimiter); ok {
		workers.Add(1)
		go func() {
			defer workers.Done()
			mem.Run(workerCtx)
		}()
	}
	log.Info().Str("store", cfg.RateLimitStore).Int("per_minute", cfg.AuthRateLimit).Msg("Auth rate limiter ready")
	r := router.SetupRouter(authService, authLimiter, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	// 2. Stop background workers and wait for the last batch to flush.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog and decimal global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	decimal.MarshalJSONWithoutQuotes = true
}
