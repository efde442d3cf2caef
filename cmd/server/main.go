package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/course-feed/internal/config"
	"github.com/stemsi/course-feed/internal/database"
	"github.com/stemsi/course-feed/internal/feed"
	"github.com/stemsi/course-feed/internal/handler"
	"github.com/stemsi/course-feed/internal/logger"
	"github.com/stemsi/course-feed/internal/model"
	"github.com/stemsi/course-feed/internal/repository"
	"github.com/stemsi/course-feed/internal/router"
	"github.com/stemsi/course-feed/internal/service"
	"github.com/stemsi/course-feed/internal/validator"
	"github.com/stemsi/course-feed/internal/worker"
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
		Str("feed", cfg.FeedURL).
		Msg("Starting course feed service")

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
	snapshotRepo := repository.NewSnapshotRepository(pool)
	runRepo := repository.NewRunRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	source := feed.NewHTTPSource(cfg.FeedURL, cfg.FeedTimeout, log)
	authService := service.NewAuthService(cfg)
	scheduleService := service.NewScheduleService(source, snapshotRepo, runRepo, rdb, cfg, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	checks := map[string]handler.CheckFunc{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
	handlers := &router.Handlers{
		Schedule: handler.NewScheduleHandler(scheduleService),
		Admin:    handler.NewAdminHandler(scheduleService, log),
		WS:       handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
		System:   handler.NewSystemHandler(scheduleService, rdb, checks, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	refreshWorker := worker.NewRefreshWorker(scheduleService, rdb, cfg.RefreshInterval, log)
	persistWorker := worker.NewPersistWorker(snapshotRepo, rdb, log)

	workers.Add(2)
	go func() {
		defer workers.Done()
		refreshWorker.Start(workerCtx)
	}()
	go func() {
		defer workers.Done()
		persistWorker.Start(workerCtx)
	}()

	// ─── Prewarm Schedule ─────────────────────────────────────────────
	// Serve the last known snapshot right away; ingest from the feed only
	// when neither Redis nor PostgreSQL has one.
	switch err := scheduleService.Warm(ctx); {
	case err == nil:
	case errors.Is(err, service.ErrScheduleNotLoaded):
		log.Info().Msg("No stored schedule, ingesting feed in the background")
		go func() {
			if _, _, err := scheduleService.Refresh(workerCtx, model.RunTriggerStartup); err != nil {
				log.Warn().Err(err).Msg("Startup refresh failed")
			}
		}()
	default:
		log.Warn().Err(err).Msg("Schedule prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg, log)

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

	// 2. Stop background workers and wait for the persist queue to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
