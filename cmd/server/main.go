// Package main is the entrypoint for the genforge API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"genforge/internal/api"
	"genforge/internal/api/handler"
	mw "genforge/internal/api/middleware"
	"genforge/internal/artifact"
	"genforge/internal/cache"
	"genforge/internal/config"
	"genforge/internal/job"
	"genforge/internal/ollama"
	"genforge/internal/pipeline"
	"genforge/internal/store"
	"genforge/internal/variation"
	"genforge/internal/video"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "worker_url", cfg.Worker.URL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create store
	pgStore := store.NewPostgresStore(pool)

	// 6. Pipeline plumbing: worker client, single-slot cache, runners
	builder := pipeline.NewWorkerClient(cfg.Worker.URL, cfg.Worker.Timeout)
	pipeCache := pipeline.NewCache()
	writer := artifact.NewWriter()

	imageRunner := job.NewImageRunner(builder, pipeCache, writer)
	upscaleRunner := job.NewUpscaleRunner(builder, pipeCache, writer)
	videoRunner := job.NewVideoRunner(builder, pipeCache, writer)
	segmentRunner := job.NewSegmentRunner(
		videoRunner,
		video.NewFrameExtractor(cfg.FFmpeg.FFmpegPath, cfg.FFmpeg.FFprobePath),
		video.NewConcatenator(cfg.FFmpeg.FFmpegPath),
	)

	// 7. Prompt variation engine over the ollama client
	variationEngine := variation.NewEngine(ollama.NewHTTPClient(cfg.Ollama.Timeout))

	// 8. Build router with dependencies
	auth := mw.NewAuth(cfg.Auth.APIKeyHash)
	rateLimit := mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMin)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler:   handler.NewHealthHandler(pgStore, redisCache),
		ImageHandler:    handler.NewImageHandler(imageRunner, pgStore),
		UpscaleHandler:  handler.NewUpscaleHandler(upscaleRunner, pgStore),
		VideoHandler:    handler.NewVideoHandler(videoRunner, pgStore),
		SegmentsHandler: handler.NewSegmentsHandler(segmentRunner, pgStore),
		VariationHandler: handler.NewVariationHandler(variationEngine, handler.VariationDefaults{
			URL:   cfg.Ollama.URL,
			Model: cfg.Ollama.Model,
		}, pgStore),
		JobsHandler: handler.NewJobsHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server. Generation jobs run for minutes, so the write
	// timeout is generous.
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Worker.Timeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
