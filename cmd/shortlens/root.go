package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/shortlens/internal/api"
	"github.com/hyperengineering/shortlens/internal/config"
	"github.com/hyperengineering/shortlens/internal/export"
	"github.com/hyperengineering/shortlens/internal/oracle"
	"github.com/hyperengineering/shortlens/internal/store"
	"github.com/hyperengineering/shortlens/internal/storyboard"
	"github.com/hyperengineering/shortlens/internal/worker"
	"github.com/hyperengineering/shortlens/internal/youtube"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "shortlens",
	Short: "ShortLens - Shorts Analysis Service",
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded")

	logger := slog.New(newLogHandler(cfg.Log))
	slog.SetDefault(logger)
	slog.Info("logger initialized", "level", cfg.Log.Level)

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	var gemini oracle.Oracle
	if cfg.Oracle.APIKey != "" {
		g, err := oracle.NewGemini(ctx, cfg.Oracle.APIKey, cfg.Oracle.Model)
		if err != nil {
			return fmt.Errorf("initializing oracle: %w", err)
		}
		gemini = g
		slog.Info("oracle initialized", "model", cfg.Oracle.Model)
	} else {
		slog.Warn("oracle disabled: GEMINI_API_KEY not set, jobs will fail")
	}

	var metadata youtube.MetadataFetcher
	if cfg.YouTube.APIKey != "" {
		yt, err := youtube.NewClient(ctx, cfg.YouTube.APIKey)
		if err != nil {
			return fmt.Errorf("initializing youtube client: %w", err)
		}
		metadata = yt
		slog.Info("youtube metadata enrichment enabled")
	}

	exporter, err := export.NewUploader(cfg.Export)
	if err != nil {
		return fmt.Errorf("initializing report exporter: %w", err)
	}
	if cfg.Export.Bucket != "" {
		slog.Info("report export enabled", "bucket", cfg.Export.Bucket)
	}

	pipeline := storyboard.NewPipeline(db, gemini, metadata, exporter)

	handler := api.NewHandler(db, cfg.Auth.APIKey, Version, cfg.Oracle.Model)
	router := api.NewRouter(handler)
	slog.Info("router initialized")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	var wg sync.WaitGroup
	coordinator := worker.NewJobCoordinator(db, pipeline,
		time.Duration(cfg.Worker.PollInterval), cfg.Worker.MaxConcurrent)
	startWorker(ctx, &wg, "job-coordinator", coordinator.Run)

	cleanup := worker.NewCleanupWorker(db, cfg.Worker.CleanupSchedule,
		time.Duration(cfg.Worker.StaleAfter), time.Duration(cfg.Worker.JobRetention))
	startWorker(ctx, &wg, "cleanup", cleanup.Run)

	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error on graceful Shutdown().
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// Drain in-flight requests first, then wait for workers, then close
	// the store underneath them.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	wg.Wait()

	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func newLogHandler(cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn(ctx)
		slog.Debug("worker goroutine exited", "worker", name)
	}()
}
