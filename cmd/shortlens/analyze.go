package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/shortlens/internal/config"
	"github.com/hyperengineering/shortlens/internal/export"
	"github.com/hyperengineering/shortlens/internal/oracle"
	"github.com/hyperengineering/shortlens/internal/store"
	"github.com/hyperengineering/shortlens/internal/storyboard"
	"github.com/hyperengineering/shortlens/internal/validation"
	"github.com/hyperengineering/shortlens/internal/youtube"
)

var analyzeFileURI string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [video-url]",
	Short: "Analyze a single video without running the server",
	Long: "Runs the full analysis pipeline synchronously for one video and " +
		"prints the resulting job as JSON. Pass a YouTube Shorts URL as the " +
		"argument, or --file-uri for an uploaded file reference.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFileURI, "file-uri", "",
		"Uploaded file reference instead of a video URL")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_ = godotenv.Load()

	var videoURL string
	if len(args) == 1 {
		videoURL = args[0]
	}
	if errs := validation.ValidateSource(videoURL, analyzeFileURI); len(errs) > 0 {
		return fmt.Errorf("invalid source: %s", errs[0].Message)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// One-shot runs keep logs on stderr so stdout stays parseable JSON.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	gemini, err := oracle.NewGemini(ctx, cfg.Oracle.APIKey, cfg.Oracle.Model)
	if err != nil {
		return fmt.Errorf("initializing oracle: %w", err)
	}

	var metadata youtube.MetadataFetcher
	if cfg.YouTube.APIKey != "" {
		yt, err := youtube.NewClient(ctx, cfg.YouTube.APIKey)
		if err != nil {
			return fmt.Errorf("initializing youtube client: %w", err)
		}
		metadata = yt
	}

	exporter, err := export.NewUploader(cfg.Export)
	if err != nil {
		return fmt.Errorf("initializing report exporter: %w", err)
	}

	job, err := db.CreateJob(ctx, videoURL, analyzeFileURI)
	if err != nil {
		return fmt.Errorf("creating job: %w", err)
	}

	pipeline := storyboard.NewPipeline(db, gemini, metadata, exporter)
	if err := pipeline.Run(ctx, job.ID); err != nil {
		slog.Error("analysis failed", "job_id", job.ID, "error", err)
	}

	// Re-read so the printed job reflects whatever the pipeline recorded,
	// including a failure state.
	final, err := db.GetJob(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("loading job result: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(final)
}
