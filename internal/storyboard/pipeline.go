// Package storyboard sequences the analysis pipeline for one job:
// classify → lint → extract signals → score → narrate → reconcile.
// Stages run strictly sequentially; each stage's prompt depends on the
// previous stage's output. Jobs for different videos are independent
// and may run concurrently.
package storyboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hyperengineering/shortlens/internal/classify"
	"github.com/hyperengineering/shortlens/internal/export"
	"github.com/hyperengineering/shortlens/internal/lint"
	"github.com/hyperengineering/shortlens/internal/oracle"
	"github.com/hyperengineering/shortlens/internal/scoring"
	"github.com/hyperengineering/shortlens/internal/signal"
	"github.com/hyperengineering/shortlens/internal/store"
	"github.com/hyperengineering/shortlens/internal/types"
	"github.com/hyperengineering/shortlens/internal/youtube"
)

// extractionInput carries the signal extraction output into the
// narrative prompt.
type extractionInput struct {
	Format         types.VideoFormat
	Transcript     string
	BeatTimestamps []float64
}

// Pipeline drives an analysis job through all stages, persisting
// partial results as each stage completes. A failure at any stage
// marks the job failed with a stage-prefixed message and re-raises;
// already-written stage results are not rolled back.
type Pipeline struct {
	store    store.JobStore
	oracle   oracle.Oracle
	linter   *lint.Engine
	metadata youtube.MetadataFetcher
	exporter export.Uploader
}

// NewPipeline wires the pipeline. metadata may be nil (no enrichment);
// exporter may be nil (no report export).
func NewPipeline(s store.JobStore, o oracle.Oracle, metadata youtube.MetadataFetcher, exporter export.Uploader) *Pipeline {
	if exporter == nil {
		exporter = &export.NoopUploader{}
	}
	return &Pipeline{
		store:    s,
		oracle:   o,
		linter:   lint.NewEngine(o),
		metadata: metadata,
		exporter: exporter,
	}
}

// Run executes the full pipeline for the job. The returned error is
// also recorded on the job row, so callers driving the pipeline
// synchronously observe the same failure the job store does.
func (p *Pipeline) Run(ctx context.Context, jobID string) error {
	if p.oracle == nil {
		return p.fail(ctx, jobID, "Pipeline setup failed: %w", oracle.ErrUnsupported)
	}

	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}

	source := job.Source()
	if source == "" {
		return p.fail(ctx, jobID, "Pipeline setup failed: %w", fmt.Errorf("missing video source"))
	}

	// Stage 1: classification.
	if err := p.store.SetStage(ctx, jobID, types.StatusClassifying, "classify"); err != nil {
		return p.fail(ctx, jobID, "Classification failed: %w", err)
	}
	cls, err := classify.Classify(ctx, p.oracle, source)
	if err != nil {
		return p.fail(ctx, jobID, "Classification failed: %w", err)
	}
	if err := p.store.SaveClassification(ctx, jobID, cls); err != nil {
		return p.fail(ctx, jobID, "Classification failed: %w", err)
	}

	// Stage 2: lint.
	if err := p.store.SetStage(ctx, jobID, types.StatusLinting, "lint"); err != nil {
		return p.fail(ctx, jobID, "Lint failed: %w", err)
	}
	lintResult, err := p.linter.Run(ctx, source, cls.Format)
	if err != nil {
		return p.fail(ctx, jobID, "Lint failed: %w", err)
	}
	if err := p.store.SaveLintResult(ctx, jobID, lintResult); err != nil {
		return p.fail(ctx, jobID, "Lint failed: %w", err)
	}

	// Stage 3: storyboard (signals → score → narrate → reconcile).
	if err := p.store.SetStage(ctx, jobID, types.StatusStoryboarding, "signals"); err != nil {
		return p.fail(ctx, jobID, "Storyboard generation failed: %w", err)
	}
	result, err := p.buildStoryboard(ctx, jobID, job, lintResult, cls)
	if err != nil {
		return p.fail(ctx, jobID, "Storyboard generation failed: %w", err)
	}
	if err := p.store.SaveStoryboard(ctx, jobID, result); err != nil {
		return p.fail(ctx, jobID, "Storyboard generation failed: %w", err)
	}
	if err := p.store.MarkCompleted(ctx, jobID); err != nil {
		return p.fail(ctx, jobID, "Storyboard generation failed: %w", err)
	}

	p.exportReport(ctx, jobID, result)
	return nil
}

// buildStoryboard runs signal extraction, deterministic scoring, the
// narrative oracle call, and reconciliation.
func (p *Pipeline) buildStoryboard(ctx context.Context, jobID string, job *types.AnalysisJob, lintResult *types.LintResult, cls *types.ClassificationResult) (*types.StoryboardResult, error) {
	source := job.Source()

	content, err := p.oracle.AnalyzeVideo(ctx, source, signal.ExtractionPrompt, oracle.Options{
		Temperature: 0.1,
		MaxTokens:   8192,
	})
	if err != nil {
		return nil, fmt.Errorf("signal extraction: %w", err)
	}
	ext, err := signal.ParseResponse(content)
	if err != nil {
		return nil, err
	}

	score := scoring.Calculate(ext.Signals, ext.Format)

	if err := p.store.SetStage(ctx, jobID, types.StatusStoryboarding, "narrate"); err != nil {
		return nil, err
	}

	prompt := buildNarrativePrompt(extractionInput{
		Format:         ext.Format,
		Transcript:     ext.Transcript,
		BeatTimestamps: ext.BeatTimestamps,
	}, lintResult, score)

	narrative, err := p.oracle.AnalyzeVideo(ctx, source, prompt, oracle.Options{
		Temperature: 0.7,
		MaxTokens:   8192,
	})
	if err != nil {
		return nil, fmt.Errorf("narrative call: %w", err)
	}
	sb, err := ParseResponse(narrative)
	if err != nil {
		return nil, err
	}

	// The oracle's numbers are discarded; only its prose and beat
	// segmentation survive.
	applyDeterministicScores(sb, score)
	summary := Reconcile(sb, score)

	result := &types.StoryboardResult{
		URL:            job.VideoURL,
		IsUploadedFile: job.VideoURL == "",
		Classification: *cls,
		LintSummary:    summary,
		Storyboard:     *sb,

		Format:             ext.Format,
		Signals:            ext.Signals,
		ScoreBreakdown:     score.Breakdown,
		DeterministicScore: score.TotalScore,
	}

	if p.metadata != nil && job.VideoURL != "" {
		meta, err := p.metadata.FetchMetadata(ctx, job.VideoURL)
		if err != nil {
			// Enrichment is optional; a metadata failure never fails
			// the job.
			slog.Warn("metadata enrichment failed", "job_id", jobID, "error", err)
		} else {
			result.Video = meta
		}
	}

	return result, nil
}

// fail records the stage-prefixed failure on the job row and returns
// the same error so synchronous callers observe it too.
func (p *Pipeline) fail(ctx context.Context, jobID, format string, cause error) error {
	err := fmt.Errorf(format, cause)
	if markErr := p.store.MarkFailed(ctx, jobID, err.Error()); markErr != nil {
		slog.Error("failed to record job failure", "job_id", jobID, "error", markErr)
	}
	return err
}

// exportReport uploads the completed report when export is configured.
// Export failures are logged but never affect the job outcome.
func (p *Pipeline) exportReport(ctx context.Context, jobID string, result *types.StoryboardResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		slog.Error("marshal report for export", "job_id", jobID, "error", err)
		return
	}
	if err := p.exporter.UploadReport(ctx, jobID, payload); err != nil {
		slog.Warn("report export failed", "job_id", jobID, "error", err)
	}
}
