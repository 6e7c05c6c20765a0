package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// JobJanitor is the slice of the job store the cleanup worker needs.
type JobJanitor interface {
	FailStale(ctx context.Context, olderThan time.Duration) (int64, error)
	PruneTerminal(ctx context.Context, olderThan time.Duration) (int64, error)
}

// CleanupWorker periodically fails stuck jobs and prunes old terminal
// ones on a cron schedule.
type CleanupWorker struct {
	janitor      JobJanitor
	schedule     string
	staleAfter   time.Duration
	jobRetention time.Duration
}

// NewCleanupWorker creates a cleanup worker. schedule uses the
// six-field cron format with seconds.
func NewCleanupWorker(janitor JobJanitor, schedule string, staleAfter, jobRetention time.Duration) *CleanupWorker {
	return &CleanupWorker{
		janitor:      janitor,
		schedule:     schedule,
		staleAfter:   staleAfter,
		jobRetention: jobRetention,
	}
}

// Run starts the cron scheduler and blocks until ctx is cancelled.
// Overlapping runs are skipped rather than queued.
func (w *CleanupWorker) Run(ctx context.Context) {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(w.schedule, func() { w.Sweep(ctx) })
	if err != nil {
		slog.Error("invalid cleanup schedule",
			"component", "worker",
			"worker", "cleanup",
			"schedule", w.schedule,
			"error", err,
		)
		return
	}

	slog.Info("worker started",
		"component", "worker",
		"worker", "cleanup",
		"action", "worker_started",
		"schedule", w.schedule,
	)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	slog.Info("worker stopped",
		"component", "worker",
		"worker", "cleanup",
		"action", "worker_stopped",
		"reason", "context_cancelled",
	)
}

// Sweep performs one cleanup pass.
func (w *CleanupWorker) Sweep(ctx context.Context) {
	failed, err := w.janitor.FailStale(ctx, w.staleAfter)
	if err != nil {
		slog.Error("stale job sweep failed",
			"component", "worker",
			"worker", "cleanup",
			"action", "fail_stale_failed",
			"error", err,
		)
	} else if failed > 0 {
		slog.Info("stale jobs failed",
			"component", "worker",
			"worker", "cleanup",
			"action", "stale_jobs_failed",
			"count", failed,
		)
	}

	pruned, err := w.janitor.PruneTerminal(ctx, w.jobRetention)
	if err != nil {
		slog.Error("job pruning failed",
			"component", "worker",
			"worker", "cleanup",
			"action", "prune_failed",
			"error", err,
		)
	} else if pruned > 0 {
		slog.Info("old jobs pruned",
			"component", "worker",
			"worker", "cleanup",
			"action", "jobs_pruned",
			"count", pruned,
		)
	}
}
