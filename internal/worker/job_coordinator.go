package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hyperengineering/shortlens/internal/store"
	"github.com/hyperengineering/shortlens/internal/types"
)

// PipelineRunner runs the full analysis pipeline for one claimed job.
// This interface allows testing with mock implementations.
type PipelineRunner interface {
	Run(ctx context.Context, jobID string) error
}

// JobClaimer is the slice of the job store the coordinator needs.
type JobClaimer interface {
	ClaimPending(ctx context.Context) (*types.AnalysisJob, error)
}

// JobCoordinator polls the store for pending jobs and runs the pipeline
// for each. Stages within a job are strictly sequential; distinct jobs
// run concurrently up to maxConcurrent.
type JobCoordinator struct {
	claimer       JobClaimer
	runner        PipelineRunner
	interval      time.Duration
	maxConcurrent int
}

// NewJobCoordinator creates a coordinator that polls at the given
// interval and runs at most maxConcurrent jobs at once.
func NewJobCoordinator(claimer JobClaimer, runner PipelineRunner, interval time.Duration, maxConcurrent int) *JobCoordinator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &JobCoordinator{
		claimer:       claimer,
		runner:        runner,
		interval:      interval,
		maxConcurrent: maxConcurrent,
	}
}

// Run starts the coordinator loop. It returns after ctx is cancelled
// and all in-flight jobs have finished.
func (c *JobCoordinator) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "job-coordinator",
		"action", "worker_started",
	)

	sem := make(chan struct{}, c.maxConcurrent)
	var wg sync.WaitGroup

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Drain any backlog immediately on start.
	c.drainPending(ctx, sem, &wg)

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "job-coordinator",
				"action", "worker_stopped",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			c.drainPending(ctx, sem, &wg)
		}
	}
}

// drainPending claims and dispatches pending jobs until the queue is
// empty or all worker slots are busy.
func (c *JobCoordinator) drainPending(ctx context.Context, sem chan struct{}, wg *sync.WaitGroup) {
	for {
		select {
		case <-ctx.Done():
			return
		case sem <- struct{}{}:
		default:
			// All slots busy; the next tick picks the backlog up.
			return
		}

		job, err := c.claimer.ClaimPending(ctx)
		if err != nil {
			<-sem
			if errors.Is(err, store.ErrNoPendingJobs) || ctx.Err() != nil {
				return
			}
			slog.Error("failed to claim pending job",
				"component", "worker",
				"worker", "job-coordinator",
				"action", "claim_failed",
				"error", err,
			)
			return
		}

		wg.Add(1)
		go func(jobID string) {
			defer wg.Done()
			defer func() { <-sem }()
			c.runJob(ctx, jobID)
		}(job.ID)
	}
}

// runJob runs the pipeline for a single claimed job. Pipeline failures
// are already recorded on the job row; here they are only logged.
func (c *JobCoordinator) runJob(ctx context.Context, jobID string) {
	start := time.Now()
	slog.Info("analysis started",
		"component", "worker",
		"worker", "job-coordinator",
		"action", "job_started",
		"job_id", jobID,
	)

	if err := c.runner.Run(ctx, jobID); err != nil {
		slog.Warn("analysis failed",
			"component", "worker",
			"worker", "job-coordinator",
			"action", "job_failed",
			"job_id", jobID,
			"error", err,
		)
		return
	}

	slog.Info("analysis completed",
		"component", "worker",
		"worker", "job-coordinator",
		"action", "job_completed",
		"job_id", jobID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
