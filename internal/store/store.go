package store

import (
	"context"
	"errors"
	"time"

	"github.com/hyperengineering/shortlens/internal/types"
)

// ErrNotFound is returned when a job id does not exist.
var ErrNotFound = errors.New("job not found")

// ErrNoPendingJobs is returned by ClaimPending when the queue is empty.
var ErrNoPendingJobs = errors.New("no pending jobs")

// JobStore defines the interface contract for analysis job persistence.
// All writes are last-write-wins; no optimistic concurrency is modeled.
type JobStore interface {
	// CreateJob persists a new job in the pending state. Exactly one of
	// videoURL and fileURI must be non-empty; callers validate first.
	CreateJob(ctx context.Context, videoURL, fileURI string) (*types.AnalysisJob, error)

	GetJob(ctx context.Context, id string) (*types.AnalysisJob, error)
	ListJobs(ctx context.Context, limit int) ([]types.AnalysisJob, error)

	// ClaimPending atomically moves the oldest pending job into the
	// classifying state and returns it, or ErrNoPendingJobs.
	ClaimPending(ctx context.Context) (*types.AnalysisJob, error)

	// SetStage updates status and current_step together.
	SetStage(ctx context.Context, id string, status types.JobStatus, step string) error

	SaveClassification(ctx context.Context, id string, r *types.ClassificationResult) error
	SaveLintResult(ctx context.Context, id string, r *types.LintResult) error
	SaveStoryboard(ctx context.Context, id string, r *types.StoryboardResult) error

	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, errorMessage string) error

	// FailStale marks jobs stuck in a non-terminal state for longer
	// than the threshold as failed. Returns the number affected.
	FailStale(ctx context.Context, olderThan time.Duration) (int64, error)

	// PruneTerminal deletes terminal jobs older than the retention
	// window. Returns the number deleted.
	PruneTerminal(ctx context.Context, olderThan time.Duration) (int64, error)

	Close() error
}
