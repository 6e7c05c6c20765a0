package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recordingJanitor implements JobJanitor and records sweep calls.
type recordingJanitor struct {
	mu           sync.Mutex
	failStale    int
	prune        int
	staleArg     time.Duration
	retentionArg time.Duration
	failErr      error
	pruneErr     error
}

func (j *recordingJanitor) FailStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.failStale++
	j.staleArg = olderThan
	return 2, j.failErr
}

func (j *recordingJanitor) PruneTerminal(ctx context.Context, olderThan time.Duration) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.prune++
	j.retentionArg = olderThan
	return 1, j.pruneErr
}

func TestSweepCallsBothOperations(t *testing.T) {
	janitor := &recordingJanitor{}
	w := NewCleanupWorker(janitor, "0 0 3 * * *", 30*time.Minute, 720*time.Hour)

	w.Sweep(context.Background())

	if janitor.failStale != 1 || janitor.prune != 1 {
		t.Errorf("calls = %d/%d, want 1/1", janitor.failStale, janitor.prune)
	}
	if janitor.staleArg != 30*time.Minute {
		t.Errorf("stale threshold = %v", janitor.staleArg)
	}
	if janitor.retentionArg != 720*time.Hour {
		t.Errorf("retention = %v", janitor.retentionArg)
	}
}

// A failed stale sweep must not prevent pruning.
func TestSweepContinuesPastErrors(t *testing.T) {
	janitor := &recordingJanitor{failErr: errors.New("db locked")}
	w := NewCleanupWorker(janitor, "0 0 3 * * *", time.Minute, time.Hour)

	w.Sweep(context.Background())

	if janitor.prune != 1 {
		t.Error("prune skipped after FailStale error")
	}
}

func TestRunInvalidScheduleReturns(t *testing.T) {
	w := NewCleanupWorker(&recordingJanitor{}, "not a schedule", time.Minute, time.Hour)

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return on invalid schedule")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	// Every-second schedule so the test exercises a real tick if timing
	// allows, without depending on one.
	w := NewCleanupWorker(&recordingJanitor{}, "* * * * * *", time.Minute, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup worker did not stop on context cancellation")
	}
}
