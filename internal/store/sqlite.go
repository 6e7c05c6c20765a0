package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/hyperengineering/shortlens/internal/types"
)

// Compile-time interface check
var _ JobStore = (*SQLiteStore)(nil)

// SQLiteStore is the SQLite-backed analysis job store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the job database, applies pragmas,
// and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateJob persists a new pending job with a fresh ULID.
func (s *SQLiteStore) CreateJob(ctx context.Context, videoURL, fileURI string) (*types.AnalysisJob, error) {
	now := time.Now().UTC()
	job := &types.AnalysisJob{
		ID:        ulid.Make().String(),
		VideoURL:  videoURL,
		FileURI:   fileURI,
		Status:    types.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_jobs (id, video_url, file_uri, status, current_step, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, '', '', ?, ?)
	`, job.ID, job.VideoURL, job.FileURI, job.Status, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

const jobColumns = `id, video_url, file_uri, status, current_step,
	classification_result, lint_result, storyboard_result, error_message,
	created_at, updated_at`

// GetJob returns the job with the given id or ErrNotFound.
func (s *SQLiteStore) GetJob(ctx context.Context, id string) (*types.AnalysisJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM analysis_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return job, err
}

// ListJobs returns the most recent jobs, newest first.
func (s *SQLiteStore) ListJobs(ctx context.Context, limit int) ([]types.AnalysisJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM analysis_jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.AnalysisJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// ClaimPending atomically transitions the oldest pending job to
// classifying. The conditional UPDATE guards against a concurrent
// claimer taking the same row.
func (s *SQLiteStore) ClaimPending(ctx context.Context) (*types.AnalysisJob, error) {
	for {
		var id string
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM analysis_jobs WHERE status = ? ORDER BY created_at LIMIT 1`,
			types.StatusPending).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoPendingJobs
		}
		if err != nil {
			return nil, fmt.Errorf("find pending job: %w", err)
		}

		res, err := s.db.ExecContext(ctx,
			`UPDATE analysis_jobs SET status = ?, current_step = 'claimed', updated_at = ? WHERE id = ? AND status = ?`,
			types.StatusClassifying, time.Now().UTC().Format(time.RFC3339), id, types.StatusPending)
		if err != nil {
			return nil, fmt.Errorf("claim job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 1 {
			return s.GetJob(ctx, id)
		}
		// Lost the race for this row; try the next pending job.
	}
}

// SetStage updates a job's status and current step together.
func (s *SQLiteStore) SetStage(ctx context.Context, id string, status types.JobStatus, step string) error {
	return s.update(ctx, id,
		`UPDATE analysis_jobs SET status = ?, current_step = ?, updated_at = ? WHERE id = ?`,
		status, step, now(), id)
}

// SaveClassification writes the classification stage result.
func (s *SQLiteStore) SaveClassification(ctx context.Context, id string, r *types.ClassificationResult) error {
	blob, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal classification result: %w", err)
	}
	return s.update(ctx, id,
		`UPDATE analysis_jobs SET classification_result = ?, updated_at = ? WHERE id = ?`,
		string(blob), now(), id)
}

// SaveLintResult writes the lint stage result.
func (s *SQLiteStore) SaveLintResult(ctx context.Context, id string, r *types.LintResult) error {
	blob, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal lint result: %w", err)
	}
	return s.update(ctx, id,
		`UPDATE analysis_jobs SET lint_result = ?, updated_at = ? WHERE id = ?`,
		string(blob), now(), id)
}

// SaveStoryboard writes the storyboard stage result.
func (s *SQLiteStore) SaveStoryboard(ctx context.Context, id string, r *types.StoryboardResult) error {
	blob, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal storyboard result: %w", err)
	}
	return s.update(ctx, id,
		`UPDATE analysis_jobs SET storyboard_result = ?, updated_at = ? WHERE id = ?`,
		string(blob), now(), id)
}

// MarkCompleted transitions a job to the completed terminal state.
func (s *SQLiteStore) MarkCompleted(ctx context.Context, id string) error {
	return s.update(ctx, id,
		`UPDATE analysis_jobs SET status = ?, current_step = '', updated_at = ? WHERE id = ?`,
		types.StatusCompleted, now(), id)
}

// MarkFailed transitions a job to the failed terminal state. Partial
// stage results already written to the row are kept.
func (s *SQLiteStore) MarkFailed(ctx context.Context, id, errorMessage string) error {
	return s.update(ctx, id,
		`UPDATE analysis_jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		types.StatusFailed, errorMessage, now(), id)
}

// FailStale marks jobs stuck in a non-terminal state beyond the
// threshold as failed.
func (s *SQLiteStore) FailStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `
		UPDATE analysis_jobs
		SET status = ?, error_message = 'Job timed out: no progress recorded', updated_at = ?
		WHERE status NOT IN (?, ?) AND updated_at < ?`,
		types.StatusFailed, now(), types.StatusCompleted, types.StatusFailed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("fail stale jobs: %w", err)
	}
	return res.RowsAffected()
}

// PruneTerminal deletes terminal jobs older than the retention window.
func (s *SQLiteStore) PruneTerminal(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM analysis_jobs WHERE status IN (?, ?) AND updated_at < ?`,
		types.StatusCompleted, types.StatusFailed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune terminal jobs: %w", err)
	}
	return res.RowsAffected()
}

// update runs an UPDATE that must touch exactly the job with the given
// id, translating a zero-row result to ErrNotFound.
func (s *SQLiteStore) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// scanJob scans a row into an AnalysisJob, unmarshalling the stage
// result blobs when present.
func scanJob(scanner interface{ Scan(...any) error }) (*types.AnalysisJob, error) {
	var job types.AnalysisJob
	var classification, lintResult, storyboard sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(
		&job.ID,
		&job.VideoURL,
		&job.FileURI,
		&job.Status,
		&job.CurrentStep,
		&classification,
		&lintResult,
		&storyboard,
		&job.ErrorMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if classification.Valid && classification.String != "" {
		job.Classification = &types.ClassificationResult{}
		if err := json.Unmarshal([]byte(classification.String), job.Classification); err != nil {
			return nil, fmt.Errorf("parse classification result: %w", err)
		}
	}
	if lintResult.Valid && lintResult.String != "" {
		job.LintResult = &types.LintResult{}
		if err := json.Unmarshal([]byte(lintResult.String), job.LintResult); err != nil {
			return nil, fmt.Errorf("parse lint result: %w", err)
		}
	}
	if storyboard.Valid && storyboard.String != "" {
		job.Storyboard = &types.StoryboardResult{}
		if err := json.Unmarshal([]byte(storyboard.String), job.Storyboard); err != nil {
			return nil, fmt.Errorf("parse storyboard result: %w", err)
		}
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		job.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		job.UpdatedAt = t
	}
	return &job, nil
}
