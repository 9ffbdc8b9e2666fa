package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/labelwise/labelwise-api/internal/domain"
)

// TaskStats aggregates per-project task counts and review-priority signals.
type TaskStats struct {
	CountsByStatus map[domain.TaskStatus]int
	AvgConfidence  *float64
}

// TaskStore defines the interface for task data persistence. It is the single
// owner of task records: every component reads and mutates tasks through it,
// never through raw SQL of its own.
//
// All single-task mutations are atomic at the row level and bump updated_at.
// Status-changing methods are compare-and-set on the expected current status,
// so two consumers racing on the same task under redelivery cannot interleave
// partial updates: the loser observes ErrStateConflict.
// Version: 1.0
type TaskStore interface {
	// Create saves a new task to the store and populates its ID.
	// It handles domain validation internally.
	Create(ctx context.Context, task *domain.Task) error

	// CreateBatch saves several tasks in one call, populating their IDs.
	// Intended for upload ingestion; callers wrap it in a transaction.
	CreateBatch(ctx context.Context, tasks []*domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// ListByStatus retrieves up to limit tasks in the given status for a
	// project, ordered by ascending confidence score with NULLs first so
	// low-confidence items surface ahead of unscored ones.
	ListByStatus(ctx context.Context, projectID int64, status domain.TaskStatus, limit int) ([]*domain.Task, error)

	// UpdateStatus moves a task from one status to another if and only if it
	// is currently in the expected status. Returns ErrTaskNotFound if the
	// task does not exist and ErrStateConflict if its status differs from
	// the expected one.
	UpdateStatus(ctx context.Context, id int64, from, to domain.TaskStatus) error

	// SetAutoLabels atomically writes the automated label payload and
	// confidence score and transitions the task from processing to
	// in_review. The write and the transition are one statement; a task no
	// longer in processing yields ErrStateConflict and remains untouched.
	SetAutoLabels(ctx context.Context, id int64, labels *domain.LabelResult, confidence float64) error

	// SetReview atomically records the final labels and annotator and
	// transitions the task from in_review to reviewed.
	SetReview(ctx context.Context, id int64, finalLabels *domain.LabelResult, annotatorID int64) error

	// RevertStaleProcessing moves tasks stuck in processing longer than
	// olderThan back to uploaded so a later batch can re-publish them.
	// Returns the number of tasks reverted.
	RevertStaleProcessing(ctx context.Context, olderThan time.Duration) (int64, error)

	// Stats returns per-status counts and the average confidence score for
	// a project's tasks.
	Stats(ctx context.Context, projectID int64) (*TaskStats, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore
}
