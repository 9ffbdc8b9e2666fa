package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/platform/logger"
	"github.com/labelwise/labelwise-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx returns a new store instance bound to the given transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// taskColumns is the select list shared by every task query.
const taskColumns = `id, project_id, text, metadata, auto_labels, confidence_score,
	final_labels, annotator_id, status, created_at, updated_at`

// Create implements store.TaskStore.Create
// It saves a new task to the database and populates its ID.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("project_id", task.ProjectID))
		return err
	}

	metadata, err := marshalNullable(task.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal task metadata: %w", err)
	}

	query := `
		INSERT INTO tasks (project_id, text, metadata, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err = s.db.QueryRowContext(
		ctx,
		query,
		task.ProjectID,
		task.Text,
		metadata,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.Int64("project_id", task.ProjectID))
		return MapError(err)
	}

	log.Debug("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("project_id", task.ProjectID))
	return nil
}

// CreateBatch implements store.TaskStore.CreateBatch
func (s *PostgresTaskStore) CreateBatch(ctx context.Context, tasks []*domain.Task) error {
	for _, task := range tasks {
		if err := s.Create(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, MapError(err)
	}

	return task, nil
}

// ListByStatus implements store.TaskStore.ListByStatus
// Tasks are ordered by ascending confidence with NULLs first so the least
// certain items are handed to annotators before unscored ones.
func (s *PostgresTaskStore) ListByStatus(
	ctx context.Context,
	projectID int64,
	status domain.TaskStatus,
	limit int,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE project_id = $1 AND status = $2
		ORDER BY confidence_score ASC NULLS FIRST, id ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, projectID, status, limit)
	if err != nil {
		log.Error("failed to list tasks by status",
			slog.String("error", err.Error()),
			slog.Int64("project_id", projectID),
			slog.String("status", string(status)))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return tasks, nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus
// The update is compare-and-set on the expected current status: a task found
// in any other state yields store.ErrStateConflict and is left untouched.
func (s *PostgresTaskStore) UpdateStatus(ctx context.Context, id int64, from, to domain.TaskStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsValidTaskStatus(to) {
		return domain.ErrInvalidTaskStatus
	}

	query := `
		UPDATE tasks
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := s.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.String("from", string(from)),
			slog.String("to", string(to)))
		return MapError(err)
	}

	return s.checkCASResult(ctx, result, id, from, "status update")
}

// SetAutoLabels implements store.TaskStore.SetAutoLabels
// Label payload, confidence score, and the processing → in_review transition
// are written in one statement so no partial update is ever visible.
func (s *PostgresTaskStore) SetAutoLabels(
	ctx context.Context,
	id int64,
	labels *domain.LabelResult,
	confidence float64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if labels == nil {
		return fmt.Errorf("%w: label payload cannot be nil", store.ErrInvalidEntity)
	}
	if confidence < 0 || confidence > 1 {
		return domain.ErrInvalidConfidence
	}

	payload, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("failed to marshal label payload: %w", err)
	}

	query := `
		UPDATE tasks
		SET auto_labels = $1, confidence_score = $2, status = $3, updated_at = $4
		WHERE id = $5 AND status = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		payload,
		confidence,
		domain.TaskStatusInReview,
		time.Now().UTC(),
		id,
		domain.TaskStatusProcessing,
	)
	if err != nil {
		log.Error("failed to set auto labels",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return MapError(err)
	}

	return s.checkCASResult(ctx, result, id, domain.TaskStatusProcessing, "auto-label write")
}

// SetReview implements store.TaskStore.SetReview
func (s *PostgresTaskStore) SetReview(
	ctx context.Context,
	id int64,
	finalLabels *domain.LabelResult,
	annotatorID int64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if finalLabels == nil {
		return fmt.Errorf("%w: final label payload cannot be nil", store.ErrInvalidEntity)
	}

	payload, err := json.Marshal(finalLabels)
	if err != nil {
		return fmt.Errorf("failed to marshal final label payload: %w", err)
	}

	query := `
		UPDATE tasks
		SET final_labels = $1, annotator_id = $2, status = $3, updated_at = $4
		WHERE id = $5 AND status = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		payload,
		annotatorID,
		domain.TaskStatusReviewed,
		time.Now().UTC(),
		id,
		domain.TaskStatusInReview,
	)
	if err != nil {
		log.Error("failed to set review",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.Int64("annotator_id", annotatorID))
		return MapError(err)
	}

	return s.checkCASResult(ctx, result, id, domain.TaskStatusInReview, "review write")
}

// RevertStaleProcessing implements store.TaskStore.RevertStaleProcessing
// It is the recovery sweep for tasks orphaned in processing by a consumer
// crash between the processing transition and the result write.
func (s *PostgresTaskStore) RevertStaleProcessing(ctx context.Context, olderThan time.Duration) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1, updated_at = $2
		WHERE status = $3 AND updated_at < $4
	`

	now := time.Now().UTC()
	result, err := s.db.ExecContext(
		ctx,
		query,
		domain.TaskStatusUploaded,
		now,
		domain.TaskStatusProcessing,
		now.Add(-olderThan),
	)
	if err != nil {
		log.Error("failed to revert stale processing tasks", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	reverted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if reverted > 0 {
		log.Info("reverted stale processing tasks",
			slog.Int64("count", reverted),
			slog.Duration("older_than", olderThan))
	}
	return reverted, nil
}

// Stats implements store.TaskStore.Stats
func (s *PostgresTaskStore) Stats(ctx context.Context, projectID int64) (*store.TaskStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	countQuery := `
		SELECT status, COUNT(*)
		FROM tasks
		WHERE project_id = $1
		GROUP BY status
	`

	rows, err := s.db.QueryContext(ctx, countQuery, projectID)
	if err != nil {
		log.Error("failed to query task stats",
			slog.String("error", err.Error()),
			slog.Int64("project_id", projectID))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	stats := &store.TaskStats{CountsByStatus: make(map[domain.TaskStatus]int)}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.CountsByStatus[domain.TaskStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	avgQuery := `
		SELECT AVG(confidence_score)
		FROM tasks
		WHERE project_id = $1 AND confidence_score IS NOT NULL
	`

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, avgQuery, projectID).Scan(&avg); err != nil {
		return nil, MapError(err)
	}
	if avg.Valid {
		stats.AvgConfidence = &avg.Float64
	}

	return stats, nil
}

// checkCASResult classifies a zero-row compare-and-set outcome: either the
// task does not exist (ErrTaskNotFound) or it exists in a different state
// (ErrStateConflict).
func (s *PostgresTaskStore) checkCASResult(
	ctx context.Context,
	result sql.Result,
	id int64,
	expected domain.TaskStatus,
	operation string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return err
	}

	if rowsAffected > 0 {
		return nil
	}

	var current string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM tasks WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("task not found during CAS check",
			slog.Int64("task_id", id),
			slog.String("operation", operation))
		return store.ErrTaskNotFound
	}
	if err != nil {
		return MapError(err)
	}

	log.Warn("task state conflict",
		slog.Int64("task_id", id),
		slog.String("operation", operation),
		slog.String("expected", string(expected)),
		slog.String("actual", current))
	return fmt.Errorf("%w: expected %s, found %s", store.ErrStateConflict, expected, current)
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row into a domain.Task, unpacking the JSON columns
// and nullable fields.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status string
	var metadata, autoLabels, finalLabels []byte
	var confidence sql.NullFloat64
	var annotatorID sql.NullInt64

	err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Text,
		&metadata,
		&autoLabels,
		&confidence,
		&finalLabels,
		&annotatorID,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &task.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task metadata: %w", err)
		}
	}
	if len(autoLabels) > 0 {
		task.AutoLabels = &domain.LabelResult{}
		if err := json.Unmarshal(autoLabels, task.AutoLabels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal auto labels: %w", err)
		}
	}
	if len(finalLabels) > 0 {
		task.FinalLabels = &domain.LabelResult{}
		if err := json.Unmarshal(finalLabels, task.FinalLabels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal final labels: %w", err)
		}
	}
	if confidence.Valid {
		task.ConfidenceScore = &confidence.Float64
	}
	if annotatorID.Valid {
		task.AnnotatorID = &annotatorID.Int64
	}

	return &task, nil
}

// marshalNullable marshals a map to JSON, mapping nil to a SQL NULL.
func marshalNullable(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}
