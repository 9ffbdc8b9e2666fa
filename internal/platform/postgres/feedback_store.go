package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/platform/logger"
	"github.com/labelwise/labelwise-api/internal/store"
)

// PostgresFeedbackStore implements the store.FeedbackStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFeedbackStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFeedbackStore creates a new PostgreSQL implementation of the FeedbackStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresFeedbackStore(db store.DBTX, logger *slog.Logger) *PostgresFeedbackStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFeedbackStore{
		db:     db,
		logger: logger.With(slog.String("component", "feedback_store")),
	}
}

// Ensure PostgresFeedbackStore implements store.FeedbackStore interface
var _ store.FeedbackStore = (*PostgresFeedbackStore)(nil)

// WithTx returns a new store instance bound to the given transaction.
func (s *PostgresFeedbackStore) WithTx(tx *sql.Tx) store.FeedbackStore {
	return &PostgresFeedbackStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.FeedbackStore.Create
func (s *PostgresFeedbackStore) Create(ctx context.Context, feedback *domain.ClientFeedback) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO client_feedback (project_id, task_id, action, comment, client_name, client_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		feedback.ProjectID,
		feedback.TaskID,
		feedback.Action,
		feedback.Comment,
		feedback.ClientName,
		feedback.ClientEmail,
		feedback.CreatedAt,
	).Scan(&feedback.ID)

	if err != nil {
		log.Error("failed to create feedback record",
			slog.String("error", err.Error()),
			slog.Int64("task_id", feedback.TaskID))
		return MapError(err)
	}

	return nil
}

// ListByProject implements store.FeedbackStore.ListByProject
func (s *PostgresFeedbackStore) ListByProject(
	ctx context.Context,
	projectID int64,
	limit int,
) ([]*domain.ClientFeedback, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, project_id, task_id, action, comment, client_name, client_email, created_at
		FROM client_feedback
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, projectID, limit)
	if err != nil {
		log.Error("failed to list feedback",
			slog.String("error", err.Error()),
			slog.Int64("project_id", projectID))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	records := []*domain.ClientFeedback{}
	for rows.Next() {
		var fb domain.ClientFeedback
		var action string
		err := rows.Scan(
			&fb.ID,
			&fb.ProjectID,
			&fb.TaskID,
			&action,
			&fb.Comment,
			&fb.ClientName,
			&fb.ClientEmail,
			&fb.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		fb.Action = domain.FeedbackAction(action)
		records = append(records, &fb)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
