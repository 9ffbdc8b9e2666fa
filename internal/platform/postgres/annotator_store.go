package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/platform/logger"
	"github.com/labelwise/labelwise-api/internal/store"
)

// PostgresAnnotatorStore implements the store.AnnotatorStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAnnotatorStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAnnotatorStore creates a new PostgreSQL implementation of the AnnotatorStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAnnotatorStore(db store.DBTX, logger *slog.Logger) *PostgresAnnotatorStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAnnotatorStore{
		db:     db,
		logger: logger.With(slog.String("component", "annotator_store")),
	}
}

// Ensure PostgresAnnotatorStore implements store.AnnotatorStore interface
var _ store.AnnotatorStore = (*PostgresAnnotatorStore)(nil)

// WithTx returns a new store instance bound to the given transaction.
func (s *PostgresAnnotatorStore) WithTx(tx *sql.Tx) store.AnnotatorStore {
	return &PostgresAnnotatorStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.AnnotatorStore.Create
// Returns store.ErrEmailExists when the email is already registered.
func (s *PostgresAnnotatorStore) Create(ctx context.Context, annotator *domain.Annotator) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := annotator.Validate(); err != nil {
		log.Warn("annotator validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO annotators (name, email, hashed_password, tasks_completed, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		annotator.Name,
		annotator.Email,
		annotator.HashedPassword,
		annotator.TasksCompleted,
		annotator.CreatedAt,
	).Scan(&annotator.ID)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("annotator email already exists")
			return store.ErrEmailExists
		}
		log.Error("failed to create annotator", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("annotator created", slog.Int64("annotator_id", annotator.ID))
	return nil
}

// GetByID implements store.AnnotatorStore.GetByID
func (s *PostgresAnnotatorStore) GetByID(ctx context.Context, id int64) (*domain.Annotator, error) {
	return s.getBy(ctx, `WHERE id = $1`, id)
}

// GetByEmail implements store.AnnotatorStore.GetByEmail
func (s *PostgresAnnotatorStore) GetByEmail(ctx context.Context, email string) (*domain.Annotator, error) {
	return s.getBy(ctx, `WHERE email = $1`, email)
}

func (s *PostgresAnnotatorStore) getBy(ctx context.Context, where string, arg any) (*domain.Annotator, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, email, hashed_password, tasks_completed, created_at
		FROM annotators ` + where

	var annotator domain.Annotator
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&annotator.ID,
		&annotator.Name,
		&annotator.Email,
		&annotator.HashedPassword,
		&annotator.TasksCompleted,
		&annotator.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAnnotatorNotFound
		}
		log.Error("failed to get annotator", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &annotator, nil
}

// IncrementTasksCompleted implements store.AnnotatorStore.IncrementTasksCompleted
func (s *PostgresAnnotatorStore) IncrementTasksCompleted(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE annotators
		SET tasks_completed = tasks_completed + 1
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to increment tasks completed",
			slog.String("error", err.Error()),
			slog.Int64("annotator_id", id))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrAnnotatorNotFound
	}

	return nil
}
