package store

import (
	"context"
	"database/sql"

	"github.com/labelwise/labelwise-api/internal/domain"
)

// AnnotatorStore defines the interface for annotator account persistence.
// Version: 1.0
type AnnotatorStore interface {
	// Create saves a new annotator to the store and populates its ID.
	// Returns ErrEmailExists if the email is already registered.
	Create(ctx context.Context, annotator *domain.Annotator) error

	// GetByID retrieves an annotator by its unique ID.
	// Returns ErrAnnotatorNotFound if the annotator does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Annotator, error)

	// GetByEmail retrieves an annotator by email.
	// Returns ErrAnnotatorNotFound if the annotator does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.Annotator, error)

	// IncrementTasksCompleted bumps the annotator's completed-task counter.
	IncrementTasksCompleted(ctx context.Context, id int64) error

	// WithTx returns a new AnnotatorStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AnnotatorStore
}
