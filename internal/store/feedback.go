package store

import (
	"context"
	"database/sql"

	"github.com/labelwise/labelwise-api/internal/domain"
)

// FeedbackStore defines the interface for client feedback persistence.
// Version: 1.0
type FeedbackStore interface {
	// Create saves a new feedback record and populates its ID.
	Create(ctx context.Context, feedback *domain.ClientFeedback) error

	// ListByProject retrieves feedback records for a project, newest first.
	ListByProject(ctx context.Context, projectID int64, limit int) ([]*domain.ClientFeedback, error)

	// WithTx returns a new FeedbackStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) FeedbackStore
}
