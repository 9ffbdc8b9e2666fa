package store

import (
	"context"
	"database/sql"

	"github.com/labelwise/labelwise-api/internal/domain"
)

// ProjectStore defines the interface for project data persistence.
// Version: 1.0
type ProjectStore interface {
	// Create saves a new project to the store and populates its ID.
	// It handles domain validation internally.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Project, error)

	// List retrieves all projects ordered by creation time descending.
	List(ctx context.Context) ([]*domain.Project, error)

	// WithTx returns a new ProjectStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProjectStore
}
