package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/store"
)

// TaskUpload is one task in an upload batch.
type TaskUpload struct {
	Text     string
	Metadata map[string]any
}

// BatchPublisher moves uploaded tasks onto the work queue. Implemented by
// pipeline.Publisher.
type BatchPublisher interface {
	// PublishBatch publishes up to limit uploaded tasks for the project and
	// returns the number of confirmed deliveries.
	PublishBatch(ctx context.Context, projectID int64, limit int) (int, error)
}

// ProjectService provides project and upload operations.
type ProjectService interface {
	// CreateProject creates a new labeling project.
	CreateProject(ctx context.Context, name, description string, taskType domain.TaskType,
		language string, entityClasses []string) (*domain.Project, error)

	// GetProject retrieves a project by ID.
	GetProject(ctx context.Context, id int64) (*domain.Project, error)

	// ListProjects retrieves all projects.
	ListProjects(ctx context.Context) ([]*domain.Project, error)

	// UploadTasks creates uploaded tasks for a project in one transaction.
	// Either every task is created or none is.
	UploadTasks(ctx context.Context, projectID int64, uploads []TaskUpload) ([]*domain.Task, error)

	// StartAutoLabeling publishes up to limit of the project's uploaded tasks
	// onto the work queue and returns the number published.
	StartAutoLabeling(ctx context.Context, projectID int64, limit int) (int, error)

	// Stats returns per-status task counts and average confidence for a project.
	Stats(ctx context.Context, projectID int64) (*store.TaskStats, error)
}

// projectServiceImpl implements the ProjectService interface
type projectServiceImpl struct {
	db           *sql.DB
	projectStore store.ProjectStore
	taskStore    store.TaskStore
	publisher    BatchPublisher
	logger       *slog.Logger
}

// NewProjectService creates a new ProjectService.
// It returns an error if any of the required dependencies are nil.
func NewProjectService(
	db *sql.DB,
	projectStore store.ProjectStore,
	taskStore store.TaskStore,
	publisher BatchPublisher,
	logger *slog.Logger,
) (ProjectService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if projectStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "projectStore cannot be nil"}
	}
	if taskStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "taskStore cannot be nil"}
	}
	if publisher == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "publisher cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &projectServiceImpl{
		db:           db,
		projectStore: projectStore,
		taskStore:    taskStore,
		publisher:    publisher,
		logger:       logger.With("component", "project_service"),
	}, nil
}

// CreateProject creates a new labeling project.
func (s *projectServiceImpl) CreateProject(
	ctx context.Context,
	name, description string,
	taskType domain.TaskType,
	language string,
	entityClasses []string,
) (*domain.Project, error) {
	project, err := domain.NewProject(name, description, taskType, language, entityClasses)
	if err != nil {
		return nil, err
	}

	if err := s.projectStore.Create(ctx, project); err != nil {
		s.logger.Error("failed to create project", "error", err, "name", name)
		return nil, &ServiceError{Operation: "create_project", Message: "failed to save project", Err: err}
	}

	s.logger.Info("project created", "project_id", project.ID, "name", project.Name)
	return project, nil
}

// GetProject retrieves a project by ID.
func (s *projectServiceImpl) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := s.projectStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, &ServiceError{Operation: "get_project", Message: "failed to retrieve project", Err: err}
	}
	return project, nil
}

// ListProjects retrieves all projects.
func (s *projectServiceImpl) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	projects, err := s.projectStore.List(ctx)
	if err != nil {
		return nil, &ServiceError{Operation: "list_projects", Message: "failed to list projects", Err: err}
	}
	return projects, nil
}

// UploadTasks creates uploaded tasks for a project in one transaction.
func (s *projectServiceImpl) UploadTasks(
	ctx context.Context,
	projectID int64,
	uploads []TaskUpload,
) ([]*domain.Task, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	if len(uploads) == 0 {
		return nil, &ServiceError{Operation: "upload_tasks", Message: "upload batch cannot be empty"}
	}

	tasks := make([]*domain.Task, 0, len(uploads))
	for _, u := range uploads {
		task, err := domain.NewTask(projectID, u.Text, u.Metadata)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).CreateBatch(ctx, tasks)
	})
	if err != nil {
		s.logger.Error("failed to upload tasks",
			"error", err,
			"project_id", projectID,
			"count", len(uploads))
		return nil, &ServiceError{Operation: "upload_tasks", Message: "failed to save tasks", Err: err}
	}

	s.logger.Info("tasks uploaded", "project_id", projectID, "count", len(tasks))
	return tasks, nil
}

// StartAutoLabeling publishes the project's uploaded tasks onto the work queue.
func (s *projectServiceImpl) StartAutoLabeling(ctx context.Context, projectID int64, limit int) (int, error) {
	// Per-task publish failures surface only through the count; an error here
	// means the batch never started (unknown project, store read failure).
	published, err := s.publisher.PublishBatch(ctx, projectID, limit)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return 0, ErrProjectNotFound
		}
		return 0, &ServiceError{Operation: "start_auto_labeling", Message: "publish batch failed", Err: err}
	}
	return published, nil
}

// Stats returns per-status task counts and average confidence for a project.
func (s *projectServiceImpl) Stats(ctx context.Context, projectID int64) (*store.TaskStats, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	stats, err := s.taskStore.Stats(ctx, projectID)
	if err != nil {
		return nil, &ServiceError{Operation: "project_stats", Message: "failed to compute stats", Err: err}
	}
	return stats, nil
}
