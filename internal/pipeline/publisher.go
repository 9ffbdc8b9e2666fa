package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/platform/logger"
	"github.com/labelwise/labelwise-api/internal/queue"
	"github.com/labelwise/labelwise-api/internal/store"
)

// Publisher moves uploaded tasks onto the work queue in batches.
type Publisher struct {
	taskStore    store.TaskStore
	projectStore store.ProjectStore
	queue        queue.Publisher
	batchSize    int
	logger       *slog.Logger
}

// PublisherOption customizes a Publisher.
type PublisherOption func(*Publisher)

// WithBatchSize sets the batch size used when PublishBatch is called with a
// non-positive limit.
func WithBatchSize(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// NewPublisher creates a batch publisher.
func NewPublisher(
	taskStore store.TaskStore,
	projectStore store.ProjectStore,
	q queue.Publisher,
	log *slog.Logger,
	opts ...PublisherOption,
) *Publisher {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if projectStore == nil {
		panic("projectStore cannot be nil")
	}
	if q == nil {
		panic("queue publisher cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	p := &Publisher{
		taskStore:    taskStore,
		projectStore: projectStore,
		queue:        q,
		logger:       log.With(slog.String("component", "batch_publisher")),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// PublishBatch reads up to limit uploaded tasks for the project and publishes
// one work request per task. The publisher never mutates task state: a task
// stays uploaded until a consumer claims its message, so a publish that never
// lands leaves the task eligible for the next batch instead of stranding it
// in processing with no message in flight.
//
// The returned count is the number of confirmed deliveries. A failed publish
// does not abort the batch; every task is attempted and any shortfall shows
// up in the count.
func (p *Publisher) PublishBatch(ctx context.Context, projectID int64, limit int) (int, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	if limit <= 0 {
		limit = p.batchSize
	}

	project, err := p.projectStore.GetByID(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to load project %d: %w", projectID, err)
	}

	tasks, err := p.taskStore.ListByStatus(ctx, projectID, domain.TaskStatusUploaded, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list uploaded tasks: %w", err)
	}

	if len(tasks) == 0 {
		log.Debug("no uploaded tasks to publish", slog.Int64("project_id", projectID))
		return 0, nil
	}

	published := 0
	for _, task := range tasks {
		req := &queue.WorkRequest{
			TaskID:        task.ID,
			ProjectID:     project.ID,
			Text:          task.Text,
			TaskType:      string(project.TaskType),
			Language:      project.Language,
			EntityClasses: project.EntityClasses,
			Metadata:      task.Metadata,
		}

		if err := p.queue.Publish(ctx, req); err != nil {
			log.Error("failed to publish task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", task.ID))
			continue
		}
		published++
	}

	log.Info("batch published",
		slog.Int64("project_id", projectID),
		slog.Int("published", published),
		slog.Int("requested", len(tasks)))

	return published, nil
}
