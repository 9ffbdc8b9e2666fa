package pipeline

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/queue"
	"github.com/labelwise/labelwise-api/internal/store"
)

func testProject() *domain.Project {
	return &domain.Project{
		ID:            10,
		Name:          "news-ner",
		TaskType:      domain.TaskTypeNER,
		Language:      "en",
		EntityClasses: []string{"PERSON", "ORG", "LOC"},
	}
}

func uploadedTask(id int64, text string) *domain.Task {
	return &domain.Task{
		ID:        id,
		ProjectID: 10,
		Text:      text,
		Status:    domain.TaskStatusUploaded,
	}
}

func TestPublishBatch(t *testing.T) {
	t.Parallel()

	t.Run("publishes uploaded tasks without touching task state", func(t *testing.T) {
		t.Parallel()

		var statusWrites []int64
		taskStore := &mockTaskStore{
			listByStatusFn: func(_ context.Context, projectID int64, status domain.TaskStatus, limit int) ([]*domain.Task, error) {
				assert.Equal(t, int64(10), projectID)
				assert.Equal(t, domain.TaskStatusUploaded, status)
				assert.Equal(t, 50, limit)
				return []*domain.Task{uploadedTask(1, "first"), uploadedTask(2, "second")}, nil
			},
			updateStatusFn: func(_ context.Context, id int64, _, _ domain.TaskStatus) error {
				statusWrites = append(statusWrites, id)
				return nil
			},
		}
		projectStore := &mockProjectStore{
			getByIDFn: func(_ context.Context, _ int64) (*domain.Project, error) {
				return testProject(), nil
			},
		}
		q := &mockQueue{}

		p := NewPublisher(taskStore, projectStore, q, slog.Default())
		count, err := p.PublishBatch(context.Background(), 10, 50)
		require.NoError(t, err)

		assert.Equal(t, 2, count)
		// The processing transition belongs to the consumer; publishing must
		// leave every task uploaded.
		assert.Empty(t, statusWrites)
		require.Len(t, q.published, 2)
		assert.Equal(t, "first", q.published[0].Text)
		assert.Equal(t, "ner", q.published[0].TaskType)
		assert.Equal(t, []string{"PERSON", "ORG", "LOC"}, q.published[0].EntityClasses)
	})

	t.Run("unreachable broker publishes nothing and changes no state", func(t *testing.T) {
		t.Parallel()

		updates := 0
		taskStore := &mockTaskStore{
			listByStatusFn: func(_ context.Context, _ int64, _ domain.TaskStatus, _ int) ([]*domain.Task, error) {
				return []*domain.Task{uploadedTask(1, "first")}, nil
			},
			updateStatusFn: func(_ context.Context, _ int64, _, _ domain.TaskStatus) error {
				updates++
				return nil
			},
		}
		projectStore := &mockProjectStore{
			getByIDFn: func(_ context.Context, _ int64) (*domain.Project, error) {
				return testProject(), nil
			},
		}
		q := &mockQueue{
			publishFn: func(_ context.Context, _ *queue.WorkRequest) error {
				return queue.ErrQueueUnavailable
			},
		}

		p := NewPublisher(taskStore, projectStore, q, slog.Default())
		count, err := p.PublishBatch(context.Background(), 10, 50)

		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Zero(t, updates)
	})

	t.Run("failed publish does not abort the batch", func(t *testing.T) {
		t.Parallel()

		taskStore := &mockTaskStore{
			listByStatusFn: func(_ context.Context, _ int64, _ domain.TaskStatus, _ int) ([]*domain.Task, error) {
				return []*domain.Task{
					uploadedTask(1, "first"),
					uploadedTask(2, "second"),
					uploadedTask(3, "third"),
				}, nil
			},
		}
		projectStore := &mockProjectStore{
			getByIDFn: func(_ context.Context, _ int64) (*domain.Project, error) {
				return testProject(), nil
			},
		}
		attempts := 0
		q := &mockQueue{
			publishFn: func(_ context.Context, req *queue.WorkRequest) error {
				attempts++
				if req.TaskID == 2 {
					return queue.ErrQueueUnavailable
				}
				return nil
			},
		}

		p := NewPublisher(taskStore, projectStore, q, slog.Default())
		count, err := p.PublishBatch(context.Background(), 10, 50)

		// Every task is attempted; the shortfall shows up only in the count.
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, 2, count)
	})

	t.Run("empty queue of uploaded tasks publishes zero", func(t *testing.T) {
		t.Parallel()

		taskStore := &mockTaskStore{}
		projectStore := &mockProjectStore{
			getByIDFn: func(_ context.Context, _ int64) (*domain.Project, error) {
				return testProject(), nil
			},
		}
		q := &mockQueue{}

		p := NewPublisher(taskStore, projectStore, q, slog.Default())
		count, err := p.PublishBatch(context.Background(), 10, 50)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Empty(t, q.published)
	})

	t.Run("unknown project fails", func(t *testing.T) {
		t.Parallel()

		p := NewPublisher(&mockTaskStore{}, &mockProjectStore{}, &mockQueue{}, slog.Default())
		_, err := p.PublishBatch(context.Background(), 99, 50)
		assert.ErrorIs(t, err, store.ErrProjectNotFound)
	})

	t.Run("non-positive limit falls back to the configured batch size", func(t *testing.T) {
		t.Parallel()

		var gotLimit int
		taskStore := &mockTaskStore{
			listByStatusFn: func(_ context.Context, _ int64, _ domain.TaskStatus, limit int) ([]*domain.Task, error) {
				gotLimit = limit
				return nil, nil
			},
		}
		projectStore := &mockProjectStore{
			getByIDFn: func(_ context.Context, _ int64) (*domain.Project, error) {
				return testProject(), nil
			},
		}

		p := NewPublisher(taskStore, projectStore, &mockQueue{}, slog.Default(), WithBatchSize(25))
		_, err := p.PublishBatch(context.Background(), 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 25, gotLimit)
	})
}
