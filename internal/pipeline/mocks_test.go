package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/labeling"
	"github.com/labelwise/labelwise-api/internal/queue"
	"github.com/labelwise/labelwise-api/internal/store"
)

// mockTaskStore implements store.TaskStore with overridable functions.
type mockTaskStore struct {
	createFn                func(ctx context.Context, task *domain.Task) error
	createBatchFn           func(ctx context.Context, tasks []*domain.Task) error
	getByIDFn               func(ctx context.Context, id int64) (*domain.Task, error)
	listByStatusFn          func(ctx context.Context, projectID int64, status domain.TaskStatus, limit int) ([]*domain.Task, error)
	updateStatusFn          func(ctx context.Context, id int64, from, to domain.TaskStatus) error
	setAutoLabelsFn         func(ctx context.Context, id int64, labels *domain.LabelResult, confidence float64) error
	setReviewFn             func(ctx context.Context, id int64, finalLabels *domain.LabelResult, annotatorID int64) error
	revertStaleProcessingFn func(ctx context.Context, olderThan time.Duration) (int64, error)
	statsFn                 func(ctx context.Context, projectID int64) (*store.TaskStats, error)
}

var _ store.TaskStore = (*mockTaskStore)(nil)

func (m *mockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) CreateBatch(ctx context.Context, tasks []*domain.Task) error {
	if m.createBatchFn != nil {
		return m.createBatchFn(ctx, tasks)
	}
	return nil
}

func (m *mockTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) ListByStatus(
	ctx context.Context,
	projectID int64,
	status domain.TaskStatus,
	limit int,
) ([]*domain.Task, error) {
	if m.listByStatusFn != nil {
		return m.listByStatusFn(ctx, projectID, status, limit)
	}
	return nil, nil
}

func (m *mockTaskStore) UpdateStatus(ctx context.Context, id int64, from, to domain.TaskStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, from, to)
	}
	return nil
}

func (m *mockTaskStore) SetAutoLabels(
	ctx context.Context,
	id int64,
	labels *domain.LabelResult,
	confidence float64,
) error {
	if m.setAutoLabelsFn != nil {
		return m.setAutoLabelsFn(ctx, id, labels, confidence)
	}
	return nil
}

func (m *mockTaskStore) SetReview(
	ctx context.Context,
	id int64,
	finalLabels *domain.LabelResult,
	annotatorID int64,
) error {
	if m.setReviewFn != nil {
		return m.setReviewFn(ctx, id, finalLabels, annotatorID)
	}
	return nil
}

func (m *mockTaskStore) RevertStaleProcessing(ctx context.Context, olderThan time.Duration) (int64, error) {
	if m.revertStaleProcessingFn != nil {
		return m.revertStaleProcessingFn(ctx, olderThan)
	}
	return 0, nil
}

func (m *mockTaskStore) Stats(ctx context.Context, projectID int64) (*store.TaskStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, projectID)
	}
	return &store.TaskStats{}, nil
}

func (m *mockTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return m }

// mockProjectStore implements store.ProjectStore with overridable functions.
type mockProjectStore struct {
	getByIDFn func(ctx context.Context, id int64) (*domain.Project, error)
}

var _ store.ProjectStore = (*mockProjectStore)(nil)

func (m *mockProjectStore) Create(_ context.Context, _ *domain.Project) error { return nil }

func (m *mockProjectStore) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrProjectNotFound
}

func (m *mockProjectStore) List(_ context.Context) ([]*domain.Project, error) { return nil, nil }

func (m *mockProjectStore) WithTx(_ *sql.Tx) store.ProjectStore { return m }

// mockQueue implements queue.Publisher and queue.Consumer.
type mockQueue struct {
	publishFn func(ctx context.Context, req *queue.WorkRequest) error
	receiveFn func(ctx context.Context) (queue.Delivery, error)

	published []*queue.WorkRequest
}

var (
	_ queue.Publisher = (*mockQueue)(nil)
	_ queue.Consumer  = (*mockQueue)(nil)
)

func (m *mockQueue) Publish(ctx context.Context, req *queue.WorkRequest) error {
	if m.publishFn != nil {
		if err := m.publishFn(ctx, req); err != nil {
			return err
		}
	}
	m.published = append(m.published, req)
	return nil
}

func (m *mockQueue) Receive(ctx context.Context) (queue.Delivery, error) {
	if m.receiveFn != nil {
		return m.receiveFn(ctx)
	}
	return nil, queue.ErrNoMessages
}

// mockDelivery implements queue.Delivery and records how it was settled.
type mockDelivery struct {
	id         uuid.UUID
	body       []byte
	deliveries int

	acked    bool
	rejected bool
	requeued bool
}

var _ queue.Delivery = (*mockDelivery)(nil)

func newMockDelivery(body []byte) *mockDelivery {
	return &mockDelivery{id: uuid.New(), body: body, deliveries: 1}
}

func (d *mockDelivery) ID() uuid.UUID   { return d.id }
func (d *mockDelivery) Body() []byte    { return d.body }
func (d *mockDelivery) Deliveries() int { return d.deliveries }

func (d *mockDelivery) settled() bool { return d.acked || d.rejected || d.requeued }

func (d *mockDelivery) Ack(_ context.Context) error {
	if d.settled() {
		return queue.ErrAlreadySettled
	}
	d.acked = true
	return nil
}

func (d *mockDelivery) Reject(_ context.Context) error {
	if d.settled() {
		return queue.ErrAlreadySettled
	}
	d.rejected = true
	return nil
}

func (d *mockDelivery) Requeue(_ context.Context) error {
	if d.settled() {
		return queue.ErrAlreadySettled
	}
	d.requeued = true
	return nil
}

// mockLabeler implements labeling.Labeler.
type mockLabeler struct {
	labelFn func(ctx context.Context, req labeling.Request) (*domain.LabelResult, error)
}

var _ labeling.Labeler = (*mockLabeler)(nil)

func (m *mockLabeler) Label(ctx context.Context, req labeling.Request) (*domain.LabelResult, error) {
	if m.labelFn != nil {
		return m.labelFn(ctx, req)
	}
	return nil, errors.New("labelFn not set")
}
