package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/labelwise/labelwise-api/internal/domain"
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
	return &store.TaskStats{CountsByStatus: map[domain.TaskStatus]int{}}, nil
}

func (m *mockTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return m }

// mockProjectStore implements store.ProjectStore with overridable functions.
type mockProjectStore struct {
	createFn  func(ctx context.Context, project *domain.Project) error
	getByIDFn func(ctx context.Context, id int64) (*domain.Project, error)
	listFn    func(ctx context.Context) ([]*domain.Project, error)
}

var _ store.ProjectStore = (*mockProjectStore)(nil)

func (m *mockProjectStore) Create(ctx context.Context, project *domain.Project) error {
	if m.createFn != nil {
		return m.createFn(ctx, project)
	}
	project.ID = 1
	return nil
}

func (m *mockProjectStore) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrProjectNotFound
}

func (m *mockProjectStore) List(ctx context.Context) ([]*domain.Project, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockProjectStore) WithTx(_ *sql.Tx) store.ProjectStore { return m }

// mockAnnotatorStore implements store.AnnotatorStore with overridable functions.
type mockAnnotatorStore struct {
	createFn          func(ctx context.Context, annotator *domain.Annotator) error
	getByIDFn         func(ctx context.Context, id int64) (*domain.Annotator, error)
	getByEmailFn      func(ctx context.Context, email string) (*domain.Annotator, error)
	incrementFn       func(ctx context.Context, id int64) error
	incrementedCounts map[int64]int
}

var _ store.AnnotatorStore = (*mockAnnotatorStore)(nil)

func (m *mockAnnotatorStore) Create(ctx context.Context, annotator *domain.Annotator) error {
	if m.createFn != nil {
		return m.createFn(ctx, annotator)
	}
	annotator.ID = 1
	return nil
}

func (m *mockAnnotatorStore) GetByID(ctx context.Context, id int64) (*domain.Annotator, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrAnnotatorNotFound
}

func (m *mockAnnotatorStore) GetByEmail(ctx context.Context, email string) (*domain.Annotator, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, store.ErrAnnotatorNotFound
}

func (m *mockAnnotatorStore) IncrementTasksCompleted(ctx context.Context, id int64) error {
	if m.incrementFn != nil {
		return m.incrementFn(ctx, id)
	}
	if m.incrementedCounts == nil {
		m.incrementedCounts = make(map[int64]int)
	}
	m.incrementedCounts[id]++
	return nil
}

func (m *mockAnnotatorStore) WithTx(_ *sql.Tx) store.AnnotatorStore { return m }

// mockFeedbackStore implements store.FeedbackStore with overridable functions.
type mockFeedbackStore struct {
	createFn      func(ctx context.Context, feedback *domain.ClientFeedback) error
	listByProject func(ctx context.Context, projectID int64, limit int) ([]*domain.ClientFeedback, error)
	created       []*domain.ClientFeedback
}

var _ store.FeedbackStore = (*mockFeedbackStore)(nil)

func (m *mockFeedbackStore) Create(ctx context.Context, feedback *domain.ClientFeedback) error {
	if m.createFn != nil {
		return m.createFn(ctx, feedback)
	}
	m.created = append(m.created, feedback)
	return nil
}

func (m *mockFeedbackStore) ListByProject(
	ctx context.Context,
	projectID int64,
	limit int,
) ([]*domain.ClientFeedback, error) {
	if m.listByProject != nil {
		return m.listByProject(ctx, projectID, limit)
	}
	return nil, nil
}

func (m *mockFeedbackStore) WithTx(_ *sql.Tx) store.FeedbackStore { return m }

// mockPublisher implements BatchPublisher.
type mockPublisher struct {
	publishBatchFn func(ctx context.Context, projectID int64, limit int) (int, error)
}

var _ BatchPublisher = (*mockPublisher)(nil)

func (m *mockPublisher) PublishBatch(ctx context.Context, projectID int64, limit int) (int, error) {
	if m.publishBatchFn != nil {
		return m.publishBatchFn(ctx, projectID, limit)
	}
	return 0, nil
}
