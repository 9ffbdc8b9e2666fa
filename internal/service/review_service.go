package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/events"
	"github.com/labelwise/labelwise-api/internal/store"
)

// ReviewService provides the human-review operations on tasks.
type ReviewService interface {
	// ListPendingReview returns up to limit tasks awaiting review for a
	// project, lowest confidence first.
	ListPendingReview(ctx context.Context, projectID int64, limit int) ([]*domain.Task, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, taskID int64) (*domain.Task, error)

	// SubmitReview records an annotator's final labels for a task in review
	// and advances it to reviewed. When the final labels differ from the
	// automated ones, the difference is recorded in the correction log.
	SubmitReview(ctx context.Context, taskID, annotatorID int64, finalLabels *domain.LabelResult) (*domain.Task, error)

	// CorrectionStats summarizes how often reviewers overrode automated
	// labels for a project.
	CorrectionStats(ctx context.Context, projectID int64) (*CorrectionStats, error)
}

// CorrectionStats aggregates the correction log for one project.
type CorrectionStats struct {
	ProjectID   int64
	Corrections int
	ByAnnotator map[int64]int
}

// reviewServiceImpl implements the ReviewService interface
type reviewServiceImpl struct {
	db             *sql.DB
	taskStore      store.TaskStore
	annotatorStore store.AnnotatorStore
	correctionLog  CorrectionLog
	broadcaster    events.Broadcaster
	logger         *slog.Logger
}

// NewReviewService creates a new ReviewService.
// The broadcaster may be nil; everything else is required.
func NewReviewService(
	db *sql.DB,
	taskStore store.TaskStore,
	annotatorStore store.AnnotatorStore,
	correctionLog CorrectionLog,
	broadcaster events.Broadcaster,
	logger *slog.Logger,
) (ReviewService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if taskStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "taskStore cannot be nil"}
	}
	if annotatorStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "annotatorStore cannot be nil"}
	}
	if correctionLog == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "correctionLog cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		db:             db,
		taskStore:      taskStore,
		annotatorStore: annotatorStore,
		correctionLog:  correctionLog,
		broadcaster:    broadcaster,
		logger:         logger.With("component", "review_service"),
	}, nil
}

// ListPendingReview returns tasks awaiting review, lowest confidence first.
func (s *reviewServiceImpl) ListPendingReview(
	ctx context.Context,
	projectID int64,
	limit int,
) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListByStatus(ctx, projectID, domain.TaskStatusInReview, limit)
	if err != nil {
		return nil, &ServiceError{Operation: "list_pending_review", Message: "failed to list tasks", Err: err}
	}
	return tasks, nil
}

// GetTask retrieves a task by ID.
func (s *reviewServiceImpl) GetTask(ctx context.Context, taskID int64) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, &ServiceError{Operation: "get_task", Message: "failed to retrieve task", Err: err}
	}
	return task, nil
}

// SubmitReview records final labels and advances the task to reviewed.
// The label write and the annotator counter update share one transaction, so
// the counter can never drift from the number of reviewed tasks.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	taskID, annotatorID int64,
	finalLabels *domain.LabelResult,
) (*domain.Task, error) {
	if finalLabels == nil {
		return nil, &ServiceError{Operation: "submit_review", Message: "final labels cannot be nil"}
	}

	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status != domain.TaskStatusInReview {
		return nil, fmt.Errorf("%w: task %d is %s, review requires %s",
			ErrWrongTaskState, taskID, task.Status, domain.TaskStatusInReview)
	}

	if _, err := s.annotatorStore.GetByID(ctx, annotatorID); err != nil {
		if errors.Is(err, store.ErrAnnotatorNotFound) {
			return nil, ErrAnnotatorNotFound
		}
		return nil, &ServiceError{Operation: "submit_review", Message: "failed to load annotator", Err: err}
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.taskStore.WithTx(tx).SetReview(ctx, taskID, finalLabels, annotatorID); err != nil {
			return err
		}
		return s.annotatorStore.WithTx(tx).IncrementTasksCompleted(ctx, annotatorID)
	})
	if err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			// Lost a race with another reviewer; the task is no longer ours.
			return nil, fmt.Errorf("%w: %v", ErrWrongTaskState, err)
		}
		s.logger.Error("failed to submit review",
			"error", err,
			"task_id", taskID,
			"annotator_id", annotatorID)
		return nil, &ServiceError{Operation: "submit_review", Message: "failed to save review", Err: err}
	}

	if !finalLabels.Equal(task.AutoLabels) {
		entry := CorrectionEntry{
			TaskID:      taskID,
			ProjectID:   task.ProjectID,
			AnnotatorID: annotatorID,
			AutoLabels:  task.AutoLabels,
			FinalLabels: finalLabels,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.correctionLog.Record(ctx, entry); err != nil {
			// The review already committed; a lost correction entry is a
			// reporting gap, not a lifecycle error.
			s.logger.Error("failed to record correction",
				"error", err,
				"task_id", taskID)
		}
	}

	s.logger.Info("review submitted",
		"task_id", taskID,
		"annotator_id", annotatorID,
		"entity_count", finalLabels.EntityCount)

	s.broadcast(ctx, events.TypeTaskReviewed, map[string]any{
		"task_id":      taskID,
		"project_id":   task.ProjectID,
		"annotator_id": annotatorID,
	})

	task.FinalLabels = finalLabels
	task.AnnotatorID = &annotatorID
	task.Status = domain.TaskStatusReviewed
	task.UpdatedAt = time.Now().UTC()
	return task, nil
}

// CorrectionStats aggregates recorded corrections for a project. A project
// with no corrections yields zero counts rather than an error.
func (s *reviewServiceImpl) CorrectionStats(ctx context.Context, projectID int64) (*CorrectionStats, error) {
	entries, err := s.correctionLog.ListByProject(ctx, projectID)
	if err != nil {
		return nil, &ServiceError{Operation: "correction_stats", Message: "failed to read correction log", Err: err}
	}

	stats := &CorrectionStats{
		ProjectID:   projectID,
		Corrections: len(entries),
		ByAnnotator: make(map[int64]int),
	}
	for _, e := range entries {
		stats.ByAnnotator[e.AnnotatorID]++
	}
	return stats, nil
}

func (s *reviewServiceImpl) broadcast(ctx context.Context, eventType string, payload map[string]any) {
	if s.broadcaster == nil {
		return
	}
	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		s.logger.Error("failed to build event", "error", err)
		return
	}
	s.broadcaster.Broadcast(ctx, event)
}
