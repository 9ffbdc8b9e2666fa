package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/events"
	"github.com/labelwise/labelwise-api/internal/store"
)

// FeedbackService records client decisions on reviewed tasks.
type FeedbackService interface {
	// SubmitFeedback settles a reviewed task into its terminal state
	// (client_approved or client_rejected) and records the feedback.
	SubmitFeedback(ctx context.Context, feedback *domain.ClientFeedback) (*domain.Task, error)

	// ListFeedback returns recent feedback for a project, newest first.
	ListFeedback(ctx context.Context, projectID int64, limit int) ([]*domain.ClientFeedback, error)
}

// feedbackServiceImpl implements the FeedbackService interface
type feedbackServiceImpl struct {
	db            *sql.DB
	taskStore     store.TaskStore
	feedbackStore store.FeedbackStore
	broadcaster   events.Broadcaster
	logger        *slog.Logger
}

// NewFeedbackService creates a new FeedbackService.
// The broadcaster may be nil; everything else is required.
func NewFeedbackService(
	db *sql.DB,
	taskStore store.TaskStore,
	feedbackStore store.FeedbackStore,
	broadcaster events.Broadcaster,
	logger *slog.Logger,
) (FeedbackService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if taskStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "taskStore cannot be nil"}
	}
	if feedbackStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "feedbackStore cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &feedbackServiceImpl{
		db:            db,
		taskStore:     taskStore,
		feedbackStore: feedbackStore,
		broadcaster:   broadcaster,
		logger:        logger.With("component", "feedback_service"),
	}, nil
}

// SubmitFeedback settles a reviewed task into its terminal state and records
// the feedback. The transition and the feedback row share one transaction.
func (s *feedbackServiceImpl) SubmitFeedback(
	ctx context.Context,
	feedback *domain.ClientFeedback,
) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, feedback.TaskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, &ServiceError{Operation: "submit_feedback", Message: "failed to retrieve task", Err: err}
	}

	if task.ProjectID != feedback.ProjectID {
		return nil, ErrTaskNotFound
	}

	if task.Status != domain.TaskStatusReviewed {
		return nil, fmt.Errorf("%w: task %d is %s, feedback requires %s",
			ErrWrongTaskState, feedback.TaskID, task.Status, domain.TaskStatusReviewed)
	}

	target := feedback.Action.TargetStatus()
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		err := s.taskStore.WithTx(tx).UpdateStatus(ctx, feedback.TaskID, domain.TaskStatusReviewed, target)
		if err != nil {
			return err
		}
		return s.feedbackStore.WithTx(tx).Create(ctx, feedback)
	})
	if err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			return nil, fmt.Errorf("%w: %v", ErrWrongTaskState, err)
		}
		s.logger.Error("failed to submit feedback",
			"error", err,
			"task_id", feedback.TaskID,
			"action", string(feedback.Action))
		return nil, &ServiceError{Operation: "submit_feedback", Message: "failed to save feedback", Err: err}
	}

	s.logger.Info("client feedback recorded",
		"task_id", feedback.TaskID,
		"project_id", feedback.ProjectID,
		"action", string(feedback.Action))

	s.broadcast(ctx, events.TypeClientFeedbackReceived, map[string]any{
		"task_id":    feedback.TaskID,
		"project_id": feedback.ProjectID,
		"action":     string(feedback.Action),
	})

	task.Status = target
	return task, nil
}

// ListFeedback returns recent feedback for a project, newest first.
func (s *feedbackServiceImpl) ListFeedback(
	ctx context.Context,
	projectID int64,
	limit int,
) ([]*domain.ClientFeedback, error) {
	items, err := s.feedbackStore.ListByProject(ctx, projectID, limit)
	if err != nil {
		return nil, &ServiceError{Operation: "list_feedback", Message: "failed to list feedback", Err: err}
	}
	return items, nil
}

func (s *feedbackServiceImpl) broadcast(ctx context.Context, eventType string, payload map[string]any) {
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
