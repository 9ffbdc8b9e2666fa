package api

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/service"
	"github.com/labelwise/labelwise-api/internal/store"
)

func newTestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockAnnotatorService implements service.AnnotatorService with function fields.
type mockAnnotatorService struct {
	registerFn     func(ctx context.Context, name, email, password string) (*domain.Annotator, string, error)
	loginFn        func(ctx context.Context, email, password string) (*domain.Annotator, string, error)
	getAnnotatorFn func(ctx context.Context, id int64) (*domain.Annotator, error)
}

var _ service.AnnotatorService = (*mockAnnotatorService)(nil)

func (m *mockAnnotatorService) Register(
	ctx context.Context,
	name, email, password string,
) (*domain.Annotator, string, error) {
	return m.registerFn(ctx, name, email, password)
}

func (m *mockAnnotatorService) Login(
	ctx context.Context,
	email, password string,
) (*domain.Annotator, string, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockAnnotatorService) GetAnnotator(ctx context.Context, id int64) (*domain.Annotator, error) {
	if m.getAnnotatorFn != nil {
		return m.getAnnotatorFn(ctx, id)
	}
	return nil, service.ErrAnnotatorNotFound
}

// mockProjectService implements service.ProjectService with function fields.
type mockProjectService struct {
	createProjectFn     func(ctx context.Context, name, description string, taskType domain.TaskType, language string, entityClasses []string) (*domain.Project, error)
	getProjectFn        func(ctx context.Context, id int64) (*domain.Project, error)
	listProjectsFn      func(ctx context.Context) ([]*domain.Project, error)
	uploadTasksFn       func(ctx context.Context, projectID int64, uploads []service.TaskUpload) ([]*domain.Task, error)
	startAutoLabelingFn func(ctx context.Context, projectID int64, limit int) (int, error)
	statsFn             func(ctx context.Context, projectID int64) (*store.TaskStats, error)
}

var _ service.ProjectService = (*mockProjectService)(nil)

func (m *mockProjectService) CreateProject(
	ctx context.Context,
	name, description string,
	taskType domain.TaskType,
	language string,
	entityClasses []string,
) (*domain.Project, error) {
	return m.createProjectFn(ctx, name, description, taskType, language, entityClasses)
}

func (m *mockProjectService) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	return m.getProjectFn(ctx, id)
}

func (m *mockProjectService) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	return m.listProjectsFn(ctx)
}

func (m *mockProjectService) UploadTasks(
	ctx context.Context,
	projectID int64,
	uploads []service.TaskUpload,
) ([]*domain.Task, error) {
	return m.uploadTasksFn(ctx, projectID, uploads)
}

func (m *mockProjectService) StartAutoLabeling(ctx context.Context, projectID int64, limit int) (int, error) {
	return m.startAutoLabelingFn(ctx, projectID, limit)
}

func (m *mockProjectService) Stats(ctx context.Context, projectID int64) (*store.TaskStats, error) {
	return m.statsFn(ctx, projectID)
}

// mockReviewService implements service.ReviewService with function fields.
type mockReviewService struct {
	listPendingReviewFn func(ctx context.Context, projectID int64, limit int) ([]*domain.Task, error)
	getTaskFn           func(ctx context.Context, taskID int64) (*domain.Task, error)
	submitReviewFn      func(ctx context.Context, taskID, annotatorID int64, finalLabels *domain.LabelResult) (*domain.Task, error)
	correctionStatsFn   func(ctx context.Context, projectID int64) (*service.CorrectionStats, error)
}

var _ service.ReviewService = (*mockReviewService)(nil)

func (m *mockReviewService) ListPendingReview(
	ctx context.Context,
	projectID int64,
	limit int,
) ([]*domain.Task, error) {
	return m.listPendingReviewFn(ctx, projectID, limit)
}

func (m *mockReviewService) GetTask(ctx context.Context, taskID int64) (*domain.Task, error) {
	return m.getTaskFn(ctx, taskID)
}

func (m *mockReviewService) SubmitReview(
	ctx context.Context,
	taskID, annotatorID int64,
	finalLabels *domain.LabelResult,
) (*domain.Task, error) {
	return m.submitReviewFn(ctx, taskID, annotatorID, finalLabels)
}

func (m *mockReviewService) CorrectionStats(
	ctx context.Context,
	projectID int64,
) (*service.CorrectionStats, error) {
	if m.correctionStatsFn == nil {
		return &service.CorrectionStats{ProjectID: projectID, ByAnnotator: map[int64]int{}}, nil
	}
	return m.correctionStatsFn(ctx, projectID)
}

// mockFeedbackService implements service.FeedbackService with function fields.
type mockFeedbackService struct {
	submitFeedbackFn func(ctx context.Context, feedback *domain.ClientFeedback) (*domain.Task, error)
	listFeedbackFn   func(ctx context.Context, projectID int64, limit int) ([]*domain.ClientFeedback, error)
}

var _ service.FeedbackService = (*mockFeedbackService)(nil)

func (m *mockFeedbackService) SubmitFeedback(
	ctx context.Context,
	feedback *domain.ClientFeedback,
) (*domain.Task, error) {
	return m.submitFeedbackFn(ctx, feedback)
}

func (m *mockFeedbackService) ListFeedback(
	ctx context.Context,
	projectID int64,
	limit int,
) ([]*domain.ClientFeedback, error) {
	if m.listFeedbackFn != nil {
		return m.listFeedbackFn(ctx, projectID, limit)
	}
	return nil, nil
}
