package api

import (
	"log/slog"
	"net/http"

	"github.com/labelwise/labelwise-api/internal/api/shared"
	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/platform/logger"
	"github.com/labelwise/labelwise-api/internal/service"
)

// TaskHandler handles the review surface: listing tasks awaiting review,
// fetching a task, and submitting an annotator's final labels.
type TaskHandler struct {
	reviewService service.ReviewService
	logger        *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(reviewService service.ReviewService, logger *slog.Logger) *TaskHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "task_handler")),
	}
}

// ListPendingReview handles GET /projects/{id}/review requests. Tasks come
// back lowest confidence first so reviewers see the least certain labels.
func (h *TaskHandler) ListPendingReview(w http.ResponseWriter, r *http.Request) {
	if _, ok := annotatorIDOrUnauthorized(w, r); !ok {
		return
	}

	projectID, err := getPathID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project ID")
		return
	}

	limit := getQueryLimit(r, defaultListLimit)

	tasks, err := h.reviewService.ListPendingReview(r.Context(), projectID, limit)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, taskToResponse(t))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetTask handles GET /tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := annotatorIDOrUnauthorized(w, r); !ok {
		return
	}

	taskID, err := getPathID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.reviewService.GetTask(r.Context(), taskID)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// SubmitReview handles POST /tasks/{id}/review requests. An empty entity
// list is a valid review asserting the text contains no entities.
func (h *TaskHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	annotatorID, ok := annotatorIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	taskID, err := getPathID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	finalLabels := domain.NewLabelResult(entitiesToDomain(req.Entities), "")

	task, err := h.reviewService.SubmitReview(r.Context(), taskID, annotatorID, finalLabels)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	log.Info("review submitted",
		slog.Int64("task_id", taskID),
		slog.Int64("annotator_id", annotatorID),
		slog.Int("entity_count", finalLabels.EntityCount))

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// GetCorrectionStats handles GET /projects/{id}/training-stats requests,
// reporting how often reviewers overrode automated labels.
func (h *TaskHandler) GetCorrectionStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := annotatorIDOrUnauthorized(w, r); !ok {
		return
	}

	projectID, err := getPathID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project ID")
		return
	}

	stats, err := h.reviewService.CorrectionStats(r.Context(), projectID)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, correctionStatsToResponse(stats))
}
