package api

import (
	"log/slog"
	"net/http"

	"github.com/labelwise/labelwise-api/internal/api/shared"
	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/platform/logger"
	"github.com/labelwise/labelwise-api/internal/service"
)

// FeedbackHandler handles client feedback on reviewed tasks. The endpoint is
// unauthenticated: clients are external parties without annotator accounts.
type FeedbackHandler struct {
	feedbackService service.FeedbackService
	logger          *slog.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService service.FeedbackService, logger *slog.Logger) *FeedbackHandler {
	if feedbackService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("feedbackService cannot be nil for FeedbackHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FeedbackHandler")
	}

	return &FeedbackHandler{
		feedbackService: feedbackService,
		logger:          logger.With(slog.String("component", "feedback_handler")),
	}
}

// SubmitFeedback handles POST /projects/{id}/tasks/{taskID}/feedback
// requests. Approve settles the task as client_approved, reject as
// client_rejected; both are terminal.
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	projectID, err := getPathID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project ID")
		return
	}

	taskID, err := getPathID(r, "taskID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req FeedbackRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	feedback, err := domain.NewClientFeedback(
		projectID,
		taskID,
		domain.FeedbackAction(req.Action),
		req.Comment,
		req.ClientName,
		req.ClientEmail,
	)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithError(w, r, status, GetSafeErrorMessage(err))
		return
	}

	task, err := h.feedbackService.SubmitFeedback(r.Context(), feedback)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	log.Info("client feedback recorded",
		slog.Int64("project_id", projectID),
		slog.Int64("task_id", taskID),
		slog.String("action", req.Action),
		slog.String("final_status", string(task.Status)))

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
