package api

import (
	"log/slog"
	"net/http"

	"github.com/labelwise/labelwise-api/internal/api/shared"
	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/platform/logger"
	"github.com/labelwise/labelwise-api/internal/service"
)

// defaultListLimit bounds list endpoints when the client does not pass one.
const defaultListLimit = 50

// ProjectHandler handles project-related HTTP requests: project CRUD, task
// uploads, labeling kickoff, stats, and the project feedback listing.
type ProjectHandler struct {
	projectService  service.ProjectService
	feedbackService service.FeedbackService
	logger          *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(
	projectService service.ProjectService,
	feedbackService service.FeedbackService,
	logger *slog.Logger,
) *ProjectHandler {
	if projectService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("projectService cannot be nil for ProjectHandler")
	}
	if feedbackService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("feedbackService cannot be nil for ProjectHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProjectHandler")
	}

	return &ProjectHandler{
		projectService:  projectService,
		feedbackService: feedbackService,
		logger:          logger.With(slog.String("component", "project_handler")),
	}
}

// CreateProject handles POST /projects requests.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	project, err := h.projectService.CreateProject(
		r.Context(),
		req.Name,
		req.Description,
		domain.TaskType(req.TaskType),
		req.Language,
		req.EntityClasses,
	)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	log.Info("project created",
		slog.Int64("project_id", project.ID),
		slog.String("task_type", string(project.TaskType)))

	shared.RespondWithJSON(w, r, http.StatusCreated, projectToResponse(project))
}

// ListProjects handles GET /projects requests.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListProjects(r.Context())
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, projectToResponse(p))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetProject handles GET /projects/{id} requests.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := getPathID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := h.projectService.GetProject(r.Context(), projectID)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, projectToResponse(project))
}

// UploadTasks handles POST /projects/{id}/tasks requests. The whole batch is
// created atomically: one bad task rejects the upload.
func (h *ProjectHandler) UploadTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	projectID, err := getPathID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req UploadTasksRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	uploads := make([]service.TaskUpload, 0, len(req.Tasks))
	for _, item := range req.Tasks {
		uploads = append(uploads, service.TaskUpload{
			Text:     item.Text,
			Metadata: item.Metadata,
		})
	}

	tasks, err := h.projectService.UploadTasks(r.Context(), projectID, uploads)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	log.Info("tasks uploaded",
		slog.Int64("project_id", projectID),
		slog.Int("count", len(tasks)))

	responses := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, taskToResponse(t))
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, UploadTasksResponse{
		Created: len(responses),
		Tasks:   responses,
	})
}

// StartLabeling handles POST /projects/{id}/label requests. It publishes up
// to limit uploaded tasks onto the work queue. A partial publish reports the
// confirmed count alongside a 502: the published tasks are already in flight.
func (h *ProjectHandler) StartLabeling(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	projectID, err := getPathID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project ID")
		return
	}

	// Body is optional; an empty body means the default batch size.
	var req StartLabelingRequest
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if err := shared.ValidateRequest(req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
			return
		}
	}

	// A partial batch is not an error; the shortfall is visible in the count.
	published, err := h.projectService.StartAutoLabeling(r.Context(), projectID, req.Limit)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	log.Info("labeling batch published",
		slog.Int64("project_id", projectID),
		slog.Int("published", published))

	shared.RespondWithJSON(w, r, http.StatusAccepted, StartLabelingResponse{
		Published: published,
	})
}

// GetStats handles GET /projects/{id}/stats requests.
func (h *ProjectHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	projectID, err := getPathID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project ID")
		return
	}

	stats, err := h.projectService.Stats(r.Context(), projectID)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, statsToResponse(projectID, stats))
}

// ListFeedback handles GET /projects/{id}/feedback requests.
func (h *ProjectHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	projectID, err := getPathID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project ID")
		return
	}

	limit := getQueryLimit(r, defaultListLimit)

	items, err := h.feedbackService.ListFeedback(r.Context(), projectID, limit)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]FeedbackResponse, 0, len(items))
	for _, f := range items {
		responses = append(responses, FeedbackResponse{
			ID:         f.ID,
			ProjectID:  f.ProjectID,
			TaskID:     f.TaskID,
			Action:     string(f.Action),
			Comment:    f.Comment,
			ClientName: f.ClientName,
			CreatedAt:  f.CreatedAt,
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
