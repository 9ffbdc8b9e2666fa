package api

import (
	"time"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/service"
	"github.com/labelwise/labelwise-api/internal/store"
)

// Common request/response structures

// RegisterRequest defines the payload for the annotator registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the annotator login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// AnnotatorID is the unique identifier for the authenticated annotator
	AnnotatorID int64 `json:"annotator_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`
}

// CreateProjectRequest defines the payload for creating a labeling project.
type CreateProjectRequest struct {
	Name          string   `json:"name"           validate:"required,min=1,max=200"`
	Description   string   `json:"description"    validate:"max=2000"`
	TaskType      string   `json:"task_type"      validate:"required"`
	Language      string   `json:"language"       validate:"omitempty,len=2"`
	EntityClasses []string `json:"entity_classes" validate:"omitempty,dive,min=1"`
}

// ProjectResponse represents the response data for a project.
type ProjectResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	TaskType      string    `json:"task_type"`
	Language      string    `json:"language"`
	EntityClasses []string  `json:"entity_classes"`
	CreatedAt     time.Time `json:"created_at"`
}

// UploadTaskItem is one task in an upload request.
type UploadTaskItem struct {
	Text     string         `json:"text" validate:"required,min=1"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// UploadTasksRequest defines the payload for uploading a batch of tasks.
type UploadTasksRequest struct {
	Tasks []UploadTaskItem `json:"tasks" validate:"required,min=1,dive"`
}

// UploadTasksResponse reports the outcome of an upload.
type UploadTasksResponse struct {
	Created int            `json:"created"`
	Tasks   []TaskResponse `json:"tasks"`
}

// StartLabelingRequest defines the payload for triggering a publish batch.
// Limit is optional; zero means the configured default batch size.
type StartLabelingRequest struct {
	Limit int `json:"limit" validate:"gte=0"`
}

// StartLabelingResponse reports how many tasks were published.
type StartLabelingResponse struct {
	Published int `json:"published"`
}

// EntityPayload is one entity in a label payload.
type EntityPayload struct {
	Text       string `json:"text"        validate:"required,min=1"`
	ClassName  string `json:"class_name"  validate:"required,min=1"`
	StartIndex int    `json:"start_index" validate:"gte=0"`
	EndIndex   int    `json:"end_index"   validate:"gtfield=StartIndex"`
}

// LabelResultPayload mirrors domain.LabelResult on the wire.
type LabelResultPayload struct {
	Entities    []EntityPayload `json:"entities"`
	EntityCount int             `json:"entity_count"`
	EntityTypes []string        `json:"entity_types"`
	ModelUsed   string          `json:"model_used,omitempty"`
}

// SubmitReviewRequest defines the payload for submitting a review.
// An empty entity list is a valid review: it asserts the text contains
// no entities.
type SubmitReviewRequest struct {
	Entities []EntityPayload `json:"entities" validate:"dive"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID              int64               `json:"id"`
	ProjectID       int64               `json:"project_id"`
	Text            string              `json:"text"`
	Status          string              `json:"status"`
	Metadata        map[string]any      `json:"metadata,omitempty"`
	AutoLabels      *LabelResultPayload `json:"auto_labels,omitempty"`
	FinalLabels     *LabelResultPayload `json:"final_labels,omitempty"`
	ConfidenceScore *float64            `json:"confidence_score,omitempty"`
	AnnotatorID     *int64              `json:"annotator_id,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// FeedbackRequest defines the payload for client feedback on a reviewed task.
type FeedbackRequest struct {
	Action      string `json:"action"       validate:"required,oneof=approve reject"`
	Comment     string `json:"comment"      validate:"max=2000"`
	ClientName  string `json:"client_name"  validate:"max=200"`
	ClientEmail string `json:"client_email" validate:"omitempty,email"`
}

// FeedbackResponse represents a recorded feedback item.
type FeedbackResponse struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	TaskID     int64     `json:"task_id"`
	Action     string    `json:"action"`
	Comment    string    `json:"comment,omitempty"`
	ClientName string    `json:"client_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatsResponse reports per-status task counts and review-quality signals
// for a project.
type StatsResponse struct {
	ProjectID      int64          `json:"project_id"`
	CountsByStatus map[string]int `json:"counts_by_status"`
	AvgConfidence  *float64       `json:"avg_confidence,omitempty"`
}

// CorrectionStatsResponse reports how often reviewers overrode automated
// labels for a project. The per-annotator map is keyed by annotator ID.
type CorrectionStatsResponse struct {
	ProjectID   int64         `json:"project_id"`
	Corrections int           `json:"corrections"`
	ByAnnotator map[int64]int `json:"by_annotator"`
}

// projectToResponse converts a domain.Project to a ProjectResponse.
func projectToResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		TaskType:      string(p.TaskType),
		Language:      p.Language,
		EntityClasses: p.EntityClasses,
		CreatedAt:     p.CreatedAt,
	}
}

// taskToResponse converts a domain.Task to a TaskResponse.
func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:              t.ID,
		ProjectID:       t.ProjectID,
		Text:            t.Text,
		Status:          string(t.Status),
		Metadata:        t.Metadata,
		AutoLabels:      labelResultToPayload(t.AutoLabels),
		FinalLabels:     labelResultToPayload(t.FinalLabels),
		ConfidenceScore: t.ConfidenceScore,
		AnnotatorID:     t.AnnotatorID,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func labelResultToPayload(r *domain.LabelResult) *LabelResultPayload {
	if r == nil {
		return nil
	}

	entities := make([]EntityPayload, 0, len(r.Entities))
	for _, e := range r.Entities {
		entities = append(entities, EntityPayload{
			Text:       e.Text,
			ClassName:  e.ClassName,
			StartIndex: e.StartIndex,
			EndIndex:   e.EndIndex,
		})
	}

	return &LabelResultPayload{
		Entities:    entities,
		EntityCount: r.EntityCount,
		EntityTypes: r.EntityTypes,
		ModelUsed:   r.ModelUsed,
	}
}

// entitiesToDomain converts entity payloads to domain entities.
func entitiesToDomain(payloads []EntityPayload) []domain.Entity {
	entities := make([]domain.Entity, 0, len(payloads))
	for _, p := range payloads {
		entities = append(entities, domain.Entity{
			Text:       p.Text,
			ClassName:  p.ClassName,
			StartIndex: p.StartIndex,
			EndIndex:   p.EndIndex,
		})
	}
	return entities
}

// statsToResponse converts store.TaskStats to a StatsResponse.
func statsToResponse(projectID int64, stats *store.TaskStats) StatsResponse {
	counts := make(map[string]int, len(stats.CountsByStatus))
	for status, count := range stats.CountsByStatus {
		counts[string(status)] = count
	}
	return StatsResponse{
		ProjectID:      projectID,
		CountsByStatus: counts,
		AvgConfidence:  stats.AvgConfidence,
	}
}

// correctionStatsToResponse converts service.CorrectionStats to its API shape.
func correctionStatsToResponse(stats *service.CorrectionStats) CorrectionStatsResponse {
	byAnnotator := stats.ByAnnotator
	if byAnnotator == nil {
		byAnnotator = map[int64]int{}
	}
	return CorrectionStatsResponse{
		ProjectID:   stats.ProjectID,
		Corrections: stats.Corrections,
		ByAnnotator: byAnnotator,
	}
}
