package domain

import (
	"errors"
	"fmt"
	"time"
)

// TaskStatus represents the lifecycle state of a work item.
type TaskStatus string

// Possible task status values. The happy path is totally ordered:
// uploaded → processing → in_review → reviewed → client_approved/client_rejected,
// with a single retry edge processing → uploaded on labeling failure.
const (
	TaskStatusUploaded       TaskStatus = "uploaded"
	TaskStatusProcessing     TaskStatus = "processing"
	TaskStatusInReview       TaskStatus = "in_review"
	TaskStatusReviewed       TaskStatus = "reviewed"
	TaskStatusClientApproved TaskStatus = "client_approved"
	TaskStatusClientRejected TaskStatus = "client_rejected"
)

// Common validation errors for Task
var (
	ErrEmptyTaskProjectID = errors.New("task project ID cannot be empty")
	ErrEmptyTaskText      = errors.New("task text cannot be empty")
)

// transitions is the full edge set of the task lifecycle graph.
// Terminal states have no outgoing edges.
var transitions = map[TaskStatus][]TaskStatus{
	TaskStatusUploaded:   {TaskStatusProcessing},
	TaskStatusProcessing: {TaskStatusInReview, TaskStatusUploaded},
	TaskStatusInReview:   {TaskStatusReviewed},
	TaskStatusReviewed:   {TaskStatusClientApproved, TaskStatusClientRejected},
}

// Task represents one unit of text awaiting automated and then human labeling.
// The raw text and metadata hints are immutable after upload; everything else
// advances with the lifecycle.
type Task struct {
	ID        int64          `json:"id"`
	ProjectID int64          `json:"project_id"`
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	// Automated labeling results, present only once the task has reached
	// in_review with a successful labeling pass.
	AutoLabels      *LabelResult `json:"auto_labels,omitempty"`
	ConfidenceScore *float64     `json:"confidence_score,omitempty"`

	// Human review results, present only once the task has been reviewed.
	FinalLabels *LabelResult `json:"final_labels,omitempty"`
	AnnotatorID *int64       `json:"annotator_id,omitempty"`

	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewTask creates a new Task in the uploaded state for the given project.
// Returns an error if validation fails.
func NewTask(projectID int64, text string, metadata map[string]any) (*Task, error) {
	task := &Task{
		ProjectID: projectID,
		Text:      text,
		Metadata:  metadata,
		Status:    TaskStatusUploaded,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ProjectID <= 0 {
		return ErrEmptyTaskProjectID
	}

	if t.Text == "" {
		return ErrEmptyTaskText
	}

	if !IsValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if t.ConfidenceScore != nil && (*t.ConfidenceScore < 0 || *t.ConfidenceScore > 1) {
		return ErrInvalidConfidence
	}

	return nil
}

// CanTransitionTo reports whether moving from the task's current status to
// next follows an edge of the lifecycle graph.
func (t *Task) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range transitions[t.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo advances the task to the next status and bumps UpdatedAt.
// Any off-graph transition fails with ErrInvalidTransition without mutating
// the task.
func (t *Task) TransitionTo(next TaskStatus) error {
	if !IsValidTaskStatus(next) {
		return ErrInvalidTaskStatus
	}

	if !t.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, t.Status, next)
	}

	t.Status = next
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// IsTerminal reports whether the task has reached a state with no outgoing
// edges (client_approved or client_rejected).
func (t *Task) IsTerminal() bool {
	return len(transitions[t.Status]) == 0
}

// IsValidTaskStatus checks if the given status is a valid TaskStatus.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusUploaded, TaskStatusProcessing, TaskStatusInReview,
		TaskStatusReviewed, TaskStatusClientApproved, TaskStatusClientRejected:
		return true
	default:
		return false
	}
}
