package domain

import "time"

// FeedbackAction is the decision a client takes on a reviewed task.
type FeedbackAction string

// Possible feedback actions.
const (
	FeedbackActionApprove FeedbackAction = "approve"
	FeedbackActionReject  FeedbackAction = "reject"
)

// ClientFeedback records a client's decision on a reviewed task, together
// with optional commentary.
type ClientFeedback struct {
	ID          int64          `json:"id"`
	ProjectID   int64          `json:"project_id"`
	TaskID      int64          `json:"task_id"`
	Action      FeedbackAction `json:"action"`
	Comment     string         `json:"comment,omitempty"`
	ClientName  string         `json:"client_name,omitempty"`
	ClientEmail string         `json:"client_email,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewClientFeedback creates a feedback record for the given task.
// Returns ErrInvalidFeedbackAction for any action other than approve/reject.
func NewClientFeedback(projectID, taskID int64, action FeedbackAction, comment, clientName, clientEmail string) (*ClientFeedback, error) {
	if !IsValidFeedbackAction(action) {
		return nil, ErrInvalidFeedbackAction
	}

	return &ClientFeedback{
		ProjectID:   projectID,
		TaskID:      taskID,
		Action:      action,
		Comment:     comment,
		ClientName:  clientName,
		ClientEmail: clientEmail,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// IsValidFeedbackAction checks if the given action is approve or reject.
func IsValidFeedbackAction(action FeedbackAction) bool {
	switch action {
	case FeedbackActionApprove, FeedbackActionReject:
		return true
	default:
		return false
	}
}

// TargetStatus returns the terminal task status the action maps to.
// The action must be valid; callers validate first.
func (a FeedbackAction) TargetStatus() TaskStatus {
	if a == FeedbackActionApprove {
		return TaskStatusClientApproved
	}
	return TaskStatusClientRejected
}
