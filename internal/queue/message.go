package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Common message errors.
var (
	// ErrMalformedMessage is returned when a message body cannot be decoded
	// into a valid WorkRequest. Such messages are poison: they are rejected
	// without requeue, logged, and never retried.
	ErrMalformedMessage = errors.New("malformed work request message")
)

// WorkRequest is the queue message instructing a consumer to label one task.
// It is immutable once published and round-trips through the queue as a JSON
// document. Decoders tolerate unknown extra fields and fail closed on
// missing required ones.
type WorkRequest struct {
	TaskID        int64          `json:"task_id"`
	ProjectID     int64          `json:"project_id"`
	Text          string         `json:"text"`
	TaskType      string         `json:"task_type"`
	Language      string         `json:"language"`
	EntityClasses []string       `json:"entity_classes"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Validate checks that every required field is present.
func (r *WorkRequest) Validate() error {
	switch {
	case r.TaskID <= 0:
		return fmt.Errorf("%w: missing task_id", ErrMalformedMessage)
	case r.ProjectID <= 0:
		return fmt.Errorf("%w: missing project_id", ErrMalformedMessage)
	case r.Text == "":
		return fmt.Errorf("%w: missing text", ErrMalformedMessage)
	case r.TaskType == "":
		return fmt.Errorf("%w: missing task_type", ErrMalformedMessage)
	case r.Language == "":
		return fmt.Errorf("%w: missing language", ErrMalformedMessage)
	}
	return nil
}

// Encode serializes the work request to its JSON wire form.
func (r *WorkRequest) Encode() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode work request: %w", err)
	}
	return body, nil
}

// DecodeWorkRequest parses a message body into a WorkRequest.
// Unknown fields are ignored; a body that is not valid JSON or is missing
// required fields yields ErrMalformedMessage.
func DecodeWorkRequest(body []byte) (*WorkRequest, error) {
	var req WorkRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// ResultRecord carries the outcome of one labeling invocation from the
// consumer to the store update step. It never traverses the queue and is not
// persisted independently; it exists only to decouple the labeling call from
// the database write.
type ResultRecord struct {
	TaskID       int64
	ProjectID    int64
	Success      bool
	ErrorMessage string
	ModelUsed    string
	Duration     time.Duration
}
