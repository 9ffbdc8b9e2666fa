package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types broadcast by the pipeline.
const (
	// TypeAutoLabelingCompleted is emitted after the consumer durably stores
	// automated labels and the task reaches in_review.
	TypeAutoLabelingCompleted = "auto_labeling_completed"

	// TypeTaskReviewed is emitted after an annotator submits a review.
	TypeTaskReviewed = "task_reviewed"

	// TypeClientFeedbackReceived is emitted after client feedback settles a
	// reviewed task into a terminal state.
	TypeClientFeedbackReceived = "client_feedback_received"
)

// Event is one pipeline lifecycle notification. The payload carries
// event-specific data serialized as JSON so handlers need no dependency on
// the emitting package.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the given type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Handler defines an interface for components that receive broadcast events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// Broadcaster defines an interface for components that emit events.
// Broadcast never fails the caller: handler errors are logged, not returned,
// so a broken notification surface cannot stall the pipeline.
type Broadcaster interface {
	// Broadcast publishes the given event to all registered handlers.
	Broadcast(ctx context.Context, event *Event)
}
