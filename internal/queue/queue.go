package queue

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common broker errors.
var (
	// ErrNoMessages is returned by Receive when the queue has no ready
	// message. Consumers treat it as a signal to back off and poll again.
	ErrNoMessages = errors.New("no messages ready")

	// ErrQueueUnavailable is returned when the broker cannot be reached.
	ErrQueueUnavailable = errors.New("queue unavailable")

	// ErrAlreadySettled is returned when a delivery is acknowledged or
	// rejected more than once.
	ErrAlreadySettled = errors.New("delivery already settled")
)

// Publisher enqueues work requests onto the durable work queue.
// Publish returns nil only once the message is durably stored; a nil return
// is the "confirmed delivery" the batch publisher counts.
// Version: 1.0
type Publisher interface {
	Publish(ctx context.Context, req *WorkRequest) error
}

// Consumer pulls deliveries from the durable work queue, one at a time.
// The broker is the serialization point: a claimed message is invisible to
// other consumers until it is settled or its lease expires (at-least-once
// delivery; a crash before settle causes redelivery, not loss).
// Version: 1.0
type Consumer interface {
	// Receive claims the next ready message. Returns ErrNoMessages when the
	// queue is empty and ErrQueueUnavailable when the broker is unreachable.
	Receive(ctx context.Context) (Delivery, error)
}

// Delivery is one claimed message together with its settlement handle.
// Exactly one of Ack, Reject, or Requeue must be called per delivery.
// Version: 1.0
type Delivery interface {
	// ID returns the broker-assigned message identifier.
	ID() uuid.UUID

	// Body returns the raw message payload.
	Body() []byte

	// Deliveries returns how many times the message has been delivered,
	// including this one.
	Deliveries() int

	// Ack settles the message as processed; it will never be delivered again.
	Ack(ctx context.Context) error

	// Reject settles the message as failed without requeue (dead-letter).
	// Used for poison messages and task-level conflicts that retrying
	// cannot fix.
	Reject(ctx context.Context) error

	// Requeue returns the message to the queue for redelivery. Brokers
	// enforce a redelivery cap and dead-letter messages that exceed it.
	Requeue(ctx context.Context) error
}
