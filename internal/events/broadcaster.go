package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryBroadcaster is a simple implementation of the Broadcaster interface
// that stores registered handlers in memory and dispatches events to them.
type InMemoryBroadcaster struct {
	handlers []Handler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// Ensure InMemoryBroadcaster implements Broadcaster
var _ Broadcaster = (*InMemoryBroadcaster)(nil)

// NewInMemoryBroadcaster creates a new instance of InMemoryBroadcaster.
func NewInMemoryBroadcaster(logger *slog.Logger) *InMemoryBroadcaster {
	return &InMemoryBroadcaster{
		handlers: make([]Handler, 0),
		logger:   logger.With("component", "in_memory_broadcaster"),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (b *InMemoryBroadcaster) RegisterHandler(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
	b.logger.Debug("registered new event handler", "handler_count", len(b.handlers))
}

// Broadcast publishes the given event to all registered handlers.
// Every handler sees the event even if earlier ones fail; handler errors are
// logged and swallowed.
func (b *InMemoryBroadcaster) Broadcast(ctx context.Context, event *Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	b.logger.Debug("broadcasting event",
		"event_id", event.ID,
		"event_type", event.Type,
		"handler_count", len(handlers))

	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			b.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
		}
	}
}
