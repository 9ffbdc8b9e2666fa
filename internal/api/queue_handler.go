package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labelwise/labelwise-api/internal/api/shared"
)

// QueueInspector reports the current depth of the work queue.
// Implemented by postgres.PostgresQueue.
type QueueInspector interface {
	Depth(ctx context.Context) (int, error)
}

// QueueStatusResponse reports the work queue backlog.
type QueueStatusResponse struct {
	Queue string `json:"queue"`
	Depth int    `json:"depth"`
}

// QueueHandler exposes the work queue status.
type QueueHandler struct {
	inspector QueueInspector
	queueName string
	logger    *slog.Logger
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(inspector QueueInspector, queueName string, logger *slog.Logger) *QueueHandler {
	if inspector == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("inspector cannot be nil for QueueHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for QueueHandler")
	}

	return &QueueHandler{
		inspector: inspector,
		queueName: queueName,
		logger:    logger.With(slog.String("component", "queue_handler")),
	}
}

// GetStatus handles GET /queue/status requests. Depth counts messages that
// are ready or claimed; dead-lettered messages are excluded.
func (h *QueueHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	depth, err := h.inspector.Depth(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to read queue status", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, QueueStatusResponse{
		Queue: h.queueName,
		Depth: depth,
	})
}
