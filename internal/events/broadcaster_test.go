package events

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events []*Event
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *Event) error {
	h.events = append(h.events, event)
	return h.err
}

func TestNewEvent(t *testing.T) {
	t.Parallel()

	payload := map[string]int64{"task_id": 42}
	event, err := NewEvent(TypeAutoLabelingCompleted, payload)
	require.NoError(t, err)

	assert.Equal(t, TypeAutoLabelingCompleted, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded map[string]int64
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, int64(42), decoded["task_id"])
}

func TestBroadcastReachesAllHandlers(t *testing.T) {
	t.Parallel()

	b := NewInMemoryBroadcaster(slog.Default())
	failing := &recordingHandler{err: errors.New("handler broken")}
	healthy := &recordingHandler{}
	b.RegisterHandler(failing)
	b.RegisterHandler(healthy)

	event, err := NewEvent(TypeTaskReviewed, map[string]int64{"task_id": 7})
	require.NoError(t, err)

	b.Broadcast(context.Background(), event)

	assert.Len(t, failing.events, 1)
	assert.Len(t, healthy.events, 1)
}

func TestBroadcastWithNoHandlers(t *testing.T) {
	t.Parallel()

	b := NewInMemoryBroadcaster(slog.Default())
	event, err := NewEvent(TypeClientFeedbackReceived, nil)
	require.NoError(t, err)

	// must not panic or block
	b.Broadcast(context.Background(), event)
}
