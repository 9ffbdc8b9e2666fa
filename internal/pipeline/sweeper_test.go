package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep(t *testing.T) {
	t.Parallel()

	t.Run("reverts stale processing tasks", func(t *testing.T) {
		t.Parallel()

		var gotAge time.Duration
		taskStore := &mockTaskStore{
			revertStaleProcessingFn: func(_ context.Context, olderThan time.Duration) (int64, error) {
				gotAge = olderThan
				return 3, nil
			},
		}

		s := NewSweeper(taskStore, 30*time.Minute, 5*time.Minute, slog.Default())
		reverted, err := s.Sweep(context.Background())
		require.NoError(t, err)

		assert.Equal(t, int64(3), reverted)
		assert.Equal(t, 30*time.Minute, gotAge)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		t.Parallel()

		taskStore := &mockTaskStore{
			revertStaleProcessingFn: func(_ context.Context, _ time.Duration) (int64, error) {
				return 0, errors.New("db down")
			},
		}

		s := NewSweeper(taskStore, 30*time.Minute, 5*time.Minute, slog.Default())
		_, err := s.Sweep(context.Background())
		assert.Error(t, err)
	})
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	s := NewSweeper(&mockTaskStore{}, time.Minute, time.Hour, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestNewSweeperValidation(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewSweeper(nil, time.Minute, time.Minute, slog.Default())
	})
	assert.Panics(t, func() {
		NewSweeper(&mockTaskStore{}, 0, time.Minute, slog.Default())
	})
	assert.Panics(t, func() {
		NewSweeper(&mockTaskStore{}, time.Minute, 0, slog.Default())
	})
}
