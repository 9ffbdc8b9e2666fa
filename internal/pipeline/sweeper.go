package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/labelwise/labelwise-api/internal/store"
)

// Sweeper periodically reverts tasks stuck in processing back to uploaded so
// the next publish batch re-enters them into the pipeline. Tasks get stuck
// when a consumer crashes between claiming a message and settling it, or
// when a published message is lost to a dead-lettered poison path.
type Sweeper struct {
	taskStore store.TaskStore
	age       time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

// NewSweeper creates a sweeper that reverts processing tasks older than age,
// checking every interval.
func NewSweeper(taskStore store.TaskStore, age, interval time.Duration, log *slog.Logger) *Sweeper {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if age <= 0 {
		panic("stuck task age must be positive")
	}
	if interval <= 0 {
		panic("sweep interval must be positive")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Sweeper{
		taskStore: taskStore,
		age:       age,
		interval:  interval,
		logger:    log.With(slog.String("component", "stuck_task_sweeper")),
	}
}

// Run sweeps until the context is cancelled. Sweep errors are logged and the
// loop keeps going; a transient store failure only delays recovery.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("sweeper started",
		slog.Duration("stuck_age", s.age),
		slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Sweep performs one pass and returns the number of tasks reverted.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	reverted, err := s.taskStore.RevertStaleProcessing(ctx, s.age)
	if err != nil {
		return 0, err
	}

	if reverted > 0 {
		s.logger.Info("reverted stuck tasks", slog.Int64("count", reverted))
	}

	return reverted, nil
}
