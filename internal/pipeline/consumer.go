package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/labelwise/labelwise-api/internal/config"
	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/events"
	"github.com/labelwise/labelwise-api/internal/labeling"
	"github.com/labelwise/labelwise-api/internal/platform/logger"
	"github.com/labelwise/labelwise-api/internal/queue"
	"github.com/labelwise/labelwise-api/internal/store"
)

// defaultPollInterval is how long the consumer sleeps when the queue is empty.
const defaultPollInterval = 2 * time.Second

// Consumer pulls work requests off the queue, runs the labeler, and records
// results. One Consumer processes one message at a time; run several Consumers
// (or several processes) to scale out, the broker serializes claims.
type Consumer struct {
	taskStore    store.TaskStore
	queue        queue.Consumer
	registry     *labeling.Registry
	broadcaster  events.Broadcaster
	retryPolicy  config.RetryPolicy
	pollInterval time.Duration
	logger       *slog.Logger
}

// ConsumerOption customizes a Consumer.
type ConsumerOption func(*Consumer)

// WithPollInterval overrides the empty-queue poll interval.
func WithPollInterval(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithRetryPolicy overrides the labeling-failure retry policy.
func WithRetryPolicy(p config.RetryPolicy) ConsumerOption {
	return func(c *Consumer) {
		c.retryPolicy = p
	}
}

// NewConsumer creates a labeling consumer.
func NewConsumer(
	taskStore store.TaskStore,
	q queue.Consumer,
	registry *labeling.Registry,
	broadcaster events.Broadcaster,
	log *slog.Logger,
	opts ...ConsumerOption,
) *Consumer {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if q == nil {
		panic("queue consumer cannot be nil")
	}
	if registry == nil {
		panic("labeler registry cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	c := &Consumer{
		taskStore:    taskStore,
		queue:        q,
		registry:     registry,
		broadcaster:  broadcaster,
		retryPolicy:  config.RetryPolicyRevertAndAck,
		pollInterval: defaultPollInterval,
		logger:       log.With(slog.String("component", "labeling_consumer")),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run polls the queue until the context is cancelled. Errors on individual
// messages are handled per message and never stop the loop.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started",
		slog.String("retry_policy", string(c.retryPolicy)),
		slog.Duration("poll_interval", c.pollInterval))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping", slog.String("reason", ctx.Err().Error()))
			return ctx.Err()
		default:
		}

		delivery, err := c.queue.Receive(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrNoMessages) {
				c.sleep(ctx, c.pollInterval)
				continue
			}
			c.logger.Error("receive failed, backing off", slog.String("error", err.Error()))
			c.sleep(ctx, c.pollInterval)
			continue
		}

		c.ProcessDelivery(ctx, delivery)
	}
}

func (c *Consumer) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// ProcessDelivery runs the per-message state machine for one claimed
// delivery. It always settles the delivery exactly once; a panic in the
// handler is recovered and settles the message as rejected so a crashing
// input cannot wedge the queue.
func (c *Consumer) ProcessDelivery(ctx context.Context, delivery queue.Delivery) {
	log := logger.FromContextOrDefault(ctx, c.logger).With(
		slog.String("message_id", delivery.ID().String()),
		slog.Int("deliveries", delivery.Deliveries()))

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing delivery", slog.Any("panic", r))
			c.reject(ctx, delivery, log)
		}
	}()

	start := time.Now()
	record := c.handle(ctx, delivery, log)
	if record != nil {
		record.Duration = time.Since(start)
		c.logResult(ctx, log, record)
	}
}

// handle decodes, labels, and records one message. It returns a result record
// for messages that addressed a real task, nil for poison.
func (c *Consumer) handle(ctx context.Context, delivery queue.Delivery, log *slog.Logger) *queue.ResultRecord {
	// Poison messages can never succeed; they are dead-lettered immediately.
	req, err := queue.DecodeWorkRequest(delivery.Body())
	if err != nil {
		log.Error("rejecting malformed message", slog.String("error", err.Error()))
		c.reject(ctx, delivery, log)
		return nil
	}

	log = log.With(slog.Int64("task_id", req.TaskID), slog.Int64("project_id", req.ProjectID))

	// Claiming the task is the uploaded -> processing transition; it belongs
	// to the consumer so a task only ever sits in processing while its message
	// is actually being worked. The compare-and-set is also what makes
	// redelivery idempotent: a task that already moved on fails the claim and
	// the duplicate is dead-lettered without reprocessing.
	err = c.taskStore.UpdateStatus(ctx, req.TaskID, domain.TaskStatusUploaded, domain.TaskStatusProcessing)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrTaskNotFound):
		log.Warn("rejecting message for unknown task")
		c.reject(ctx, delivery, log)
		return nil
	case errors.Is(err, store.ErrStateConflict):
		log.Warn("rejecting stale delivery for task outside uploaded",
			slog.String("error", err.Error()))
		c.reject(ctx, delivery, log)
		return &queue.ResultRecord{
			TaskID:       req.TaskID,
			ProjectID:    req.ProjectID,
			ErrorMessage: err.Error(),
		}
	default:
		// Transient store failure: leave the task alone and let the broker
		// redeliver once the store recovers.
		log.Error("failed to claim task, requeueing", slog.String("error", err.Error()))
		c.requeue(ctx, delivery, log)
		return nil
	}

	result, err := c.label(ctx, req)
	if err != nil {
		c.handleLabelingFailure(ctx, delivery, req, err, log)
		return &queue.ResultRecord{
			TaskID:       req.TaskID,
			ProjectID:    req.ProjectID,
			ErrorMessage: err.Error(),
		}
	}

	confidence := Score(result)
	if err := c.taskStore.SetAutoLabels(ctx, req.TaskID, result, confidence); err != nil {
		// Whether the task moved under us or the write itself failed, the
		// labels were not durably stored, so the message must not be acked.
		log.Error("failed to store automated labels, rejecting",
			slog.String("error", err.Error()))
		c.reject(ctx, delivery, log)
		return &queue.ResultRecord{
			TaskID:       req.TaskID,
			ProjectID:    req.ProjectID,
			ModelUsed:    result.ModelUsed,
			ErrorMessage: err.Error(),
		}
	}

	// Labels are durable; only now is the message consumed.
	if err := delivery.Ack(ctx); err != nil {
		log.Error("ack failed after durable write", slog.String("error", err.Error()))
	}

	c.broadcast(ctx, events.TypeAutoLabelingCompleted, map[string]any{
		"task_id":          req.TaskID,
		"project_id":       req.ProjectID,
		"entity_count":     result.EntityCount,
		"confidence_score": confidence,
	})

	return &queue.ResultRecord{
		TaskID:    req.TaskID,
		ProjectID: req.ProjectID,
		Success:   true,
		ModelUsed: result.ModelUsed,
	}
}

func (c *Consumer) label(ctx context.Context, req *queue.WorkRequest) (*domain.LabelResult, error) {
	labeler, err := c.registry.For(domain.TaskType(req.TaskType))
	if err != nil {
		return nil, err
	}

	return labeler.Label(ctx, labeling.Request{
		Text:          req.Text,
		TaskType:      domain.TaskType(req.TaskType),
		Language:      req.Language,
		EntityClasses: req.EntityClasses,
		Metadata:      req.Metadata,
	})
}

// handleLabelingFailure applies the configured retry policy after the labeler
// itself failed.
//
// Under revert_and_ack the task returns to uploaded and the message is
// consumed; the task re-enters the pipeline with the next publish batch.
// Under requeue the task stays in processing and the broker redelivers the
// message, dead-lettering it past the redelivery cap.
func (c *Consumer) handleLabelingFailure(
	ctx context.Context,
	delivery queue.Delivery,
	req *queue.WorkRequest,
	labelErr error,
	log *slog.Logger,
) {
	log.Warn("labeling failed", slog.String("error", labelErr.Error()))

	if c.retryPolicy == config.RetryPolicyRequeue {
		c.requeue(ctx, delivery, log)
		return
	}

	err := c.taskStore.UpdateStatus(ctx, req.TaskID, domain.TaskStatusProcessing, domain.TaskStatusUploaded)
	if err != nil && !errors.Is(err, store.ErrStateConflict) && !errors.Is(err, store.ErrTaskNotFound) {
		// Revert did not stick; keep the message so redelivery retries the
		// whole sequence once the store recovers.
		log.Error("failed to revert task, requeueing", slog.String("error", err.Error()))
		c.requeue(ctx, delivery, log)
		return
	}

	if err := delivery.Ack(ctx); err != nil {
		log.Error("ack failed after revert", slog.String("error", err.Error()))
	}
}

func (c *Consumer) reject(ctx context.Context, delivery queue.Delivery, log *slog.Logger) {
	if err := delivery.Reject(ctx); err != nil && !errors.Is(err, queue.ErrAlreadySettled) {
		log.Error("reject failed", slog.String("error", err.Error()))
	}
}

func (c *Consumer) requeue(ctx context.Context, delivery queue.Delivery, log *slog.Logger) {
	if err := delivery.Requeue(ctx); err != nil && !errors.Is(err, queue.ErrAlreadySettled) {
		log.Error("requeue failed", slog.String("error", err.Error()))
	}
}

func (c *Consumer) broadcast(ctx context.Context, eventType string, payload map[string]any) {
	if c.broadcaster == nil {
		return
	}
	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		c.logger.Error("failed to build event", slog.String("error", err.Error()))
		return
	}
	c.broadcaster.Broadcast(ctx, event)
}

func (c *Consumer) logResult(ctx context.Context, log *slog.Logger, record *queue.ResultRecord) {
	attrs := []any{
		slog.Int64("task_id", record.TaskID),
		slog.Int64("project_id", record.ProjectID),
		slog.Bool("success", record.Success),
		slog.Duration("duration", record.Duration),
	}
	if record.ModelUsed != "" {
		attrs = append(attrs, slog.String("model", record.ModelUsed))
	}

	if record.Success {
		log.InfoContext(ctx, "task labeled", attrs...)
		return
	}
	attrs = append(attrs, slog.String("error", record.ErrorMessage))
	log.WarnContext(ctx, "task not labeled", attrs...)
}
