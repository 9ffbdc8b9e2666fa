package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labelwise/labelwise-api/internal/platform/logger"
	"github.com/labelwise/labelwise-api/internal/queue"
	"github.com/labelwise/labelwise-api/internal/store"
)

// QueueOptions configures a PostgresQueue.
type QueueOptions struct {
	// Name of the work queue; messages are partitioned by it.
	Name string

	// Lease is how long a claimed message stays invisible to other consumers
	// before it becomes redeliverable.
	Lease time.Duration

	// MaxRedeliveries caps how many times a message may be redelivered
	// before Requeue dead-letters it instead.
	MaxRedeliveries int
}

// PostgresQueue is a durable work queue backed by a PostgreSQL table. It
// implements both queue.Publisher and queue.Consumer.
//
// Messages are persistent by construction: they are rows, so they survive
// restarts of every process involved. The database is the delivery
// serialization point: claiming uses FOR UPDATE SKIP LOCKED on a single row,
// which gives each receive exactly one message and never hands the same
// message to two consumers while a lease is live (prefetch of one, enforced
// by the claim statement itself). A consumer crash before settling lets the
// lease lapse and the message become redeliverable: at-least-once delivery.
type PostgresQueue struct {
	db     store.DBTX
	opts   QueueOptions
	logger *slog.Logger
}

// NewPostgresQueue creates a durable queue on the given database.
// If logger is nil, a default logger will be used.
func NewPostgresQueue(db store.DBTX, opts QueueOptions, logger *slog.Logger) *PostgresQueue {
	if db == nil {
		panic("db cannot be nil")
	}
	if opts.Name == "" {
		panic("queue name cannot be empty")
	}
	if opts.Lease <= 0 {
		opts.Lease = 5 * time.Minute
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQueue{
		db:     db,
		opts:   opts,
		logger: logger.With(slog.String("component", "postgres_queue"), slog.String("queue", opts.Name)),
	}
}

// Ensure PostgresQueue implements the broker interfaces
var (
	_ queue.Publisher = (*PostgresQueue)(nil)
	_ queue.Consumer  = (*PostgresQueue)(nil)
)

// Publish implements queue.Publisher.Publish
// The message is durably stored before Publish returns nil; that return is
// the delivery confirmation the batch publisher counts.
func (q *PostgresQueue) Publish(ctx context.Context, req *queue.WorkRequest) error {
	log := logger.FromContextOrDefault(ctx, q.logger)

	body, err := req.Encode()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	insert := `
		INSERT INTO queue_messages (id, queue, body, status, deliveries, created_at, updated_at)
		VALUES ($1, $2, $3, 'ready', 0, $4, $4)
	`

	if _, err := q.db.ExecContext(ctx, insert, uuid.New(), q.opts.Name, body, now); err != nil {
		log.Error("failed to publish message",
			slog.String("error", err.Error()),
			slog.Int64("task_id", req.TaskID))
		return fmt.Errorf("%w: %v", queue.ErrQueueUnavailable, err)
	}

	log.Debug("message published", slog.Int64("task_id", req.TaskID))
	return nil
}

// Receive implements queue.Consumer.Receive
// It claims at most one message: either a ready one or a claimed one whose
// lease has lapsed (redelivery). The claim is a single statement, so two
// consumers can never claim the same message concurrently.
func (q *PostgresQueue) Receive(ctx context.Context) (queue.Delivery, error) {
	log := logger.FromContextOrDefault(ctx, q.logger)

	now := time.Now().UTC()
	claim := `
		UPDATE queue_messages
		SET status = 'claimed', deliveries = deliveries + 1,
			lease_expires_at = $1, updated_at = $2
		WHERE id = (
			SELECT id FROM queue_messages
			WHERE queue = $3
				AND (status = 'ready' OR (status = 'claimed' AND lease_expires_at < $2))
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, body, deliveries
	`

	var id uuid.UUID
	var body []byte
	var deliveries int
	err := q.db.QueryRowContext(ctx, claim, now.Add(q.opts.Lease), now, q.opts.Name).
		Scan(&id, &body, &deliveries)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, queue.ErrNoMessages
		}
		log.Error("failed to claim message", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", queue.ErrQueueUnavailable, err)
	}

	if deliveries > 1 {
		log.Warn("message redelivered",
			slog.String("message_id", id.String()),
			slog.Int("deliveries", deliveries))
	}

	return &pgDelivery{queue: q, id: id, body: body, deliveries: deliveries}, nil
}

// pgDelivery is one claimed message. Settlement methods are safe to call at
// most once; later calls return queue.ErrAlreadySettled.
type pgDelivery struct {
	queue      *PostgresQueue
	id         uuid.UUID
	body       []byte
	deliveries int

	mu      sync.Mutex
	settled bool
}

// Ensure pgDelivery implements queue.Delivery
var _ queue.Delivery = (*pgDelivery)(nil)

// ID implements queue.Delivery.ID
func (d *pgDelivery) ID() uuid.UUID {
	return d.id
}

// Body implements queue.Delivery.Body
func (d *pgDelivery) Body() []byte {
	return d.body
}

// Deliveries implements queue.Delivery.Deliveries
func (d *pgDelivery) Deliveries() int {
	return d.deliveries
}

// Ack implements queue.Delivery.Ack
// The message row is removed; it can never be delivered again.
func (d *pgDelivery) Ack(ctx context.Context) error {
	return d.settle(ctx, func() error {
		_, err := d.queue.db.ExecContext(ctx,
			`DELETE FROM queue_messages WHERE id = $1`, d.id)
		return err
	})
}

// Reject implements queue.Delivery.Reject
// The message is dead-lettered in place: kept for inspection, never redelivered.
func (d *pgDelivery) Reject(ctx context.Context) error {
	return d.settle(ctx, func() error {
		_, err := d.queue.db.ExecContext(ctx,
			`UPDATE queue_messages SET status = 'dead', lease_expires_at = NULL, updated_at = $1 WHERE id = $2`,
			time.Now().UTC(), d.id)
		return err
	})
}

// Requeue implements queue.Delivery.Requeue
// Messages past the redelivery cap are dead-lettered instead of requeued so
// a deterministically failing input cannot loop forever.
func (d *pgDelivery) Requeue(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, d.queue.logger)

	if d.queue.opts.MaxRedeliveries > 0 && d.deliveries > d.queue.opts.MaxRedeliveries {
		log.Warn("redelivery cap reached, dead-lettering message",
			slog.String("message_id", d.id.String()),
			slog.Int("deliveries", d.deliveries))
		return d.Reject(ctx)
	}

	return d.settle(ctx, func() error {
		_, err := d.queue.db.ExecContext(ctx,
			`UPDATE queue_messages SET status = 'ready', lease_expires_at = NULL, updated_at = $1 WHERE id = $2`,
			time.Now().UTC(), d.id)
		return err
	})
}

func (d *pgDelivery) settle(ctx context.Context, op func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.settled {
		return queue.ErrAlreadySettled
	}

	if err := op(); err != nil {
		return fmt.Errorf("%w: %v", queue.ErrQueueUnavailable, err)
	}

	d.settled = true
	return nil
}

// Depth returns the number of ready and claimed messages on the queue.
// Used by the queue status endpoint.
func (q *PostgresQueue) Depth(ctx context.Context) (int, error) {
	var depth int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM queue_messages WHERE queue = $1 AND status IN ('ready', 'claimed')`,
		q.opts.Name).Scan(&depth)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", queue.ErrQueueUnavailable, err)
	}
	return depth, nil
}
