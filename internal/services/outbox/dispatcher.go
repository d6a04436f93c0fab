package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
	"github.com/kevin07696/ach-processor/pkg/observability"
	"github.com/kevin07696/ach-processor/pkg/resilience"
)

// DefaultBatchSize bounds how many messages one dispatch pass claims
const DefaultBatchSize = 100

// Dispatcher delivers pending outbox messages to the sync manager, retrying
// with backoff until a message runs out of retries and is dead-lettered
type Dispatcher struct {
	repo      ports.OutboxRepository
	sink      ports.PaymentSink
	backoff   resilience.BackoffStrategy
	timeouts  *resilience.TimeoutConfig
	logger    ports.Logger
	now       func() time.Time
	batchSize int
}

// DispatcherOption customises a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithBackoff overrides the redelivery backoff
func WithBackoff(b resilience.BackoffStrategy) DispatcherOption {
	return func(d *Dispatcher) { d.backoff = b }
}

// WithBatchSize overrides DefaultBatchSize
func WithBatchSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

// WithDispatcherTimeouts overrides the delivery and database timeouts
func WithDispatcherTimeouts(t *resilience.TimeoutConfig) DispatcherOption {
	return func(d *Dispatcher) { d.timeouts = t }
}

// WithDispatcherClock overrides time.Now
func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher creates a dispatcher
func NewDispatcher(repo ports.OutboxRepository, sink ports.PaymentSink, logger ports.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	d := &Dispatcher{
		repo:      repo,
		sink:      sink,
		backoff:   resilience.OutboxBackoff(),
		timeouts:  resilience.DefaultTimeoutConfig(),
		logger:    logger,
		now:       time.Now,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DispatchResult summarises one dispatch pass
type DispatchResult struct {
	Claimed      int `json:"claimed"`
	Delivered    int `json:"delivered"`
	Retried      int `json:"retried"`
	DeadLettered int `json:"dead_lettered"`
	Errors       int `json:"errors"`
}

// DispatchDue claims due messages and attempts each once. Per-message failures
// are recorded on the message; only a failed claim returns an error.
func (d *Dispatcher) DispatchDue(ctx context.Context) (*DispatchResult, error) {
	qctx, cancel := d.timeouts.QueryContext(ctx)
	messages, err := d.repo.ClaimDue(qctx, d.now(), d.batchSize)
	cancel()
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "Failed to claim outbox messages", err)
	}

	result := &DispatchResult{Claimed: len(messages)}
	for _, msg := range messages {
		if ctx.Err() != nil {
			break
		}
		d.dispatch(ctx, msg, result)
	}

	if result.Claimed > 0 {
		d.logger.Info("Outbox dispatch completed",
			ports.Int("claimed", result.Claimed),
			ports.Int("delivered", result.Delivered),
			ports.Int("retried", result.Retried),
			ports.Int("dead_lettered", result.DeadLettered))
	}
	return result, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, msg *domain.OutboxMessage, result *DispatchResult) {
	msg.Attempts++

	dctx, cancel := d.timeouts.DeliveryContext(ctx)
	deliverErr := d.sink.Deliver(dctx, msg)
	cancel()

	cctx, ccancel := d.timeouts.CommandContext(ctx)
	defer ccancel()
	now := d.now()

	if deliverErr == nil {
		if err := d.repo.MarkDelivered(cctx, msg.ID, now); err != nil {
			result.Errors++
			d.logger.Error("Failed to mark outbox message delivered",
				ports.String("outbox_id", msg.ID),
				ports.Err(err))
			return
		}
		result.Delivered++
		observability.RecordOutboxDelivery("delivered")
		return
	}

	if msg.CanRetry() {
		next := resilience.NextAttemptAt(d.backoff, now, msg.Attempts-1)
		if err := d.repo.MarkRetry(cctx, msg.ID, msg.Attempts, next, deliverErr.Error()); err != nil {
			result.Errors++
			d.logger.Error("Failed to schedule outbox retry",
				ports.String("outbox_id", msg.ID),
				ports.Err(err))
			return
		}
		result.Retried++
		observability.RecordOutboxDelivery("retry")
		d.logger.Warn("Outbox delivery failed, scheduled for retry",
			ports.String("outbox_id", msg.ID),
			ports.String("transaction_id", msg.Payload.TransactionID),
			ports.Int("attempts", msg.Attempts),
			ports.Time("next_attempt_at", next),
			ports.Err(deliverErr))
		return
	}

	reason := fmt.Sprintf("delivery failed after %d attempts: %v", msg.Attempts, deliverErr)
	if err := d.repo.MoveToDeadLetter(cctx, msg, reason, now); err != nil {
		result.Errors++
		d.logger.Error("Failed to dead-letter outbox message",
			ports.String("outbox_id", msg.ID),
			ports.Err(err))
		return
	}
	result.DeadLettered++
	observability.RecordOutboxDelivery("dead_lettered")
	observability.RecordOutboxDeadLetter("delivery")
	d.logger.Error("Outbox message dead-lettered",
		ports.String("outbox_id", msg.ID),
		ports.String("transaction_id", msg.Payload.TransactionID),
		ports.Int("attempts", msg.Attempts),
		ports.Err(deliverErr))
}

// Run dispatches every interval until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := d.DispatchDue(ctx); err != nil {
			d.logger.Error("Outbox dispatch failed", ports.Err(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ListDeadLetters returns dead letters awaiting reconciliation
func (d *Dispatcher) ListDeadLetters(ctx context.Context, limit int) ([]*domain.DeadLetter, error) {
	if limit <= 0 {
		limit = DefaultBatchSize
	}
	qctx, cancel := d.timeouts.QueryContext(ctx)
	defer cancel()

	letters, err := d.repo.ListDeadLetters(qctx, limit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "Failed to list dead letters", err)
	}
	return letters, nil
}

// Requeue moves a dead letter back into the outbox with a fresh retry budget
func (d *Dispatcher) Requeue(ctx context.Context, deadLetterID string) (*domain.OutboxMessage, error) {
	now := d.now()
	msg := &domain.OutboxMessage{
		ID:            uuid.NewString(),
		Status:        domain.OutboxStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	cctx, cancel := d.timeouts.CommandContext(ctx)
	defer cancel()

	// the repository fills Payload and MaxRetries from the dead letter
	if err := d.repo.Requeue(cctx, deadLetterID, msg); err != nil {
		if domain.IsNotFoundError(err) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "Failed to requeue dead letter", err)
	}

	d.logger.Info("Dead letter requeued",
		ports.String("dead_letter_id", deadLetterID),
		ports.String("outbox_id", msg.ID))
	return msg, nil
}
