package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
)

// Queue is the durable PaymentQueue. A payment is queued once its outbox row is
// written; delivery to the sync manager happens later in the Dispatcher.
type Queue struct {
	repo   ports.OutboxRepository
	logger ports.Logger
	now    func() time.Time
}

// NewQueue creates an outbox-backed payment queue
func NewQueue(repo ports.OutboxRepository, logger ports.Logger) *Queue {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &Queue{repo: repo, logger: logger, now: time.Now}
}

var (
	_ ports.PaymentQueue       = (*Queue)(nil)
	_ ports.DeadLetterRecorder = (*Queue)(nil)
)

// QueuePayment writes a pending outbox message due immediately
func (q *Queue) QueuePayment(ctx context.Context, payment *domain.QueuedPayment) error {
	if payment == nil {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "queued payment is required")
	}

	now := q.now()
	msg := &domain.OutboxMessage{
		ID:            uuid.NewString(),
		Status:        domain.OutboxStatusPending,
		Payload:       *payment,
		MaxRetries:    payment.MaxRetries,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := q.repo.Enqueue(ctx, msg); err != nil {
		return domain.WrapError(domain.ErrorCodeQueueFailed, "Failed to enqueue payment", err)
	}

	q.logger.Debug("Payment enqueued",
		ports.String("outbox_id", msg.ID),
		ports.String("transaction_id", payment.TransactionID))
	return nil
}

// RecordDeadLetter stores a payment that never reached the outbox
func (q *Queue) RecordDeadLetter(ctx context.Context, payment *domain.QueuedPayment, reason string) error {
	if payment == nil {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "queued payment is required")
	}

	dl := &domain.DeadLetter{
		ID:        uuid.NewString(),
		Payload:   *payment,
		Reason:    reason,
		CreatedAt: q.now(),
	}
	if err := q.repo.InsertDeadLetter(ctx, dl); err != nil {
		return fmt.Errorf("insert dead letter for %s: %w", payment.TransactionID, err)
	}
	return nil
}
