package ports

import (
	"context"
	"time"

	"github.com/kevin07696/ach-processor/internal/domain"
)

// PaymentQueue hands a decided payment to the sync manager. Implementations must
// make the hand-off durable before returning nil.
type PaymentQueue interface {
	QueuePayment(ctx context.Context, payment *domain.QueuedPayment) error
}

// DeadLetterRecorder captures payments that could not be queued so a reconciliation
// job can find them
type DeadLetterRecorder interface {
	RecordDeadLetter(ctx context.Context, payment *domain.QueuedPayment, reason string) error
}

// PaymentSink is the downstream sync manager that finally receives queued payments
type PaymentSink interface {
	Deliver(ctx context.Context, msg *domain.OutboxMessage) error
}

// OutboxRepository persists queued payments until they are delivered or dead-lettered
type OutboxRepository interface {
	// Enqueue stores a new pending message
	Enqueue(ctx context.Context, msg *domain.OutboxMessage) error

	// ClaimDue returns up to limit pending messages whose next attempt is not after asOf
	ClaimDue(ctx context.Context, asOf time.Time, limit int) ([]*domain.OutboxMessage, error)

	// MarkDelivered records a successful delivery
	MarkDelivered(ctx context.Context, id string, at time.Time) error

	// MarkRetry records a failed attempt and schedules the next one
	MarkRetry(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastErr string) error

	// MoveToDeadLetter marks the message dead-lettered and inserts a dead letter atomically
	MoveToDeadLetter(ctx context.Context, msg *domain.OutboxMessage, reason string, at time.Time) error

	// InsertDeadLetter stores a dead letter that never made it into the outbox
	InsertDeadLetter(ctx context.Context, dl *domain.DeadLetter) error

	// ListDeadLetters returns the oldest dead letters first
	ListDeadLetters(ctx context.Context, limit int) ([]*domain.DeadLetter, error)

	// Requeue removes a dead letter and enqueues its payload again as msg. The
	// repository copies Payload and MaxRetries from the dead letter into msg.
	Requeue(ctx context.Context, deadLetterID string, msg *domain.OutboxMessage) error
}
