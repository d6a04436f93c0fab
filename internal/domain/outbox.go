package domain

import (
	"time"
)

// PaymentMethodACHDebit is the payment method label handed to the sync manager
const PaymentMethodACHDebit = "ach_debit"

// DefaultQueueMaxRetries caps redelivery of queued ACH debits. ACH tolerates retried
// debits poorly, so this stays low.
const DefaultQueueMaxRetries = 2

// QueuedPayment is the payload handed to the payment sync queue
type QueuedPayment struct {
	Metadata       map[string]string `json:"metadata,omitempty"`
	TransactionID  string            `json:"transaction_id"`
	Currency       string            `json:"currency"`
	PaymentMethod  string            `json:"payment_method"`
	OrganizationID string            `json:"organization_id"`
	TokenID        string            `json:"token_id,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	Amount         int64             `json:"amount"`
	MaxRetries     int               `json:"max_retries"`
}

// OutboxStatus tracks delivery of a queued payment to the sync manager
type OutboxStatus string

const (
	OutboxStatusPending      OutboxStatus = "pending"
	OutboxStatusDelivered    OutboxStatus = "delivered"
	OutboxStatusDeadLettered OutboxStatus = "dead_lettered"
)

// OutboxMessage is a durable record of a queued payment awaiting delivery
type OutboxMessage struct {
	NextAttemptAt time.Time     `json:"next_attempt_at"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Payload       QueuedPayment `json:"payload"`
	ID            string        `json:"id"`
	Status        OutboxStatus  `json:"status"`
	LastError     string        `json:"last_error,omitempty"`
	Attempts      int           `json:"attempts"`
	MaxRetries    int           `json:"max_retries"`
}

// CanRetry reports whether another delivery attempt is allowed.
// The first delivery is not a retry, so MaxRetries=2 permits three attempts.
func (m *OutboxMessage) CanRetry() bool {
	return m.Attempts <= m.MaxRetries
}

// DeadLetter is a queued payment that could not be delivered (or enqueued) and
// needs reconciliation.
type DeadLetter struct {
	CreatedAt time.Time     `json:"created_at"`
	Payload   QueuedPayment `json:"payload"`
	ID        string        `json:"id"`
	MessageID string        `json:"message_id,omitempty"`
	Reason    string        `json:"reason"`
	Attempts  int           `json:"attempts"`
}
