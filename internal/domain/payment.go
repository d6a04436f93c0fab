package domain

import (
	"time"
)

// PaymentStatus represents the lifecycle state of an ACH payment.
// The in-process path only ever produces StatusPending; settlement and returns are
// reconciled out of process.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusSucceeded  PaymentStatus = "succeeded"
	StatusFailed     PaymentStatus = "failed"
	StatusReturned   PaymentStatus = "returned"
)

// Direction is the money movement of an entry from the originator's point of view
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// IsCredit treats the zero value as a debit
func (d Direction) IsCredit() bool {
	return d == DirectionCredit
}

// ACHPaymentRequest is one originated transfer intent. Amount is in the smallest
// currency unit.
type ACHPaymentRequest struct {
	EffectiveDate       *time.Time        `json:"effective_date,omitempty" yaml:"effective_date,omitempty"`
	BankAccount         *BankAccount      `json:"bank_account" yaml:"bank_account"`
	Metadata            map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Currency            string            `json:"currency" yaml:"currency"`
	Description         string            `json:"description" yaml:"description"`
	StatementDescriptor string            `json:"statement_descriptor,omitempty" yaml:"statement_descriptor,omitempty"`
	IdempotencyKey      string            `json:"idempotency_key,omitempty" yaml:"idempotency_key,omitempty"`
	Direction           Direction         `json:"direction,omitempty" yaml:"direction,omitempty"`
	Amount              int64             `json:"amount" yaml:"amount"`
}

// ACHPaymentResult is the synchronous outcome of a debit or credit
type ACHPaymentResult struct {
	EffectiveDate        time.Time     `json:"effective_date"`
	ID                   string        `json:"id"`
	Status               PaymentStatus `json:"status"`
	Currency             string        `json:"currency"`
	TraceNumber          string        `json:"trace_number"`
	TransactionCode      string        `json:"transaction_code"`
	TokenID              string        `json:"token_id,omitempty"`
	IdempotencyKey       string        `json:"idempotency_key,omitempty"`
	NetworkTransactionID string        `json:"network_transaction_id,omitempty"`
	ReturnCode           string        `json:"return_code,omitempty"`
	ReturnDescription    string        `json:"return_description,omitempty"`
	Amount               int64         `json:"amount"`
	Fee                  int64         `json:"fee"`
}

// IsTerminal returns true once the payment can no longer change state
func (r *ACHPaymentResult) IsTerminal() bool {
	return r.Status == StatusSucceeded || r.Status == StatusFailed || r.Status == StatusReturned
}
