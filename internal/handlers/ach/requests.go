package ach

import (
	"fmt"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/pkg/timeutil"
)

// PaymentRequest is the JSON body for debits, credits and NACHA entries.
// Dates are YYYY-MM-DD or RFC 3339.
type PaymentRequest struct {
	BankAccount         *domain.BankAccount `json:"bank_account"`
	Metadata            map[string]string   `json:"metadata,omitempty"`
	Currency            string              `json:"currency"`
	Description         string              `json:"description"`
	StatementDescriptor string              `json:"statement_descriptor,omitempty"`
	IdempotencyKey      string              `json:"idempotency_key,omitempty"`
	EffectiveDate       string              `json:"effective_date,omitempty"`
	Direction           domain.Direction    `json:"direction,omitempty"`
	Amount              int64               `json:"amount"`
}

func (r *PaymentRequest) toDomain(direction domain.Direction) (*domain.ACHPaymentRequest, error) {
	req := &domain.ACHPaymentRequest{
		Amount:              r.Amount,
		Currency:            r.Currency,
		BankAccount:         r.BankAccount,
		Description:         r.Description,
		StatementDescriptor: r.StatementDescriptor,
		IdempotencyKey:      r.IdempotencyKey,
		Metadata:            r.Metadata,
		Direction:           direction,
	}
	if r.EffectiveDate != "" {
		t, err := timeutil.ParseDate(r.EffectiveDate)
		if err != nil {
			return nil, fmt.Errorf("effective_date: %w", err)
		}
		req.EffectiveDate = &t
	}
	return req, nil
}

// RecurringRequest is the JSON body for recurring setup
type RecurringRequest struct {
	BankAccount *domain.BankAccount `json:"bank_account"`
	MaxPayments *int                `json:"max_payments,omitempty"`
	Metadata    map[string]string   `json:"metadata,omitempty"`
	Frequency   domain.Frequency    `json:"frequency"`
	Currency    string              `json:"currency"`
	Description string              `json:"description"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date,omitempty"`
	Amount      int64               `json:"amount"`
}

func (r *RecurringRequest) toDomain() (*domain.RecurringACHSetup, error) {
	setup := &domain.RecurringACHSetup{
		Frequency:   r.Frequency,
		Amount:      r.Amount,
		Currency:    r.Currency,
		BankAccount: r.BankAccount,
		Description: r.Description,
		Metadata:    r.Metadata,
		MaxPayments: r.MaxPayments,
	}
	if r.StartDate != "" {
		t, err := timeutil.ParseDate(r.StartDate)
		if err != nil {
			return nil, fmt.Errorf("start_date: %w", err)
		}
		setup.StartDate = t
	}
	if r.EndDate != "" {
		t, err := timeutil.ParseDate(r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("end_date: %w", err)
		}
		setup.EndDate = &t
	}
	return setup, nil
}

// NACHAFileRequest is the JSON body for file generation
type NACHAFileRequest struct {
	Entries []PaymentRequest `json:"entries"`
}
