package ports

import (
	"context"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/services/ach"
)

// ACHService defines the port for ACH origination
type ACHService interface {
	// ProcessACHDebit validates, tokenizes and queues a debit; the result is pending
	ProcessACHDebit(ctx context.Context, req *domain.ACHPaymentRequest) (*domain.ACHPaymentResult, error)

	// ProcessACHCredit validates and tokenizes a payout
	ProcessACHCredit(ctx context.Context, req *domain.ACHPaymentRequest) (*domain.ACHPaymentResult, error)

	// SetupRecurringACH computes the first payment date of a recurring debit
	SetupRecurringACH(ctx context.Context, setup *domain.RecurringACHSetup) (*domain.RecurringSetupResult, error)

	// GetRecurringSchedule loads a stored schedule
	GetRecurringSchedule(ctx context.Context, id string) (*domain.RecurringSchedule, error)

	// RecordRecurringPayment advances a schedule after one firing
	RecordRecurringPayment(ctx context.Context, id string) (*domain.RecurringSchedule, error)

	// CancelRecurringSchedule stops a schedule
	CancelRecurringSchedule(ctx context.Context, id string) (*domain.RecurringSchedule, error)

	// GenerateNACHAFile encodes a batch of requests as a NACHA file
	GenerateNACHAFile(ctx context.Context, entries []*domain.ACHPaymentRequest) (string, error)
}

// BankAccountValidator defines the port for stand-alone bank account checks
type BankAccountValidator interface {
	ValidateBankAccount(ctx context.Context, account *domain.BankAccount) (*ach.ValidationResult, error)
}

var (
	_ ACHService           = (*ach.Processor)(nil)
	_ BankAccountValidator = (*ach.Validator)(nil)
)
