// Package ach implements the ACH domain engine: bank account validation, debit and
// credit orchestration, recurring setup and NACHA export.
package ach

import (
	"context"
	"strings"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
	"github.com/kevin07696/ach-processor/pkg/resilience"
)

const (
	minAccountNumberDigits = 4
	maxAccountNumberDigits = 17
	minHolderNameLength    = 2
)

// Validation messages surfaced to callers verbatim
const (
	MsgInvalidRoutingNumber  = "Invalid routing number"
	MsgInvalidAccountNumber  = "Account number must be between 4 and 17 digits"
	MsgInvalidAccountType    = "Invalid account type"
	MsgHolderNameRequired    = "Account holder name is required"
	MsgAccountNotVerified    = "Bank account not verified via micro-deposits"
	MsgAmountMustBePositive  = "Amount must be greater than 0"
	MsgCurrencyRequired      = "Currency is required"
	MsgBankAccountRequired   = "Bank account is required"
	MsgInvalidFrequency      = "Invalid frequency"
	MsgStartDateRequired     = "Start date is required"
	MsgEndDateBeforeStart    = "End date must be after start date"
	MsgFirstPaymentAfterEnd  = "First payment date falls after end date"
	MsgMaxPaymentsPositive   = "Max payments must be greater than 0"
	bankAccountFailurePrefix = "Bank account validation failed"
)

// ValidationResult lists every problem found with a bank account
type ValidationResult struct {
	Errors []string `json:"errors"`
	Valid  bool     `json:"valid"`
}

// Validator checks bank account shape and, outside test mode, micro-deposit status
type Validator struct {
	verifier ports.AccountVerifier
	timeouts *resilience.TimeoutConfig
	logger   ports.Logger
	testMode bool
}

// NewValidator creates a validator. verifier may be nil in test mode.
func NewValidator(testMode bool, verifier ports.AccountVerifier, timeouts *resilience.TimeoutConfig, logger ports.Logger) *Validator {
	if timeouts == nil {
		timeouts = resilience.DefaultTimeoutConfig()
	}
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &Validator{
		verifier: verifier,
		timeouts: timeouts,
		logger:   logger,
		testMode: testMode,
	}
}

// ValidateBankAccount collects every failure instead of stopping at the first.
// It returns an error only for a nil account or when the verifier cannot answer.
func (v *Validator) ValidateBankAccount(ctx context.Context, account *domain.BankAccount) (*ValidationResult, error) {
	if account == nil {
		return nil, domain.WrapError(domain.ErrorCodeValidationMissingField,
			bankAccountFailurePrefix+": "+MsgBankAccountRequired, domain.ErrBankAccountRequired)
	}

	errs := make([]string, 0, 4)

	if !domain.ValidateRoutingNumber(account.RoutingNumber) {
		errs = append(errs, MsgInvalidRoutingNumber)
	}

	n := len(account.AccountNumber)
	if !domain.IsDigits(account.AccountNumber) || n < minAccountNumberDigits || n > maxAccountNumberDigits {
		errs = append(errs, MsgInvalidAccountNumber)
	}

	if !account.AccountType.IsValid() {
		errs = append(errs, MsgInvalidAccountType)
	}

	if len(strings.TrimSpace(account.AccountHolderName)) < minHolderNameLength {
		errs = append(errs, MsgHolderNameRequired)
	}

	if !v.testMode {
		verified, err := v.isVerified(ctx, account)
		if err != nil {
			return nil, err
		}
		if !verified {
			errs = append(errs, MsgAccountNotVerified)
		}
	}

	return &ValidationResult{Valid: len(errs) == 0, Errors: errs}, nil
}

func (v *Validator) isVerified(ctx context.Context, account *domain.BankAccount) (bool, error) {
	if v.verifier == nil {
		return false, domain.NewDomainError(domain.ErrorCodeVerificationFailed,
			"micro-deposit verifier is not configured")
	}

	vctx, cancel := v.timeouts.VerifierContext(ctx)
	defer cancel()

	verified, err := v.verifier.IsVerified(vctx, account)
	if err != nil {
		v.logger.Error("Micro-deposit verification lookup failed",
			ports.String("routing_number", account.RoutingNumber),
			ports.String("account_last4", account.Last4()),
			ports.Err(err))
		return false, domain.WrapError(domain.ErrorCodeVerificationFailed,
			"Failed to check micro-deposit verification", err)
	}
	return verified, nil
}

// bankAccountViolation folds a failed validation result into one request-level message
func bankAccountViolation(result *ValidationResult) string {
	return bankAccountFailurePrefix + ": " + strings.Join(result.Errors, ", ")
}
