package ach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kevin07696/ach-processor/internal/calendar"
	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
	"github.com/kevin07696/ach-processor/internal/nacha"
	"github.com/kevin07696/ach-processor/pkg/observability"
	"github.com/kevin07696/ach-processor/pkg/resilience"
)

// Config is the originator identity fixed at construction
type Config struct {
	OriginatorID        string
	OriginatorName      string
	CompanyID           string
	OriginRoutingNumber string
	OrganizationID      string
	TestMode            bool
	// StrictNACHAVerify re-reads every generated file with the moov-io/ach parser
	StrictNACHAVerify bool
}

// Processor orchestrates ACH debits, credits, recurring setup and NACHA export.
// It holds no mutable state beyond the atomic trace sequence and is safe for
// concurrent use.
type Processor struct {
	validator   *Validator
	tokenizer   ports.Tokenizer
	queue       ports.PaymentQueue
	deadLetters ports.DeadLetterRecorder
	schedules   ports.RecurringScheduleStore
	calendar    *calendar.BusinessCalendar
	formatter   *nacha.Formatter
	timeouts    *resilience.TimeoutConfig
	traces      *TraceSequence
	now         func() time.Time
	logger      ports.Logger
	cfg         Config
}

// Option customises a Processor
type Option func(*Processor)

// WithDeadLetterRecorder records payments whose enqueue failed
func WithDeadLetterRecorder(r ports.DeadLetterRecorder) Option {
	return func(p *Processor) { p.deadLetters = r }
}

// WithScheduleStore persists recurring schedules created by SetupRecurringACH
func WithScheduleStore(s ports.RecurringScheduleStore) Option {
	return func(p *Processor) { p.schedules = s }
}

// WithTimeouts overrides the collaborator timeouts
func WithTimeouts(t *resilience.TimeoutConfig) Option {
	return func(p *Processor) { p.timeouts = t }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithTraceSequence overrides the clock-seeded trace sequence
func WithTraceSequence(t *TraceSequence) Option {
	return func(p *Processor) { p.traces = t }
}

// NewProcessor creates a processor
func NewProcessor(
	cfg Config,
	validator *Validator,
	tokenizer ports.Tokenizer,
	queue ports.PaymentQueue,
	cal *calendar.BusinessCalendar,
	formatter *nacha.Formatter,
	logger ports.Logger,
	opts ...Option,
) *Processor {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	p := &Processor{
		cfg:       cfg,
		validator: validator,
		tokenizer: tokenizer,
		queue:     queue,
		calendar:  cal,
		formatter: formatter,
		timeouts:  resilience.DefaultTimeoutConfig(),
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.traces == nil {
		p.traces = NewClockSeededTraceSequence(cfg.OriginRoutingNumber, p.now())
	}
	return p
}

// ProcessACHDebit validates, tokenizes and queues a debit. The result is always
// pending; a failed queue hand-off is dead-lettered instead of failing the call.
func (p *Processor) ProcessACHDebit(ctx context.Context, req *domain.ACHPaymentRequest) (*domain.ACHPaymentResult, error) {
	start := time.Now()

	result, token, err := p.prepare(ctx, req, domain.DirectionDebit)
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]string, len(req.Metadata)+3)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata[nacha.MetadataTraceNumber] = result.TraceNumber
	metadata["transaction_code"] = result.TransactionCode
	metadata["effective_date"] = result.EffectiveDate.Format("2006-01-02")

	queued := &domain.QueuedPayment{
		TransactionID:  result.ID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		PaymentMethod:  domain.PaymentMethodACHDebit,
		OrganizationID: p.cfg.OrganizationID,
		TokenID:        token.ID,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       metadata,
		MaxRetries:     domain.DefaultQueueMaxRetries,
	}
	p.enqueue(ctx, queued)

	observability.RecordACHPayment(string(domain.DirectionDebit), result.TransactionCode, string(result.Status),
		result.Currency, result.Amount, result.Fee, time.Since(start).Seconds())

	p.logger.Info("ACH debit accepted",
		ports.String("transaction_id", result.ID),
		ports.String("trace_number", result.TraceNumber),
		ports.String("account_last4", req.BankAccount.Last4()),
		ports.Int64("amount", result.Amount),
		ports.Int64("fee", result.Fee))

	return result, nil
}

// ProcessACHCredit validates and tokenizes a payout. Credits are not queued.
func (p *Processor) ProcessACHCredit(ctx context.Context, req *domain.ACHPaymentRequest) (*domain.ACHPaymentResult, error) {
	start := time.Now()

	result, _, err := p.prepare(ctx, req, domain.DirectionCredit)
	if err != nil {
		return nil, err
	}

	observability.RecordACHPayment(string(domain.DirectionCredit), result.TransactionCode, string(result.Status),
		result.Currency, result.Amount, result.Fee, time.Since(start).Seconds())

	p.logger.Info("ACH credit accepted",
		ports.String("transaction_id", result.ID),
		ports.String("trace_number", result.TraceNumber),
		ports.String("account_last4", req.BankAccount.Last4()),
		ports.Int64("amount", result.Amount))

	return result, nil
}

// prepare runs the shared debit/credit path: validate, refuse live mode,
// tokenize, then derive ids, dates, fee and transaction code
func (p *Processor) prepare(ctx context.Context, req *domain.ACHPaymentRequest, direction domain.Direction) (*domain.ACHPaymentResult, *ports.Token, error) {
	violations, err := p.validateRequest(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if len(violations) > 0 {
		observability.RecordACHValidationFailure(string(direction))
		p.logger.Warn("ACH request rejected",
			ports.String("direction", string(direction)),
			ports.Int("violations", len(violations)))
		return nil, nil, domain.ValidationFailed(fmt.Sprintf("ACH %s validation failed", direction), violations)
	}

	if !p.cfg.TestMode {
		return nil, nil, domain.NewDomainError(domain.ErrorCodeLiveModeNotImplemented,
			fmt.Sprintf("Live ACH %s processing is not implemented", direction))
	}

	token, err := p.tokenize(ctx, req.BankAccount, req.Metadata)
	if err != nil {
		return nil, nil, err
	}

	now := p.now()
	effective := p.calendar.NextBusinessDay(now)
	if req.EffectiveDate != nil {
		effective = *req.EffectiveDate
	}

	code := domain.TransactionCodeFor(direction, req.BankAccount.AccountType)
	return &domain.ACHPaymentResult{
		ID:              GenerateTransactionID(),
		Status:          domain.StatusPending,
		Amount:          req.Amount,
		Currency:        req.Currency,
		EffectiveDate:   effective,
		Fee:             CalculateACHFee(req.Amount),
		TraceNumber:     p.traces.Next(),
		TransactionCode: string(code),
		TokenID:         token.ID,
		IdempotencyKey:  req.IdempotencyKey,
	}, token, nil
}

// validateRequest returns every request-level violation. A non-nil error means
// validation itself could not run.
func (p *Processor) validateRequest(ctx context.Context, req *domain.ACHPaymentRequest) ([]string, error) {
	if req == nil {
		return []string{MsgAmountMustBePositive, MsgCurrencyRequired, MsgBankAccountRequired}, nil
	}

	var violations []string
	if req.Amount <= 0 {
		violations = append(violations, MsgAmountMustBePositive)
	}
	if req.Currency == "" {
		violations = append(violations, MsgCurrencyRequired)
	}
	if req.BankAccount == nil {
		violations = append(violations, MsgBankAccountRequired)
		return violations, nil
	}

	result, err := p.validator.ValidateBankAccount(ctx, req.BankAccount)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		violations = append(violations, bankAccountViolation(result))
	}
	return violations, nil
}

func (p *Processor) tokenize(ctx context.Context, account *domain.BankAccount, metadata map[string]string) (*ports.Token, error) {
	tctx, cancel := p.timeouts.TokenizerContext(ctx)
	defer cancel()

	token, err := p.tokenizer.Tokenize(tctx, &ports.TokenizeRequest{
		Type: ports.TokenTypeBankAccount,
		SensitiveData: map[string]string{
			"routing_number":      account.RoutingNumber,
			"account_number":      account.AccountNumber,
			"account_type":        string(account.AccountType),
			"account_holder_name": account.AccountHolderName,
			"account_holder_type": string(account.AccountHolderType),
		},
		OrganizationID: p.cfg.OrganizationID,
		Metadata:       metadata,
	})
	if err != nil {
		p.logger.Error("Bank account tokenization failed",
			ports.String("account_last4", account.Last4()),
			ports.Err(err))
		return nil, domain.WrapError(domain.ErrorCodeTokenizationFailed, "Failed to tokenize bank account", err)
	}
	if token == nil || token.ID == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeTokenizationFailed, "Tokenizer returned an empty token")
	}
	return token, nil
}

// enqueue hands the debit to the sync queue. Failure is logged, counted and
// dead-lettered so reconciliation can pick it up; it never fails the debit.
func (p *Processor) enqueue(ctx context.Context, payment *domain.QueuedPayment) {
	qctx, cancel := p.timeouts.QueueContext(ctx)
	err := p.queue.QueuePayment(qctx, payment)
	cancel()
	if err == nil {
		return
	}

	observability.RecordACHQueueFailure()
	p.logger.Error("Failed to queue ACH debit",
		ports.String("transaction_id", payment.TransactionID),
		ports.Err(err))

	if p.deadLetters == nil {
		return
	}

	// the caller's deadline may be what failed the enqueue
	dctx, dcancel := p.timeouts.QueueContext(context.WithoutCancel(ctx))
	defer dcancel()
	if dlErr := p.deadLetters.RecordDeadLetter(dctx, payment, err.Error()); dlErr != nil {
		p.logger.Error("Failed to dead-letter ACH debit",
			ports.String("transaction_id", payment.TransactionID),
			ports.Err(dlErr))
		return
	}
	observability.RecordOutboxDeadLetter("enqueue")
}

// SetupRecurringACH validates a recurring debit and computes its first payment
// date. The schedule is persisted when a store is configured; nothing is executed.
func (p *Processor) SetupRecurringACH(ctx context.Context, setup *domain.RecurringACHSetup) (*domain.RecurringSetupResult, error) {
	violations, err := p.validateSetup(ctx, setup)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		observability.RecordACHValidationFailure("recurring")
		return nil, domain.ValidationFailed("Recurring ACH setup validation failed", violations)
	}

	result := &domain.RecurringSetupResult{
		SubscriptionID:  GenerateSubscriptionID(),
		NextPaymentDate: p.calendar.CalculateNextPaymentDate(setup.StartDate, setup.Frequency),
	}

	if p.schedules != nil {
		token, err := p.tokenize(ctx, setup.BankAccount, setup.Metadata)
		if err != nil {
			return nil, err
		}

		now := p.now()
		schedule := &domain.RecurringSchedule{
			ID:              result.SubscriptionID,
			TokenID:         token.ID,
			RoutingNumber:   setup.BankAccount.RoutingNumber,
			AccountLast4:    setup.BankAccount.Last4(),
			AccountType:     setup.BankAccount.AccountType,
			Frequency:       setup.Frequency,
			Status:          domain.ScheduleStatusActive,
			Amount:          setup.Amount,
			Currency:        setup.Currency,
			Description:     setup.Description,
			Metadata:        setup.Metadata,
			StartDate:       setup.StartDate,
			EndDate:         setup.EndDate,
			MaxPayments:     setup.MaxPayments,
			NextPaymentDate: result.NextPaymentDate,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := p.schedules.Create(ctx, schedule); err != nil {
			return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "Failed to save recurring schedule", err)
		}
	}

	observability.RecordRecurringSetup(string(setup.Frequency))
	p.logger.Info("Recurring ACH schedule created",
		ports.String("subscription_id", result.SubscriptionID),
		ports.String("frequency", string(setup.Frequency)),
		ports.Time("next_payment_date", result.NextPaymentDate))

	return result, nil
}

func (p *Processor) validateSetup(ctx context.Context, setup *domain.RecurringACHSetup) ([]string, error) {
	if setup == nil {
		return []string{MsgBankAccountRequired}, nil
	}

	var violations []string
	if setup.BankAccount == nil {
		violations = append(violations, MsgBankAccountRequired)
	} else {
		result, err := p.validator.ValidateBankAccount(ctx, setup.BankAccount)
		if err != nil {
			return nil, err
		}
		if !result.Valid {
			violations = append(violations, bankAccountViolation(result))
		}
	}

	if !setup.Frequency.IsValid() {
		violations = append(violations, MsgInvalidFrequency)
	}
	if setup.Amount <= 0 {
		violations = append(violations, MsgAmountMustBePositive)
	}
	if setup.Currency == "" {
		violations = append(violations, MsgCurrencyRequired)
	}
	if setup.StartDate.IsZero() {
		violations = append(violations, MsgStartDateRequired)
	} else if setup.EndDate != nil {
		switch {
		case !setup.EndDate.After(setup.StartDate):
			violations = append(violations, MsgEndDateBeforeStart)
		case setup.Frequency.IsValid() &&
			p.calendar.CalculateNextPaymentDate(setup.StartDate, setup.Frequency).After(*setup.EndDate):
			violations = append(violations, MsgFirstPaymentAfterEnd)
		}
	}
	if setup.MaxPayments != nil && *setup.MaxPayments <= 0 {
		violations = append(violations, MsgMaxPaymentsPositive)
	}
	return violations, nil
}

// GetRecurringSchedule loads a stored schedule
func (p *Processor) GetRecurringSchedule(ctx context.Context, id string) (*domain.RecurringSchedule, error) {
	if p.schedules == nil {
		return nil, domain.NewDomainError(domain.ErrorCodeInternalError, "recurring schedule store is not configured")
	}
	schedule, err := p.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

// RecordRecurringPayment marks one firing of a schedule as processed and advances
// its next payment date. Triggering the debit itself is the caller's job.
func (p *Processor) RecordRecurringPayment(ctx context.Context, id string) (*domain.RecurringSchedule, error) {
	schedule, err := p.GetRecurringSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := schedule.RecordPayment(p.calendar, p.now()); err != nil {
		if errors.Is(err, domain.ErrScheduleCompleted) {
			// persist the completed status even though no payment was recorded
			if uerr := p.schedules.Update(ctx, schedule); uerr != nil {
				return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "Failed to update recurring schedule", uerr)
			}
		}
		return nil, domain.WrapError(domain.ErrorCodeScheduleInactive, "Recurring schedule cannot accept payments", err)
	}

	if err := p.schedules.Update(ctx, schedule); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "Failed to update recurring schedule", err)
	}

	p.logger.Info("Recurring ACH payment recorded",
		ports.String("subscription_id", schedule.ID),
		ports.Int("payments_processed", schedule.PaymentsProcessed),
		ports.String("status", string(schedule.Status)))

	return schedule, nil
}

// CancelRecurringSchedule stops a schedule from firing again
func (p *Processor) CancelRecurringSchedule(ctx context.Context, id string) (*domain.RecurringSchedule, error) {
	schedule, err := p.GetRecurringSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := schedule.Cancel(p.now()); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeScheduleInactive, "Recurring schedule is already cancelled", err)
	}
	if err := p.schedules.Update(ctx, schedule); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "Failed to update recurring schedule", err)
	}
	return schedule, nil
}

// GenerateNACHAFile validates every entry and encodes them as one PPD batch
func (p *Processor) GenerateNACHAFile(ctx context.Context, entries []*domain.ACHPaymentRequest) (string, error) {
	if len(entries) == 0 {
		return "", domain.WrapError(domain.ErrorCodeValidationFailed, "NACHA file requires at least one entry", domain.ErrEmptyBatch)
	}

	var violations []string
	for i, req := range entries {
		v, err := p.validateRequest(ctx, req)
		if err != nil {
			return "", err
		}
		for _, msg := range v {
			violations = append(violations, fmt.Sprintf("entry %d: %s", i+1, msg))
		}
	}
	if len(violations) > 0 {
		observability.RecordACHValidationFailure("nacha")
		return "", domain.ValidationFailed("NACHA file validation failed", violations)
	}

	file, err := p.formatter.GenerateFile(entries, p.now())
	if err != nil {
		return "", domain.WrapError(domain.ErrorCodeNACHAEncodingFailed, "Failed to encode NACHA file", err)
	}

	if p.cfg.StrictNACHAVerify {
		if err := nacha.Verify(file); err != nil {
			p.logger.Error("Generated NACHA file failed verification", ports.Err(err))
			return "", domain.WrapError(domain.ErrorCodeNACHAEncodingFailed, "Generated NACHA file failed verification", err)
		}
	}

	observability.RecordNACHAFile(len(entries))
	p.logger.Info("NACHA file generated", ports.Int("entries", len(entries)))

	return file, nil
}
