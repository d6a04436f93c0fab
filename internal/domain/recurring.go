package domain

import (
	"time"
)

// Frequency defines how often a recurring ACH debit fires
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnually  Frequency = "annually"
)

// IsValid reports whether f is a supported frequency
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually:
		return true
	default:
		return false
	}
}

// AddTo advances t by one interval. Month arithmetic follows time.AddDate
// normalisation (Jan 31 + 1 month = Mar 3 in non-leap years).
func (f Frequency) AddTo(t time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return t.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return t.AddDate(0, 3, 0)
	case FrequencyAnnually:
		return t.AddDate(1, 0, 0)
	default:
		return t
	}
}

// ScheduleStatus represents the state of a recurring schedule
type ScheduleStatus string

const (
	ScheduleStatusActive    ScheduleStatus = "active"
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// RecurringACHSetup is the caller's request to schedule repeated debits
type RecurringACHSetup struct {
	StartDate   time.Time         `json:"start_date"`
	EndDate     *time.Time        `json:"end_date,omitempty"`
	MaxPayments *int              `json:"max_payments,omitempty"`
	BankAccount *BankAccount      `json:"bank_account"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Frequency   Frequency         `json:"frequency"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Amount      int64             `json:"amount"`
}

// RecurringSetupResult is returned to the caller once a schedule is created
type RecurringSetupResult struct {
	NextPaymentDate time.Time `json:"next_payment_date"`
	SubscriptionID  string    `json:"subscription_id"`
}

// PaymentDateCalculator computes the next business-day payment date
type PaymentDateCalculator interface {
	CalculateNextPaymentDate(from time.Time, frequency Frequency) time.Time
}

// RecurringSchedule is the persisted form of a recurring ACH debit.
// The raw account number is replaced by the vault token.
type RecurringSchedule struct {
	StartDate         time.Time         `json:"start_date"`
	NextPaymentDate   time.Time         `json:"next_payment_date"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	EndDate           *time.Time        `json:"end_date,omitempty"`
	MaxPayments       *int              `json:"max_payments,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	ID                string            `json:"id"`
	TokenID           string            `json:"token_id"`
	RoutingNumber     string            `json:"routing_number"`
	AccountLast4      string            `json:"account_last4"`
	AccountType       AccountType       `json:"account_type"`
	Frequency         Frequency         `json:"frequency"`
	Status            ScheduleStatus    `json:"status"`
	Currency          string            `json:"currency"`
	Description       string            `json:"description"`
	Amount            int64             `json:"amount"`
	PaymentsProcessed int               `json:"payments_processed"`
}

// IsActive returns true if the schedule can still fire
func (s *RecurringSchedule) IsActive() bool {
	return s.Status == ScheduleStatusActive
}

// IsDue returns true if the schedule is active, its next date is not after asOf
// and that payment stays within MaxPayments and EndDate
func (s *RecurringSchedule) IsDue(asOf time.Time) bool {
	return s.IsActive() && !s.NextPaymentDate.After(asOf) && !s.ReachedLimit()
}

// ReachedLimit reports whether another payment would exceed MaxPayments or EndDate
func (s *RecurringSchedule) ReachedLimit() bool {
	if s.MaxPayments != nil && s.PaymentsProcessed >= *s.MaxPayments {
		return true
	}
	if s.EndDate != nil && s.NextPaymentDate.After(*s.EndDate) {
		return true
	}
	return false
}

// RecordPayment marks one firing as processed and advances NextPaymentDate.
// The schedule completes when the payment cap is hit or the next date falls after EndDate.
func (s *RecurringSchedule) RecordPayment(calc PaymentDateCalculator, at time.Time) error {
	switch s.Status {
	case ScheduleStatusCompleted:
		return ErrScheduleCompleted
	case ScheduleStatusCancelled:
		return ErrScheduleCancelled
	}
	if s.ReachedLimit() {
		s.Status = ScheduleStatusCompleted
		s.UpdatedAt = at
		return ErrScheduleCompleted
	}

	s.PaymentsProcessed++
	s.NextPaymentDate = calc.CalculateNextPaymentDate(s.NextPaymentDate, s.Frequency)
	s.UpdatedAt = at

	if s.ReachedLimit() {
		s.Status = ScheduleStatusCompleted
	}
	return nil
}

// Cancel stops the schedule from firing again
func (s *RecurringSchedule) Cancel(at time.Time) error {
	if s.Status == ScheduleStatusCancelled {
		return ErrScheduleCancelled
	}
	s.Status = ScheduleStatusCancelled
	s.UpdatedAt = at
	return nil
}
