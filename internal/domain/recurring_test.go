package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainCalculator advances by the raw frequency without business-day rolling
type plainCalculator struct{}

func (plainCalculator) CalculateNextPaymentDate(from time.Time, f Frequency) time.Time {
	return f.AddTo(from)
}

func TestFrequency_IsValid(t *testing.T) {
	for _, f := range []Frequency{FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually} {
		assert.True(t, f.IsValid(), string(f))
	}
	assert.False(t, Frequency("daily").IsValid())
	assert.False(t, Frequency("").IsValid())
}

func TestFrequency_AddTo(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency Frequency
		expected  time.Time
	}{
		{FrequencyWeekly, time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC)},
		{FrequencyBiweekly, time.Date(2025, 1, 29, 0, 0, 0, 0, time.UTC)},
		{FrequencyMonthly, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)},
		{FrequencyQuarterly, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
		{FrequencyAnnually, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"unknown", start},
	}

	for _, tt := range tests {
		t.Run(string(tt.frequency), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.frequency.AddTo(start))
		})
	}
}

func TestFrequency_AddTo_MonthEndNormalises(t *testing.T) {
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), FrequencyMonthly.AddTo(start))
}

func TestRecurringSchedule_IsDue(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   ScheduleStatus
		next     time.Time
		expected bool
	}{
		{"active past date", ScheduleStatusActive, now.Add(-time.Hour), true},
		{"active same instant", ScheduleStatusActive, now, true},
		{"active future date", ScheduleStatusActive, now.Add(time.Hour), false},
		{"completed past date", ScheduleStatusCompleted, now.Add(-time.Hour), false},
		{"cancelled past date", ScheduleStatusCancelled, now.Add(-time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &RecurringSchedule{Status: tt.status, NextPaymentDate: tt.next}
			assert.Equal(t, tt.expected, s.IsDue(now))
		})
	}
}

func TestRecurringSchedule_IsDue_Limits(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	pastEnd := &RecurringSchedule{
		Status:          ScheduleStatusActive,
		Frequency:       FrequencyWeekly,
		StartDate:       start,
		EndDate:         &end,
		NextPaymentDate: plainCalculator{}.CalculateNextPaymentDate(start, FrequencyWeekly),
	}
	assert.False(t, pastEnd.IsDue(asOf), "a payment on %s falls after the end date", pastEnd.NextPaymentDate.Format("2006-01-02"))

	onEnd := *pastEnd
	onEnd.NextPaymentDate = end
	assert.True(t, onEnd.IsDue(asOf))

	maxPayments := 2
	exhausted := &RecurringSchedule{
		Status:            ScheduleStatusActive,
		NextPaymentDate:   start,
		MaxPayments:       &maxPayments,
		PaymentsProcessed: 2,
	}
	assert.False(t, exhausted.IsDue(asOf))

	exhausted.PaymentsProcessed = 1
	assert.True(t, exhausted.IsDue(asOf))
}

func TestRecurringSchedule_RecordPayment_MaxPayments(t *testing.T) {
	maxPayments := 2
	s := &RecurringSchedule{
		Status:          ScheduleStatusActive,
		Frequency:       FrequencyWeekly,
		NextPaymentDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		MaxPayments:     &maxPayments,
	}
	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordPayment(plainCalculator{}, at))
	assert.Equal(t, 1, s.PaymentsProcessed)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), s.NextPaymentDate)
	assert.True(t, s.IsActive())

	require.NoError(t, s.RecordPayment(plainCalculator{}, at))
	assert.Equal(t, 2, s.PaymentsProcessed)
	assert.Equal(t, ScheduleStatusCompleted, s.Status)

	err := s.RecordPayment(plainCalculator{}, at)
	assert.ErrorIs(t, err, ErrScheduleCompleted)
	assert.Equal(t, 2, s.PaymentsProcessed, "payments processed must never exceed max payments")
}

func TestRecurringSchedule_RecordPayment_EndDate(t *testing.T) {
	end := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	s := &RecurringSchedule{
		Status:          ScheduleStatusActive,
		Frequency:       FrequencyBiweekly,
		NextPaymentDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		EndDate:         &end,
	}

	require.NoError(t, s.RecordPayment(plainCalculator{}, end))
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), s.NextPaymentDate)
	assert.True(t, s.IsActive())

	require.NoError(t, s.RecordPayment(plainCalculator{}, end))
	assert.Equal(t, ScheduleStatusCompleted, s.Status, "next date 2025-06-30 is after the end date")
	assert.Equal(t, 2, s.PaymentsProcessed)
}

func TestRecurringSchedule_RecordPayment_Cancelled(t *testing.T) {
	s := &RecurringSchedule{Status: ScheduleStatusActive, Frequency: FrequencyMonthly}
	require.NoError(t, s.Cancel(time.Now()))

	assert.ErrorIs(t, s.RecordPayment(plainCalculator{}, time.Now()), ErrScheduleCancelled)
	assert.ErrorIs(t, s.Cancel(time.Now()), ErrScheduleCancelled)
}
