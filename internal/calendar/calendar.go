// Package calendar computes ACH settlement and recurrence dates against a
// pluggable banking holiday calendar.
package calendar

import (
	"time"

	"github.com/kevin07696/ach-processor/internal/domain"
)

// HolidayCalendar reports bank holidays. Implementations compare calendar dates
// only; the time of day and location of t are ignored beyond its Y/M/D.
type HolidayCalendar interface {
	IsHoliday(t time.Time) bool
}

// NoHolidays treats every weekday as a business day
type NoHolidays struct{}

// IsHoliday always returns false
func (NoHolidays) IsHoliday(time.Time) bool { return false }

// BusinessCalendar rolls dates forward past weekends and holidays
type BusinessCalendar struct {
	holidays HolidayCalendar
}

var _ domain.PaymentDateCalculator = (*BusinessCalendar)(nil)

// NewBusinessCalendar creates a calendar. A nil holiday calendar means weekends only.
func NewBusinessCalendar(holidays HolidayCalendar) *BusinessCalendar {
	if holidays == nil {
		holidays = NoHolidays{}
	}
	return &BusinessCalendar{holidays: holidays}
}

// IsBusinessDay reports whether t falls on a weekday that is not a holiday
func (c *BusinessCalendar) IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.holidays.IsHoliday(t)
}

// NextBusinessDay returns the first business day strictly after t.
// The time of day is preserved.
func (c *BusinessCalendar) NextBusinessDay(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	for !c.IsBusinessDay(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// CalculateNextPaymentDate advances from by one frequency interval and rolls the
// result forward when it lands on a weekend or holiday
func (c *BusinessCalendar) CalculateNextPaymentDate(from time.Time, frequency domain.Frequency) time.Time {
	next := frequency.AddTo(from)
	if c.IsBusinessDay(next) {
		return next
	}
	return c.NextBusinessDay(next)
}
