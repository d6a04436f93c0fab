package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kevin07696/ach-processor/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextBusinessDay(t *testing.T) {
	cal := NewBusinessCalendar(nil)

	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{"monday to tuesday", date(2025, 6, 2), date(2025, 6, 3)},
		{"friday to monday", date(2025, 6, 6), date(2025, 6, 9)},
		{"saturday to monday", date(2025, 6, 7), date(2025, 6, 9)},
		{"sunday to monday", date(2025, 6, 8), date(2025, 6, 9)},
		{"holidays ignored by default", date(2025, 7, 3), date(2025, 7, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cal.NextBusinessDay(tt.input))
		})
	}
}

func TestNextBusinessDay_PreservesTimeOfDay(t *testing.T) {
	cal := NewBusinessCalendar(nil)
	in := time.Date(2025, 6, 6, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 9, 15, 30, 0, 0, time.UTC), cal.NextBusinessDay(in))
}

func TestNextBusinessDay_NeverWeekendAcrossYear(t *testing.T) {
	for _, holidays := range []HolidayCalendar{NoHolidays{}, FederalReserveHolidays{}} {
		cal := NewBusinessCalendar(holidays)
		for d := date(2025, 1, 1); d.Year() < 2027; d = d.AddDate(0, 0, 1) {
			next := cal.NextBusinessDay(d)
			assert.True(t, next.After(d))
			assert.NotEqual(t, time.Saturday, next.Weekday(), "input %s", d.Format("2006-01-02"))
			assert.NotEqual(t, time.Sunday, next.Weekday(), "input %s", d.Format("2006-01-02"))
			assert.False(t, holidays.IsHoliday(next), "input %s", d.Format("2006-01-02"))
		}
	}
}

func TestCalculateNextPaymentDate(t *testing.T) {
	cal := NewBusinessCalendar(nil)

	tests := []struct {
		name      string
		from      time.Time
		frequency domain.Frequency
		expected  time.Time
	}{
		{"weekly lands on weekday", date(2025, 6, 6), domain.FrequencyWeekly, date(2025, 6, 13)},
		{"biweekly", date(2025, 6, 2), domain.FrequencyBiweekly, date(2025, 6, 16)},
		{"monthly rolls saturday to monday", date(2025, 5, 7), domain.FrequencyMonthly, date(2025, 6, 9)},
		{"monthly normalises month end", date(2025, 1, 31), domain.FrequencyMonthly, date(2025, 3, 3)},
		{"quarterly", date(2025, 1, 15), domain.FrequencyQuarterly, date(2025, 4, 15)},
		{"annually rolls sunday to monday", date(2024, 6, 8), domain.FrequencyAnnually, date(2025, 6, 9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cal.CalculateNextPaymentDate(tt.from, tt.frequency))
		})
	}
}

func TestCalculateNextPaymentDate_FederalReserve(t *testing.T) {
	cal := NewBusinessCalendar(FederalReserveHolidays{})

	// 2025-07-04 is a Friday holiday
	assert.Equal(t, date(2025, 7, 7), cal.CalculateNextPaymentDate(date(2025, 6, 4), domain.FrequencyMonthly))
	assert.Equal(t, date(2025, 7, 7), cal.NextBusinessDay(date(2025, 7, 3)))
}

func TestBusinessCalendar_IsBusinessDay(t *testing.T) {
	cal := NewBusinessCalendar(FederalReserveHolidays{})
	assert.True(t, cal.IsBusinessDay(date(2025, 6, 2)))
	assert.False(t, cal.IsBusinessDay(date(2025, 6, 7)))
	assert.False(t, cal.IsBusinessDay(date(2025, 12, 25)))
}
