package calendar

import (
	"time"
)

// FederalReserveHolidays is the US Federal Reserve banking holiday schedule.
// A holiday falling on Sunday is observed the following Monday. Saturday holidays
// are not moved; the Fed stays open the preceding Friday.
type FederalReserveHolidays struct{}

// IsHoliday reports whether t is an observed Federal Reserve holiday
func (FederalReserveHolidays) IsHoliday(t time.Time) bool {
	year, month, day := t.Date()
	for _, h := range observedHolidays(year) {
		if h.month == month && h.day == day {
			return true
		}
	}
	return false
}

type monthDay struct {
	month time.Month
	day   int
}

func observedHolidays(year int) []monthDay {
	fixed := []monthDay{
		{time.January, 1},
		{time.July, 4},
		{time.November, 11},
		{time.December, 25},
	}
	if year >= 2021 {
		fixed = append(fixed, monthDay{time.June, 19})
	}

	out := make([]monthDay, 0, len(fixed)+6)
	for _, h := range fixed {
		d := time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC)
		if d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		out = append(out, monthDay{d.Month(), d.Day()})
	}

	out = append(out,
		nthWeekday(year, time.January, time.Monday, 3),   // Martin Luther King Jr.
		nthWeekday(year, time.February, time.Monday, 3),  // Washington's Birthday
		lastWeekday(year, time.May, time.Monday),         // Memorial Day
		nthWeekday(year, time.September, time.Monday, 1), // Labor Day
		nthWeekday(year, time.October, time.Monday, 2),   // Columbus Day
		nthWeekday(year, time.November, time.Thursday, 4),
	)
	return out
}

func nthWeekday(year int, month time.Month, wd time.Weekday, n int) monthDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	return monthDay{month, 1 + offset + (n-1)*7}
}

func lastWeekday(year int, month time.Month, wd time.Weekday) monthDay {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	offset := (int(last.Weekday()) - int(wd) + 7) % 7
	return monthDay{month, last.Day() - offset}
}

// ByName resolves a holiday calendar from configuration. Unknown names fall back
// to weekends only.
func ByName(name string) HolidayCalendar {
	switch name {
	case "federal_reserve", "fed":
		return FederalReserveHolidays{}
	default:
		return NoHolidays{}
	}
}
