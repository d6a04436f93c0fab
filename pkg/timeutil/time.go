package timeutil

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used by the API and CLI
const DateLayout = "2006-01-02"

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}

// ParseDate accepts YYYY-MM-DD (midnight UTC) or RFC 3339 and returns UTC
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not YYYY-MM-DD or RFC 3339", value)
	}
	return t.UTC(), nil
}

// StartOfDay returns midnight UTC of t's UTC calendar day
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders t's UTC calendar day as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
