package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFederalReserveHolidays_2025(t *testing.T) {
	holidays := []time.Time{
		date(2025, 1, 1),
		date(2025, 1, 20),
		date(2025, 2, 17),
		date(2025, 5, 26),
		date(2025, 6, 19),
		date(2025, 7, 4),
		date(2025, 9, 1),
		date(2025, 10, 13),
		date(2025, 11, 11),
		date(2025, 11, 27),
		date(2025, 12, 25),
	}

	cal := FederalReserveHolidays{}
	for _, h := range holidays {
		assert.True(t, cal.IsHoliday(h), h.Format("2006-01-02"))
	}

	count := 0
	for d := date(2025, 1, 1); d.Year() == 2025; d = d.AddDate(0, 0, 1) {
		if cal.IsHoliday(d) {
			count++
		}
	}
	assert.Equal(t, len(holidays), count)
}

func TestFederalReserveHolidays_Observance(t *testing.T) {
	cal := FederalReserveHolidays{}

	// Christmas 2022 fell on Sunday
	assert.False(t, cal.IsHoliday(date(2022, 12, 25)))
	assert.True(t, cal.IsHoliday(date(2022, 12, 26)))

	// New Year 2023 fell on Sunday
	assert.True(t, cal.IsHoliday(date(2023, 1, 2)))

	// Independence Day 2026 falls on Saturday and is not moved
	assert.True(t, cal.IsHoliday(date(2026, 7, 4)))
	assert.False(t, cal.IsHoliday(date(2026, 7, 3)))

	// Juneteenth only from 2021
	assert.False(t, cal.IsHoliday(date(2020, 6, 19)))
}

func TestByName(t *testing.T) {
	assert.IsType(t, FederalReserveHolidays{}, ByName("federal_reserve"))
	assert.IsType(t, NoHolidays{}, ByName("weekends"))
	assert.IsType(t, NoHolidays{}, ByName(""))
}
