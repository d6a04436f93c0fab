package ach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateACHFee(t *testing.T) {
	tests := []struct {
		amount   int64
		expected int64
	}{
		{1, 25},
		{999, 25},
		{1000, 26},
		{5000, 30},
		{124_999, 149},
		{125_000, 150},
		{1_000_000, 150},
		{50_000_000, 150},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CalculateACHFee(tt.amount), "amount %d", tt.amount)
	}
}

func TestCalculateACHFee_MonotonicAndCapped(t *testing.T) {
	prev := CalculateACHFee(1)
	for amount := int64(2); amount <= 300_000; amount += 7 {
		fee := CalculateACHFee(amount)
		assert.GreaterOrEqual(t, fee, prev, "amount %d", amount)
		assert.LessOrEqual(t, fee, int64(150))
		prev = fee
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "50.00", FormatAmount(5000))
	assert.Equal(t, "0.30", FormatAmount(30))
	assert.Equal(t, "1234.05", FormatAmount(123405))
}
