package ach

import (
	"github.com/shopspring/decimal"
)

const (
	feeBaseCents = 25
	feeCapCents  = 150
)

var feeRate = decimal.RequireFromString("0.001")

// CalculateACHFee returns 25 cents plus 0.1% of amount (rounded down), capped at $1.50
func CalculateACHFee(amount int64) int64 {
	fee := feeBaseCents + decimal.NewFromInt(amount).Mul(feeRate).Floor().IntPart()
	if fee > feeCapCents {
		return feeCapCents
	}
	return fee
}

// FormatAmount renders cents as a fixed two-decimal string, e.g. 5000 -> "50.00"
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
