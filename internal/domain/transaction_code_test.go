package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionCodeFor(t *testing.T) {
	tests := []struct {
		name        string
		direction   Direction
		accountType AccountType
		expected    TransactionCode
	}{
		{"checking debit", DirectionDebit, AccountTypeChecking, "27"},
		{"business checking debit", DirectionDebit, AccountTypeBusinessChecking, "27"},
		{"savings debit", DirectionDebit, AccountTypeSavings, "37"},
		{"business savings debit", DirectionDebit, AccountTypeBusinessSavings, "37"},
		{"checking credit", DirectionCredit, AccountTypeChecking, "22"},
		{"business checking credit", DirectionCredit, AccountTypeBusinessChecking, "22"},
		{"savings credit", DirectionCredit, AccountTypeSavings, "32"},
		{"business savings credit", DirectionCredit, AccountTypeBusinessSavings, "32"},
		{"empty direction is a debit", "", AccountTypeSavings, "37"},
		{"unknown account type defaults to checking debit", DirectionDebit, "money_market", "27"},
		{"unknown account type on credit defaults to checking debit", DirectionCredit, "money_market", "27"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TransactionCodeFor(tt.direction, tt.accountType))
		})
	}
}

func TestTransactionCode_Direction(t *testing.T) {
	assert.True(t, TransactionCodeCheckingDebit.IsDebit())
	assert.True(t, TransactionCodeSavingsDebit.IsDebit())
	assert.False(t, TransactionCodeCheckingDebit.IsCredit())

	assert.True(t, TransactionCodeCheckingCredit.IsCredit())
	assert.True(t, TransactionCodeSavingsCredit.IsCredit())
	assert.False(t, TransactionCodeSavingsCredit.IsDebit())
}
