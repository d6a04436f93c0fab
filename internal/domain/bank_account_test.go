package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRoutingNumber(t *testing.T) {
	tests := []struct {
		name     string
		routing  string
		expected bool
	}{
		{"JPMorgan Chase NY", "021000021", true},
		{"Bank of America", "026009593", true},
		{"Wells Fargo", "121000248", true},
		{"checksum fails", "123456789", false},
		{"all zeros", "000000000", false},
		{"too short", "02100002", false},
		{"too long", "0210000210", false},
		{"letters", "02100002A", false},
		{"empty", "", false},
		{"spaces", " 21000021", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateRoutingNumber(tt.routing))
		})
	}
}

// TestValidateRoutingNumber_MatchesWeightedSum sweeps a range of 9-digit strings and
// compares against a direct evaluation of the 3-7-1 checksum.
func TestValidateRoutingNumber_MatchesWeightedSum(t *testing.T) {
	weights := []int{3, 7, 1, 3, 7, 1, 3, 7, 1}
	for n := 21000000; n < 21002000; n++ {
		r := fmt.Sprintf("%09d", n)
		sum := 0
		for i, w := range weights {
			sum += int(r[i]-'0') * w
		}
		assert.Equal(t, sum > 0 && sum%10 == 0, ValidateRoutingNumber(r), "routing %s", r)
	}
}

func TestAccountType_IsValid(t *testing.T) {
	tests := []struct {
		accountType AccountType
		expected    bool
	}{
		{AccountTypeChecking, true},
		{AccountTypeSavings, true},
		{AccountTypeBusinessChecking, true},
		{AccountTypeBusinessSavings, true},
		{"money_market", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.accountType.IsValid())
		})
	}
}

func TestBankAccount_Helpers(t *testing.T) {
	account := &BankAccount{
		RoutingNumber: "021000021",
		AccountNumber: "1234567890",
		AccountType:   AccountTypeChecking,
	}

	assert.Equal(t, "7890", account.Last4())
	assert.Equal(t, "02100002", account.RoutingPrefix())
	assert.Equal(t, "1", account.CheckDigit())
	assert.Len(t, account.Fingerprint(), 64)

	other := *account
	other.AccountNumber = "1234567891"
	assert.NotEqual(t, account.Fingerprint(), other.Fingerprint())
}

func TestBankAccount_Last4_ShortNumber(t *testing.T) {
	account := &BankAccount{AccountNumber: "123"}
	assert.Equal(t, "123", account.Last4())
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("0123456789"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("12-34"))
	assert.False(t, IsDigits("１２３"))
}
