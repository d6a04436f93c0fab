package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// AccountType represents the type of bank account
type AccountType string

const (
	AccountTypeChecking         AccountType = "checking"
	AccountTypeSavings          AccountType = "savings"
	AccountTypeBusinessChecking AccountType = "business_checking"
	AccountTypeBusinessSavings  AccountType = "business_savings"
)

// IsValid reports whether the account type is one of the four supported values
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeBusinessChecking, AccountTypeBusinessSavings:
		return true
	default:
		return false
	}
}

// IsSavings returns true for personal and business savings accounts
func (t AccountType) IsSavings() bool {
	return t == AccountTypeSavings || t == AccountTypeBusinessSavings
}

// AccountHolderType distinguishes consumer and corporate account holders
type AccountHolderType string

const (
	AccountHolderIndividual AccountHolderType = "individual"
	AccountHolderCompany    AccountHolderType = "company"
)

// BankAccount is the payer or payee account supplied with a single request.
// It is never mutated and never persisted in clear text.
type BankAccount struct {
	RoutingNumber     string            `json:"routing_number" yaml:"routing_number"`
	AccountNumber     string            `json:"account_number" yaml:"account_number"`
	AccountType       AccountType       `json:"account_type" yaml:"account_type"`
	AccountHolderName string            `json:"account_holder_name" yaml:"account_holder_name"`
	AccountHolderType AccountHolderType `json:"account_holder_type" yaml:"account_holder_type"`
}

// Last4 returns the last four digits of the account number for logs and receipts
func (b *BankAccount) Last4() string {
	if len(b.AccountNumber) <= 4 {
		return b.AccountNumber
	}
	return b.AccountNumber[len(b.AccountNumber)-4:]
}

// Fingerprint identifies an account without exposing its number.
// Used as the key for micro-deposit verification records.
func (b *BankAccount) Fingerprint() string {
	sum := sha256.Sum256([]byte(b.RoutingNumber + ":" + b.AccountNumber))
	return hex.EncodeToString(sum[:])
}

// RoutingPrefix returns the 8-digit receiving DFI identification
func (b *BankAccount) RoutingPrefix() string {
	if len(b.RoutingNumber) < 8 {
		return b.RoutingNumber
	}
	return b.RoutingNumber[:8]
}

// CheckDigit returns the ninth digit of the routing number
func (b *BankAccount) CheckDigit() string {
	if len(b.RoutingNumber) < 9 {
		return ""
	}
	return b.RoutingNumber[8:9]
}

var abaWeights = [9]int{3, 7, 1, 3, 7, 1, 3, 7, 1}

// ValidateRoutingNumber reports whether r is exactly nine digits and passes the
// ABA weighted mod-10 checksum. The all-zero number is rejected: it is not an
// assigned routing number even though its weighted sum is zero.
func ValidateRoutingNumber(r string) bool {
	if len(r) != 9 {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		c := r[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * abaWeights[i]
	}
	return sum > 0 && sum%10 == 0
}

// IsDigits reports whether s is non-empty and contains only ASCII digits
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
