package fixtures

import (
	"github.com/kevin07696/ach-processor/internal/domain"
)

// ValidRoutingNumber is a real ABA number that passes the checksum
const ValidRoutingNumber = "021000021"

// CheckingAccount returns a well-formed individual checking account
func CheckingAccount() *domain.BankAccount {
	return &domain.BankAccount{
		RoutingNumber:     ValidRoutingNumber,
		AccountNumber:     "1234567890",
		AccountType:       domain.AccountTypeChecking,
		AccountHolderName: "Jane Doe",
		AccountHolderType: domain.AccountHolderIndividual,
	}
}

// SavingsAccount returns a well-formed company savings account
func SavingsAccount() *domain.BankAccount {
	return &domain.BankAccount{
		RoutingNumber:     "026009593",
		AccountNumber:     "99887766",
		AccountType:       domain.AccountTypeBusinessSavings,
		AccountHolderName: "Acme Widgets LLC",
		AccountHolderType: domain.AccountHolderCompany,
	}
}

// DebitRequest returns a valid $50.00 checking debit
func DebitRequest() *domain.ACHPaymentRequest {
	return &domain.ACHPaymentRequest{
		Amount:      5000,
		Currency:    "usd",
		BankAccount: CheckingAccount(),
		Description: "Invoice 1001",
		Metadata:    map[string]string{"invoice_id": "1001"},
	}
}

// CreditRequest returns a valid $12.00 savings payout
func CreditRequest() *domain.ACHPaymentRequest {
	return &domain.ACHPaymentRequest{
		Amount:      1200,
		Currency:    "usd",
		BankAccount: SavingsAccount(),
		Description: "Refund",
		Direction:   domain.DirectionCredit,
	}
}
