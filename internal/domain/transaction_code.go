package domain

// TransactionCode is the two-digit NACHA entry transaction code
type TransactionCode string

const (
	TransactionCodeCheckingCredit TransactionCode = "22"
	TransactionCodeCheckingDebit  TransactionCode = "27"
	TransactionCodeSavingsCredit  TransactionCode = "32"
	TransactionCodeSavingsDebit   TransactionCode = "37"
)

type transactionCodeKey struct {
	direction Direction
	account   AccountType
}

var transactionCodes = map[transactionCodeKey]TransactionCode{
	{DirectionDebit, AccountTypeChecking}:          TransactionCodeCheckingDebit,
	{DirectionDebit, AccountTypeBusinessChecking}:  TransactionCodeCheckingDebit,
	{DirectionDebit, AccountTypeSavings}:           TransactionCodeSavingsDebit,
	{DirectionDebit, AccountTypeBusinessSavings}:   TransactionCodeSavingsDebit,
	{DirectionCredit, AccountTypeChecking}:         TransactionCodeCheckingCredit,
	{DirectionCredit, AccountTypeBusinessChecking}: TransactionCodeCheckingCredit,
	{DirectionCredit, AccountTypeSavings}:          TransactionCodeSavingsCredit,
	{DirectionCredit, AccountTypeBusinessSavings}:  TransactionCodeSavingsCredit,
}

// TransactionCodeFor looks up the entry code for a direction and account type.
// Unknown combinations fall back to a checking debit.
func TransactionCodeFor(direction Direction, accountType AccountType) TransactionCode {
	if direction == "" {
		direction = DirectionDebit
	}
	if code, ok := transactionCodes[transactionCodeKey{direction, accountType}]; ok {
		return code
	}
	return TransactionCodeCheckingDebit
}

// IsDebit reports whether the code moves money out of the receiver's account
func (c TransactionCode) IsDebit() bool {
	return c == TransactionCodeCheckingDebit || c == TransactionCodeSavingsDebit
}

// IsCredit reports whether the code moves money into the receiver's account
func (c TransactionCode) IsCredit() bool {
	return c == TransactionCodeCheckingCredit || c == TransactionCodeSavingsCredit
}
