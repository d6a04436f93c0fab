package ports

import (
	"context"
	"time"
)

// TokenTypeBankAccount is the only token type this service requests
const TokenTypeBankAccount = "bank_account"

// TokenizeRequest carries the sensitive data to be vaulted
type TokenizeRequest struct {
	SensitiveData  map[string]string
	Metadata       map[string]string
	Type           string
	OrganizationID string
}

// Token is the opaque vault reference returned by a Tokenizer
type Token struct {
	CreatedAt time.Time
	ID        string
	Type      string
	Version   string
}

// Tokenizer stores sensitive bank account data in an external vault.
// Only the returned token ID is retained by callers.
type Tokenizer interface {
	Tokenize(ctx context.Context, req *TokenizeRequest) (*Token, error)
}
