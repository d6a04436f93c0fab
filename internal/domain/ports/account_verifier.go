package ports

import (
	"context"
	"time"

	"github.com/kevin07696/ach-processor/internal/domain"
)

// AccountVerifier reports whether a bank account completed micro-deposit verification
type AccountVerifier interface {
	IsVerified(ctx context.Context, account *domain.BankAccount) (bool, error)
}

// VerificationStore records micro-deposit outcomes keyed by account fingerprint
type VerificationStore interface {
	AccountVerifier
	MarkVerified(ctx context.Context, account *domain.BankAccount, at time.Time) error
}
