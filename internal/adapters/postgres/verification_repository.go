package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
)

// VerificationRepository records completed micro-deposit verifications.
// Rows are keyed by account fingerprint; the account number itself is never stored.
type VerificationRepository struct {
	db ports.DBPort
}

var _ ports.VerificationStore = (*VerificationRepository)(nil)

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(db ports.DBPort) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) IsVerified(ctx context.Context, account *domain.BankAccount) (bool, error) {
	var verified bool
	err := r.db.GetDB().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ach_account_verifications WHERE fingerprint = $1)`,
		account.Fingerprint()).Scan(&verified)
	if err != nil {
		return false, fmt.Errorf("lookup account verification: %w", err)
	}
	return verified, nil
}

func (r *VerificationRepository) MarkVerified(ctx context.Context, account *domain.BankAccount, at time.Time) error {
	_, err := r.db.GetDB().Exec(ctx, `
		INSERT INTO ach_account_verifications (fingerprint, routing_number, account_last4, verified_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (fingerprint) DO UPDATE SET verified_at = EXCLUDED.verified_at`,
		account.Fingerprint(), account.RoutingNumber, account.Last4(), at)
	if err != nil {
		return fmt.Errorf("record account verification: %w", err)
	}
	return nil
}
