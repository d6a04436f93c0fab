package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
)

// VerificationStore keeps micro-deposit outcomes in memory, keyed by account fingerprint
type VerificationStore struct {
	verified map[string]time.Time
	mu       sync.RWMutex
}

var _ ports.VerificationStore = (*VerificationStore)(nil)

// NewVerificationStore creates an empty store
func NewVerificationStore() *VerificationStore {
	return &VerificationStore{verified: make(map[string]time.Time)}
}

func (s *VerificationStore) IsVerified(_ context.Context, account *domain.BankAccount) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.verified[account.Fingerprint()]
	return ok, nil
}

func (s *VerificationStore) MarkVerified(_ context.Context, account *domain.BankAccount, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.verified[account.Fingerprint()] = at
	return nil
}
