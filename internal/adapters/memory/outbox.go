package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
)

// DefaultClaimLease is how long a claimed message stays invisible to other dispatch passes
const DefaultClaimLease = 5 * time.Minute

// OutboxStore is an in-process OutboxRepository for local runs and tests.
// Nothing survives a restart.
type OutboxStore struct {
	messages    map[string]*domain.OutboxMessage
	deadLetters []*domain.DeadLetter
	lease       time.Duration
	mu          sync.Mutex
}

var _ ports.OutboxRepository = (*OutboxStore)(nil)

// NewOutboxStore creates an empty store
func NewOutboxStore() *OutboxStore {
	return &OutboxStore{messages: make(map[string]*domain.OutboxMessage), lease: DefaultClaimLease}
}

func (s *OutboxStore) Enqueue(_ context.Context, msg *domain.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *msg
	s.messages[msg.ID] = &stored
	return nil
}

// ClaimDue leases the returned messages until asOf plus the claim lease, so an
// overlapping pass skips them until they are marked or the lease runs out.
func (s *OutboxStore) ClaimDue(_ context.Context, asOf time.Time, limit int) ([]*domain.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*domain.OutboxMessage
	for _, m := range s.messages {
		if m.Status == domain.OutboxStatusPending && !m.NextAttemptAt.After(asOf) {
			due = append(due, m)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].NextAttemptAt.Equal(due[j].NextAttemptAt) {
			return due[i].CreatedAt.Before(due[j].CreatedAt)
		}
		return due[i].NextAttemptAt.Before(due[j].NextAttemptAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	out := make([]*domain.OutboxMessage, len(due))
	for i, m := range due {
		m.NextAttemptAt = asOf.Add(s.lease)
		m.UpdatedAt = asOf
		c := *m
		out[i] = &c
	}
	return out, nil
}

func (s *OutboxStore) MarkDelivered(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return outboxNotFound()
	}
	m.Status = domain.OutboxStatusDelivered
	m.Attempts++
	m.UpdatedAt = at
	return nil
}

func (s *OutboxStore) MarkRetry(_ context.Context, id string, attempts int, nextAttemptAt time.Time, lastErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return outboxNotFound()
	}
	m.Attempts = attempts
	m.NextAttemptAt = nextAttemptAt
	m.LastError = lastErr
	m.UpdatedAt = time.Now()
	return nil
}

func (s *OutboxStore) MoveToDeadLetter(_ context.Context, msg *domain.OutboxMessage, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[msg.ID]
	if !ok {
		return outboxNotFound()
	}
	m.Status = domain.OutboxStatusDeadLettered
	m.Attempts = msg.Attempts
	m.LastError = reason
	m.UpdatedAt = at

	s.deadLetters = append(s.deadLetters, &domain.DeadLetter{
		ID:        "dl_" + msg.ID,
		MessageID: msg.ID,
		Payload:   msg.Payload,
		Reason:    reason,
		Attempts:  msg.Attempts,
		CreatedAt: at,
	})
	return nil
}

func (s *OutboxStore) InsertDeadLetter(_ context.Context, dl *domain.DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *dl
	s.deadLetters = append(s.deadLetters, &stored)
	return nil
}

func (s *OutboxStore) ListDeadLetters(_ context.Context, limit int) ([]*domain.DeadLetter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.deadLetters)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]*domain.DeadLetter, n)
	for i := 0; i < n; i++ {
		c := *s.deadLetters[i]
		out[i] = &c
	}
	return out, nil
}

func (s *OutboxStore) Requeue(_ context.Context, deadLetterID string, msg *domain.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, dl := range s.deadLetters {
		if dl.ID != deadLetterID {
			continue
		}
		msg.Payload = dl.Payload
		msg.MaxRetries = dl.Payload.MaxRetries
		stored := *msg
		s.messages[msg.ID] = &stored
		s.deadLetters = append(s.deadLetters[:i], s.deadLetters[i+1:]...)
		return nil
	}
	return domain.NewDomainError(domain.ErrorCodeOutboxMessageNotFound, "dead letter not found")
}

// Message returns a copy of a stored message, for inspection
func (s *OutboxStore) Message(id string) (*domain.OutboxMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, false
	}
	c := *m
	return &c, true
}

func outboxNotFound() error {
	return domain.NewDomainError(domain.ErrorCodeOutboxMessageNotFound, "outbox message not found")
}
