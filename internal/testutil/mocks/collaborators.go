package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
)

// MockTokenizer mocks ports.Tokenizer
type MockTokenizer struct {
	mock.Mock
}

func (m *MockTokenizer) Tokenize(ctx context.Context, req *ports.TokenizeRequest) (*ports.Token, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Token), args.Error(1)
}

// MockPaymentQueue mocks ports.PaymentQueue
type MockPaymentQueue struct {
	mock.Mock
}

func (m *MockPaymentQueue) QueuePayment(ctx context.Context, payment *domain.QueuedPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

// MockDeadLetterRecorder mocks ports.DeadLetterRecorder
type MockDeadLetterRecorder struct {
	mock.Mock
}

func (m *MockDeadLetterRecorder) RecordDeadLetter(ctx context.Context, payment *domain.QueuedPayment, reason string) error {
	args := m.Called(ctx, payment, reason)
	return args.Error(0)
}

// MockAccountVerifier mocks ports.AccountVerifier
type MockAccountVerifier struct {
	mock.Mock
}

func (m *MockAccountVerifier) IsVerified(ctx context.Context, account *domain.BankAccount) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

// MockPaymentSink mocks ports.PaymentSink
type MockPaymentSink struct {
	mock.Mock
}

func (m *MockPaymentSink) Deliver(ctx context.Context, msg *domain.OutboxMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockRecurringScheduleStore mocks ports.RecurringScheduleStore
type MockRecurringScheduleStore struct {
	mock.Mock
}

func (m *MockRecurringScheduleStore) Create(ctx context.Context, schedule *domain.RecurringSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockRecurringScheduleStore) GetByID(ctx context.Context, id string) (*domain.RecurringSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringSchedule), args.Error(1)
}

func (m *MockRecurringScheduleStore) Update(ctx context.Context, schedule *domain.RecurringSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockRecurringScheduleStore) ListDue(ctx context.Context, asOf time.Time, limit int) ([]*domain.RecurringSchedule, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecurringSchedule), args.Error(1)
}

// MockOutboxRepository mocks ports.OutboxRepository
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Enqueue(ctx context.Context, msg *domain.OutboxMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockOutboxRepository) ClaimDue(ctx context.Context, asOf time.Time, limit int) ([]*domain.OutboxMessage, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkRetry(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastErr string) error {
	args := m.Called(ctx, id, attempts, nextAttemptAt, lastErr)
	return args.Error(0)
}

func (m *MockOutboxRepository) MoveToDeadLetter(ctx context.Context, msg *domain.OutboxMessage, reason string, at time.Time) error {
	args := m.Called(ctx, msg, reason, at)
	return args.Error(0)
}

func (m *MockOutboxRepository) InsertDeadLetter(ctx context.Context, dl *domain.DeadLetter) error {
	args := m.Called(ctx, dl)
	return args.Error(0)
}

func (m *MockOutboxRepository) ListDeadLetters(ctx context.Context, limit int) ([]*domain.DeadLetter, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DeadLetter), args.Error(1)
}

func (m *MockOutboxRepository) Requeue(ctx context.Context, deadLetterID string, msg *domain.OutboxMessage) error {
	args := m.Called(ctx, deadLetterID, msg)
	return args.Error(0)
}
