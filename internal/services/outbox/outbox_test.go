package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/ach-processor/internal/adapters/memory"
	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/testutil/mocks"
	"github.com/kevin07696/ach-processor/pkg/resilience"
)

// fixedBackoff makes retry times predictable
type fixedBackoff time.Duration

func (b fixedBackoff) NextDelay(int) time.Duration { return time.Duration(b) }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func queuedPayment() *domain.QueuedPayment {
	return &domain.QueuedPayment{
		TransactionID: "ach_1",
		Amount:        5000,
		Currency:      "usd",
		PaymentMethod: domain.PaymentMethodACHDebit,
		TokenID:       "btok_1",
		MaxRetries:    domain.DefaultQueueMaxRetries,
	}
}

func newTestDispatcher(store *memory.OutboxStore, sink *mocks.MockPaymentSink, c *clock) *Dispatcher {
	return NewDispatcher(store, sink, mocks.NewMockLogger(),
		WithBackoff(fixedBackoff(time.Minute)),
		WithDispatcherTimeouts(resilience.TestTimeoutConfig()),
		WithDispatcherClock(c.now))
}

func TestQueue_QueuePayment(t *testing.T) {
	store := memory.NewOutboxStore()
	q := NewQueue(store, nil)

	require.NoError(t, q.QueuePayment(context.Background(), queuedPayment()))

	due, err := store.ClaimDue(context.Background(), time.Now().Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "ach_1", due[0].Payload.TransactionID)
	assert.Equal(t, 2, due[0].MaxRetries)
	assert.Equal(t, domain.OutboxStatusPending, due[0].Status)
}

func TestQueue_EnqueueFailure(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	repo.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	err := NewQueue(repo, nil).QueuePayment(context.Background(), queuedPayment())
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeQueueFailed))
	assert.ErrorContains(t, err, "connection refused")
}

func TestQueue_RecordDeadLetter(t *testing.T) {
	store := memory.NewOutboxStore()
	q := NewQueue(store, nil)

	require.NoError(t, q.RecordDeadLetter(context.Background(), queuedPayment(), "queue down"))

	letters, err := store.ListDeadLetters(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, "queue down", letters[0].Reason)
	assert.Empty(t, letters[0].MessageID)
	assert.Equal(t, "ach_1", letters[0].Payload.TransactionID)
}

func TestDispatcher_Delivers(t *testing.T) {
	store := memory.NewOutboxStore()
	c := &clock{t: time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)}
	q := NewQueue(store, nil)
	q.now = c.now
	require.NoError(t, q.QueuePayment(context.Background(), queuedPayment()))

	sink := new(mocks.MockPaymentSink)
	sink.On("Deliver", mock.Anything, mock.MatchedBy(func(m *domain.OutboxMessage) bool {
		return m.Attempts == 1 && m.Payload.TokenID == "btok_1"
	})).Return(nil).Once()

	result, err := newTestDispatcher(store, sink, c).DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &DispatchResult{Claimed: 1, Delivered: 1}, result)

	result, err = newTestDispatcher(store, sink, c).DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Claimed, "delivered messages are not claimed again")
	sink.AssertExpectations(t)
}

func TestDispatcher_RetriesThenDeadLetters(t *testing.T) {
	store := memory.NewOutboxStore()
	c := &clock{t: time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)}
	q := NewQueue(store, nil)
	q.now = c.now
	require.NoError(t, q.QueuePayment(context.Background(), queuedPayment()))

	sink := new(mocks.MockPaymentSink)
	sink.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("HTTP 503"))
	d := newTestDispatcher(store, sink, c)

	// first delivery plus two retries
	for attempt := 1; attempt <= 2; attempt++ {
		result, err := d.DispatchDue(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Retried, "attempt %d", attempt)

		result, err = d.DispatchDue(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, result.Claimed, "retry waits for backoff")

		c.t = c.t.Add(time.Minute)
	}

	result, err := d.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.DeadLettered)
	sink.AssertNumberOfCalls(t, "Deliver", 3)

	letters, err := d.ListDeadLetters(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, 3, letters[0].Attempts)
	assert.Contains(t, letters[0].Reason, "HTTP 503")

	msg, err := d.Requeue(context.Background(), letters[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "ach_1", msg.Payload.TransactionID)
	assert.Equal(t, 0, msg.Attempts)

	letters, err = d.ListDeadLetters(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, letters)
}

func TestDispatcher_ClaimFailure(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	repo.On("ClaimDue", mock.Anything, mock.Anything, DefaultBatchSize).Return(nil, errors.New("db down"))

	d := NewDispatcher(repo, new(mocks.MockPaymentSink), nil)
	_, err := d.DispatchDue(context.Background())
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeDatabaseError))
}

func TestDispatcher_MarkFailuresAreCounted(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	messages := []*domain.OutboxMessage{
		{ID: "ok", MaxRetries: 2},
		{ID: "fails", MaxRetries: 2},
	}
	repo.On("ClaimDue", mock.Anything, mock.Anything, 10).Return(messages, nil)
	repo.On("MarkDelivered", mock.Anything, "ok", mock.Anything).Return(errors.New("write failed"))
	repo.On("MarkRetry", mock.Anything, "fails", 1, mock.Anything, "boom").Return(nil)

	sink := new(mocks.MockPaymentSink)
	sink.On("Deliver", mock.Anything, mock.MatchedBy(func(m *domain.OutboxMessage) bool { return m.ID == "ok" })).Return(nil)
	sink.On("Deliver", mock.Anything, mock.MatchedBy(func(m *domain.OutboxMessage) bool { return m.ID == "fails" })).Return(errors.New("boom"))

	logger := mocks.NewMockLogger()
	d := NewDispatcher(repo, sink, logger, WithBatchSize(10))
	result, err := d.DispatchDue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &DispatchResult{Claimed: 2, Retried: 1, Errors: 1}, result)
	assert.True(t, logger.HasError("Failed to mark outbox message delivered"))
	repo.AssertExpectations(t)
}

func TestDispatcher_RequeueNotFound(t *testing.T) {
	d := NewDispatcher(memory.NewOutboxStore(), new(mocks.MockPaymentSink), nil)
	_, err := d.Requeue(context.Background(), "missing")
	assert.True(t, domain.IsNotFoundError(err))
}

func TestDispatcher_RunStopsOnCancel(t *testing.T) {
	store := memory.NewOutboxStore()
	d := NewDispatcher(store, new(mocks.MockPaymentSink), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
