package sink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/ach-processor/internal/domain"
	apperrors "github.com/kevin07696/ach-processor/pkg/errors"
	"github.com/kevin07696/ach-processor/pkg/resilience"
)

func outboxMessage() *domain.OutboxMessage {
	return &domain.OutboxMessage{
		ID:       "out_1",
		Attempts: 2,
		Payload: domain.QueuedPayment{
			TransactionID: "ach_1",
			Amount:        5000,
			Currency:      "usd",
			PaymentMethod: domain.PaymentMethodACHDebit,
			MaxRetries:    2,
		},
	}
}

func TestHTTPSink_DeliverSignsPayload(t *testing.T) {
	var received Event
	var validSignature bool
	var headers http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		headers = r.Header.Clone()
		validSignature = VerifySignature(body, "shh", r.Header.Get(HeaderSignature))
		_ = json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	s := NewHTTPSink(Config{URL: server.URL, Secret: "shh"}, server.Client(), nil)
	s.now = func() time.Time { return time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Deliver(context.Background(), outboxMessage()))

	assert.True(t, validSignature)
	assert.Equal(t, EventPaymentQueued, headers.Get(HeaderEventType))
	assert.Equal(t, "2", headers.Get(HeaderAttempt))
	assert.Equal(t, "ach_1", headers.Get(HeaderIdempotencyKey))
	assert.Equal(t, "2025-06-06T12:00:00Z", headers.Get(HeaderTimestamp))
	assert.Equal(t, "out_1", received.OutboxID)
	assert.Equal(t, int64(5000), received.Payment.Amount)
}

func TestHTTPSink_IdempotencyKeyPrefersClientKey(t *testing.T) {
	var key string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get(HeaderIdempotencyKey)
	}))
	defer server.Close()

	msg := outboxMessage()
	msg.Payload.IdempotencyKey = "client-key"
	require.NoError(t, NewHTTPSink(Config{URL: server.URL}, server.Client(), nil).Deliver(context.Background(), msg))
	assert.Equal(t, "client-key", key)
}

func TestHTTPSink_StatusErrors(t *testing.T) {
	status := int32(http.StatusBadRequest)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(atomic.LoadInt32(&status)))
		_, _ = w.Write([]byte("nope"))
	}))
	defer server.Close()

	s := NewHTTPSink(Config{URL: server.URL}, server.Client(), nil)

	err := s.Deliver(context.Background(), outboxMessage())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.False(t, statusErr.Retryable())
	assert.Equal(t, "HTTP 400: nope", err.Error())

	// client errors never trip the breaker
	for i := 0; i < 10; i++ {
		_ = s.Deliver(context.Background(), outboxMessage())
	}
	assert.Equal(t, resilience.StateClosed, s.breaker.State())

	atomic.StoreInt32(&status, http.StatusServiceUnavailable)
	for i := 0; i < 5; i++ {
		err = s.Deliver(context.Background(), outboxMessage())
		require.ErrorAs(t, err, &statusErr)
		assert.True(t, statusErr.Retryable())
	}
	assert.Equal(t, resilience.StateOpen, s.breaker.State())

	err = s.Deliver(context.Background(), outboxMessage())
	assert.True(t, errors.Is(err, resilience.ErrCircuitOpen))
}

func TestSignature(t *testing.T) {
	payload := []byte(`{"a":1}`)
	sig := Sign(payload, "secret")

	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature(payload, "secret", sig))
	assert.False(t, VerifySignature(payload, "other", sig))
	assert.False(t, VerifySignature([]byte(`{"a":2}`), "secret", sig))
	assert.False(t, VerifySignature(payload, "secret", "not-hex"))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{URL: "https://sync.example.com/payments", Secret: "s"}.Validate())

	err := Config{URL: "sync.example.com"}.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "url: must be an absolute http or https URL")
	assert.Contains(t, err.Error(), "secret: is required")
}
