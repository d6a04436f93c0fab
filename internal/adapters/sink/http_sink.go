// Package sink delivers queued payments to the downstream sync manager
package sink

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
	apperrors "github.com/kevin07696/ach-processor/pkg/errors"
	"github.com/kevin07696/ach-processor/pkg/resilience"
)

const (
	HeaderSignature      = "X-ACH-Signature"
	HeaderTimestamp      = "X-ACH-Timestamp"
	HeaderEventType      = "X-ACH-Event-Type"
	HeaderAttempt        = "X-ACH-Attempt"
	HeaderIdempotencyKey = "Idempotency-Key"

	EventPaymentQueued = "ach.payment.queued"
)

// Config configures the HTTP sink
type Config struct {
	URL    string
	Secret string
}

// Validate requires an absolute http(s) URL and a signing secret
func (c Config) Validate() error {
	var errs apperrors.ValidationErrors
	if u, err := url.Parse(c.URL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs.Add("url", "must be an absolute http or https URL")
	}
	if c.Secret == "" {
		errs.Add("secret", "is required")
	}
	return errs.Err()
}

// StatusError is a non-2xx response from the sync manager
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the sync manager might accept the same request later
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Event is the body posted to the sync manager
type Event struct {
	Timestamp time.Time            `json:"timestamp"`
	Payment   domain.QueuedPayment `json:"payment"`
	EventType string               `json:"event_type"`
	OutboxID  string               `json:"outbox_id"`
	Attempt   int                  `json:"attempt"`
}

// HTTPSink posts signed payment events to the sync manager
type HTTPSink struct {
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	logger     ports.Logger
	now        func() time.Time
	config     Config
}

var _ ports.PaymentSink = (*HTTPSink)(nil)

// NewHTTPSink creates a sink. A nil httpClient gets a 10s timeout client.
func NewHTTPSink(cfg Config, httpClient *http.Client, logger ports.Logger) *HTTPSink {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = ports.NopLogger{}
	}

	breakerCfg := resilience.DefaultCircuitBreakerConfig()
	breakerCfg.IsFailure = isSinkFailure

	return &HTTPSink{
		httpClient: httpClient,
		breaker:    resilience.NewCircuitBreaker(breakerCfg),
		logger:     logger,
		now:        time.Now,
		config:     cfg,
	}
}

// client errors mean the request was bad, not that the sync manager is down
func isSinkFailure(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return true
}

// Deliver posts the message. Any non-2xx response is an error.
func (s *HTTPSink) Deliver(ctx context.Context, msg *domain.OutboxMessage) error {
	event := Event{
		EventType: EventPaymentQueued,
		OutboxID:  msg.ID,
		Attempt:   msg.Attempts,
		Payment:   msg.Payload,
		Timestamp: s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	err = s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.post(ctx, msg, event, payload)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		s.logger.Warn("Sync manager circuit open, delivery skipped",
			ports.String("outbox_id", msg.ID))
	}
	return err
}

func (s *HTTPSink) post(ctx context.Context, msg *domain.OutboxMessage, event Event, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSignature, Sign(payload, s.config.Secret))
	req.Header.Set(HeaderEventType, event.EventType)
	req.Header.Set(HeaderTimestamp, event.Timestamp.Format(time.RFC3339))
	req.Header.Set(HeaderAttempt, strconv.Itoa(msg.Attempts))
	req.Header.Set(HeaderIdempotencyKey, idempotencyKey(msg))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		s.logger.Debug("Payment delivered to sync manager",
			ports.String("outbox_id", msg.ID),
			ports.Int("http_status", resp.StatusCode))
		return nil
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}

// the sync manager dedupes on this, so it must be stable across retries
func idempotencyKey(msg *domain.OutboxMessage) string {
	if msg.Payload.IdempotencyKey != "" {
		return msg.Payload.IdempotencyKey
	}
	return msg.Payload.TransactionID
}

// Sign returns the hex HMAC-SHA256 of payload
func Sign(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature checks a signature in constant time
func VerifySignature(payload []byte, secret, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hmac.Equal(h.Sum(nil), expected)
}
