package resilience

import (
	"context"
	"time"
)

// TimeoutConfig bounds every blocking call in the ACH request path.
//
// Hierarchy, outermost first:
//
//	HTTP handler
//	  Service operation (validate, tokenize, enqueue)
//	    Collaborator call (tokenizer, micro-deposit verifier, queue)
//	      Database statement
//
// Each layer must finish inside its parent so a slow collaborator surfaces as its
// own timeout instead of the handler's.
type TimeoutConfig struct {
	HTTPHandler time.Duration
	CronJob     time.Duration

	Service time.Duration

	Tokenizer       time.Duration
	Verifier        time.Duration
	QueueEnqueue    time.Duration
	OutboxDelivery  time.Duration
	DatabaseQuery   time.Duration
	DatabaseCommand time.Duration
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler: 30 * time.Second,
		CronJob:     5 * time.Minute,

		Service: 25 * time.Second,

		Tokenizer:       10 * time.Second,
		Verifier:        5 * time.Second,
		QueueEnqueue:    5 * time.Second,
		OutboxDelivery:  10 * time.Second,
		DatabaseQuery:   2 * time.Second,
		DatabaseCommand: 5 * time.Second,
	}
}

// TestTimeoutConfig returns short timeouts for tests
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler:     5 * time.Second,
		CronJob:         10 * time.Second,
		Service:         4 * time.Second,
		Tokenizer:       1 * time.Second,
		Verifier:        1 * time.Second,
		QueueEnqueue:    1 * time.Second,
		OutboxDelivery:  1 * time.Second,
		DatabaseQuery:   500 * time.Millisecond,
		DatabaseCommand: 1 * time.Second,
	}
}

// HandlerContext bounds an HTTP request
func (tc *TimeoutConfig) HandlerContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.HTTPHandler)
}

// CronContext bounds a cron-triggered job such as an outbox dispatch pass
func (tc *TimeoutConfig) CronContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.CronJob)
}

// ServiceContext bounds one service operation
func (tc *TimeoutConfig) ServiceContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Service)
}

// TokenizerContext bounds a token vault call
func (tc *TimeoutConfig) TokenizerContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Tokenizer)
}

// VerifierContext bounds a micro-deposit status lookup
func (tc *TimeoutConfig) VerifierContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Verifier)
}

// QueueContext bounds a sync-queue hand-off
func (tc *TimeoutConfig) QueueContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.QueueEnqueue)
}

// DeliveryContext bounds one outbox delivery attempt to the sync manager
func (tc *TimeoutConfig) DeliveryContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.OutboxDelivery)
}

// QueryContext bounds a simple database read
func (tc *TimeoutConfig) QueryContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.DatabaseQuery)
}

// CommandContext bounds a database write or transaction
func (tc *TimeoutConfig) CommandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.DatabaseCommand)
}
