package resilience

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy defines retry backoff behavior
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff grows the delay geometrically with optional ± jitter
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     float64 // fraction of the delay, 0.1 = ±10%
}

// DefaultExponentialBackoff suits in-request retries against the token vault
//
//   - Attempt 0: ~100ms
//   - Attempt 1: ~200ms
//   - Attempt 2: ~400ms
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.1,
	}
}

// OutboxBackoff spaces redelivery of queued payments to the sync manager.
// ACH debits allow at most two retries, so the delays are long enough to ride
// out a sync-manager deploy.
//
//   - Attempt 0: ~30s
//   - Attempt 1: ~2m
//   - Attempt 2: ~8m
func OutboxBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:  30 * time.Second,
		MaxDelay:   30 * time.Minute,
		Multiplier: 4.0,
		Jitter:     0.1,
	}
}

// NextDelay returns BaseDelay * Multiplier^attempt ± jitter, capped at MaxDelay
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return eb.BaseDelay
	}

	delay := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt))
	if delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}

	jitterAmount := delay * eb.Jitter
	jitter := (rand.Float64()*2 - 1) * jitterAmount

	finalDelay := time.Duration(delay + jitter)
	if finalDelay < 0 {
		finalDelay = eb.BaseDelay
	}
	return finalDelay
}

// NextAttemptAt schedules the attempt after a failure at now
func NextAttemptAt(strategy BackoffStrategy, now time.Time, attempt int) time.Time {
	return now.Add(strategy.NextDelay(attempt))
}
