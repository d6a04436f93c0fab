package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff_NextDelay(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{-1, 100 * time.Millisecond},
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1 * time.Second},
		{20, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoff_JitterBounds(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  1 * time.Second,
		MaxDelay:   time.Minute,
		Multiplier: 2.0,
		Jitter:     0.1,
	}

	for i := 0; i < 200; i++ {
		d := backoff.NextDelay(1)
		assert.GreaterOrEqual(t, d, 1800*time.Millisecond)
		assert.LessOrEqual(t, d, 2200*time.Millisecond)
	}
}

func TestOutboxBackoff(t *testing.T) {
	backoff := OutboxBackoff()

	first := backoff.NextDelay(0)
	assert.InDelta(t, float64(30*time.Second), float64(first), float64(3*time.Second))

	second := backoff.NextDelay(1)
	assert.InDelta(t, float64(2*time.Minute), float64(second), float64(12*time.Second))

	assert.LessOrEqual(t, backoff.NextDelay(10), 33*time.Minute)
}

func TestNextAttemptAt(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	fixed := &ExponentialBackoff{BaseDelay: time.Minute, MaxDelay: time.Hour, Multiplier: 2}
	assert.Equal(t, now.Add(4*time.Minute), NextAttemptAt(fixed, now, 2))
}
