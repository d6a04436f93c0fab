package ach

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kevin07696/ach-processor/internal/nacha"
)

// GenerateTransactionID returns "ach_" followed by a dashless UUID
func GenerateTransactionID() string {
	return "ach_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateSubscriptionID returns "sub_" followed by a dashless UUID
func GenerateSubscriptionID() string {
	return "sub_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// TraceSequence hands out trace numbers for one originating DFI.
// Safe for concurrent use.
type TraceSequence struct {
	odfi string
	seq  atomic.Int64
}

// NewTraceSequence starts a sequence after start. The sequence wraps at seven digits.
func NewTraceSequence(originRouting string, start int64) *TraceSequence {
	t := &TraceSequence{odfi: originRouting}
	t.seq.Store(start)
	return t
}

// NewClockSeededTraceSequence seeds the sequence from the wall clock so restarts
// rarely reuse recent trace numbers
func NewClockSeededTraceSequence(originRouting string, now time.Time) *TraceSequence {
	return NewTraceSequence(originRouting, now.Unix()%10_000_000)
}

// Next returns the next 15-digit trace number
func (t *TraceSequence) Next() string {
	return nacha.TraceNumber(t.odfi, t.seq.Add(1))
}
