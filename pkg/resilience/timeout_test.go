package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertHierarchy(t *testing.T, tc *TimeoutConfig) {
	t.Helper()
	assert.Greater(t, tc.HTTPHandler, tc.Service, "handler must outlive the service")
	for name, d := range map[string]time.Duration{
		"tokenizer": tc.Tokenizer,
		"verifier":  tc.Verifier,
		"queue":     tc.QueueEnqueue,
	} {
		assert.Greater(t, tc.Service, d, "service must outlive %s", name)
	}
	assert.Greater(t, tc.QueueEnqueue, tc.DatabaseQuery)
	assert.Greater(t, tc.CronJob, tc.OutboxDelivery)

	// a full debit path runs verifier, tokenizer and queue in sequence
	assert.Greater(t, tc.Service, tc.Verifier+tc.Tokenizer+tc.QueueEnqueue)
}

func TestDefaultTimeoutConfig(t *testing.T) {
	tc := DefaultTimeoutConfig()
	assertHierarchy(t, tc)
	assert.Equal(t, 30*time.Second, tc.HTTPHandler)
	assert.Equal(t, 10*time.Second, tc.Tokenizer)
}

func TestTestTimeoutConfig(t *testing.T) {
	tc := TestTimeoutConfig()
	assertHierarchy(t, tc)
	assert.Less(t, tc.HTTPHandler, 10*time.Second)
}

func TestContextCreators(t *testing.T) {
	tc := TestTimeoutConfig()

	creators := map[string]struct {
		fn   func(context.Context) (context.Context, context.CancelFunc)
		want time.Duration
	}{
		"handler":  {tc.HandlerContext, tc.HTTPHandler},
		"cron":     {tc.CronContext, tc.CronJob},
		"service":  {tc.ServiceContext, tc.Service},
		"tokenize": {tc.TokenizerContext, tc.Tokenizer},
		"verify":   {tc.VerifierContext, tc.Verifier},
		"queue":    {tc.QueueContext, tc.QueueEnqueue},
		"delivery": {tc.DeliveryContext, tc.OutboxDelivery},
		"query":    {tc.QueryContext, tc.DatabaseQuery},
		"command":  {tc.CommandContext, tc.DatabaseCommand},
	}

	for name, c := range creators {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			ctx, cancel := c.fn(context.Background())
			defer cancel()

			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.WithinDuration(t, start.Add(c.want), deadline, 100*time.Millisecond)
		})
	}
}

func TestChildContextRespectsParentDeadline(t *testing.T) {
	tc := DefaultTimeoutConfig()

	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	child, childCancel := tc.TokenizerContext(parent)
	defer childCancel()

	parentDeadline, _ := parent.Deadline()
	childDeadline, _ := child.Deadline()
	assert.Equal(t, parentDeadline, childDeadline)

	<-child.Done()
	assert.ErrorIs(t, child.Err(), context.DeadlineExceeded)
}

func TestParentCancellationPropagates(t *testing.T) {
	tc := TestTimeoutConfig()

	parent, cancel := context.WithCancel(context.Background())
	child, childCancel := tc.QueueContext(parent)
	defer childCancel()

	cancel()
	<-child.Done()
	assert.ErrorIs(t, child.Err(), context.Canceled)
}
