// internal/push/heartbeat_test.go
package push

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-client/internal/common/logger"
)

type countingReporter struct {
	calls int32
	beats chan struct{}
}

func newCountingReporter() *countingReporter {
	return &countingReporter{beats: make(chan struct{}, 16)}
}

func (r *countingReporter) UpdateActivity(ctx context.Context) {
	atomic.AddInt32(&r.calls, 1)
	r.beats <- struct{}{}
}

func (r *countingReporter) waitBeat(t *testing.T) {
	t.Helper()
	select {
	case <-r.beats:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a heartbeat")
	}
}

func newTestHeartbeat(t *testing.T, reporter ActivityReporter, tokens TokenSource) (*Heartbeat, chan time.Time) {
	t.Helper()
	ticks := make(chan time.Time)
	h := NewHeartbeat(5*time.Minute, reporter, tokens, logger.NewTestLogger(t))
	h.newTicker = func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() {}
	}
	return h, ticks
}

func TestHeartbeatFiresImmediatelyThenOnTicks(t *testing.T) {
	reporter := newCountingReporter()
	h, ticks := newTestHeartbeat(t, reporter, fakeTokens{token: "session-token"})

	h.Start(context.Background())
	defer h.Stop()

	// First beat fires before any tick.
	reporter.waitBeat(t)
	assert.Equal(t, int32(1), atomic.LoadInt32(&reporter.calls))

	ticks <- time.Now()
	reporter.waitBeat(t)
	ticks <- time.Now()
	reporter.waitBeat(t)
	assert.Equal(t, int32(3), atomic.LoadInt32(&reporter.calls))
}

func TestHeartbeatSkipsWithoutSession(t *testing.T) {
	reporter := newCountingReporter()
	h, ticks := newTestHeartbeat(t, reporter, fakeTokens{})

	h.Start(context.Background())

	ticks <- time.Now()
	ticks <- time.Now()
	h.Stop()

	// The loop consumed both ticks without reporting.
	assert.Equal(t, int32(0), atomic.LoadInt32(&reporter.calls))
}

func TestHeartbeatStopIsDeterministic(t *testing.T) {
	reporter := newCountingReporter()
	h, _ := newTestHeartbeat(t, reporter, fakeTokens{token: "session-token"})

	h.Start(context.Background())
	reporter.waitBeat(t)

	h.Stop()
	before := atomic.LoadInt32(&reporter.calls)

	// After Stop returns the loop has exited; nothing can beat again.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, atomic.LoadInt32(&reporter.calls))

	require.NotPanics(t, h.Stop, "Stop must be idempotent")
}

func TestHeartbeatRestartsAfterStop(t *testing.T) {
	reporter := newCountingReporter()
	h, ticks := newTestHeartbeat(t, reporter, fakeTokens{token: "session-token"})

	h.Start(context.Background())
	reporter.waitBeat(t)
	h.Stop()

	h.Start(context.Background())
	reporter.waitBeat(t)
	ticks <- time.Now()
	reporter.waitBeat(t)
	h.Stop()

	assert.Equal(t, int32(3), atomic.LoadInt32(&reporter.calls))
}
