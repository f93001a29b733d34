// internal/push/heartbeat.go
package push

import (
	"context"
	"sync"
	"time"

	"companion-client/internal/common/logger"
)

// ActivityReporter is the slice of Manager the heartbeat needs.
type ActivityReporter interface {
	UpdateActivity(ctx context.Context)
}

// Heartbeat periodically reports liveness to the backend while a session
// is active. The first beat fires immediately on Start; later beats follow
// the configured interval. Stop is idempotent and waits for the loop to
// exit.
type Heartbeat struct {
	interval time.Duration
	reporter ActivityReporter
	tokens   TokenSource
	logger   logger.Logger

	// newTicker is swappable in tests for deterministic time.
	newTicker func(time.Duration) (<-chan time.Time, func())

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewHeartbeat(interval time.Duration, reporter ActivityReporter, tokens TokenSource, log logger.Logger) *Heartbeat {
	return &Heartbeat{
		interval: interval,
		reporter: reporter,
		tokens:   tokens,
		logger:   log.WithFields(map[string]interface{}{"component": "heartbeat"}),
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Start launches the heartbeat loop. A second Start without an intervening
// Stop is a no-op.
func (h *Heartbeat) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.stopped = make(chan struct{})

	ticks, stopTicker := h.newTicker(h.interval)
	stopped := h.stopped

	h.logger.Info("heartbeat started", map[string]interface{}{
		"interval": h.interval.String(),
	})

	go func() {
		defer close(stopped)
		defer stopTicker()

		h.beat(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				h.beat(ctx)
			}
		}
	}()
}

// Stop cancels the loop and blocks until it has exited.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	cancel := h.cancel
	stopped := h.stopped
	h.cancel = nil
	h.stopped = nil
	h.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
	h.logger.Info("heartbeat stopped", nil)
}

func (h *Heartbeat) beat(ctx context.Context) {
	if _, authed := h.tokens.Token(); !authed {
		return
	}
	h.reporter.UpdateActivity(ctx)
}
