// internal/prompt/prompt.go
package prompt

import (
	"context"
	"time"

	"companion-client/internal/common/errors"
	"companion-client/internal/common/logger"
	"companion-client/internal/push"
	"companion-client/internal/storage"
)

// StateSource yields the current push state. Satisfied by *push.Manager.
type StateSource interface {
	State() push.State
}

// Storage is the slice of durable client storage the coordinator needs.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Coordinator decides whether and when to surface the notification
// opt-in prompt. A permanent dismissal is persisted; "remind me later"
// hides the prompt for the session only.
type Coordinator struct {
	delay   time.Duration
	source  StateSource
	storage Storage
	logger  logger.Logger
	errs    *errors.ErrorHandler
}

func NewCoordinator(delay time.Duration, source StateSource, store Storage, log logger.Logger) *Coordinator {
	l := log.WithFields(map[string]interface{}{"component": "prompt"})
	return &Coordinator{
		delay:   delay,
		source:  source,
		storage: store,
		logger:  l,
		errs:    errors.NewErrorHandler(l),
	}
}

// Delay is how long after session start the prompt may first appear.
func (c *Coordinator) Delay() time.Duration {
	return c.delay
}

// ShouldShow reports whether the prompt is eligible right now: push must
// be supported, not already subscribed, not denied, and not permanently
// dismissed. A storage read failure counts as not dismissed, so a flaky
// store errs on the side of asking.
func (c *Coordinator) ShouldShow(ctx context.Context) bool {
	state := c.source.State()
	if !state.Supported() || state.IsSubscribed() || state.Permission() == push.PermissionDenied {
		return false
	}

	value, found, err := c.storage.Get(ctx, storage.KeyPromptDismissed)
	if err != nil {
		c.errs.HandleOperationError("prompt-eligibility", errors.NewPersistenceFailedError(storage.KeyPromptDismissed, err))
		return true
	}
	return !(found && value == storage.DismissedSentinel)
}

// Dismiss records a permanent opt-out. A write failure is swallowed: the
// user asked for the prompt to go away now, and the worst case of a lost
// write is being asked once more next session.
func (c *Coordinator) Dismiss(ctx context.Context) {
	if err := c.storage.Set(ctx, storage.KeyPromptDismissed, storage.DismissedSentinel); err != nil {
		c.errs.HandleOperationError("prompt-dismiss", errors.NewPersistenceFailedError(storage.KeyPromptDismissed, err))
		return
	}
	c.logger.Debug("notification prompt permanently dismissed", nil)
}

// RemindLater hides the prompt without persisting anything, so it comes
// back next session.
func (c *Coordinator) RemindLater() {
	c.logger.Debug("notification prompt deferred to next session", nil)
}
