// internal/push/platform.go
package push

import (
	"context"

	"companion-client/internal/models"
)

// Platform models the user agent surface the manager drives: the
// permission system, the worker registry and the push service. The real
// implementation lives in whatever shell embeds the client; LocalPlatform
// is the in-process reference.
type Platform interface {
	// Supported reports whether notifications and workers exist here.
	// Checked once at startup; false turns the whole manager into no-ops.
	Supported() bool

	// Permission returns the current permission without prompting.
	Permission(ctx context.Context) Permission

	// RequestPermission triggers the native prompt. Must only be called
	// from a deliberate user action; platforms penalize unsolicited
	// prompts, and a denied answer is final for the session.
	RequestPermission(ctx context.Context) (Permission, error)

	// Register registers the background worker. Idempotent: registering
	// an already-registered worker returns the existing registration.
	Register(ctx context.Context) (Registration, error)
}

// Registration is a handle on the registered background worker.
type Registration interface {
	// Ready blocks until the worker can receive pushes. This is the one
	// genuine suspension point of the subscribe flow.
	Ready(ctx context.Context) error

	// Subscribe opens a push channel. applicationServerKey may be empty;
	// the push service then operates in the degraded keyless mode.
	Subscribe(ctx context.Context, applicationServerKey string) (*models.PushSubscription, error)

	// Subscription returns the existing subscription from an earlier
	// session, or nil.
	Subscription(ctx context.Context) (*models.PushSubscription, error)

	// Unsubscribe tells the push service to drop the channel.
	Unsubscribe(ctx context.Context) error

	// ShowNotification displays a notification through the worker.
	ShowNotification(ctx context.Context, payload models.NotificationPayload) error
}
