// internal/push/state.go
package push

import "companion-client/internal/models"

// Permission mirrors the platform permission values.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Phase is the tagged subscription state. Permission and subscription
// status travel together in one tag so illegal combinations (subscribed
// while denied) cannot be represented.
type Phase int

const (
	// PhaseUnknown: permission not yet requested this session.
	PhaseUnknown Phase = iota
	// PhaseUnsupported: the platform has no push capability; every
	// operation is a no-op.
	PhaseUnsupported
	// PhaseDenied: the user declined. Only an out-of-band browser
	// settings change exits this phase; the client never re-asks.
	PhaseDenied
	// PhaseGranted: permission granted, no active subscription.
	PhaseGranted
	// PhaseSubscribing: a subscribe flow holds the in-flight guard.
	PhaseSubscribing
	// PhaseSubscribed: a subscription exists and was registered with the
	// backend.
	PhaseSubscribed
	// PhaseUnsubscribing: an unsubscribe flow holds the in-flight guard.
	PhaseUnsubscribing
)

func (p Phase) String() string {
	switch p {
	case PhaseUnknown:
		return "unknown"
	case PhaseUnsupported:
		return "unsupported"
	case PhaseDenied:
		return "denied"
	case PhaseGranted:
		return "granted"
	case PhaseSubscribing:
		return "subscribing"
	case PhaseSubscribed:
		return "subscribed"
	case PhaseUnsubscribing:
		return "unsubscribing"
	}
	return "invalid"
}

// State is a point-in-time snapshot of the manager.
type State struct {
	Phase   Phase
	Loading bool

	// Subscription is non-nil only while subscribed (and during the
	// teardown half of an unsubscribe).
	Subscription *models.PushSubscription
}

// Permission reports the platform permission implied by the phase.
func (s State) Permission() Permission {
	switch s.Phase {
	case PhaseDenied:
		return PermissionDenied
	case PhaseGranted, PhaseSubscribing, PhaseSubscribed, PhaseUnsubscribing:
		return PermissionGranted
	}
	return PermissionDefault
}

// IsSubscribed reports whether an active, backend-registered subscription
// exists.
func (s State) IsSubscribed() bool {
	return s.Phase == PhaseSubscribed
}

// Supported reports whether push operations can do anything at all here.
func (s State) Supported() bool {
	return s.Phase != PhaseUnsupported
}
