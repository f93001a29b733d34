// internal/push/manager.go
package push

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"companion-client/internal/common/config"
	"companion-client/internal/common/errors"
	"companion-client/internal/common/logger"
	"companion-client/internal/common/metrics"
	"companion-client/internal/common/observability"
	"companion-client/internal/models"
)

// TokenSource yields the bearer token of the current session, if any.
// Satisfied by *auth.Client.
type TokenSource interface {
	Token() (string, bool)
}

// Manager drives the push subscription lifecycle for the current session:
// permission, worker registration, the push channel, backend registration
// and teardown. Public operations return booleans and never panic past
// their own boundary; failures are logged and counted internally.
type Manager struct {
	cfg      config.PushConfig
	platform Platform
	backend  Backend
	tokens   TokenSource
	logger   logger.Logger
	errs     *errors.ErrorHandler
	obs      *observability.Observability

	mu           sync.Mutex
	phase        Phase
	loading      bool
	sub          *models.PushSubscription
	registration Registration
}

func NewManager(cfg config.PushConfig, platform Platform, backend Backend, tokens TokenSource, log logger.Logger) *Manager {
	l := log.WithFields(map[string]interface{}{"component": "push"})
	return &Manager{
		cfg:      cfg,
		platform: platform,
		backend:  backend,
		tokens:   tokens,
		logger:   l,
		errs:     errors.NewErrorHandler(l),
	}
}

// SetObservability attaches the otel recorder. Optional; a nil manager-
// level recorder just skips the per-operation measurements.
func (m *Manager) SetObservability(obs *observability.Observability) {
	m.obs = obs
}

// Start initializes phase from the platform and reconciles a subscription
// left over from an earlier session, so an already-subscribed user is not
// re-subscribed.
func (m *Manager) Start(ctx context.Context) {
	if !m.platform.Supported() {
		m.mu.Lock()
		m.phase = PhaseUnsupported
		m.mu.Unlock()
		m.logger.Info("push not supported on this platform", nil)
		return
	}

	phase := phaseForPermission(m.platform.Permission(ctx))
	m.mu.Lock()
	m.phase = phase
	m.mu.Unlock()

	reg, err := m.platform.Register(ctx)
	if err != nil {
		m.reportError("reconcile", errors.NewWorkerFailedError(err))
		return
	}
	if reg == nil {
		return
	}

	if err := reg.Ready(ctx); err != nil {
		m.reportError("reconcile", errors.NewWorkerFailedError(err))
		return
	}

	sub, err := reg.Subscription(ctx)
	if err != nil {
		m.reportError("reconcile", err)
		return
	}

	m.mu.Lock()
	m.registration = reg
	if sub != nil {
		m.sub = sub
		m.phase = PhaseSubscribed
	}
	m.mu.Unlock()

	if sub != nil {
		m.logger.Info("existing push subscription reconciled", map[string]interface{}{
			"endpoint": sub.Endpoint,
		})
	}
}

// State returns a snapshot of the manager.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Phase: m.phase, Loading: m.loading, Subscription: m.sub}
}

// Registration returns the cached worker registration, or nil before Start
// has registered one.
func (m *Manager) Registration() Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registration
}

// RequestPermission triggers the native permission prompt and reports
// whether permission is now granted. Call this from a deliberate user
// action only.
func (m *Manager) RequestPermission(ctx context.Context) bool {
	m.mu.Lock()
	if m.phase == PhaseUnsupported {
		m.mu.Unlock()
		return false
	}
	m.mu.Unlock()

	perm, err := m.platform.RequestPermission(ctx)
	if err != nil {
		m.reportError("request-permission", err)
		return false
	}

	m.mu.Lock()
	// Keep the subscription tag when permission stays granted.
	if m.phase != PhaseSubscribed || perm != PermissionGranted {
		m.phase = phaseForPermission(perm)
	}
	m.mu.Unlock()

	if perm == PermissionDenied {
		m.reportError("request-permission", errors.NewPermissionDeniedError("user declined the prompt"))
	}
	return perm == PermissionGranted
}

// Subscribe runs the full subscribe flow: permission, worker registration
// and readiness, key material fetch (tolerated failure), push channel,
// backend registration. Each step is an early-exit point; the loading flag
// is never left set, whatever happens.
func (m *Manager) Subscribe(ctx context.Context) (ok bool) {
	started := time.Now()
	log := m.logger.WithFields(map[string]interface{}{
		"operation": "subscribe",
		"opId":      uuid.NewString(),
	})

	// Precondition: an authenticated session. Checked before any side
	// effect so an anonymous call makes zero network requests.
	token, authed := m.tokens.Token()
	if !authed {
		log.Debug("no session, subscribe skipped", nil)
		metrics.PushOperations.WithLabelValues("subscribe", "unauthenticated").Inc()
		return false
	}

	if !m.beginOperation(PhaseSubscribing) {
		log.Warn("subscribe rejected, operation already in flight or unsupported", nil)
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			m.reportError("subscribe", errors.NewInternalError("subscribe", r))
			ok = false
		}
		m.endOperation(ok, PhaseSubscribed, PhaseGranted)
		outcome := "failure"
		if ok {
			outcome = "success"
		}
		metrics.PushOperations.WithLabelValues("subscribe", outcome).Inc()
		if m.obs != nil {
			m.obs.RecordOperation(ctx, "subscribe", outcome)
			m.obs.RecordOperationDuration(ctx, "subscribe", time.Since(started), outcome)
		}
	}()

	perm, err := m.platform.RequestPermission(ctx)
	if err != nil {
		m.reportError("subscribe", err)
		return false
	}
	if perm != PermissionGranted {
		m.setPhase(phaseForPermission(perm))
		if perm == PermissionDenied {
			m.reportError("subscribe", errors.NewPermissionDeniedError("subscribe aborted"))
		}
		return false
	}

	reg, err := m.platform.Register(ctx)
	if err == nil && reg == nil {
		err = fmt.Errorf("platform returned no registration")
	}
	if err != nil {
		m.reportError("subscribe", errors.NewWorkerFailedError(err))
		return false
	}

	if err := reg.Ready(ctx); err != nil {
		m.reportError("subscribe", errors.NewWorkerFailedError(err))
		return false
	}

	// The key fetch is the one tolerated failure: proceed keyless and let
	// the push service decide whether it can still open a channel.
	key, err := m.backend.VAPIDPublicKey(ctx)
	if err != nil {
		m.reportError("subscribe", err)
		metrics.DegradedKeyFetches.Inc()
		key = ""
	}

	sub, err := reg.Subscribe(ctx, key)
	if err != nil {
		m.reportError("subscribe", errors.NewPushChannelFailedError(err))
		return false
	}

	if err := m.backend.RegisterSubscription(ctx, token, sub); err != nil {
		m.reportError("subscribe", err)
		return false
	}

	m.mu.Lock()
	m.registration = reg
	m.sub = sub
	m.mu.Unlock()

	log.Info("push subscription registered", map[string]interface{}{
		"endpoint": sub.Endpoint,
		"keyless":  key == "",
	})
	return true
}

// Unsubscribe drops the push channel and tells the backend. Local state is
// cleared regardless of either call failing: a stuck "subscribed" UI after
// the user chose to unsubscribe is the worse outcome.
func (m *Manager) Unsubscribe(ctx context.Context) (ok bool) {
	token, authed := m.tokens.Token()
	if !authed {
		metrics.PushOperations.WithLabelValues("unsubscribe", "unauthenticated").Inc()
		return false
	}

	if !m.beginOperation(PhaseUnsubscribing) {
		m.logger.Warn("unsubscribe rejected, operation already in flight or unsupported", nil)
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			m.reportError("unsubscribe", errors.NewInternalError("unsubscribe", r))
			ok = false
		}
		m.endOperation(false, PhaseGranted, PhaseGranted)
		outcome := "failure"
		if ok {
			outcome = "success"
		}
		metrics.PushOperations.WithLabelValues("unsubscribe", outcome).Inc()
		if m.obs != nil {
			m.obs.RecordOperation(ctx, "unsubscribe", outcome)
		}
	}()

	m.mu.Lock()
	reg := m.registration
	m.mu.Unlock()

	if reg != nil {
		if err := reg.Unsubscribe(ctx); err != nil {
			m.reportError("unsubscribe", errors.NewPushChannelFailedError(err))
		}
	}

	if err := m.backend.Unsubscribe(ctx, token); err != nil {
		// Tolerated: local state wins over the backend's view.
		m.reportError("unsubscribe", err)
	}

	m.mu.Lock()
	m.sub = nil
	m.mu.Unlock()

	m.logger.Info("push subscription removed", nil)
	return true
}

// UpdateActivity sends one liveness heartbeat. Fire and forget: failures
// are logged at warn and otherwise fully silent.
func (m *Manager) UpdateActivity(ctx context.Context) {
	token, authed := m.tokens.Token()
	if !authed {
		return
	}

	if err := m.backend.UpdateActivity(ctx, token); err != nil {
		m.reportError("heartbeat", err)
		metrics.HeartbeatsSent.WithLabelValues("error").Inc()
		return
	}
	metrics.HeartbeatsSent.WithLabelValues("ok").Inc()
}

// ShowLocalNotification displays a notification through the worker. When
// permission is missing it asks once; if still not granted it aborts
// silently.
func (m *Manager) ShowLocalNotification(ctx context.Context, title, body, icon, url string) {
	if m.State().Permission() != PermissionGranted {
		if !m.RequestPermission(ctx) {
			return
		}
	}

	reg, err := m.readyRegistration(ctx)
	if err != nil {
		m.reportError("show-notification", errors.NewWorkerFailedError(err))
		return
	}

	if icon == "" {
		icon = m.cfg.DefaultIcon
	}
	if url == "" {
		url = m.cfg.DefaultURL
	}

	payload := models.NotificationPayload{
		Title:   title,
		Body:    body,
		Icon:    icon,
		Badge:   m.cfg.DefaultIcon,
		Tag:     "local-notification",
		Data:    models.NotificationData{URL: url},
		Vibrate: []int{100, 50, 100},
		Actions: models.DefaultNotificationActions(),
	}

	if err := reg.ShowNotification(ctx, payload); err != nil {
		m.reportError("show-notification", err)
		return
	}
	metrics.NotificationsShown.WithLabelValues("local").Inc()
}

// ==========================
// Internal helpers
// ==========================

// reportError logs the failure and counts it by code.
func (m *Manager) reportError(operation string, err error) {
	stdErr := m.errs.HandleOperationError(operation, err)
	metrics.PushOperationErrors.WithLabelValues(operation, string(stdErr.Code)).Inc()
}

// beginOperation takes the in-flight guard and enters the transitional
// phase. Stricter than the advisory loading flag alone: re-entrant calls
// from a second call site are rejected instead of racing.
func (m *Manager) beginOperation(transitional Phase) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseUnsupported || m.loading {
		return false
	}
	m.loading = true
	if transitional == PhaseUnsubscribing && m.phase != PhaseSubscribed {
		// Nothing subscribed: keep the current tag, just hold the guard.
		return true
	}
	m.phase = transitional
	return true
}

// endOperation releases the guard and settles the transitional phase.
func (m *Manager) endOperation(ok bool, success, failure Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loading = false
	switch m.phase {
	case PhaseSubscribing:
		if ok {
			m.phase = success
		} else {
			m.phase = failure
		}
	case PhaseUnsubscribing:
		m.phase = failure
	}
}

func (m *Manager) setPhase(p Phase) {
	m.mu.Lock()
	m.phase = p
	m.mu.Unlock()
}

// readyRegistration returns a ready worker registration, registering one
// if needed.
func (m *Manager) readyRegistration(ctx context.Context) (Registration, error) {
	m.mu.Lock()
	reg := m.registration
	m.mu.Unlock()

	if reg == nil {
		var err error
		reg, err = m.platform.Register(ctx)
		if err != nil {
			return nil, err
		}
		if reg == nil {
			return nil, fmt.Errorf("platform returned no registration")
		}
		m.mu.Lock()
		m.registration = reg
		m.mu.Unlock()
	}

	if err := reg.Ready(ctx); err != nil {
		return nil, err
	}
	return reg, nil
}

func phaseForPermission(p Permission) Phase {
	switch p {
	case PermissionGranted:
		return PhaseGranted
	case PermissionDenied:
		return PhaseDenied
	}
	return PhaseUnknown
}
