// internal/push/platform_local.go
package push

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"companion-client/internal/common/logger"
	"companion-client/internal/models"
)

// LocalPlatform is an in-process user agent: it mints its own endpoints
// and key material and renders notifications to the log. It backs the
// daemon on hosts without a real push-capable runtime, and the end-to-end
// tests.
type LocalPlatform struct {
	autoGrant bool
	logger    logger.Logger

	mu         sync.Mutex
	permission Permission
	reg        *localRegistration
}

func NewLocalPlatform(autoGrant bool, log logger.Logger) *LocalPlatform {
	return &LocalPlatform{
		autoGrant:  autoGrant,
		logger:     log.WithFields(map[string]interface{}{"component": "local-platform"}),
		permission: PermissionDefault,
	}
}

func (p *LocalPlatform) Supported() bool { return true }

func (p *LocalPlatform) Permission(ctx context.Context) Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission
}

// RequestPermission resolves the prompt from configuration. A previous
// answer is final: no re-prompt once granted or denied.
func (p *LocalPlatform) RequestPermission(ctx context.Context) (Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.permission != PermissionDefault {
		return p.permission, nil
	}
	if p.autoGrant {
		p.permission = PermissionGranted
	} else {
		p.permission = PermissionDenied
	}
	return p.permission, nil
}

// Register returns the singleton worker registration, creating it on
// first call.
func (p *LocalPlatform) Register(ctx context.Context) (Registration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reg == nil {
		p.reg = &localRegistration{logger: p.logger}
	}
	return p.reg, nil
}

type localRegistration struct {
	logger logger.Logger

	mu  sync.Mutex
	sub *models.PushSubscription
}

func (r *localRegistration) Ready(ctx context.Context) error { return nil }

func (r *localRegistration) Subscribe(ctx context.Context, applicationServerKey string) (*models.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sub != nil {
		return r.sub, nil
	}

	p256dh, err := randomKey(65)
	if err != nil {
		return nil, fmt.Errorf("generating p256dh key: %w", err)
	}
	auth, err := randomKey(16)
	if err != nil {
		return nil, fmt.Errorf("generating auth secret: %w", err)
	}

	r.sub = &models.PushSubscription{
		Endpoint: "https://push.local/send/" + uuid.NewString(),
		Keys: models.SubscriptionKeys{
			P256dh: p256dh,
			Auth:   auth,
		},
	}
	return r.sub, nil
}

func (r *localRegistration) Subscription(ctx context.Context) (*models.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sub, nil
}

func (r *localRegistration) Unsubscribe(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sub = nil
	return nil
}

// ShowNotification renders to the structured log, which is as close to a
// notification center as a headless host gets.
func (r *localRegistration) ShowNotification(ctx context.Context, payload models.NotificationPayload) error {
	r.logger.Info("notification", map[string]interface{}{
		"title": payload.Title,
		"body":  payload.Body,
		"tag":   payload.Tag,
		"url":   payload.Data.URL,
	})
	return nil
}

func randomKey(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
