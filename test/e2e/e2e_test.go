// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-client/internal/common/auth"
	"companion-client/internal/common/config"
	"companion-client/internal/common/database"
	"companion-client/internal/common/logger"
	"companion-client/internal/models"
	"companion-client/internal/prompt"
	"companion-client/internal/push"
	"companion-client/internal/settings"
	"companion-client/internal/storage"
)

const (
	testEmail    = "user@example.test"
	testPassword = "hunter2"
	testToken    = "e2e-session-token"
)

// fakeBackend is an in-process companion backend covering the auth and
// push endpoints the client consumes.
type fakeBackend struct {
	t         *testing.T
	publicKey string

	mu            sync.Mutex
	subscriptions map[string]models.PushSubscription
	activityCalls int
	activityCh    chan struct{}
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	_, public, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return &fakeBackend{
		t:             t,
		publicKey:     public,
		subscriptions: make(map[string]models.PushSubscription),
		activityCh:    make(chan struct{}, 64),
	}
}

func (b *fakeBackend) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+testToken
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.Email != testEmail || req.Password != testPassword {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(models.LoginResponse{
			Token: testToken,
			User:  models.User{ID: "u-1", Email: testEmail, Username: "e2e"},
		})
	})

	mux.HandleFunc("/api/push/vapid-public-key", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.VAPIDKeyResponse{PublicKey: b.publicKey})
	})

	mux.HandleFunc("/api/push/subscribe", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var sub models.PushSubscription
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil || sub.Endpoint == "" {
			http.Error(w, "bad subscription", http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.subscriptions[sub.Endpoint] = sub
		b.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/api/push/unsubscribe", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		b.mu.Lock()
		b.subscriptions = make(map[string]models.PushSubscription)
		b.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/api/push/update-activity", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		b.mu.Lock()
		b.activityCalls++
		b.mu.Unlock()
		select {
		case b.activityCh <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func (b *fakeBackend) subscriptionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscriptions)
}

func (b *fakeBackend) waitActivity(t *testing.T) {
	t.Helper()
	select {
	case <-b.activityCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a heartbeat to reach the backend")
	}
}

func newStorage(t *testing.T) (*storage.Local, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return storage.NewLocal(database.NewRedisFromClient(client)), mr
}

func TestFullSubscriptionLifecycle(t *testing.T) {
	log := logger.NewTestLogger(t)
	backend := newFakeBackend(t)
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	local, _ := newStorage(t)
	ctx := context.Background()

	// Login.
	authClient := auth.NewClient(server.URL, 5*time.Second)
	session, err := authClient.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	assert.Equal(t, testEmail, session.User.Email)

	// Push manager against a freshly granted local platform.
	pushCfg := config.PushConfig{
		DefaultIcon:         "/logo192.png",
		DefaultURL:          "/characters",
		NotificationTag:     "ai-companion",
		AutoGrantPermission: true,
	}
	platform := push.NewLocalPlatform(true, log)
	api := push.NewClient(server.URL, 5*time.Second)
	manager := push.NewManager(pushCfg, platform, api, authClient, log)
	manager.Start(ctx)

	require.Equal(t, push.PhaseUnknown, manager.State().Phase)

	// The opt-in prompt is eligible before subscribing.
	coordinator := prompt.NewCoordinator(30*time.Second, manager, local, log)
	assert.True(t, coordinator.ShouldShow(ctx))

	// Subscribe: the backend ends up holding the minted subscription.
	require.True(t, manager.Subscribe(ctx))
	state := manager.State()
	assert.Equal(t, push.PhaseSubscribed, state.Phase)
	require.NotNil(t, state.Subscription)
	assert.Equal(t, 1, backend.subscriptionCount())
	assert.False(t, coordinator.ShouldShow(ctx), "prompt must disappear once subscribed")

	// Heartbeats reach the backend, starting immediately.
	heartbeat := push.NewHeartbeat(20*time.Millisecond, manager, authClient, log)
	heartbeat.Start(ctx)
	backend.waitActivity(t)
	backend.waitActivity(t)
	heartbeat.Stop()

	// Unsubscribe tears down both sides.
	require.True(t, manager.Unsubscribe(ctx))
	assert.False(t, manager.State().IsSubscribed())
	assert.Equal(t, 0, backend.subscriptionCount())
	assert.True(t, coordinator.ShouldShow(ctx), "prompt becomes eligible again after unsubscribing")
}

func TestSubscribeSurvivesVAPIDEndpointOutage(t *testing.T) {
	log := logger.NewTestLogger(t)
	backend := newFakeBackend(t)

	// Wrap the backend so the key endpoint fails while the rest works.
	inner := backend.handler()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/push/vapid-public-key" {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		inner.ServeHTTP(w, r)
	}))
	defer server.Close()

	ctx := context.Background()
	authClient := auth.NewClient(server.URL, 5*time.Second)
	_, err := authClient.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)

	platform := push.NewLocalPlatform(true, log)
	api := push.NewClient(server.URL, 5*time.Second)
	manager := push.NewManager(config.PushConfig{AutoGrantPermission: true}, platform, api, authClient, log)
	manager.Start(ctx)

	require.True(t, manager.Subscribe(ctx), "key endpoint outage must not block subscribing")
	assert.Equal(t, 1, backend.subscriptionCount())
}

func TestSettingsSurviveRestart(t *testing.T) {
	log := logger.NewTestLogger(t)
	local, _ := newStorage(t)
	ctx := context.Background()

	store := settings.NewStore(ctx, local, nil, nil, log)
	require.Equal(t, models.ThemeDark, store.Settings().Theme)

	store.Update(ctx, "theme", "light")
	store.Update(ctx, "compactMode", true)

	// A fresh store over the same durable storage sees the same record.
	restarted := settings.NewStore(ctx, local, nil, nil, log)
	assert.Equal(t, models.ThemeLight, restarted.Settings().Theme)
	assert.True(t, restarted.Settings().CompactMode)
	assert.True(t, restarted.Settings().Notifications, "untouched fields keep their defaults")
}
