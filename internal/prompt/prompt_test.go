// internal/prompt/prompt_test.go
package prompt

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-client/internal/common/database"
	"companion-client/internal/common/logger"
	"companion-client/internal/push"
	"companion-client/internal/storage"
)

type fixedState struct{ state push.State }

func (s fixedState) State() push.State { return s.state }

type failingStorage struct{}

func (failingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, fmt.Errorf("store unavailable")
}

func (failingStorage) Set(ctx context.Context, key, value string) error {
	return fmt.Errorf("store unavailable")
}

func newTestStorage(t *testing.T) (*storage.Local, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return storage.NewLocal(database.NewRedisFromClient(client)), mr
}

func eligible() fixedState {
	return fixedState{state: push.State{Phase: push.PhaseUnknown}}
}

func newTestCoordinator(t *testing.T, source StateSource, store Storage) *Coordinator {
	t.Helper()
	return NewCoordinator(30*time.Second, source, store, logger.NewTestLogger(t))
}

func TestShouldShowForFreshEligibleSession(t *testing.T) {
	store, _ := newTestStorage(t)
	c := newTestCoordinator(t, eligible(), store)

	assert.True(t, c.ShouldShow(context.Background()))
	assert.Equal(t, 30*time.Second, c.Delay())
}

func TestShouldShowSuppressedByPushState(t *testing.T) {
	store, _ := newTestStorage(t)
	cases := map[string]push.State{
		"unsupported":        {Phase: push.PhaseUnsupported},
		"denied":             {Phase: push.PhaseDenied},
		"already subscribed": {Phase: push.PhaseSubscribed},
	}
	for name, state := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestCoordinator(t, fixedState{state: state}, store)
			assert.False(t, c.ShouldShow(context.Background()))
		})
	}
}

func TestDismissIsPermanent(t *testing.T) {
	store, mr := newTestStorage(t)
	c := newTestCoordinator(t, eligible(), store)

	c.Dismiss(context.Background())
	assert.False(t, c.ShouldShow(context.Background()))

	// The sentinel survives a restart with fresh objects on the same
	// store.
	got, err := mr.Get(storage.KeyPromptDismissed)
	require.NoError(t, err)
	assert.Equal(t, storage.DismissedSentinel, got)

	c2 := newTestCoordinator(t, eligible(), store)
	assert.False(t, c2.ShouldShow(context.Background()))
}

func TestRemindLaterDoesNotPersist(t *testing.T) {
	store, mr := newTestStorage(t)
	c := newTestCoordinator(t, eligible(), store)

	c.RemindLater()
	assert.False(t, mr.Exists(storage.KeyPromptDismissed))
	assert.True(t, c.ShouldShow(context.Background()), "a deferred prompt stays eligible")
}

func TestStorageFailuresKeepPromptEligible(t *testing.T) {
	c := newTestCoordinator(t, eligible(), failingStorage{})

	assert.True(t, c.ShouldShow(context.Background()), "a flaky store must not hide the prompt")
	assert.NotPanics(t, func() { c.Dismiss(context.Background()) })
}
