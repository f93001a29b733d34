// internal/storage/local.go
package storage

import (
	"context"
	"errors"

	"companion-client/internal/common/database"

	"github.com/redis/go-redis/v9"
)

// Storage keys shared across the client core. These mirror what earlier
// client versions persisted, so existing profiles survive upgrades.
const (
	KeySettings        = "app_settings"
	KeyPromptDismissed = "notification-prompt-dismissed"

	// DismissedSentinel is the value written when the user dismisses the
	// enable-notifications prompt.
	DismissedSentinel = "true"
)

// Local is the durable per-profile key-value storage. One logical profile
// owns its keys; there is no cross-profile synchronization.
type Local struct {
	redis *database.RedisClient
}

func NewLocal(redis *database.RedisClient) *Local {
	return &Local{redis: redis}
}

// Get reads key. found is false for absent keys; err is reserved for
// storage faults.
func (l *Local) Get(ctx context.Context, key string) (value string, found bool, err error) {
	value, err = l.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set writes key synchronously with no expiry.
func (l *Local) Set(ctx context.Context, key, value string) error {
	return l.redis.Set(ctx, key, value, 0)
}

// Delete removes key. Missing keys are not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	return l.redis.Del(ctx, key)
}
