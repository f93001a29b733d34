// internal/push/state_test.go
package push

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"companion-client/internal/common/logger"
)

func TestStatePermissionDerivation(t *testing.T) {
	cases := []struct {
		phase Phase
		want  Permission
	}{
		{PhaseUnknown, PermissionDefault},
		{PhaseUnsupported, PermissionDefault},
		{PhaseDenied, PermissionDenied},
		{PhaseGranted, PermissionGranted},
		{PhaseSubscribing, PermissionGranted},
		{PhaseSubscribed, PermissionGranted},
		{PhaseUnsubscribing, PermissionGranted},
	}
	for _, tc := range cases {
		t.Run(tc.phase.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, State{Phase: tc.phase}.Permission())
		})
	}
}

func TestStateSubscribedImpliesGranted(t *testing.T) {
	s := State{Phase: PhaseSubscribed, Subscription: testSubscription()}
	assert.True(t, s.IsSubscribed())
	assert.Equal(t, PermissionGranted, s.Permission())

	// A denied state cannot carry a subscription tag at all.
	assert.False(t, State{Phase: PhaseDenied}.IsSubscribed())
}

func TestLocalPlatformPermissionIsFinal(t *testing.T) {
	p := NewLocalPlatform(false, logger.NewNoOpLogger())
	perm, err := p.RequestPermission(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, PermissionDenied, perm)

	// A later request does not flip the stored answer.
	perm, _ = p.RequestPermission(context.Background())
	assert.Equal(t, PermissionDenied, perm)
}
