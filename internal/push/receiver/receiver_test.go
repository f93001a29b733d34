// internal/push/receiver/receiver_test.go
package receiver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-client/internal/common/logger"
	"companion-client/internal/models"
)

type fakeNotifier struct {
	shown []models.NotificationPayload
	err   error
}

func (n *fakeNotifier) ShowNotification(ctx context.Context, payload models.NotificationPayload) error {
	if n.err != nil {
		return n.err
	}
	n.shown = append(n.shown, payload)
	return nil
}

type fakeWindow struct {
	focused   bool
	navigated string
}

func (w *fakeWindow) Focus(ctx context.Context) error { w.focused = true; return nil }

func (w *fakeWindow) Navigate(ctx context.Context, url string) error {
	w.navigated = url
	return nil
}

type fakeWindowList struct {
	windows []Window
	opened  []string
}

func (l *fakeWindowList) Windows(ctx context.Context) ([]Window, error) { return l.windows, nil }

func (l *fakeWindowList) Open(ctx context.Context, url string) error {
	l.opened = append(l.opened, url)
	return nil
}

func newTestReceiver(t *testing.T, notifier *fakeNotifier, windows *fakeWindowList) *Receiver {
	t.Helper()
	r, err := New(notifier, windows, logger.NewTestLogger(t))
	require.NoError(t, err)
	return r
}

func TestHandlePushEmptyBodyShowsStockNotification(t *testing.T) {
	notifier := &fakeNotifier{}
	r := newTestReceiver(t, notifier, &fakeWindowList{})

	require.NoError(t, r.HandlePush(context.Background(), nil))
	require.Len(t, notifier.shown, 1)

	got := notifier.shown[0]
	assert.Equal(t, "AI Companion", got.Title)
	assert.Equal(t, "Someone is thinking about you...", got.Body)
	assert.Equal(t, "/logo192.png", got.Icon)
	assert.Equal(t, "ai-companion", got.Tag)
	assert.Equal(t, "/characters", got.Data.URL)
}

func TestHandlePushMergesPartialPayload(t *testing.T) {
	notifier := &fakeNotifier{}
	r := newTestReceiver(t, notifier, &fakeWindowList{})

	raw := []byte(`{"title":"Luna","data":{"url":"/chat/luna"}}`)
	require.NoError(t, r.HandlePush(context.Background(), raw))
	require.Len(t, notifier.shown, 1)

	got := notifier.shown[0]
	assert.Equal(t, "Luna", got.Title)
	assert.Equal(t, "/chat/luna", got.Data.URL)
	assert.Equal(t, "Someone is thinking about you...", got.Body, "absent keys keep the stock fields")
	assert.Equal(t, "ai-companion", got.Tag)
}

func TestHandlePushMalformedBodyFallsBack(t *testing.T) {
	for name, raw := range map[string][]byte{
		"truncated json": []byte(`{"title":"Lu`),
		"wrong type":     []byte(`{"title":42}`),
		"not an object":  []byte(`"hello"`),
	} {
		t.Run(name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			r := newTestReceiver(t, notifier, &fakeWindowList{})

			require.NoError(t, r.HandlePush(context.Background(), raw))
			require.Len(t, notifier.shown, 1)
			assert.Equal(t, "AI Companion", notifier.shown[0].Title)
		})
	}
}

func TestHandlePushForcesActionsAndHaptics(t *testing.T) {
	notifier := &fakeNotifier{}
	r := newTestReceiver(t, notifier, &fakeWindowList{})

	raw := []byte(`{"title":"Luna"}`)
	require.NoError(t, r.HandlePush(context.Background(), raw))
	require.Len(t, notifier.shown, 1)

	got := notifier.shown[0]
	require.Len(t, got.Actions, 2)
	assert.Equal(t, models.ActionChat, got.Actions[0].Action)
	assert.Equal(t, models.ActionLater, got.Actions[1].Action)
	assert.Equal(t, []int{100, 50, 100}, got.Vibrate)
	assert.True(t, got.RequireInteraction)
}

func TestHandleClickLaterOnlyDismisses(t *testing.T) {
	windows := &fakeWindowList{windows: []Window{&fakeWindow{}}}
	r := newTestReceiver(t, &fakeNotifier{}, windows)

	payload := models.DefaultNotificationPayload()
	require.NoError(t, r.HandleClick(context.Background(), models.ActionLater, payload))

	w := windows.windows[0].(*fakeWindow)
	assert.False(t, w.focused)
	assert.Empty(t, w.navigated)
	assert.Empty(t, windows.opened)
}

func TestHandleClickFocusesExistingWindow(t *testing.T) {
	w := &fakeWindow{}
	windows := &fakeWindowList{windows: []Window{w}}
	r := newTestReceiver(t, &fakeNotifier{}, windows)

	payload := models.NotificationPayload{Data: models.NotificationData{URL: "/chat/luna"}}
	require.NoError(t, r.HandleClick(context.Background(), models.ActionChat, payload))

	assert.True(t, w.focused)
	assert.Equal(t, "/chat/luna", w.navigated)
	assert.Empty(t, windows.opened)
}

func TestHandleClickOpensWindowWhenNoneExist(t *testing.T) {
	windows := &fakeWindowList{}
	r := newTestReceiver(t, &fakeNotifier{}, windows)

	require.NoError(t, r.HandleClick(context.Background(), "", models.NotificationPayload{}))
	assert.Equal(t, []string{"/characters"}, windows.opened, "empty target falls back to the stock URL")
}
