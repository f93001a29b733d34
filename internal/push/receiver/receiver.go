// internal/push/receiver/receiver.go
package receiver

import (
	"context"
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"

	"companion-client/internal/common/logger"
	"companion-client/internal/common/metrics"
	"companion-client/internal/models"
)

// payloadSchema describes the wire shape of an incoming push message.
// Anything that fails it is treated the same as an unparsable body: the
// stock notification is shown instead.
const payloadSchema = `{
	"type": "object",
	"properties": {
		"title":              {"type": "string"},
		"body":               {"type": "string"},
		"icon":               {"type": "string"},
		"badge":              {"type": "string"},
		"tag":                {"type": "string"},
		"image":              {"type": "string"},
		"data": {
			"type": "object",
			"properties": {
				"url": {"type": "string"}
			}
		}
	}
}`

// Notifier displays a notification. Satisfied by a worker registration.
type Notifier interface {
	ShowNotification(ctx context.Context, payload models.NotificationPayload) error
}

// Window is one open application window.
type Window interface {
	Focus(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
}

// WindowList enumerates and opens application windows for click handling.
type WindowList interface {
	Windows(ctx context.Context) ([]Window, error)
	Open(ctx context.Context, url string) error
}

// Receiver handles incoming push messages and notification clicks, the
// role the service worker plays in a browser deployment.
type Receiver struct {
	notifier Notifier
	windows  WindowList
	logger   logger.Logger
	schema   *gojsonschema.Schema
}

func New(notifier Notifier, windows WindowList, log logger.Logger) (*Receiver, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(payloadSchema))
	if err != nil {
		return nil, err
	}
	return &Receiver{
		notifier: notifier,
		windows:  windows,
		logger:   log.WithFields(map[string]interface{}{"component": "receiver"}),
		schema:   schema,
	}, nil
}

// HandlePush displays a notification for one incoming push message. A
// missing, unparsable or schema-invalid body falls back to the stock
// payload; a valid one is merged over it field by field, so a partial
// message still renders completely.
func (r *Receiver) HandlePush(ctx context.Context, raw []byte) error {
	payload := models.DefaultNotificationPayload()

	if len(raw) > 0 {
		if merged, ok := r.mergePayload(raw, payload); ok {
			payload = merged
		}
	}

	// Actions and haptics are fixed regardless of what the sender asked
	// for.
	payload.Actions = models.DefaultNotificationActions()
	payload.Vibrate = []int{100, 50, 100}
	payload.RequireInteraction = true

	if err := r.notifier.ShowNotification(ctx, payload); err != nil {
		return err
	}

	metrics.NotificationsShown.WithLabelValues("push").Inc()
	r.logger.Info("push notification displayed", map[string]interface{}{
		"title": payload.Title,
		"tag":   payload.Tag,
	})
	return nil
}

// HandleClick reacts to the user activating a notification or one of its
// buttons. "later" dismisses; everything else brings an existing window to
// the target URL, or opens one.
func (r *Receiver) HandleClick(ctx context.Context, action string, payload models.NotificationPayload) error {
	if action == models.ActionLater {
		r.logger.Debug("notification dismissed for later", nil)
		return nil
	}

	url := payload.Data.URL
	if url == "" {
		url = models.DefaultNotificationPayload().Data.URL
	}

	wins, err := r.windows.Windows(ctx)
	if err != nil {
		return err
	}

	if len(wins) > 0 {
		w := wins[0]
		if err := w.Focus(ctx); err != nil {
			return err
		}
		return w.Navigate(ctx, url)
	}
	return r.windows.Open(ctx, url)
}

func (r *Receiver) mergePayload(raw []byte, base models.NotificationPayload) (models.NotificationPayload, bool) {
	result, err := r.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil || !result.Valid() {
		r.logger.Warn("push payload rejected, using stock notification", map[string]interface{}{
			"error": validationDetail(result, err),
		})
		return base, false
	}

	// Unmarshal into the prefilled value: present keys override, absent
	// keys keep the stock fields.
	if err := json.Unmarshal(raw, &base); err != nil {
		r.logger.Warn("push payload unparsable, using stock notification", map[string]interface{}{
			"error": err.Error(),
		})
		return base, false
	}
	return base, true
}

func validationDetail(result *gojsonschema.Result, err error) string {
	if err != nil {
		return err.Error()
	}
	if result != nil && len(result.Errors()) > 0 {
		return result.Errors()[0].String()
	}
	return "invalid payload"
}
