// internal/push/api.go
package push

import (
	"context"
	"strings"
	"time"

	"companion-client/internal/common/errors"
	httpclient "companion-client/internal/common/http"
	"companion-client/internal/models"
)

// Backend is the slice of the companion REST API the manager consumes.
// Declared as an interface for mocking.
type Backend interface {
	VAPIDPublicKey(ctx context.Context) (string, error)
	RegisterSubscription(ctx context.Context, token string, sub *models.PushSubscription) error
	Unsubscribe(ctx context.Context, token string) error
	UpdateActivity(ctx context.Context, token string) error
}

// Client talks to the backend push endpoints under /api/push.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
}

// NewClient creates a backend push API client. baseURL is the backend
// origin without the /api suffix.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpclient.NewClient(timeout),
	}
}

// VAPIDPublicKey fetches the push key material. Unauthenticated.
func (c *Client) VAPIDPublicKey(ctx context.Context) (string, error) {
	var resp models.VAPIDKeyResponse
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/api/push/vapid-public-key", &resp); err != nil {
		return "", errors.NewKeyFetchFailedError(err)
	}
	return resp.PublicKey, nil
}

// RegisterSubscription registers the subscription descriptor with the
// backend.
func (c *Client) RegisterSubscription(ctx context.Context, token string, sub *models.PushSubscription) error {
	if err := c.httpClient.PostJSON(ctx, c.baseURL+"/api/push/subscribe", token, sub, nil); err != nil {
		return errors.NewSubscriptionRegisterFailedError(err)
	}
	return nil
}

// Unsubscribe tells the backend the subscription is gone.
func (c *Client) Unsubscribe(ctx context.Context, token string) error {
	if err := c.httpClient.PostJSON(ctx, c.baseURL+"/api/push/unsubscribe", token, nil, nil); err != nil {
		return errors.NewUnsubscribeNotifyFailedError(err)
	}
	return nil
}

// UpdateActivity sends the liveness heartbeat.
func (c *Client) UpdateActivity(ctx context.Context, token string) error {
	if err := c.httpClient.PostJSON(ctx, c.baseURL+"/api/push/update-activity", token, nil, nil); err != nil {
		return errors.NewHeartbeatFailedError(err)
	}
	return nil
}
