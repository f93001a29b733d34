// internal/common/auth/client.go
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	httpclient "companion-client/internal/common/http"
	"companion-client/internal/models"

	"companion-client/internal/common/errors"
)

// TokenSource yields the bearer token of the current session, if any.
// The notification manager and the heartbeat depend on this and nothing
// else about authentication.
type TokenSource interface {
	Token() (string, bool)
}

// Client authenticates against the companion backend and caches the
// issued bearer token for the lifetime of the session.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client

	mu      sync.RWMutex
	session *models.Session
}

// NewClient creates a backend auth client. baseURL is the backend origin
// without the /api suffix.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpclient.NewClient(timeout),
	}
}

// Login exchanges credentials for a session via POST /api/auth/login and
// caches the result.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	req := models.LoginRequest{Email: email, Password: password}

	var resp models.LoginResponse
	if err := c.httpClient.PostJSON(ctx, c.baseURL+"/api/auth/login", "", req, &resp); err != nil {
		return nil, errors.NewLoginFailedError(err)
	}

	session := &models.Session{User: resp.User, Token: resp.Token}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	return session, nil
}

// Token returns the cached bearer token. ok is false when no session is
// active.
func (c *Client) Token() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil || c.session.Token == "" {
		return "", false
	}
	return c.session.Token, true
}

// Session returns the cached session, or nil.
func (c *Client) Session() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Logout clears the cached session. Callers own stopping anything scoped
// to the session, notably the activity heartbeat.
func (c *Client) Logout() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

// StaticTokenSource adapts a fixed token (tests, tooling) to TokenSource.
type StaticTokenSource string

func (s StaticTokenSource) Token() (string, bool) {
	return string(s), s != ""
}
