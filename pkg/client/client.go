// Package client is the API gateway used by front ends: a single HTTP
// client that attaches the bearer token to every request and silently
// refreshes it when the embedded expiry has passed.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 10 * time.Second

// ErrSessionExpired is returned when the access token is expired and the
// session could not be refreshed. The session store has been cleared by the
// time callers see it.
var ErrSessionExpired = errors.New("session expired")

// APIError carries a non-2xx response: the status code and the server's
// message field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Client wraps all outgoing API calls. Construct it with New and inject it
// where needed; it keeps no global state. Two transports are held so the
// refresh call can never recurse into the token-refreshing path itself.
type Client struct {
	baseURL     string
	store       SessionStore
	httpClient  *http.Client
	refreshHTTP *http.Client
	onExpired   func()
	refreshing  singleflight.Group
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the default 10s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
		c.refreshHTTP.Timeout = d
	}
}

// WithSessionExpiredHook installs a callback invoked after a failed refresh
// clears the session — the place to route the user back to the login view.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// New builds a Client for the given API base URL (e.g.
// "http://localhost:3001/api"). When store is nil an in-memory store is
// used.
func New(baseURL string, store SessionStore, opts ...Option) *Client {
	if store == nil {
		store = NewMemoryStore()
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		store:       store,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		refreshHTTP: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Session exposes the current session, mainly for callers that need to know
// whether a user is logged in.
func (c *Client) Session() (Session, bool) { return c.store.Load() }

// SetSession overwrites the stored session, e.g. after a login response.
func (c *Client) SetSession(s Session) { c.store.Save(s) }

// ----- generic verbs -----

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

// do runs one request: refresh the token if needed, attach the bearer
// header, send, and decode the JSON payload into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.ensureFresh(ctx)
	if err != nil {
		return err
	}

	var rd io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, out)
}

// ensureFresh returns the bearer token to attach, refreshing it first when
// the embedded expiry has passed. With no session or no access token the
// request simply goes out anonymously. A session whose token is expired but
// that holds no refresh token is sent as-is — the server will reject it —
// which mirrors the behavior of the original gateway.
func (c *Client) ensureFresh(ctx context.Context) (string, error) {
	sess, ok := c.store.Load()
	if !ok || sess.AccessToken == "" {
		return "", nil
	}

	exp, err := tokenExpiry(sess.AccessToken)
	if err == nil && time.Now().Before(exp) {
		return sess.AccessToken, nil
	}
	if sess.RefreshToken == "" {
		return sess.AccessToken, nil
	}

	// Coalesce concurrent refresh attempts: all goroutines that see the
	// same expired session share one refresh call.
	if _, err, _ := c.refreshing.Do(sess.RefreshToken, func() (any, error) {
		return nil, c.refresh(ctx, sess.RefreshToken)
	}); err != nil {
		return "", err
	}

	sess, ok = c.store.Load()
	if !ok {
		return "", ErrSessionExpired
	}
	return sess.AccessToken, nil
}

// refresh exchanges the stored refresh token for a new access token. Any
// failure clears the session and fires the expiry hook.
func (c *Client) refresh(ctx context.Context, refreshToken string) error {
	bs, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(bs))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.refreshHTTP.Do(req)
	if err != nil {
		c.expire()
		return ErrSessionExpired
	}
	defer resp.Body.Close()

	var body struct {
		AccessToken      string `json:"access_token"`
		ExpiresIn        int64  `json:"expires_in"`
		RefreshToken     string `json:"refresh_token"`
		RefreshExpiresIn int64  `json:"refresh_expires_in"`
	}
	if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&body) != nil || body.AccessToken == "" {
		c.expire()
		return ErrSessionExpired
	}

	sess := Session{
		AccessToken:     body.AccessToken,
		AccessExpiresAt: time.Unix(body.ExpiresIn, 0),
	}
	// Keep the old refresh token unless the server rotated it.
	sess.RefreshToken = refreshToken
	if body.RefreshToken != "" {
		sess.RefreshToken = body.RefreshToken
		sess.RefreshExpiresAt = time.Unix(body.RefreshExpiresIn, 0)
	}
	c.store.Save(sess)
	return nil
}

func (c *Client) expire() {
	c.store.Clear()
	if c.onExpired != nil {
		c.onExpired()
	}
}

// tokenExpiry extracts the exp claim from a JWT without verifying the
// signature — the client only needs the timestamp, the server still
// verifies every token it receives.
func tokenExpiry(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, errors.New("malformed token")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return time.Time{}, err
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.Exp == 0 {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return time.Unix(claims.Exp, 0), nil
}
