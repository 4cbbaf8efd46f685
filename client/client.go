// Package client talks to the travel planner REST API on behalf of the
// planner CLI.
//
// A [Client] holds the bearer token in memory and mirrors it to a
// [TokenStore], usually the local bbolt file. When any request that carried a
// token is answered with 401 the session is torn down: the token and cached
// profile are cleared, the OnSessionExpired hook runs and the call returns
// [ErrSessionExpired]. There is no refresh and no retry.
//
// [Syncer] layers the offline policy on top: unauthenticated or failed saves
// land in the local backup slot, and a later login migrates that backup to
// the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"travel-planner-server/models"
)

var (
	ErrSessionExpired = errors.New("session expired, please log in again")
	ErrNotLoggedIn    = errors.New("not logged in")

	errUndecodable = errors.New("undecodable response")
)

// TokenStore persists the credential and the cached profile between runs.
type TokenStore interface {
	SaveToken(token string) error
	LoadToken() (string, error)
	ClearToken() error
	SaveUser(user models.UserSummary) error
	ClearUser() error
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Errors  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("api error: status=%d, message=%s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("api error: status=%d, message=%s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  []FieldError    `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore
	now        func() time.Time

	mu        sync.Mutex
	authToken string

	// OnSessionExpired runs after a 401 has cleared the session.
	OnSessionExpired func()
}

// NewClient builds a client for baseURL (scheme and host, no trailing slash)
// and restores any token found in store. store may be nil.
func NewClient(baseURL string, store TokenStore) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store: store,
		now:   time.Now,
	}
	if store != nil {
		token, err := store.LoadToken()
		if err != nil {
			return nil, fmt.Errorf("failed to load stored token: %w", err)
		}
		c.authToken = token
	}
	return c, nil
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authToken
}

// SetAuthToken replaces the in-memory token and mirrors it to the store.
func (c *Client) SetAuthToken(token string) error {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	if token == "" {
		return c.store.ClearToken()
	}
	return c.store.SaveToken(token)
}

// clearSession forgets the token and cached profile.
func (c *Client) clearSession() error {
	c.mu.Lock()
	c.authToken = ""
	c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	return errors.Join(c.store.ClearToken(), c.store.ClearUser())
}

func (c *Client) expireSession() {
	_ = c.clearSession()
	if c.OnSessionExpired != nil {
		c.OnSessionExpired()
	}
}

// doRequest sends body as JSON and decodes the envelope's data into out.
func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	token := c.token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		resp.Body.Close()
		c.expireSession()
		return ErrSessionExpired
	}
	return decodeResponse(resp, out)
}

// decodeResponse unwraps the {success, message, errors, data} envelope.
func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 400 {
			return fmt.Errorf("%w: %v", errUndecodable, err)
		}
	}

	if resp.StatusCode >= 400 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Errors: env.Errors}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: %v", errUndecodable, err)
		}
	}
	return nil
}

// Health checks the health status of the server.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}
