package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"travel-planner-server/models"

	"github.com/golang-jwt/jwt/v4"
)

// AuthResponse represents an authentication response
type AuthResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// Authenticated reports whether a token is held and its exp claim is still in
// the future. The signature is not checked; the server does that.
func (c *Client) Authenticated() bool {
	token := c.token()
	if token == "" {
		return false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return c.now().Before(claims.ExpiresAt.Time)
}

// Register creates an account and starts a session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	req := models.RegisterInput{Name: name, Email: email, Password: password}
	var result AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", req, &result); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	if err := c.startSession(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates an existing user.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	req := models.LoginInput{Email: email, Password: password}
	var result AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", req, &result); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	if err := c.startSession(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) startSession(result *AuthResponse) error {
	if err := c.SetAuthToken(result.Token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if c.store != nil {
		if err := c.store.SaveUser(result.User); err != nil {
			return fmt.Errorf("failed to cache profile: %w", err)
		}
	}
	return nil
}

// Me fetches the profile of the logged-in user.
func (c *Client) Me(ctx context.Context) (*models.UserSummary, error) {
	if c.token() == "" {
		return nil, ErrNotLoggedIn
	}
	var result struct {
		User models.UserSummary `json:"user"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", nil, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in models.ProfileInput) (*models.UserSummary, error) {
	var result struct {
		User models.UserSummary `json:"user"`
	}
	if err := c.doRequest(ctx, http.MethodPut, "/api/auth/profile", in, &result); err != nil {
		return nil, err
	}
	if c.store != nil {
		if err := c.store.SaveUser(result.User); err != nil {
			return nil, fmt.Errorf("failed to cache profile: %w", err)
		}
	}
	return &result.User, nil
}

// Logout revokes the server session and always clears the local one.
func (c *Client) Logout(ctx context.Context) error {
	var remoteErr error
	if c.token() != "" {
		remoteErr = c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	}
	if err := c.clearSession(); err != nil {
		return err
	}
	if errors.Is(remoteErr, ErrSessionExpired) {
		return nil
	}
	return remoteErr
}
