// Package api implements the HTTP client for the Orbit authentication
// service. All authenticated calls go through a single configured client:
// one base URL, one timeout budget, a transport that attaches the stored
// bearer token, and no retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/orbitapp/orbit-cli/internal/client/models"
	"github.com/orbitapp/orbit-cli/internal/client/session"
	"github.com/orbitapp/orbit-cli/internal/logging"
)

// AuthAPI defines the operations the auth service exposes.
//
// Contract:
//   - Register creates an account; it does not authenticate.
//   - Login exchanges credentials for a bearer token.
//   - Me returns the profile belonging to the attached token.
//
// All methods honor context cancellation and either return a decoded payload
// or an error; errors carrying an HTTP status are *Error values.
type AuthAPI interface {
	Register(ctx context.Context, cred models.Credential) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.Token, error)
	Me(ctx context.Context) (*models.User, error)
}

// Client is the concrete AuthAPI over net/http.
type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewClient builds a Client targeting baseURL with a fixed per-request
// timeout. Every request reads the token from store; see authTransport.
func NewClient(baseURL string, timeout time.Duration, store session.Store, log logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &authTransport{
				base:  http.DefaultTransport,
				store: store,
				log:   log,
			},
		},
		log: log,
	}
}

// Register creates a new account. The JSON body matches the backend's
// register schema; full_name is omitted when empty.
func (c *Client) Register(ctx context.Context, cred models.Credential) (*models.User, error) {
	body, err := json.Marshal(cred)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credential: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/register", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var user models.User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token. The backend consumes an
// OAuth2 password form, whose "username" field carries the email.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token models.Token
	if err := c.do(req, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no access token")
	}
	if !strings.EqualFold(token.TokenType, "bearer") {
		return nil, fmt.Errorf("unexpected token type %q", token.TokenType)
	}
	return &token, nil
}

// Me fetches the profile of the currently authenticated user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// do executes the request and decodes a 2xx JSON body into out. Non-2xx
// responses become *Error values; transport failures map to the timeout or
// unavailable sentinel.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeError(resp)
		c.log.Debug(req.Context(), "auth service returned an error",
			"path", req.URL.Path, "status", apiErr.Status)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
