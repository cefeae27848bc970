package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sumit07M/bg-verification-project/auth"
	"github.com/Sumit07M/bg-verification-project/models"
)

// DefaultBaseURL is where the API listens in local development
const DefaultBaseURL = "http://localhost:5000/api"

// APIError is a non-2xx response from the API.
// 401 unwraps to auth.ErrUnauthenticated and 403 to auth.ErrForbidden.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps auth statuses onto the auth sentinels
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return auth.ErrUnauthenticated
	case http.StatusForbidden:
		return auth.ErrForbidden
	default:
		return nil
	}
}

// Client calls the onboarding API, attaching the cached bearer token
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	store      SessionStore
	logger     *zap.Logger
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for baseURL, e.g. "http://localhost:5000/api"
func New(baseURL string, store SessionStore, logger *zap.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      store,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type credentials struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role,omitempty"`
}

// Login exchanges credentials for a token and caches the session
func (c *Client) Login(ctx context.Context, email, password string, role models.Role) (*Session, error) {
	var s Session
	if err := c.Do(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: password, Role: role}, &s); err != nil {
		return nil, err
	}
	if err := SaveSession(ctx, c.store, s); err != nil {
		return nil, fmt.Errorf("failed to cache session: %w", err)
	}
	return &s, nil
}

// Register creates an account; it does not log in
func (c *Client) Register(ctx context.Context, email, password string, role models.Role) error {
	return c.Do(ctx, http.MethodPost, "/auth/register", credentials{Email: email, Password: password, Role: role}, nil)
}

// Logout drops the cached session
func (c *Client) Logout(ctx context.Context) error {
	return ClearSession(ctx, c.store)
}

// Me returns the principal the server derives from the cached token
func (c *Client) Me(ctx context.Context) (models.Principal, error) {
	var p models.Principal
	err := c.Do(ctx, http.MethodGet, "/users/me", nil, &p)
	return p, err
}

// MySubmissions lists the caller's onboarding submissions
func (c *Client) MySubmissions(ctx context.Context) ([]models.Submission, error) {
	var list []models.Submission
	err := c.Do(ctx, http.MethodGet, "/submissions/mine", nil, &list)
	return list, err
}

// Do sends a JSON request to path and decodes the response's data field into out.
// Any 401 clears the cached session.
func (c *Client) Do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized {
			c.logger.Info("session rejected by server, clearing cache", zap.String("path", path))
			if err := ClearSession(ctx, c.store); err != nil {
				c.logger.Warn("failed to clear session", zap.Error(err))
			}
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	session, err := LoadSession(ctx, c.store)
	if errors.Is(err, ErrCorruptSession) {
		return ClearSession(ctx, c.store)
	}
	if err != nil {
		return err
	}
	if session != nil && session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}
	return nil
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Code = body.Error
		if body.Message != "" {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}
