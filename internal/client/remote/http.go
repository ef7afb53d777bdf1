package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/monotes/monotes/internal/common"
	"github.com/monotes/monotes/internal/logging"
	"github.com/sethvargo/go-retry"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 15 * time.Second
)

// HTTPClient implements Client over the server's JSON API.
//
// Every call except the authentication-failure path is wrapped in a retry
// policy: up to 3 retries with exponential backoff starting at 15s and
// doubling each attempt. Unauthenticated and not-found responses are never
// retried; after exhaustion the original error is returned.
type HTTPClient struct {
	baseURL    string
	hc         *http.Client
	log        logging.Logger
	maxRetries uint64
	baseDelay  time.Duration

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	userID       string
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithRetryPolicy overrides the retry count and base backoff delay. Tests use
// it to keep backoff in the millisecond range.
func WithRetryPolicy(maxRetries uint64, baseDelay time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(log logging.Logger) HTTPOption {
	return func(c *HTTPClient) { c.log = log }
}

// WithHTTPDoer overrides the underlying *http.Client.
func WithHTTPDoer(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.hc = hc }
}

// NewHTTPClient returns a client bound to baseURL, e.g. "http://127.0.0.1:8080".
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:    baseURL,
		hc:         &http.Client{},
		log:        logging.Nop(),
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId,omitempty"`
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", body, nil)
	})
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	var pair tokenPair
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", body, &pair)
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	c.userID = pair.UserID
	c.mu.Unlock()
	return nil
}

func (c *HTTPClient) Logout() {
	c.mu.Lock()
	c.accessToken = ""
	c.refreshToken = ""
	c.userID = ""
	c.mu.Unlock()
}

func (c *HTTPClient) CurrentUserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/v1/ping", nil, nil)
}

func (c *HTTPClient) UpsertNote(ctx context.Context, noteID, content string, updatedAt int64) (string, error) {
	body := Note{NoteID: noteID, Content: content, UpdatedAt: updatedAt}
	var out struct {
		RecordID string `json:"recordId"`
	}
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPut, "/api/v1/notes/"+url.PathEscape(noteID), body, &out)
	})
	if err != nil {
		return "", err
	}
	return out.RecordID, nil
}

func (c *HTTPClient) FetchNote(ctx context.Context, noteID string) (*Note, error) {
	var out *Note
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodGet, "/api/v1/notes/"+url.PathEscape(noteID), nil, &out)
	})
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListNotes(ctx context.Context) ([]Note, error) {
	var out []Note
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodGet, "/api/v1/notes", nil, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SearchNotes(ctx context.Context, q string) ([]Note, error) {
	var out []Note
	path := "/api/v1/notes/search?q=" + url.QueryEscape(q)
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodGet, path, nil, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateNote(ctx context.Context, noteID, content string, updatedAt int64) (*Note, error) {
	body := Note{NoteID: noteID, Content: content, UpdatedAt: updatedAt}
	var out Note
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPatch, "/api/v1/notes/"+url.PathEscape(noteID), body, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SoftDeleteNote(ctx context.Context, noteID string) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodDelete, "/api/v1/notes/"+url.PathEscape(noteID), nil, nil)
	})
}

// withRetry applies the transient-failure retry policy around fn.
// Authentication, not-found and validation failures pass through unretried.
func (c *HTTPClient) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.baseDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, common.ErrUnauthenticated) ||
			errors.Is(err, common.ErrNotFound) ||
			errors.Is(err, common.ErrAlreadyExists) ||
			errors.Is(err, common.ErrValidation) {
			return err
		}
		c.log.Warn(ctx, "remote call failed, will retry", "error", err)
		return retry.RetryableError(err)
	})
}

// doJSON performs one request/response cycle. When the server rejects an
// expired access token it refreshes the pair once and replays the request.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	err := c.doOnce(ctx, method, path, body, out)
	if err == nil || !errors.Is(err, common.ErrTokenExpired) {
		return err
	}

	if refreshErr := c.refresh(ctx); refreshErr != nil {
		return fmt.Errorf("%w: %s", common.ErrUnauthenticated, refreshErr)
	}
	return c.doOnce(ctx, method, path, body, out)
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	c.mu.Lock()
	token := c.refreshToken
	c.mu.Unlock()

	if token == "" {
		return common.ErrUnauthenticated
	}

	var pair tokenPair
	body := map[string]string{"refreshToken": token}
	if err := c.doOnce(ctx, http.MethodPost, "/api/v1/auth/refresh", body, &pair); err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	c.mu.Unlock()
	return nil
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s", common.ErrUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if out == nil || len(payload) == 0 || string(payload) == "null" {
			return nil
		}
		return json.Unmarshal(payload, out)
	}

	var ep errorPayload
	_ = json.Unmarshal(payload, &ep)

	return c.mapError(resp.StatusCode, ep)
}

func (c *HTTPClient) mapError(status int, ep errorPayload) error {
	switch {
	case status == http.StatusUnauthorized && ep.Code == common.TokenExpiredCode:
		return common.ErrTokenExpired
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrUnauthenticated, ep.Error)
	case status == http.StatusNotFound:
		return common.ErrNotFound
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrAlreadyExists, ep.Error)
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrValidation, ep.Error)
	default:
		return fmt.Errorf("%w: http %d: %s", common.ErrUnavailable, status, ep.Error)
	}
}
