// Package backend is the REST client for the chat endpoints of the job-board
// API. Every call carries the stored bearer token; a 401 clears it and fires
// the unauthorized hook.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"nexthire/chat/internal/config"
	"nexthire/chat/internal/logging"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// CredentialStore provides the bearer token.
type CredentialStore interface {
	Token() string
	Clear() error
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match a 401.
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

type Client struct {
	baseURL        string
	http           *http.Client
	creds          CredentialStore
	onUnauthorized func()
	cb             *gobreaker.CircuitBreaker
	log            *zap.SugaredLogger

	maxFailures uint32
	openTimeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithLogger(log *zap.SugaredLogger) Option { return func(c *Client) { c.log = logging.OrNop(log) } }

// WithUnauthorizedHook registers the global reaction to an expired session.
func WithUnauthorizedHook(fn func()) Option { return func(c *Client) { c.onUnauthorized = fn } }

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.Timeout = d } }

// WithBreaker configures the circuit breaker thresholds.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return func(c *Client) { c.maxFailures, c.openTimeout = maxFailures, openTimeout }
}

// New returns a client for baseURL, e.g. "https://host/api/v1".
func New(baseURL string, creds CredentialStore, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		http:        &http.Client{Timeout: config.DefaultRequestTimeout},
		creds:       creds,
		log:         logging.OrNop(nil),
		maxFailures: config.BreakerMaxFailures,
		openTimeout: config.BreakerOpenTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	// The breaker is built last so it logs through the configured logger.
	c.cb = newBreaker(c.maxFailures, c.openTimeout, c.log)
	return c
}

func newBreaker(maxFailures uint32, openTimeout time.Duration, log *zap.SugaredLogger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var se *StatusError
			return errors.As(err, &se) && se.Status < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Infow("circuit breaker state", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// do sends one request through the breaker and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, contentType, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s %s: %w", method, path, ErrBackendUnavailable)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	se := &StatusError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		se.Message = body.Message
		if se.Message == "" {
			se.Message = body.Error
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warnw("session rejected by backend, clearing credential")
		if err := c.creds.Clear(); err != nil {
			c.log.Errorw("failed to clear credential", "error", err)
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}
	return se
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return data, nil
}
