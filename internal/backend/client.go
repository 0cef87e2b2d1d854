package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/storefront/internal/circuitbreaker"
)

// Client talks to the storefront REST backend. Every call goes to the same
// base URL and carries the session token verbatim in Authorization.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
	log        *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(cl *Client) { cl.breaker = b }
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// NewClient builds a client for baseURL. A zero timeout leaves requests
// bounded only by the caller's context.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		s := circuitbreaker.DefaultSettings("backend")
		s.IsSuccessful = breakerSuccess
		c.breaker = circuitbreaker.New(s, c.log)
	}
	return c
}

// breakerSuccess counts client-side rejections as healthy responses; only
// transport failures and 5xx trip the breaker.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

// do sends one request and decodes a 2xx body into out (when non-nil).
// There are no retries.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	return c.breaker.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.ErrorContext(ctx, "backend request failed", "method", method, "path", path, "error", err)
			return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: read body: %v", ErrTransport, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := newAPIError(resp.StatusCode, data)
			c.log.WarnContext(ctx, "backend rejected request",
				"method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
			return apiErr
		}

		if out == nil || len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
		}
		return nil
	})
}
