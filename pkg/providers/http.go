package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// HTTPConfig contains configuration for the shared HTTP transport.
type HTTPConfig struct {
	// Name identifies the provider in logs and errors.
	Name string

	// Timeout is the total per-request timeout. Streaming requests are
	// exempt; they are bounded by the caller's context instead.
	Timeout time.Duration

	// MaxIdleConns is the connection pool size.
	// Default: 10
	MaxIdleConns int

	// MaxIdleConnsPerHost is the per-host connection pool size.
	// Default: 10
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept alive.
	// Default: 90 seconds
	IdleConnTimeout time.Duration
}

// DefaultHTTPConfig returns the default transport configuration.
func DefaultHTTPConfig(name string) HTTPConfig {
	return HTTPConfig{
		Name:                name,
		Timeout:             60 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

// HTTPClient is the pooled HTTP transport shared by provider adapters.
// Each request is attempted exactly once: provider failures are terminal
// per call, and any retrying belongs to the caller.
type HTTPClient struct {
	config HTTPConfig

	// client enforces the configured per-request timeout.
	client *http.Client

	// streamClient has no client-side timeout so long-lived event streams
	// are not severed mid-response. Callers bound it with their context.
	streamClient *http.Client

	logger *slog.Logger
}

// NewHTTPClient creates a pooled HTTP client for provider adapters.
func NewHTTPClient(config HTTPConfig) *HTTPClient {
	if config.MaxIdleConns <= 0 {
		config.MaxIdleConns = 10
	}
	if config.MaxIdleConnsPerHost <= 0 {
		config.MaxIdleConnsPerHost = 10
	}
	if config.IdleConnTimeout <= 0 {
		config.IdleConnTimeout = 90 * time.Second
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPClient{
		config:       config,
		client:       &http.Client{Transport: transport, Timeout: config.Timeout},
		streamClient: &http.Client{Transport: transport},
		logger:       slog.Default().With("component", "providers.http"),
	}
}

// Do performs a single HTTP request and returns the response regardless of
// status code. Transport-level failures are classified into typed errors;
// status-code handling belongs to the adapter, which knows the provider's
// error envelope.
func (c *HTTPClient) Do(ctx context.Context, method, requestURL string, body []byte, headers map[string]string) (*http.Response, error) {
	return c.do(ctx, c.client, method, requestURL, body, headers)
}

// DoStream performs a single HTTP request without a client-side timeout so
// the response body can be consumed as a long-lived event stream. The
// caller's context bounds the request.
func (c *HTTPClient) DoStream(ctx context.Context, method, requestURL string, body []byte, headers map[string]string) (*http.Response, error) {
	return c.do(ctx, c.streamClient, method, requestURL, body, headers)
}

func (c *HTTPClient) do(ctx context.Context, client *http.Client, method, requestURL string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("sending request to provider",
		"provider", c.config.Name,
		"method", method,
		"url", requestURL,
	)

	resp, err := client.Do(req)
	if err != nil {
		return nil, c.classifyTransportError(ctx, err)
	}

	return resp, nil
}

// Close releases idle connections held by the transport.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// classifyTransportError turns a net/http client error into one of the
// typed provider errors. Context cancellation passes through untouched so
// callers can distinguish an aborted call from a failed one.
func (c *HTTPClient) classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Provider: c.config.Name, Timeout: c.config.Timeout}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &TimeoutError{Provider: c.config.Name, Timeout: c.config.Timeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Provider: c.config.Name, Timeout: c.config.Timeout}
	}

	return &ProviderError{
		Provider: c.config.Name,
		Message:  "request failed",
		Cause:    err,
	}
}
