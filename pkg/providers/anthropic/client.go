package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/callisto/pkg/providers"
)

const (
	// DefaultBaseURL is the production Messages API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultAPIVersion is the anthropic-version header value.
	DefaultAPIVersion = "2023-06-01"

	messagesPath = "/v1/messages"
	providerName = "anthropic"
)

// Config contains configuration for the Anthropic client.
type Config struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// BaseURL overrides the API endpoint, mostly for tests.
	// Default: https://api.anthropic.com
	BaseURL string

	// APIVersion is the anthropic-version header value.
	// Default: 2023-06-01
	APIVersion string

	// Timeout bounds non-streaming requests.
	// Default: 60 seconds
	Timeout time.Duration
}

// Client calls the Anthropic Messages API. Each request is attempted
// exactly once; failures are terminal per call.
type Client struct {
	config Config
	http   *providers.HTTPClient
	logger *slog.Logger
}

// NewClient creates an Anthropic client. The API key is required; other
// fields default.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: providerName,
			Field:    "api_key",
			Message:  "API key is required",
		}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.APIVersion == "" {
		config.APIVersion = DefaultAPIVersion
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	httpConfig := providers.DefaultHTTPConfig(providerName)
	httpConfig.Timeout = config.Timeout

	c := &Client{
		config: config,
		http:   providers.NewHTTPClient(httpConfig),
		logger: slog.Default().With("component", "providers.anthropic"),
	}

	c.logger.Info("Anthropic client initialized",
		"base_url", config.BaseURL,
		"api_version", config.APIVersion,
	)

	return c, nil
}

// Messages sends a non-streaming request and returns the complete response.
func (c *Client) Messages(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.http.Do(ctx, http.MethodPost, c.config.BaseURL+messagesPath, body, c.headers())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.mapAPIError(resp, req.Model)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &providers.ParseError{
			Provider: providerName,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	var message MessageResponse
	if err := json.Unmarshal(respBody, &message); err != nil {
		return nil, &providers.ParseError{
			Provider:    providerName,
			RawResponse: string(respBody),
			Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}

	c.logger.Debug("message request succeeded",
		"model", message.Model,
		"stop_reason", message.StopReason,
		"output_tokens", message.Usage.OutputTokens,
	)

	return &message, nil
}

// StreamMessages sends a streaming request and returns the raw event
// stream. The caller owns the stream and must Close it.
func (c *Client) StreamMessages(ctx context.Context, req *MessageRequest) (*Stream, error) {
	// Copy so the caller's request is not mutated.
	streamReq := *req
	streamReq.Stream = true

	body, err := json.Marshal(&streamReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := c.headers()
	headers["Accept"] = "text/event-stream"

	resp, err := c.http.DoStream(ctx, http.MethodPost, c.config.BaseURL+messagesPath, body, headers)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, c.mapAPIError(resp, req.Model)
	}

	return newStream(providerName, resp.Body), nil
}

// Close releases the underlying HTTP transport.
func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"x-api-key":         c.config.APIKey,
		"anthropic-version": c.config.APIVersion,
		"Content-Type":      "application/json",
	}
}

// mapAPIError reads an error response body and classifies it into a typed
// provider error using the error envelope when it parses and the raw body
// otherwise.
func (c *Client) mapAPIError(resp *http.Response, model string) error {
	body, _ := io.ReadAll(resp.Body)

	var envelope ErrorEnvelope
	message := string(body)
	errorType := ""
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
		errorType = envelope.Error.Type
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &providers.AuthError{Provider: providerName, Message: message}

	case http.StatusNotFound:
		if errorType == "not_found_error" && model != "" {
			return &providers.ModelNotFoundError{Provider: providerName, Model: model}
		}
		return &providers.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Message: message}

	case http.StatusTooManyRequests:
		return &providers.RateLimitError{
			Provider:   providerName,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    message,
		}

	case 529:
		return &providers.OverloadedError{Provider: providerName, Message: message}

	default:
		return &providers.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
