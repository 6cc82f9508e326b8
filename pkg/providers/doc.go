// Package providers supplies the transport plumbing and error taxonomy
// shared by provider adapters.
//
// # Overview
//
// The package has two parts: a pooled HTTP client that performs exactly one
// attempt per request (provider failures are terminal per call; nothing here
// retries), and the typed errors adapters use to classify failures. The
// Anthropic adapter in providers/anthropic builds on both.
//
// # HTTP Transport
//
// HTTPClient wraps net/http with connection pooling and two request modes:
// Do enforces the configured per-request timeout, DoStream leaves the
// response body open for long-lived event streams and is bounded only by
// the caller's context.
//
//	client := providers.NewHTTPClient(providers.DefaultHTTPConfig("anthropic"))
//	defer client.Close()
//
//	resp, err := client.Do(ctx, http.MethodPost, url, body, headers)
//
// Do returns the response regardless of status code. Mapping non-2xx bodies
// to typed errors belongs to the adapter, which knows the provider's error
// envelope.
//
// # Error Handling
//
// The package defines specific error types for common failure scenarios:
//
//   - ProviderError: General provider errors
//   - AuthError: Authentication failures (HTTP 401/403)
//   - RateLimitError: Rate limit exceeded (HTTP 429)
//   - OverloadedError: Provider overloaded (HTTP 529)
//   - TimeoutError: Request timeout
//   - ParseError: Response parsing failure
//   - ModelNotFoundError: Unknown model
//   - ValidationError: Invalid request
//   - StreamError: Failure inside an in-flight event stream
//   - ConfigError: Invalid adapter configuration
//
// Example error handling:
//
//	resp, err := client.Messages(ctx, req)
//	if err != nil {
//	    switch e := err.(type) {
//	    case *providers.AuthError:
//	        fmt.Printf("Authentication failed: %v\n", e)
//	    case *providers.RateLimitError:
//	        fmt.Printf("Rate limited, retry after: %v\n", e.RetryAfter)
//	    case *providers.TimeoutError:
//	        fmt.Printf("Request timeout: %v\n", e)
//	    default:
//	        fmt.Printf("Error: %v\n", e)
//	    }
//	}
//
// # Thread Safety
//
// HTTPClient is safe for concurrent use from multiple goroutines.
package providers
