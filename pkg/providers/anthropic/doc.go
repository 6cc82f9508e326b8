// Package anthropic implements the Anthropic Messages API client.
//
// The client speaks the wire format natively: content blocks with optional
// cache_control markers, extended thinking budgets, four-class token usage,
// and the server-sent event stream. Higher layers decide what to cache and
// how to interpret the event sequence; this package only moves bytes.
//
// # Basic Usage
//
//	client, err := anthropic.NewClient(anthropic.Config{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.Messages(ctx, &anthropic.MessageRequest{
//	    Model:     "claude-3-5-haiku-20241022",
//	    MaxTokens: 1024,
//	    Messages: []anthropic.Message{
//	        {Role: "user", Content: []anthropic.ContentBlock{{Type: "text", Text: "Hello!"}}},
//	    },
//	})
//
// # Streaming
//
//	stream, err := client.StreamMessages(ctx, req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
//	for {
//	    event, err := stream.Next(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    // inspect event.Type
//	}
//
// Stream.Next returns raw ServerEvent values, including pings and error
// events; sequencing them into text fragments and tool calls is the
// completion decoder's job.
//
// # Error Handling
//
// Non-2xx responses are classified into the typed errors from the providers
// package:
//
//   - 401/403 -> AuthError
//   - 404 not_found_error -> ModelNotFoundError
//   - 429 -> RateLimitError (includes the Retry-After hint)
//   - 529 -> OverloadedError
//   - anything else -> ProviderError
//
// Nothing is retried. A failed call is failed.
//
// # API Requirements
//
//  1. MaxTokens is required (cannot be 0)
//  2. Uses x-api-key header instead of Authorization: Bearer
//  3. Requires anthropic-version header (2023-06-01)
//  4. Extended thinking requires max_tokens > budget_tokens
package anthropic
