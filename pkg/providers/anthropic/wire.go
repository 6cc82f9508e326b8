package anthropic

import "encoding/json"

// MessageRequest is the request body for the Messages API.
type MessageRequest struct {
	// Model is the model identifier (e.g. "claude-sonnet-4-20250514").
	Model string `json:"model"`

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int `json:"max_tokens"`

	// System is the system prompt as content blocks so cache markers can be
	// attached.
	System []ContentBlock `json:"system,omitempty"`

	// Messages is the conversation history.
	Messages []Message `json:"messages"`

	// Stream requests server-sent events instead of a single response.
	Stream bool `json:"stream,omitempty"`

	// Thinking enables extended thinking with a token budget.
	Thinking *Thinking `json:"thinking,omitempty"`
}

// Message is one conversation turn. Content is always in block form so
// individual blocks can carry cache markers.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is one block of request content.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// CacheControl marks this block as a prompt cache boundary.
	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

// CacheControl marks a content block for prompt caching.
type CacheControl struct {
	// Type is always "ephemeral".
	Type string `json:"type"`
}

// EphemeralCache returns the cache marker for a block.
func EphemeralCache() *CacheControl {
	return &CacheControl{Type: "ephemeral"}
}

// Thinking configures extended thinking.
type Thinking struct {
	// Type is ThinkingEnabled.
	Type string `json:"type"`

	// BudgetTokens is the thinking token budget. The API requires
	// max_tokens to exceed it.
	BudgetTokens int `json:"budget_tokens"`
}

// ThinkingEnabled is the only thinking type the API accepts.
const ThinkingEnabled = "enabled"

// MessageResponse is the non-streaming response body for the Messages API.
type MessageResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Role       string          `json:"role"`
	Model      string          `json:"model"`
	Content    []ResponseBlock `json:"content"`
	StopReason string          `json:"stop_reason"`
	Usage      Usage           `json:"usage"`
}

// ResponseBlock is one block of generated content.
type ResponseBlock struct {
	Type string `json:"type"`

	// Text is set for "text" blocks.
	Text string `json:"text,omitempty"`

	// ID, Name, and Input are set for "tool_use" blocks.
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// Usage reports token consumption in the provider's four classes. The wire
// input_tokens count excludes cached tokens; the cache classes are reported
// separately.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

// ServerEvent is one event from the Messages API event stream. The Type
// field discriminates: message_start, content_block_start,
// content_block_delta, content_block_stop, message_delta, message_stop,
// ping, and error.
type ServerEvent struct {
	Type string `json:"type"`

	// Index is the content block index for content_block_* events.
	Index int `json:"index"`

	// Message carries the initial message envelope on message_start,
	// including the input-side usage classes.
	Message *MessageResponse `json:"message,omitempty"`

	// ContentBlock carries the opening block on content_block_start.
	ContentBlock *ResponseBlock `json:"content_block,omitempty"`

	// Delta carries the incremental payload on content_block_delta and the
	// stop reason on message_delta.
	Delta *Delta `json:"delta,omitempty"`

	// Usage carries the output-side token count on message_delta.
	Usage *Usage `json:"usage,omitempty"`

	// Error carries the failure payload on error events.
	Error *APIError `json:"error,omitempty"`
}

// Delta is the incremental payload inside content_block_delta and
// message_delta events. Its own type field discriminates: text_delta,
// input_json_delta, thinking_delta, and signature_delta for block deltas;
// message_delta events carry stop_reason instead.
type Delta struct {
	Type string `json:"type"`

	// Text is set for text_delta.
	Text string `json:"text,omitempty"`

	// PartialJSON is set for input_json_delta; fragments concatenate into
	// the tool input document.
	PartialJSON string `json:"partial_json,omitempty"`

	// Thinking is set for thinking_delta.
	Thinking string `json:"thinking,omitempty"`

	// Signature is set for signature_delta.
	Signature string `json:"signature,omitempty"`

	// StopReason and StopSequence are set on message_delta events.
	StopReason   string `json:"stop_reason,omitempty"`
	StopSequence string `json:"stop_sequence,omitempty"`
}

// APIError is the provider's error payload.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorEnvelope is the provider's error response body.
type ErrorEnvelope struct {
	Type  string   `json:"type"`
	Error APIError `json:"error"`
}

// Event type constants for the Messages API stream.
const (
	EventMessageStart      = "message_start"
	EventContentBlockStart = "content_block_start"
	EventContentBlockDelta = "content_block_delta"
	EventContentBlockStop  = "content_block_stop"
	EventMessageDelta      = "message_delta"
	EventMessageStop       = "message_stop"
	EventPing              = "ping"
	EventError             = "error"
)

// Delta type constants for content_block_delta events.
const (
	DeltaText      = "text_delta"
	DeltaInputJSON = "input_json_delta"
	DeltaThinking  = "thinking_delta"
	DeltaSignature = "signature_delta"
)

// Block type constants for content blocks.
const (
	BlockText     = "text"
	BlockToolUse  = "tool_use"
	BlockThinking = "thinking"
)
