package completion

import (
	"fmt"
	"strings"

	"mercator-hq/callisto/pkg/providers/anthropic"
)

// Default model identifiers per tier. Config overrides take precedence.
const (
	DefaultFastModel    = "claude-3-5-haiku-20241022"
	DefaultQualityModel = "claude-sonnet-4-20250514"
)

// defaultMaxTokens caps output when the request does not.
const defaultMaxTokens = 4096

// buildRequest renders a Request into the provider wire shape.
//
// Cache boundaries: the system prompt is always marked cacheable, and with
// two or more messages the second-to-last message carries the cache marker
// so the next turn's call can reuse the conversation prefix. The caller's
// message slice is never touched; wire blocks are built fresh.
func buildRequest(req Request, model string) *anthropic.MessageRequest {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	wire := &anthropic.MessageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  wireMessages(req.Messages),
	}

	if req.System != "" {
		wire.System = []anthropic.ContentBlock{{
			Type:         anthropic.BlockText,
			Text:         req.System,
			CacheControl: anthropic.EphemeralCache(),
		}}
	}

	if req.tier() == TierQuality && req.ReasoningBudget > 0 {
		wire.Thinking = &anthropic.Thinking{
			Type:         anthropic.ThinkingEnabled,
			BudgetTokens: req.ReasoningBudget,
		}
		// The API requires max_tokens to exceed the reasoning budget.
		if wire.MaxTokens <= req.ReasoningBudget {
			wire.MaxTokens = req.ReasoningBudget + defaultMaxTokens
		}
	}

	return wire
}

// wireMessages converts history to wire blocks, placing the cache marker on
// the second-to-last message when there are at least two.
func wireMessages(messages []Message) []anthropic.Message {
	wire := make([]anthropic.Message, len(messages))
	boundary := len(messages) - 2

	for i, m := range messages {
		block := anthropic.ContentBlock{
			Type: anthropic.BlockText,
			Text: m.Content,
		}
		if boundary >= 0 && i == boundary {
			block.CacheControl = anthropic.EphemeralCache()
		}
		wire[i] = anthropic.Message{
			Role:    m.Role,
			Content: []anthropic.ContentBlock{block},
		}
	}

	return wire
}

// responseText concatenates the text blocks of a non-streaming response.
func responseText(resp *anthropic.MessageResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.BlockText {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// promptText renders a request as plaintext for audit snapshots.
func promptText(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
