package completion

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"mercator-hq/callisto/pkg/ledger"
	"mercator-hq/callisto/pkg/providers"
	"mercator-hq/callisto/pkg/providers/anthropic"
)

// decoder reduces the provider's heterogeneous event stream to the three
// public StreamEvent variants. Two pieces of state persist across the
// stream: at most one open tool invocation and the plain-text transcript
// used for audit snapshots.
type decoder struct {
	open       *openTool
	transcript strings.Builder
	usage      ledger.Usage
	sawUsage   bool
	logger     *slog.Logger
}

// openTool accumulates one tool invocation delivered as JSON fragments.
// The protocol serializes content blocks, so a single slot suffices; if a
// tool block ever opens while another is pending, the pending one is
// dropped with a log rather than failing the stream.
type openTool struct {
	id    string
	name  string
	input strings.Builder
}

func newDecoder(logger *slog.Logger) *decoder {
	return &decoder{logger: logger}
}

// feed advances the state machine by one provider event and returns the
// public events it produced, in order. A returned error aborts the stream.
func (d *decoder) feed(ev *anthropic.ServerEvent) ([]StreamEvent, error) {
	switch ev.Type {
	case anthropic.EventMessageStart:
		if ev.Message != nil {
			d.usage = normalizeUsage(&ev.Message.Usage)
		}
		return nil, nil

	case anthropic.EventContentBlockStart:
		d.startBlock(ev.ContentBlock)
		return nil, nil

	case anthropic.EventContentBlockDelta:
		return d.applyDelta(ev.Delta), nil

	case anthropic.EventContentBlockStop:
		return d.closeBlock(), nil

	case anthropic.EventMessageDelta:
		d.recordFinalUsage(ev.Usage)
		return nil, nil

	case anthropic.EventMessageStop, anthropic.EventPing:
		return nil, nil

	case anthropic.EventError:
		message := "stream reported an error"
		if ev.Error != nil {
			message = ev.Error.Message
		}
		return nil, &providers.StreamError{Provider: "anthropic", Message: message}

	default:
		d.logger.Warn("skipping unknown stream event",
			"event_type", ev.Type,
		)
		return nil, nil
	}
}

// startBlock opens the tool slot for a tool_use block. Text and thinking
// blocks carry no decoder state.
func (d *decoder) startBlock(block *anthropic.ResponseBlock) {
	if block == nil || block.Type != anthropic.BlockToolUse {
		return
	}

	if d.open != nil {
		d.logger.Warn("tool block opened while another is pending, replacing it",
			"pending_tool", d.open.name,
			"new_tool", block.Name,
		)
	}

	d.open = &openTool{id: block.ID, name: block.Name}
}

func (d *decoder) applyDelta(delta *anthropic.Delta) []StreamEvent {
	if delta == nil {
		return nil
	}

	switch delta.Type {
	case anthropic.DeltaText:
		d.transcript.WriteString(delta.Text)
		return []StreamEvent{Text{Fragment: delta.Text}}

	case anthropic.DeltaInputJSON:
		if d.open == nil {
			d.logger.Warn("tool input fragment with no open tool block, skipping")
			return nil
		}
		d.open.input.WriteString(delta.PartialJSON)
		return nil

	case anthropic.DeltaThinking, anthropic.DeltaSignature:
		// Internal reasoning is not assistant-visible output.
		return nil

	default:
		d.logger.Warn("skipping unknown delta type",
			"delta_type", delta.Type,
		)
		return nil
	}
}

// closeBlock finalizes a pending tool invocation. A stop with no open slot
// is a no-op: text blocks close without decoder state.
func (d *decoder) closeBlock() []StreamEvent {
	if d.open == nil {
		return nil
	}

	tool := d.open
	d.open = nil

	input := map[string]any{}
	if raw := tool.input.String(); strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			d.logger.Warn("tool input did not parse, substituting empty object",
				"tool", tool.name,
				"error", err,
			)
			input = map[string]any{}
		}
	}

	fmt.Fprintf(&d.transcript, "\n[tool call: %s]\n", tool.name)

	return []StreamEvent{ToolUse{ID: tool.id, Name: tool.name, Input: input}}
}

// recordFinalUsage captures the terminal usage payload. It normally repeats
// only the output count; the input classes captured at message_start are
// kept unless the payload carries fresh ones.
func (d *decoder) recordFinalUsage(usage *anthropic.Usage) {
	if usage == nil {
		return
	}

	if usage.InputTokens > 0 || usage.CacheReadInputTokens > 0 || usage.CacheCreationInputTokens > 0 {
		d.usage = normalizeUsage(usage)
	} else {
		d.usage.OutputTokens = usage.OutputTokens
	}
	d.sawUsage = true
}

// finish produces the terminal event. Call it exactly once, after the
// provider stream is exhausted.
func (d *decoder) finish() Done {
	if !d.sawUsage {
		d.logger.Warn("stream ended without a final usage payload")
	}
	return Done{Usage: d.usage}
}

// transcriptText returns the accumulated plain-text transcript.
func (d *decoder) transcriptText() string {
	return d.transcript.String()
}

// normalizeUsage converts a wire usage payload to ledger form. The wire
// input_tokens count excludes cache reads and writes; the ledger's
// InputTokens includes them, which is the relation the cost subtraction
// depends on.
func normalizeUsage(u *anthropic.Usage) ledger.Usage {
	if u == nil {
		return ledger.Usage{}
	}
	return ledger.Usage{
		InputTokens:      u.InputTokens + u.CacheReadInputTokens + u.CacheCreationInputTokens,
		OutputTokens:     u.OutputTokens,
		CacheReadTokens:  u.CacheReadInputTokens,
		CacheWriteTokens: u.CacheCreationInputTokens,
	}
}
