package completion

import (
	"mercator-hq/callisto/pkg/ledger"
)

// StreamEvent is one decoded event of a streaming completion. Exactly three
// variants exist: Text, ToolUse, and Done.
type StreamEvent interface {
	isStreamEvent()
}

// Text is an incremental fragment of assistant-authored output. Fragments
// arrive in order and concatenate into the full response.
type Text struct {
	Fragment string
}

// ToolUse is a fully assembled tool invocation. It is emitted once, after
// the provider finishes delivering the invocation's JSON input; it is never
// emitted partially.
type ToolUse struct {
	ID    string
	Name  string
	Input map[string]any
}

// Done terminates every stream: exactly one per stream, always last, even
// when the stream carried no other events.
type Done struct {
	Usage ledger.Usage
}

func (Text) isStreamEvent()    {}
func (ToolUse) isStreamEvent() {}
func (Done) isStreamEvent()    {}

// StreamResult is one item of a streaming completion: an event or a
// terminal error, never both. After a result with a non-nil Err the channel
// is closed without a Done.
type StreamResult struct {
	Event StreamEvent
	Err   error
}
