package completion

import (
	"fmt"

	"mercator-hq/callisto/pkg/providers"
)

// Tier names. A tier picks a model, not a provider.
const (
	TierFast    = "fast"
	TierQuality = "quality"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation history.
type Message struct {
	// Role is RoleUser or RoleAssistant.
	Role string

	// Content is the plain text of the turn.
	Content string
}

// Request describes one completion call. Requests are values; the
// orchestrator never mutates the message slice it is handed.
type Request struct {
	// System is the system prompt. It is always marked cacheable on the
	// wire.
	System string

	// Messages is the ordered conversation history. Ordering is the
	// caller's responsibility.
	Messages []Message

	// Tier selects the model: TierFast (the default) or TierQuality.
	Tier string

	// MaxTokens caps the output length. 0 applies the default cap.
	MaxTokens int

	// ReasoningBudget reserves extended reasoning tokens. Honored only on
	// the quality tier, ignored elsewhere.
	ReasoningBudget int

	// Session, Turn, and Operation attribute the call for cost accounting
	// and audit naming. All three are required; they never influence
	// routing.
	Session   string
	Turn      string
	Operation string

	// FixtureID names the fixture consulted in deterministic operation.
	// Ignored for live calls.
	FixtureID string

	// ResponseIndex addresses one canned response inside the fixture for
	// streaming substitution. Nil selects the first response.
	ResponseIndex *int
}

// validate enforces the attribution invariant. Cost accounting groups by
// session, turn, and operation, so an empty attribution field is a
// programming error, not a degraded mode.
func (r Request) validate() error {
	switch {
	case r.Session == "":
		return &providers.ValidationError{Field: "session", Message: "attribution field must not be empty"}
	case r.Turn == "":
		return &providers.ValidationError{Field: "turn", Message: "attribution field must not be empty"}
	case r.Operation == "":
		return &providers.ValidationError{Field: "operation", Message: "attribution field must not be empty"}
	}

	if r.Tier != "" && r.Tier != TierFast && r.Tier != TierQuality {
		return &providers.ValidationError{Field: "tier", Message: fmt.Sprintf("unknown tier %q", r.Tier)}
	}

	return nil
}

// tier returns the effective tier, defaulting to fast.
func (r Request) tier() string {
	if r.Tier == TierQuality {
		return TierQuality
	}
	return TierFast
}
