package ledger

import "time"

// Outcome values for a finalized record.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Activity identifies one live provider call for accounting purposes. The
// attribution triple (Session, Turn, Operation) is mandatory and set by the
// caller; Tier and Model describe what the call was routed to.
type Activity struct {
	Session   string `json:"session_id"`
	Turn      string `json:"turn_id"`
	Operation string `json:"operation"`
	Tier      string `json:"tier"`
	Model     string `json:"model"`
}

// Record is one finalized ledger row: an activity bracket closed with an
// outcome, plus the usage and cost observed when the call succeeded. Failed
// calls carry zero usage and the provider error text.
type Record struct {
	ID          string        `json:"id"`
	Session     string        `json:"session_id"`
	Turn        string        `json:"turn_id"`
	Operation   string        `json:"operation"`
	Tier        string        `json:"tier"`
	Model       string        `json:"model"`
	Usage       Usage         `json:"usage"`
	Cost        float64       `json:"cost_usd"`
	Duration    time.Duration `json:"duration_ms"`
	Outcome     string        `json:"outcome"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}
