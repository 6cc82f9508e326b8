package completion

import (
	"context"
	"time"

	"mercator-hq/callisto/pkg/ledger"
)

// Tracker observes the lifecycle of live provider calls. The reference
// implementation is journal.Journal in pkg/ledger/journal.
//
// All methods are fire-and-forget: implementations must not block the
// completion path and have no way to fail it.
type Tracker interface {
	// OpenActivity registers a call about to be made and returns an opaque
	// activity id. An empty id is valid; the other methods treat it as a
	// no-op.
	OpenActivity(ctx context.Context, activity ledger.Activity) string

	// CloseActivity finalizes the bracket for a finished call. A nil
	// callErr means the call succeeded and usage follows via RecordUsage;
	// a non-nil callErr finalizes the activity as a failure.
	CloseActivity(ctx context.Context, activityID string, callErr error)

	// RecordUsage attaches the observed usage and computed cost to a
	// successful activity.
	RecordUsage(ctx context.Context, activityID string, usage ledger.Usage, cost float64)
}

// Auditor receives best-effort plaintext snapshots of live traffic. The
// reference implementation is audit.Writer.
type Auditor interface {
	SnapshotPrompt(operation, content string)
	SnapshotResponse(operation, content string)
}

// Observation describes one finished completion attempt.
type Observation struct {
	Tier      string
	Model     string
	Operation string
	Outcome   string
	Duration  time.Duration
	Usage     ledger.Usage
	Cost      float64
}

// Observer receives per-call observations for metrics. The reference
// implementation is metrics.Collector in pkg/telemetry/metrics.
type Observer interface {
	ObserveCompletion(obs Observation)
}

// MultiObserver fans each observation out to every given observer in
// order. Nil entries are skipped, so optional observers can be passed
// without guarding at the call site.
func MultiObserver(observers ...Observer) Observer {
	kept := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			kept = append(kept, obs)
		}
	}
	return multiObserver(kept)
}

type multiObserver []Observer

func (m multiObserver) ObserveCompletion(obs Observation) {
	for _, o := range m {
		o.ObserveCompletion(obs)
	}
}

// NopTracker ignores all activity.
type NopTracker struct{}

func (NopTracker) OpenActivity(context.Context, ledger.Activity) string       { return "" }
func (NopTracker) CloseActivity(context.Context, string, error)               {}
func (NopTracker) RecordUsage(context.Context, string, ledger.Usage, float64) {}

// NopAuditor discards all snapshots.
type NopAuditor struct{}

func (NopAuditor) SnapshotPrompt(string, string)   {}
func (NopAuditor) SnapshotResponse(string, string) {}

// NopObserver discards all observations.
type NopObserver struct{}

func (NopObserver) ObserveCompletion(Observation) {}
