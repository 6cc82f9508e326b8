package ledger

import (
	"context"
	"time"
)

// Store persists finalized ledger records. Implementations live in
// ledger/store; the journal writes through this interface so callers can
// swap SQLite for memory in tests.
type Store interface {
	// Insert persists one finalized record.
	Insert(ctx context.Context, record *Record) error

	// Query retrieves records matching the filter, newest first.
	// Returns an empty slice if nothing matches.
	Query(ctx context.Context, filter *Filter) ([]*Record, error)

	// Summarize aggregates matching records by (operation, model).
	Summarize(ctx context.Context, filter *Filter) ([]*Summary, error)

	// Count returns the number of records matching the filter.
	Count(ctx context.Context, filter *Filter) (int64, error)

	// Prune deletes records completed before the cutoff and returns how
	// many were removed.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)

	// Close releases resources held by the store.
	Close() error
}

// Filter narrows ledger queries. Zero-value fields are ignored.
type Filter struct {
	Session   string
	Operation string
	Model     string
	Tier      string
	Outcome   string

	// Since and Until bound CompletedAt, inclusive.
	Since *time.Time
	Until *time.Time

	Limit  int
	Offset int
}

// Summary is one aggregation row: all matching records for a single
// (operation, model) pair collapsed into call count, summed usage, and
// summed cost.
type Summary struct {
	Operation string  `json:"operation"`
	Model     string  `json:"model"`
	Calls     int64   `json:"calls"`
	Usage     Usage   `json:"usage"`
	Cost      float64 `json:"cost_usd"`
}
