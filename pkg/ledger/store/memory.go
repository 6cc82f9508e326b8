package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/ledger"
)

// MemoryStore implements the ledger.Store interface using an in-memory map.
// This implementation is intended for testing only and should not be used in production.
type MemoryStore struct {
	records map[string]*ledger.Record
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory ledger backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*ledger.Record),
	}
}

// Insert persists one finalized record to memory.
func (s *MemoryStore) Insert(ctx context.Context, record *ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to avoid mutation by the caller
	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves records matching the filter, newest first.
func (s *MemoryStore) Query(ctx context.Context, filter *ledger.Filter) ([]*ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*ledger.Record{}
	for _, record := range s.records {
		if matchesFilter(record, filter) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CompletedAt.After(results[j].CompletedAt)
	})

	if filter != nil {
		start := filter.Offset
		if start > len(results) {
			return []*ledger.Record{}, nil
		}
		end := len(results)
		if filter.Limit > 0 && start+filter.Limit < end {
			end = start + filter.Limit
		}
		results = results[start:end]
	}

	return results, nil
}

// Summarize aggregates matching records by (operation, model).
func (s *MemoryStore) Summarize(ctx context.Context, filter *ledger.Filter) ([]*ledger.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct{ operation, model string }
	groups := make(map[key]*ledger.Summary)

	for _, record := range s.records {
		if !matchesFilter(record, filter) {
			continue
		}
		k := key{record.Operation, record.Model}
		sum, ok := groups[k]
		if !ok {
			sum = &ledger.Summary{Operation: record.Operation, Model: record.Model}
			groups[k] = sum
		}
		sum.Calls++
		sum.Usage = sum.Usage.Add(record.Usage)
		sum.Cost += record.Cost
	}

	summaries := make([]*ledger.Summary, 0, len(groups))
	for _, sum := range groups {
		summaries = append(summaries, sum)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Cost > summaries[j].Cost
	})

	return summaries, nil
}

// Count returns the number of records matching the filter.
func (s *MemoryStore) Count(ctx context.Context, filter *ledger.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesFilter(record, filter) {
			count++
		}
	}

	return count, nil
}

// Prune deletes records completed before the cutoff.
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pruned int64
	for id, record := range s.records {
		if record.CompletedAt.Before(olderThan) {
			delete(s.records, id)
			pruned++
		}
	}

	return pruned, nil
}

// Close releases resources held by the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*ledger.Record)
	return nil
}

// Size returns the number of records in the store (for testing).
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// GetByID retrieves a single record by ID (for testing).
func (s *MemoryStore) GetByID(id string) *ledger.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil
	}
	recordCopy := *record
	return &recordCopy
}

// matchesFilter checks if a record matches the filter fields.
func matchesFilter(record *ledger.Record, filter *ledger.Filter) bool {
	if filter == nil {
		return true
	}

	if filter.Session != "" && record.Session != filter.Session {
		return false
	}
	if filter.Operation != "" && record.Operation != filter.Operation {
		return false
	}
	if filter.Model != "" && record.Model != filter.Model {
		return false
	}
	if filter.Tier != "" && record.Tier != filter.Tier {
		return false
	}
	if filter.Outcome != "" && record.Outcome != filter.Outcome {
		return false
	}
	if filter.Since != nil && record.CompletedAt.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && record.CompletedAt.After(*filter.Until) {
		return false
	}

	return true
}
