package pricing

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Entry holds the four per-1,000-token unit prices for one model, in USD.
// The four fields correspond one-to-one with the token classes reported by
// the provider's usage payload.
type Entry struct {
	// InputPer1K is the price per 1K fresh (uncached) input tokens.
	InputPer1K float64 `yaml:"input_per_1k" json:"input_per_1k"`

	// OutputPer1K is the price per 1K completion tokens.
	OutputPer1K float64 `yaml:"output_per_1k" json:"output_per_1k"`

	// CacheReadPer1K is the price per 1K input tokens served from the
	// provider's prompt cache.
	CacheReadPer1K float64 `yaml:"cache_read_per_1k" json:"cache_read_per_1k"`

	// CacheWritePer1K is the price per 1K input tokens written into the
	// provider's prompt cache.
	CacheWritePer1K float64 `yaml:"cache_write_per_1k" json:"cache_write_per_1k"`
}

// IsZero reports whether all four unit prices are zero.
func (e Entry) IsZero() bool {
	return e.InputPer1K == 0 && e.OutputPer1K == 0 &&
		e.CacheReadPer1K == 0 && e.CacheWritePer1K == 0
}

// Table maps model identifiers to pricing entries. It is safe for concurrent
// use: lookups take a read lock and Replace swaps the whole entry set under a
// write lock, which is how hot reload works.
type Table struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewTable creates a Table from the given entries. The map is copied, so the
// caller may reuse or mutate its own copy afterwards.
func NewTable(entries map[string]Entry) *Table {
	t := &Table{entries: make(map[string]Entry, len(entries))}
	for model, entry := range entries {
		t.entries[model] = entry
	}
	return t
}

// Default returns a table seeded with the built-in model family prices.
// Keys are family prefixes, so dated releases of a family resolve through
// the prefix rule without their own row.
func Default() *Table {
	return NewTable(map[string]Entry{
		"claude-opus-4": {
			InputPer1K:      0.015,
			OutputPer1K:     0.075,
			CacheReadPer1K:  0.0015,
			CacheWritePer1K: 0.01875,
		},
		"claude-sonnet-4": {
			InputPer1K:      0.003,
			OutputPer1K:     0.015,
			CacheReadPer1K:  0.0003,
			CacheWritePer1K: 0.00375,
		},
		"claude-3-7-sonnet": {
			InputPer1K:      0.003,
			OutputPer1K:     0.015,
			CacheReadPer1K:  0.0003,
			CacheWritePer1K: 0.00375,
		},
		"claude-3-5-haiku": {
			InputPer1K:      0.0008,
			OutputPer1K:     0.004,
			CacheReadPer1K:  0.00008,
			CacheWritePer1K: 0.001,
		},
	})
}

// Lookup resolves the pricing entry for a model identifier.
//
// Resolution order:
//  1. Exact match on the identifier.
//  2. Longest table key that is a prefix of the identifier (so
//     "claude-sonnet-4" covers "claude-sonnet-4-20250514").
//  3. A zero Entry. Unknown models are never an error; they price to zero.
func (t *Table) Lookup(model string) Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if entry, ok := t.entries[model]; ok {
		return entry
	}

	var (
		best    Entry
		bestLen = -1
	)
	for key, entry := range t.entries {
		if strings.HasPrefix(model, key) && len(key) > bestLen {
			best = entry
			bestLen = len(key)
		}
	}
	if bestLen >= 0 {
		return best
	}
	return Entry{}
}

// Replace swaps the table contents atomically. Used by Watcher on reload.
func (t *Table) Replace(entries map[string]Entry) {
	fresh := make(map[string]Entry, len(entries))
	for model, entry := range entries {
		fresh[model] = entry
	}

	t.mu.Lock()
	t.entries = fresh
	t.mu.Unlock()
}

// Models returns the table keys in sorted order.
func (t *Table) Models() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	models := make([]string, 0, len(t.entries))
	for model := range t.entries {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// pricingFile is the on-disk YAML shape consumed by LoadFile.
type pricingFile struct {
	Models map[string]Entry `yaml:"models"`
}

// LoadFile parses a pricing YAML file of the form:
//
//	models:
//	  claude-sonnet-4:
//	    input_per_1k: 0.003
//	    output_per_1k: 0.015
//	    cache_read_per_1k: 0.0003
//	    cache_write_per_1k: 0.00375
//
// It returns the parsed entries without touching any Table; callers decide
// whether to build a new table or Replace an existing one.
func LoadFile(path string) (map[string]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing file %q: %w", path, err)
	}

	var file pricingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse pricing file %q: %w", path, err)
	}
	if len(file.Models) == 0 {
		return nil, fmt.Errorf("pricing file %q contains no models", path)
	}

	return file.Models, nil
}
