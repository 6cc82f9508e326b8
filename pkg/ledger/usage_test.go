package ledger

import (
	"testing"

	"mercator-hq/callisto/pkg/pricing"
)

func TestCost(t *testing.T) {
	entry := pricing.Entry{
		InputPer1K:      0.003,
		OutputPer1K:     0.015,
		CacheReadPer1K:  0.0003,
		CacheWritePer1K: 0.00375,
	}

	tests := []struct {
		name  string
		entry pricing.Entry
		usage Usage
		want  float64
	}{
		{
			name:  "uncached input and output",
			entry: entry,
			usage: Usage{InputTokens: 1000, OutputTokens: 2000},
			// 1000/1000*0.003 + 2000/1000*0.015 = 0.003 + 0.030 = 0.033
			want: 0.033,
		},
		{
			name:  "cache classes priced at their own rates",
			entry: entry,
			usage: Usage{InputTokens: 3000, OutputTokens: 1000, CacheReadTokens: 1000, CacheWriteTokens: 1000},
			// uncached = 3000-1000-1000 = 1000
			// 1000/1000*0.003 + 1000/1000*0.015 + 1000/1000*0.0003 + 1000/1000*0.00375 = 0.02205
			want: 0.02205,
		},
		{
			name:  "fully cached input",
			entry: entry,
			usage: Usage{InputTokens: 2000, CacheReadTokens: 2000},
			// uncached = 0; 2000/1000*0.0003 = 0.0006
			want: 0.0006,
		},
		{
			name:  "cache classes exceeding input clamp uncached at zero",
			entry: entry,
			usage: Usage{InputTokens: 1000, CacheReadTokens: 800, CacheWriteTokens: 800},
			// uncached = max(0, 1000-800-800) = 0
			// 800/1000*0.0003 + 800/1000*0.00375 = 0.00024 + 0.003 = 0.00324
			want: 0.00324,
		},
		{
			name:  "unknown model is free",
			entry: pricing.Entry{},
			usage: Usage{InputTokens: 50000, OutputTokens: 50000, CacheReadTokens: 10000},
			want:  0,
		},
		{
			name:  "zero usage is free",
			entry: entry,
			usage: Usage{},
			want:  0,
		},
		{
			name:  "negative counts are ignored",
			entry: entry,
			usage: Usage{InputTokens: -100, OutputTokens: -100},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cost(tt.entry, tt.usage)
			if !almostEqual(got, tt.want) {
				t.Errorf("Cost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCostMonotonicInOutput(t *testing.T) {
	entry := pricing.Default().Lookup("claude-sonnet-4-20250514")
	if entry.IsZero() {
		t.Fatal("expected default pricing for claude-sonnet-4-20250514")
	}

	prev := -1.0
	for _, out := range []int{0, 1, 10, 1000, 100000} {
		cost := Cost(entry, Usage{InputTokens: 500, OutputTokens: out})
		if cost < prev {
			t.Errorf("cost decreased when output grew to %d: %v < %v", out, cost, prev)
		}
		prev = cost
	}
}

func TestCostNeverNegative(t *testing.T) {
	entry := pricing.Entry{InputPer1K: 0.003, OutputPer1K: 0.015, CacheReadPer1K: 0.0003, CacheWritePer1K: 0.00375}
	usages := []Usage{
		{},
		{InputTokens: -5000},
		{InputTokens: 100, CacheReadTokens: 5000, CacheWriteTokens: 5000},
		{OutputTokens: -1},
	}
	for _, u := range usages {
		if cost := Cost(entry, u); cost < 0 {
			t.Errorf("Cost(%+v) = %v, want >= 0", u, cost)
		}
	}
}

func TestUncachedInputTokens(t *testing.T) {
	tests := []struct {
		name  string
		usage Usage
		want  int
	}{
		{"no cache", Usage{InputTokens: 1000}, 1000},
		{"partial cache", Usage{InputTokens: 1000, CacheReadTokens: 400, CacheWriteTokens: 100}, 500},
		{"fully cached", Usage{InputTokens: 1000, CacheReadTokens: 1000}, 0},
		{"over-reported cache clamps", Usage{InputTokens: 1000, CacheReadTokens: 900, CacheWriteTokens: 900}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.usage.UncachedInputTokens(); got != tt.want {
				t.Errorf("UncachedInputTokens() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUsageAdd(t *testing.T) {
	a := Usage{InputTokens: 10, OutputTokens: 20, CacheReadTokens: 30, CacheWriteTokens: 40}
	b := Usage{InputTokens: 1, OutputTokens: 2, CacheReadTokens: 3, CacheWriteTokens: 4}
	got := a.Add(b)
	want := Usage{InputTokens: 11, OutputTokens: 22, CacheReadTokens: 33, CacheWriteTokens: 44}
	if got != want {
		t.Errorf("Add() = %+v, want %+v", got, want)
	}
	if !(Usage{}).IsZero() {
		t.Error("zero usage should report IsZero")
	}
	if got.IsZero() {
		t.Error("non-zero usage should not report IsZero")
	}
}

func almostEqual(a, b float64) bool {
	const eps = 1e-12
	diff := a - b
	return diff < eps && diff > -eps
}
