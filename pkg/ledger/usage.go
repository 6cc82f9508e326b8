package ledger

import "mercator-hq/callisto/pkg/pricing"

// Usage holds the token counts reported for one provider call, split into
// the four billing classes. InputTokens is inclusive: it counts every input
// token, cached or not. The cache classes break out how many of those input
// tokens were served from cache (CacheReadTokens) or written into it
// (CacheWriteTokens).
type Usage struct {
	// InputTokens is the total input token count, including cached tokens.
	InputTokens int `json:"input_tokens"`

	// OutputTokens is the number of tokens the model generated.
	OutputTokens int `json:"output_tokens"`

	// CacheReadTokens is the share of input tokens served from prompt cache.
	CacheReadTokens int `json:"cache_read_tokens"`

	// CacheWriteTokens is the share of input tokens written into prompt cache.
	CacheWriteTokens int `json:"cache_write_tokens"`
}

// UncachedInputTokens derives the fresh input share by subtracting the cache
// classes from the inclusive input count, clamped at zero so inconsistent
// provider reports cannot produce a negative class.
func (u Usage) UncachedInputTokens() int {
	uncached := u.InputTokens - u.CacheReadTokens - u.CacheWriteTokens
	if uncached < 0 {
		return 0
	}
	return uncached
}

// TotalTokens returns input plus output tokens.
func (u Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// IsZero reports whether every class is zero.
func (u Usage) IsZero() bool {
	return u == Usage{}
}

// Add returns the class-wise sum of two usage records.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:      u.InputTokens + other.InputTokens,
		OutputTokens:     u.OutputTokens + other.OutputTokens,
		CacheReadTokens:  u.CacheReadTokens + other.CacheReadTokens,
		CacheWriteTokens: u.CacheWriteTokens + other.CacheWriteTokens,
	}
}

// Cost prices a usage record against a pricing entry and returns the total
// in USD. Each class is priced independently at its per-1K rate; the input
// class is priced on the uncached share only, since cache reads and writes
// carry their own rates. A zero entry (unknown model) prices to zero.
func Cost(entry pricing.Entry, u Usage) float64 {
	cost := tokenCost(u.UncachedInputTokens(), entry.InputPer1K)
	cost += tokenCost(u.OutputTokens, entry.OutputPer1K)
	cost += tokenCost(u.CacheReadTokens, entry.CacheReadPer1K)
	cost += tokenCost(u.CacheWriteTokens, entry.CacheWritePer1K)
	return cost
}

func tokenCost(tokens int, pricePer1K float64) float64 {
	if tokens <= 0 {
		return 0
	}
	return float64(tokens) / 1000.0 * pricePer1K
}
