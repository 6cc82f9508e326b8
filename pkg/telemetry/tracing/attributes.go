package tracing

import (
	"go.opentelemetry.io/otel/attribute"

	"mercator-hq/callisto/pkg/ledger"
)

// Span attribute keys. Custom keys use the "callisto." namespace; token
// counts carry the same billing class split as the cost ledger, so spans
// can be cross-checked against ledger records.
const (
	AttrTier      = "callisto.tier"
	AttrModel     = "callisto.model"
	AttrOperation = "callisto.operation"
	AttrOutcome   = "callisto.outcome"

	AttrTokensUncached   = "callisto.tokens.uncached"
	AttrTokensOutput     = "callisto.tokens.output"
	AttrTokensCacheRead  = "callisto.tokens.cache_read"
	AttrTokensCacheWrite = "callisto.tokens.cache_write"

	AttrCostUSD = "callisto.cost_usd"
)

// CompletionAttributes builds the identifying attribute set for a
// completion span.
func CompletionAttributes(tier, model, operation, outcome string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrTier, tier),
		attribute.String(AttrModel, model),
		attribute.String(AttrOperation, operation),
		attribute.String(AttrOutcome, outcome),
	}
}

// UsageAttributes builds token count attributes split by billing class.
func UsageAttributes(usage ledger.Usage) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrTokensUncached, usage.UncachedInputTokens()),
		attribute.Int(AttrTokensOutput, usage.OutputTokens),
		attribute.Int(AttrTokensCacheRead, usage.CacheReadTokens),
		attribute.Int(AttrTokensCacheWrite, usage.CacheWriteTokens),
	}
}

// CostAttribute builds the cost attribute.
func CostAttribute(costUSD float64) attribute.KeyValue {
	return attribute.Float64(AttrCostUSD, costUSD)
}
