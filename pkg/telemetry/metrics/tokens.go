package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/ledger"
)

// Token class label values, mirroring the four billing classes.
const (
	ClassUncached   = "uncached"
	ClassOutput     = "output"
	ClassCacheRead  = "cache_read"
	ClassCacheWrite = "cache_write"
)

// TokenMetrics tracks token consumption split by billing class.
//
// Metrics:
//   - callisto_tokens_total: cumulative tokens by model and class
//   - callisto_tokens_per_completion: per-call token distribution
type TokenMetrics struct {
	tokensTotal         *prometheus.CounterVec
	tokensPerCompletion *prometheus.HistogramVec
}

// NewTokenMetrics creates and registers token metrics with the provided
// registry.
func NewTokenMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TokenMetrics {
	m := &TokenMetrics{
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tokens_total",
				Help:      "Cumulative tokens by model and billing class",
			},
			[]string{"model", "class"},
		),

		tokensPerCompletion: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tokens_per_completion",
				Help:      "Per-completion token distribution by model and billing class",
				Buckets:   cfg.TokenBuckets,
			},
			[]string{"model", "class"},
		),
	}

	registry.MustRegister(
		m.tokensTotal,
		m.tokensPerCompletion,
	)

	return m
}

// Record splits a usage record into billing classes and counts each
// non-zero class. Failed calls report zero usage and leave no series
// behind.
func (m *TokenMetrics) Record(model string, usage ledger.Usage) {
	m.recordClass(model, ClassUncached, usage.UncachedInputTokens())
	m.recordClass(model, ClassOutput, usage.OutputTokens)
	m.recordClass(model, ClassCacheRead, usage.CacheReadTokens)
	m.recordClass(model, ClassCacheWrite, usage.CacheWriteTokens)
}

func (m *TokenMetrics) recordClass(model, class string, tokens int) {
	if tokens <= 0 {
		return
	}

	m.tokensTotal.WithLabelValues(model, class).Add(float64(tokens))
	m.tokensPerCompletion.WithLabelValues(model, class).Observe(float64(tokens))
}
