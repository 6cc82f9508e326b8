package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/callisto/pkg/config"
)

// CompletionMetrics tracks completion outcomes and latency.
//
// Metrics:
//   - callisto_completions_total: completions by tier, model, and outcome
//   - callisto_completion_duration_seconds: end-to-end call latency
type CompletionMetrics struct {
	completionsTotal *prometheus.CounterVec
	duration         *prometheus.HistogramVec
}

// NewCompletionMetrics creates and registers completion metrics with the
// provided registry.
func NewCompletionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CompletionMetrics {
	m := &CompletionMetrics{
		completionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "completions_total",
				Help:      "Completions by tier, model, and outcome",
			},
			[]string{"tier", "model", "outcome"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "completion_duration_seconds",
				Help:      "End-to-end completion latency in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"tier", "model"},
		),
	}

	registry.MustRegister(
		m.completionsTotal,
		m.duration,
	)

	return m
}

// Record counts one finished completion and observes its latency.
func (m *CompletionMetrics) Record(tier, model, outcome string, duration time.Duration) {
	m.completionsTotal.WithLabelValues(tier, model, outcome).Inc()
	m.duration.WithLabelValues(tier, model).Observe(duration.Seconds())
}
