package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/callisto/pkg/config"
)

// CostMetrics tracks spend attributed to completions.
//
// Metrics:
//   - callisto_cost_usd_total: total cost in USD by model and operation
//   - callisto_cost_usd_per_completion: per-call cost distribution
type CostMetrics struct {
	costTotal         *prometheus.CounterVec
	costPerCompletion *prometheus.HistogramVec
}

// NewCostMetrics creates and registers cost metrics with the provided
// registry.
func NewCostMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CostMetrics {
	m := &CostMetrics{
		costTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cost_usd_total",
				Help:      "Total cost in USD by model and operation",
			},
			[]string{"model", "operation"},
		),

		costPerCompletion: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cost_usd_per_completion",
				Help:      "Cost distribution per completion in USD",
				Buckets:   cfg.CostBuckets,
			},
			[]string{"model"},
		),
	}

	registry.MustRegister(
		m.costTotal,
		m.costPerCompletion,
	)

	return m
}

// Record attributes the cost of one completion. Zero-cost calls, including
// failures and models missing from the price table, leave no series behind.
func (m *CostMetrics) Record(model, operation string, costUSD float64) {
	if costUSD <= 0 {
		return
	}

	m.costTotal.WithLabelValues(model, operation).Add(costUSD)
	m.costPerCompletion.WithLabelValues(model).Observe(costUSD)
}
