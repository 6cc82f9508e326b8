// Package metrics provides Prometheus metrics collection for Callisto.
//
// # Overview
//
// The metrics package records completion outcomes, latency, token
// consumption, and cost. The Collector implements completion.Observer,
// so it plugs directly into the completion service's dependency set.
//
// # Metric Families
//
//   - callisto_completions_total: completions by tier, model, and outcome
//   - callisto_completion_duration_seconds: wall-clock latency by tier and model
//   - callisto_cost_usd_total: cumulative spend by model and operation
//   - callisto_cost_usd_per_completion: per-call spend distribution
//   - callisto_tokens_total: tokens by model and billing class
//   - callisto_tokens_per_completion: per-call token distribution
//
// Token metrics carry a class label with four values: uncached, output,
// cache_read, and cache_write. These match the billing classes used by
// the pricing table, so dashboards can cross-check recorded cost against
// token counts.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	svc := completion.New(completion.Deps{
//		Client:   client,
//		Observer: collector,
//	})
//
//	http.Handle("/metrics", collector.Handler())
//
// # Cardinality Management
//
// Tier, model, and outcome labels are bounded by construction. The
// operation label is free-form caller input, so the collector caps it at
// 1000 distinct values and folds the overflow into "other".
package metrics
