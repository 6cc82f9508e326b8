package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/callisto/pkg/completion"
	"mercator-hq/callisto/pkg/config"
)

// maxOperationCardinality caps the number of distinct operation label
// values. Operations past the cap aggregate into "other".
const maxOperationCardinality = 1000

// Collector owns every Prometheus metric Callisto exports. It implements
// completion.Observer, so it plugs straight into the orchestrator:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	orch := completion.New(cfg, completion.Deps{Observer: collector})
//
// The operation label is caller-controlled free text, so it runs through a
// cardinality limiter; tier, model, and outcome come from configuration and
// are naturally bounded.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	completions *CompletionMetrics
	cost        *CostMetrics
	tokens      *TokenMetrics

	operationLimiter *CardinalityLimiter
}

// NewCollector creates a metrics collector registered against the given
// registry. A nil registry gets a fresh private one, retrievable via
// Registry. Zero-value namespace and buckets fall back to the package
// defaults from pkg/config.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets()
	}
	if len(cfg.TokenBuckets) == 0 {
		cfg.TokenBuckets = config.DefaultTokenBuckets()
	}
	if len(cfg.CostBuckets) == 0 {
		cfg.CostBuckets = config.DefaultCostBuckets()
	}

	c := &Collector{
		config:           cfg,
		registry:         registry,
		operationLimiter: NewCardinalityLimiter(maxOperationCardinality),
	}

	c.completions = NewCompletionMetrics(cfg, registry)
	c.cost = NewCostMetrics(cfg, registry)
	c.tokens = NewTokenMetrics(cfg, registry)

	return c
}

// ObserveCompletion records one finished completion attempt: the outcome
// counter and duration histogram always, cost and token metrics when the
// observation carries them. Implements completion.Observer.
func (c *Collector) ObserveCompletion(obs completion.Observation) {
	if !c.config.Enabled {
		return
	}

	operation := obs.Operation
	if !c.operationLimiter.Allow("operation:" + operation) {
		operation = "other"
	}

	c.completions.Record(obs.Tier, obs.Model, obs.Outcome, obs.Duration)
	c.cost.Record(obs.Model, operation, obs.Cost)
	c.tokens.Record(obs.Model, obs.Usage)
}

// Registry returns the Prometheus registry backing this collector, for
// mounting a scrape endpoint:
//
//	http.Handle("/metrics", collector.Handler())
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter bounds the number of unique label sets a metric can
// accumulate.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter allowing at most maxCardinality
// distinct label sets.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether the label set may be used. Known label sets are
// always allowed; new ones are admitted until the limit is reached.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current number of admitted label sets.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
