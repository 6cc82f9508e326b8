// Package tracing provides OpenTelemetry tracing for Callisto.
//
// # Overview
//
// The tracing package exports one span per finished completion call to an
// OTLP gRPC collector. Spans carry the tier, model, operation, and outcome
// of the call plus token counts split by billing class and the attributed
// cost, so a trace view can answer the same questions as the cost ledger.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	observer := completion.MultiObserver(
//	    metricsCollector,
//	    tracing.NewObserver(tracer),
//	)
//
// The Observer implements completion.Observer. It builds spans after the
// call finishes, projecting the observed duration backwards from the
// current time, so span boundaries closely bracket the real call.
//
// # Sampling
//
// The sample_ratio setting maps onto SDK samplers: 0 samples nothing, 1
// samples everything, and anything in between uses trace ID hashing so
// the decision is deterministic per trace. Samplers are wrapped in
// ParentBased to respect an existing parent's decision.
//
// # Span Attributes
//
// Custom attribute keys use the "callisto." namespace:
//
//	callisto.tier                completion tier (fast or quality)
//	callisto.model               resolved model identifier
//	callisto.operation           caller-supplied operation name
//	callisto.outcome             success or failure
//	callisto.tokens.uncached     uncached input tokens
//	callisto.tokens.output       output tokens
//	callisto.tokens.cache_read   tokens read from the prompt cache
//	callisto.tokens.cache_write  tokens written to the prompt cache
//	callisto.cost_usd            attributed cost in USD
//
// # When Disabled
//
// With tracing disabled the tracer is a noop and the observer returns
// before doing any work, so the only cost is a bool check per call.
package tracing
