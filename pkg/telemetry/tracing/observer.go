package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/callisto/pkg/completion"
	"mercator-hq/callisto/pkg/ledger"
)

// Observer converts completion observations into spans. It implements
// completion.Observer, so it composes with the metrics collector:
//
//	observer := completion.MultiObserver(
//		metricsCollector,
//		tracing.NewObserver(tracer),
//	)
//
// Spans are built after the call finishes. The observation's duration is
// projected backwards from the current time, so span boundaries bracket
// the real call closely but not exactly.
type Observer struct {
	tracer *Tracer
}

// NewObserver creates an observer emitting spans through the given tracer.
func NewObserver(tracer *Tracer) *Observer {
	return &Observer{tracer: tracer}
}

// ObserveCompletion emits one span per finished completion attempt.
func (o *Observer) ObserveCompletion(obs completion.Observation) {
	if !o.tracer.Enabled() {
		return
	}

	start := time.Now().Add(-obs.Duration)

	attrs := CompletionAttributes(obs.Tier, obs.Model, obs.Operation, obs.Outcome)
	if !obs.Usage.IsZero() {
		attrs = append(attrs, UsageAttributes(obs.Usage)...)
	}
	if obs.Cost > 0 {
		attrs = append(attrs, CostAttribute(obs.Cost))
	}

	_, span := o.tracer.Start(context.Background(), spanName(obs.Operation),
		trace.WithTimestamp(start),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	if obs.Outcome == ledger.OutcomeSuccess {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, obs.Outcome)
	}

	span.End(trace.WithTimestamp(start.Add(obs.Duration)))
}

func spanName(operation string) string {
	if operation == "" {
		return "completion"
	}
	return "completion." + operation
}
