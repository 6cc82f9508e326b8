// Package telemetry groups the observability packages for Callisto.
//
// # Components
//
//   - logging: structured slog logging with secret redaction
//   - metrics: Prometheus metrics for completions, tokens, and cost
//   - tracing: OpenTelemetry spans exported over OTLP
//
// # Usage
//
// Each component is wired independently from its config section:
//
//	logger := logging.Setup(logging.FromConfig(cfg.Telemetry.Logging))
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// The metrics collector and the tracing observer both implement
// completion.Observer and are handed to the completion service together
// through completion.MultiObserver.
//
// # Secret Protection
//
// When redaction is enabled, secrets are masked before log records are
// encoded:
//
//   - API keys: sk-abc123 becomes sk-***
//   - Bearer tokens: Bearer eyJhb... becomes Bearer ***
//   - Password fields: password=hunter2 becomes password: ***
//   - Emails: user@example.com becomes ***@example.com
//
// Custom redaction patterns can be configured.
package telemetry
