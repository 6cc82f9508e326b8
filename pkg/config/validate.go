package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "anthropic.base_url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access to
// all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// metricNamePattern is the Prometheus metric name charset.
var metricNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks the entire configuration and returns a ValidationError
// listing every rule that failed, or nil when the configuration is valid.
// A missing API key is not an error: Callisto degrades to null completions
// without one.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateAnthropic(&cfg.Anthropic)...)
	errs = append(errs, validateCompletion(&cfg.Completion)...)
	errs = append(errs, validatePricing(&cfg.Pricing)...)
	errs = append(errs, validateLedger(&cfg.Ledger)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateAnthropic validates Anthropic API settings.
func validateAnthropic(cfg *AnthropicConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "anthropic.base_url",
				Message: fmt.Sprintf("must be a valid URL, got %q", cfg.BaseURL),
			})
		}
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "anthropic.timeout",
			Message: "timeout must not be negative",
		})
	}

	return errs
}

// validateCompletion validates orchestrator settings.
func validateCompletion(cfg *CompletionConfig) []FieldError {
	var errs []FieldError

	if cfg.FastModel == "" {
		errs = append(errs, FieldError{
			Field:   "completion.fast_model",
			Message: "fast tier model is required",
		})
	}
	if cfg.QualityModel == "" {
		errs = append(errs, FieldError{
			Field:   "completion.quality_model",
			Message: "quality tier model is required",
		})
	}
	if cfg.Deterministic && cfg.FixturesDir == "" {
		errs = append(errs, FieldError{
			Field:   "completion.fixtures_dir",
			Message: "fixtures directory is required in deterministic mode",
		})
	}

	return errs
}

// validatePricing validates price table settings.
func validatePricing(cfg *PricingConfig) []FieldError {
	var errs []FieldError

	if cfg.Watch && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "pricing.watch",
			Message: "watch requires pricing.path",
		})
	}

	return errs
}

// validateLedger validates ledger storage settings.
func validateLedger(cfg *LedgerConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}

	if cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "ledger.sqlite.path",
			Message: "database path is required when the ledger is enabled",
		})
	}
	if cfg.SQLite.MaxOpenConns < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.sqlite.max_open_conns",
			Message: "must not be negative",
		})
	}
	if cfg.SQLite.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.sqlite.max_idle_conns",
			Message: "must not be negative",
		})
	}
	if cfg.SQLite.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.sqlite.busy_timeout",
			Message: "must not be negative",
		})
	}
	if cfg.Journal.AsyncBuffer < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.journal.async_buffer",
			Message: "must not be negative",
		})
	}
	if cfg.Journal.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.journal.write_timeout",
			Message: "must not be negative",
		})
	}

	return errs
}

// validateAudit validates snapshot settings.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}

	if cfg.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "audit.dir",
			Message: "snapshot directory is required when auditing is enabled",
		})
	}
	if cfg.AsyncBuffer < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.async_buffer",
			Message: "must not be negative",
		})
	}
	if cfg.Retention.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.max_age",
			Message: "must not be negative",
		})
	}

	return errs
}

// validateTelemetry validates logging, metrics, and tracing settings.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q, expected debug, info, warn, or error", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "", "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q, expected json or text", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: "pattern is required",
			})
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Namespace != "" && !metricNamePattern.MatchString(cfg.Metrics.Namespace) {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.namespace",
				Message: fmt.Sprintf("invalid metric namespace %q", cfg.Metrics.Namespace),
			})
		}
		if cfg.Metrics.Subsystem != "" && !metricNamePattern.MatchString(cfg.Metrics.Subsystem) {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.subsystem",
				Message: fmt.Sprintf("invalid metric subsystem %q", cfg.Metrics.Subsystem),
			})
		}
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "collector endpoint is required when tracing is enabled",
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: fmt.Sprintf("must be between 0.0 and 1.0, got %v", cfg.Tracing.SampleRatio),
			})
		}
		if cfg.Tracing.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.timeout",
				Message: "must not be negative",
			})
		}
	}

	return errs
}
