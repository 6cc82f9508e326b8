package config

import "time"

// Config is the root configuration structure for Callisto. It covers the
// Anthropic client, tier model selection, pricing, the usage ledger, audit
// snapshots, and telemetry.
type Config struct {
	// Anthropic contains connection settings for the Anthropic Messages API.
	Anthropic AnthropicConfig `yaml:"anthropic"`

	// Completion contains orchestrator settings: tier model mapping and
	// deterministic fixture mode.
	Completion CompletionConfig `yaml:"completion"`

	// Pricing contains the per-model price table source.
	Pricing PricingConfig `yaml:"pricing"`

	// Ledger contains configuration for usage and cost record storage.
	Ledger LedgerConfig `yaml:"ledger"`

	// Audit contains configuration for prompt and response snapshots.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for logging, metrics, and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// AnthropicConfig contains connection settings for the Anthropic API.
type AnthropicConfig struct {
	// APIKey authenticates against the Messages API. When empty, Callisto
	// runs without a provider client: completions return null results
	// instead of failing. Typically supplied via ANTHROPIC_API_KEY.
	APIKey string `yaml:"api_key"`

	// BaseURL is the API endpoint.
	// Default: "https://api.anthropic.com"
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a single non-streaming API call. Streaming calls are
	// bounded by their context instead.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`
}

// CompletionConfig contains orchestrator settings.
type CompletionConfig struct {
	// FastModel serves the "fast" tier.
	// Default: "claude-3-5-haiku-20241022"
	FastModel string `yaml:"fast_model"`

	// QualityModel serves the "quality" tier.
	// Default: "claude-sonnet-4-20250514"
	QualityModel string `yaml:"quality_model"`

	// Deterministic routes every completion to fixtures instead of the
	// live API. No tracking, auditing, or cost accrual happens in this
	// mode.
	// Default: false
	Deterministic bool `yaml:"deterministic"`

	// FixturesDir is the directory fixture YAML files are loaded from.
	// Default: "fixtures"
	FixturesDir string `yaml:"fixtures_dir"`
}

// PricingConfig contains the price table source.
type PricingConfig struct {
	// Path is a YAML price table overriding the built-in defaults.
	// Empty uses the built-in table.
	Path string `yaml:"path"`

	// Watch reloads the price table when the file changes on disk.
	// Requires Path.
	// Default: false
	Watch bool `yaml:"watch"`
}

// LedgerConfig contains usage record storage configuration.
type LedgerConfig struct {
	// Enabled turns on persistent usage tracking. When disabled,
	// completions still work but no records are written.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// SQLite configures the ledger database.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Journal configures the async write path between the orchestrator
	// and the store.
	Journal JournalConfig `yaml:"journal"`
}

// SQLiteConfig contains settings for the SQLite ledger backend.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/ledger.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: false; the packaged example configuration enables it.
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// JournalConfig contains settings for the async ledger write path.
type JournalConfig struct {
	// AsyncBuffer is the size of the record channel between completion
	// calls and the storage worker.
	// Default: 256
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds a single record insert.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// AuditConfig contains prompt and response snapshot configuration.
type AuditConfig struct {
	// Enabled turns on snapshot writing.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Dir is the directory snapshots are written to.
	// Default: "data/audit"
	Dir string `yaml:"dir"`

	// AsyncBuffer is the size of the snapshot write queue.
	// Default: 128
	AsyncBuffer int `yaml:"async_buffer"`

	// IndexPath is the snapshot catalog database. Empty places the
	// catalog inside Dir.
	IndexPath string `yaml:"index_path"`

	// Retention controls scheduled pruning of old snapshots.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls snapshot retention.
type RetentionConfig struct {
	// MaxAge is how long snapshots are kept. 0 keeps them forever.
	// Default: 720h (30 days)
	MaxAge time.Duration `yaml:"max_age"`

	// Schedule is a cron expression for when pruning runs.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks credentials and contact details in log output:
	// API keys, bearer tokens, password fields, email addresses.
	// Default: false
	RedactSecrets bool `yaml:"redact_secrets"`

	// RedactPatterns contains additional redaction patterns applied on
	// top of the built-in set.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom log redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether completion metrics are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "callisto"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "" (none)
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for completion duration
	// in seconds.
	// Default: [0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0]
	DurationBuckets []float64 `yaml:"duration_buckets"`

	// TokenBuckets defines histogram buckets for per-completion token
	// counts.
	// Default: [100, 500, 1000, 5000, 10000, 50000, 100000]
	TokenBuckets []float64 `yaml:"token_buckets"`

	// CostBuckets defines histogram buckets for per-completion cost in
	// USD.
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0]
	CostBuckets []float64 `yaml:"cost_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether completion spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name attached to exported spans.
	// Default: "callisto"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces to sample, 0.0 to 1.0.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS for the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds a single span export batch.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
