package config

import "time"

// Default values for configuration fields.
const (
	// Anthropic defaults
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultAnthropicTimeout = 60 * time.Second

	// Completion defaults
	DefaultFastModel    = "claude-3-5-haiku-20241022"
	DefaultQualityModel = "claude-sonnet-4-20250514"
	DefaultFixturesDir  = "fixtures"

	// Ledger defaults
	DefaultLedgerSQLitePath     = "data/ledger.db"
	DefaultLedgerMaxOpenConns   = 10
	DefaultLedgerMaxIdleConns   = 5
	DefaultLedgerBusyTimeout    = 5 * time.Second
	DefaultJournalAsyncBuffer   = 256
	DefaultJournalWriteTimeout  = 5 * time.Second

	// Audit defaults
	DefaultAuditDir               = "data/audit"
	DefaultAuditAsyncBuffer       = 128
	DefaultAuditRetentionMaxAge   = 30 * 24 * time.Hour
	DefaultAuditRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsNamespace   = "callisto"
	DefaultTracingService     = "callisto"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingTimeout     = 10 * time.Second
)

// DefaultDurationBuckets returns histogram buckets suited to model
// completion latencies, 100ms to 60s.
func DefaultDurationBuckets() []float64 {
	return []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0}
}

// DefaultTokenBuckets returns histogram buckets for per-completion token
// counts.
func DefaultTokenBuckets() []float64 {
	return []float64{100, 500, 1000, 5000, 10000, 50000, 100000}
}

// DefaultCostBuckets returns histogram buckets for per-completion cost in
// USD.
func DefaultCostBuckets() []float64 {
	return []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0}
}

// ApplyDefaults fills in default values for any fields left at their zero
// value. Boolean features stay off unless the file enables them, so the
// function never touches bool fields. It is idempotent.
func ApplyDefaults(cfg *Config) {
	// Anthropic defaults
	if cfg.Anthropic.BaseURL == "" {
		cfg.Anthropic.BaseURL = DefaultAnthropicBaseURL
	}
	if cfg.Anthropic.Timeout == 0 {
		cfg.Anthropic.Timeout = DefaultAnthropicTimeout
	}

	// Completion defaults
	if cfg.Completion.FastModel == "" {
		cfg.Completion.FastModel = DefaultFastModel
	}
	if cfg.Completion.QualityModel == "" {
		cfg.Completion.QualityModel = DefaultQualityModel
	}
	if cfg.Completion.FixturesDir == "" {
		cfg.Completion.FixturesDir = DefaultFixturesDir
	}

	// Ledger defaults
	if cfg.Ledger.SQLite.Path == "" {
		cfg.Ledger.SQLite.Path = DefaultLedgerSQLitePath
	}
	if cfg.Ledger.SQLite.MaxOpenConns == 0 {
		cfg.Ledger.SQLite.MaxOpenConns = DefaultLedgerMaxOpenConns
	}
	if cfg.Ledger.SQLite.MaxIdleConns == 0 {
		cfg.Ledger.SQLite.MaxIdleConns = DefaultLedgerMaxIdleConns
	}
	if cfg.Ledger.SQLite.BusyTimeout == 0 {
		cfg.Ledger.SQLite.BusyTimeout = DefaultLedgerBusyTimeout
	}
	if cfg.Ledger.Journal.AsyncBuffer == 0 {
		cfg.Ledger.Journal.AsyncBuffer = DefaultJournalAsyncBuffer
	}
	if cfg.Ledger.Journal.WriteTimeout == 0 {
		cfg.Ledger.Journal.WriteTimeout = DefaultJournalWriteTimeout
	}

	// Audit defaults
	if cfg.Audit.Dir == "" {
		cfg.Audit.Dir = DefaultAuditDir
	}
	if cfg.Audit.AsyncBuffer == 0 {
		cfg.Audit.AsyncBuffer = DefaultAuditAsyncBuffer
	}
	if cfg.Audit.Retention.MaxAge == 0 {
		cfg.Audit.Retention.MaxAge = DefaultAuditRetentionMaxAge
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = DefaultAuditRetentionSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = DefaultDurationBuckets()
	}
	if len(cfg.Telemetry.Metrics.TokenBuckets) == 0 {
		cfg.Telemetry.Metrics.TokenBuckets = DefaultTokenBuckets()
	}
	if len(cfg.Telemetry.Metrics.CostBuckets) == 0 {
		cfg.Telemetry.Metrics.CostBuckets = DefaultCostBuckets()
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}

// Default returns a configuration with every default applied, suitable for
// running without a configuration file.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}
