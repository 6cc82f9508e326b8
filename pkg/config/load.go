package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path,
// applies default values, and validates the result. Environment variables
// are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention CALLISTO_SECTION_FIELD (e.g. CALLISTO_COMPLETION_FAST_MODEL);
// the conventional ANTHROPIC_API_KEY is honored as well. Environment
// variables take precedence over file values.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads configuration from path when it is non-empty,
// otherwise builds the default configuration. Environment overrides apply
// either way.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return LoadConfigWithEnvOverrides(path)
	}

	cfg := Default()
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	// Anthropic overrides. The bare ANTHROPIC_API_KEY is what most
	// deployments already export; the CALLISTO_ form wins if both are set.
	if val := os.Getenv("ANTHROPIC_API_KEY"); val != "" {
		cfg.Anthropic.APIKey = val
	}
	if val := os.Getenv("CALLISTO_ANTHROPIC_API_KEY"); val != "" {
		cfg.Anthropic.APIKey = val
	}
	if val := os.Getenv("CALLISTO_ANTHROPIC_BASE_URL"); val != "" {
		cfg.Anthropic.BaseURL = val
	}
	if val := os.Getenv("CALLISTO_ANTHROPIC_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Anthropic.Timeout = d
		}
	}

	// Completion overrides
	if val := os.Getenv("CALLISTO_COMPLETION_FAST_MODEL"); val != "" {
		cfg.Completion.FastModel = val
	}
	if val := os.Getenv("CALLISTO_COMPLETION_QUALITY_MODEL"); val != "" {
		cfg.Completion.QualityModel = val
	}
	if val := os.Getenv("CALLISTO_COMPLETION_DETERMINISTIC"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Completion.Deterministic = b
		}
	}
	if val := os.Getenv("CALLISTO_COMPLETION_FIXTURES_DIR"); val != "" {
		cfg.Completion.FixturesDir = val
	}

	// Pricing overrides
	if val := os.Getenv("CALLISTO_PRICING_PATH"); val != "" {
		cfg.Pricing.Path = val
	}
	if val := os.Getenv("CALLISTO_PRICING_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Pricing.Watch = b
		}
	}

	// Ledger overrides
	if val := os.Getenv("CALLISTO_LEDGER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Ledger.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_LEDGER_SQLITE_PATH"); val != "" {
		cfg.Ledger.SQLite.Path = val
	}

	// Audit overrides
	if val := os.Getenv("CALLISTO_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_AUDIT_DIR"); val != "" {
		cfg.Audit.Dir = val
	}
	if val := os.Getenv("CALLISTO_AUDIT_RETENTION_MAX_AGE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Audit.Retention.MaxAge = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("CALLISTO_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CALLISTO_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CALLISTO_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("CALLISTO_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}
