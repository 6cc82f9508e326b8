// Package config provides configuration management for Callisto.
//
// This package handles loading and validating configuration from YAML files
// with environment variable overrides. It provides a type-safe configuration
// tree with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in three ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("callisto.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("callisto.yaml")
//
//  3. Without a file, from defaults plus environment:
//     cfg, err := config.LoadOrDefault("")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CALLISTO_SECTION_FIELD.
// For example:
//
//   - CALLISTO_COMPLETION_FAST_MODEL overrides completion.fast_model
//   - CALLISTO_LEDGER_SQLITE_PATH overrides ledger.sqlite.path
//   - CALLISTO_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// The conventional ANTHROPIC_API_KEY is honored for anthropic.api_key.
// Environment variables always take precedence over file values.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// A missing API key is deliberately not a validation error: Callisto runs
// without credentials and returns null completions, so callers can exercise
// full code paths in environments that have no provider access.
//
// # Example Configuration
//
// A minimal configuration file:
//
//	anthropic:
//	  timeout: 60s
//
//	completion:
//	  fast_model: "claude-3-5-haiku-20241022"
//	  quality_model: "claude-sonnet-4-20250514"
//
//	ledger:
//	  enabled: true
//	  sqlite:
//	    path: "data/ledger.db"
//	    wal_mode: true
//
//	audit:
//	  enabled: true
//	  dir: "data/audit"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
