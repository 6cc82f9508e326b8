package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "callisto.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
anthropic:
  base_url: "https://anthropic.example.test"
  timeout: 30s

completion:
  fast_model: "claude-3-5-haiku-20241022"
  quality_model: "claude-sonnet-4-20250514"
  fixtures_dir: "testdata/fixtures"

ledger:
  enabled: true
  sqlite:
    path: "data/test-ledger.db"
    wal_mode: true

audit:
  enabled: true
  dir: "data/test-audit"
  retention:
    max_age: 168h

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Anthropic.BaseURL != "https://anthropic.example.test" {
		t.Errorf("BaseURL = %q", cfg.Anthropic.BaseURL)
	}
	if cfg.Anthropic.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Anthropic.Timeout)
	}
	if !cfg.Ledger.Enabled {
		t.Error("ledger should be enabled")
	}
	if cfg.Ledger.SQLite.Path != "data/test-ledger.db" {
		t.Errorf("SQLite.Path = %q", cfg.Ledger.SQLite.Path)
	}
	if !cfg.Ledger.SQLite.WALMode {
		t.Error("WAL mode should be enabled")
	}
	if cfg.Audit.Retention.MaxAge != 168*time.Hour {
		t.Errorf("Retention.MaxAge = %v, want 168h", cfg.Audit.Retention.MaxAge)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Telemetry.Logging.Level)
	}

	// Unset fields take defaults.
	if cfg.Ledger.Journal.AsyncBuffer != DefaultJournalAsyncBuffer {
		t.Errorf("Journal.AsyncBuffer = %d, want default %d", cfg.Ledger.Journal.AsyncBuffer, DefaultJournalAsyncBuffer)
	}
	if cfg.Audit.AsyncBuffer != DefaultAuditAsyncBuffer {
		t.Errorf("Audit.AsyncBuffer = %d, want default %d", cfg.Audit.AsyncBuffer, DefaultAuditAsyncBuffer)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read configuration file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "anthropic: [not a mapping")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse configuration file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfigFile(t, `
completion:
  deterministic: true
  fixtures_dir: ""
telemetry:
  logging:
    level: "loud"
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "telemetry.logging.level") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
anthropic:
  api_key: "file-key"
completion:
  fast_model: "file-fast"
`)

	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("CALLISTO_COMPLETION_FAST_MODEL", "env-fast")
	t.Setenv("CALLISTO_LEDGER_ENABLED", "true")
	t.Setenv("CALLISTO_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Anthropic.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", cfg.Anthropic.APIKey)
	}
	if cfg.Completion.FastModel != "env-fast" {
		t.Errorf("FastModel = %q, want env-fast", cfg.Completion.FastModel)
	}
	if !cfg.Ledger.Enabled {
		t.Error("ledger should be enabled via environment")
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
}

func TestCallistoKeyWinsOverConventional(t *testing.T) {
	path := writeConfigFile(t, "anthropic: {}\n")

	t.Setenv("ANTHROPIC_API_KEY", "conventional")
	t.Setenv("CALLISTO_ANTHROPIC_API_KEY", "specific")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Anthropic.APIKey != "specific" {
		t.Errorf("APIKey = %q, want the CALLISTO_ form to win", cfg.Anthropic.APIKey)
	}
}

func TestLoadOrDefaultWithoutFile(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CALLISTO_COMPLETION_QUALITY_MODEL", "env-quality")

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Completion.FastModel != DefaultFastModel {
		t.Errorf("FastModel = %q, want default", cfg.Completion.FastModel)
	}
	if cfg.Completion.QualityModel != "env-quality" {
		t.Errorf("QualityModel = %q, want env override", cfg.Completion.QualityModel)
	}
	if cfg.Anthropic.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.Anthropic.APIKey)
	}
}

func TestEnvOverrideInvalidAfterLoad(t *testing.T) {
	path := writeConfigFile(t, "telemetry: {logging: {level: info}}\n")
	t.Setenv("CALLISTO_TELEMETRY_LOGGING_LEVEL", "shouting")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected validation error after override")
	}
	if !strings.Contains(err.Error(), "after environment overrides") {
		t.Errorf("unexpected error: %v", err)
	}
}
