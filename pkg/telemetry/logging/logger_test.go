package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   LogFormat
		want LogFormat
	}{
		{FormatJSON, FormatJSON},
		{FormatText, FormatText},
		{"TEXT", FormatText},
		{"", FormatJSON},
		{"console", FormatJSON},
	}

	for _, tt := range tests {
		if got := parseFormat(tt.in); got != tt.want {
			t.Errorf("parseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: FormatJSON, Writer: &buf})

	logger.Info("completion finished", "operation", "classify_intent", "model", "claude-3-5-haiku-20241022")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "completion finished" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["operation"] != "classify_intent" {
		t.Errorf("operation = %v", entry["operation"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestNewTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatText, Writer: &buf})

	logger.Info("loaded", "path", "configs/pricing.yaml")

	out := buf.String()
	if !strings.Contains(out, "msg=loaded") {
		t.Errorf("text output missing message: %s", out)
	}
	if !strings.Contains(out, "path=configs/pricing.yaml") {
		t.Errorf("text output missing attribute: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Writer: &buf})

	logger.Debug("hidden")
	logger.Info("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("info emitted below threshold: %s", buf.String())
	}

	logger.Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("warn not emitted: %s", buf.String())
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Setup(Config{Writer: &buf})

	slog.Info("through the default logger")
	if !strings.Contains(buf.String(), "through the default logger") {
		t.Errorf("default logger not installed: %s", buf.String())
	}
}

func TestFromConfig(t *testing.T) {
	fileCfg := config.LoggingConfig{
		Level:         "debug",
		Format:        "text",
		AddSource:     true,
		RedactSecrets: true,
		RedactPatterns: []config.RedactPattern{
			{Name: "session", Pattern: `sess-\d+`, Replacement: "sess-***"},
		},
	}

	cfg := FromConfig(fileCfg)

	if cfg.Level != "debug" {
		t.Errorf("Level = %q", cfg.Level)
	}
	if cfg.Format != FormatText {
		t.Errorf("Format = %q", cfg.Format)
	}
	if !cfg.AddSource || !cfg.RedactSecrets {
		t.Error("bool fields not carried over")
	}
	if len(cfg.RedactPatterns) != 1 {
		t.Errorf("RedactPatterns = %v", cfg.RedactPatterns)
	}
	if cfg.Writer != nil {
		t.Error("Writer should stay nil for stderr")
	}
}
