package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"mercator-hq/callisto/pkg/config"
)

// LogFormat selects the log output encoding.
type LogFormat string

const (
	// FormatJSON emits one JSON object per line.
	FormatJSON LogFormat = "json"

	// FormatText emits key=value lines for local development.
	FormatText LogFormat = "text"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level to emit: "debug", "info", "warn",
	// "error". Empty means "info".
	Level string

	// Format is the output encoding. Empty means FormatJSON.
	Format LogFormat

	// AddSource includes file and line number in log entries.
	AddSource bool

	// RedactSecrets masks credentials and contact details in messages
	// and attribute values before they reach the handler.
	RedactSecrets bool

	// RedactPatterns contains additional redaction patterns applied on
	// top of the built-in set. Only used when RedactSecrets is set.
	RedactPatterns []config.RedactPattern

	// Writer is the log destination. Nil means os.Stderr.
	Writer io.Writer
}

// New builds a slog.Logger from the configuration. The returned logger is
// ready to use; pass it to components directly or install it process-wide
// with Setup.
func New(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch parseFormat(cfg.Format) {
	case FormatText:
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	if cfg.RedactSecrets {
		handler = &redactHandler{
			inner:    handler,
			redactor: NewRedactor(cfg.RedactPatterns),
		}
	}

	return slog.New(handler)
}

// Setup builds a logger from the configuration and installs it as the
// process default, so packages that log through slog.Default pick it up.
func Setup(cfg Config) *slog.Logger {
	logger := New(cfg)
	slog.SetDefault(logger)
	return logger
}

// FromConfig maps the telemetry section of the file configuration onto a
// logger Config writing to stderr.
func FromConfig(cfg config.LoggingConfig) Config {
	return Config{
		Level:          cfg.Level,
		Format:         LogFormat(cfg.Format),
		AddSource:      cfg.AddSource,
		RedactSecrets:  cfg.RedactSecrets,
		RedactPatterns: cfg.RedactPatterns,
	}
}

// parseLevel maps a level name to a slog.Level. Unknown or empty names mean
// info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseFormat normalizes a format name. Unknown or empty names mean JSON.
func parseFormat(format LogFormat) LogFormat {
	switch LogFormat(strings.ToLower(string(format))) {
	case FormatText:
		return FormatText
	default:
		return FormatJSON
	}
}
