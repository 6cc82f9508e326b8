package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"mercator-hq/callisto/pkg/config"
)

// Built-in redaction pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
	PatternEmail       = "email"
)

// Redactor masks credentials and contact details in log text. Patterns
// apply in a fixed order so output is deterministic when they overlap.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern is a compiled regex and its replacement.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// builtinPatterns returns the default redactions: provider API keys,
// bearer tokens, password fields, and email addresses.
func builtinPatterns() []*redactPattern {
	return []*redactPattern{
		{
			name:        PatternAPIKey,
			regex:       regexp.MustCompile(`sk-[A-Za-z0-9_-]{4,}`),
			replacement: "sk-***",
		},
		{
			name:        PatternBearerToken,
			regex:       regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
			replacement: "Bearer ***",
		},
		{
			name:        PatternPassword,
			regex:       regexp.MustCompile(`(?i)(password|passwd|pwd)[:=]\s*\S+`),
			replacement: "$1: ***",
		},
		{
			name:        PatternEmail,
			regex:       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@([A-Za-z0-9.-]+\.[A-Za-z]{2,})\b`),
			replacement: "***@$1",
		},
	}
}

// NewRedactor creates a Redactor with the built-in patterns plus any custom
// ones. Custom patterns that do not compile are skipped.
func NewRedactor(custom []config.RedactPattern) *Redactor {
	r := &Redactor{patterns: builtinPatterns()}

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

// RedactString applies every pattern to the value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// redactAttr rewrites a single attribute. Values under sensitive keys are
// masked outright; other string values pass through the patterns. Groups
// recurse.
func (r *Redactor) redactAttr(attr slog.Attr) slog.Attr {
	attr.Value = attr.Value.Resolve()

	if attr.Value.Kind() == slog.KindGroup {
		members := attr.Value.Group()
		clean := make([]slog.Attr, len(members))
		for i, m := range members {
			clean[i] = r.redactAttr(m)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(clean...)}
	}

	if isSensitiveKey(attr.Key) {
		return slog.String(attr.Key, maskValue(attr.Value))
	}

	if attr.Value.Kind() == slog.KindString {
		return slog.String(attr.Key, r.RedactString(attr.Value.String()))
	}

	return attr
}

// sensitiveKeys flags attribute names whose values are masked regardless of
// content.
var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"auth", "authorization", "credential",
	"private_key", "privatekey",
}

// isSensitiveKey reports whether the attribute name indicates a credential.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// maskValue hides a sensitive value, keeping a four character prefix of
// longer strings as an identification hint.
func maskValue(v slog.Value) string {
	if v.Kind() != slog.KindString {
		return "***"
	}
	s := v.String()
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "***"
	}
	return s[:4] + "***"
}

// redactHandler is a slog.Handler that rewrites records through a Redactor
// before delegating to the wrapped handler. Attributes attached with
// Logger.With are rewritten once, at attachment time.
type redactHandler struct {
	inner    slog.Handler
	redactor *Redactor
}

func (h *redactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *redactHandler) Handle(ctx context.Context, rec slog.Record) error {
	clean := slog.NewRecord(rec.Time, rec.Level, h.redactor.RedactString(rec.Message), rec.PC)
	rec.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(h.redactor.redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, clean)
}

func (h *redactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		clean[i] = h.redactor.redactAttr(attr)
	}
	return &redactHandler{inner: h.inner.WithAttrs(clean), redactor: h.redactor}
}

func (h *redactHandler) WithGroup(name string) slog.Handler {
	return &redactHandler{inner: h.inner.WithGroup(name), redactor: h.redactor}
}
