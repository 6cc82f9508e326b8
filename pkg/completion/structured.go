package completion

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

// fencePattern matches a markdown code fence, with or without a language
// tag, around the JSON document models like to emit.
var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

// CompleteStructured performs a non-streaming completion and decodes the
// response text as JSON into T.
//
// The null contract extends Complete's: a null completion, or text that
// does not contain a decodable JSON document, returns (nil, nil). Only
// Complete's own hard errors propagate.
func CompleteStructured[T any](ctx context.Context, o *Orchestrator, req Request) (*T, error) {
	text, err := o.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if text == nil {
		return nil, nil
	}

	payload := extractJSON(*text)
	if payload == "" {
		o.logger.Warn("structured completion contained no JSON document",
			"operation", req.Operation,
		)
		return nil, nil
	}

	var value T
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		o.logger.Warn("structured completion did not decode",
			"operation", req.Operation,
			"error", err,
		)
		return nil, nil
	}

	return &value, nil
}

// extractJSON pulls a JSON document out of raw model output. It tries the
// whole text, then the inside of a code fence, then the widest brace- or
// bracket-delimited span. Returns "" when nothing decodes.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if json.Valid([]byte(trimmed)) {
		return trimmed
	}

	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		candidate := strings.TrimSpace(m[1])
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}

	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		start := strings.IndexByte(trimmed, pair[0])
		end := strings.LastIndexByte(trimmed, pair[1])
		if start >= 0 && end > start {
			candidate := trimmed[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate
			}
		}
	}

	return ""
}
