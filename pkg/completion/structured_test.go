package completion

import (
	"context"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare object",
			text: `{"intent":"refund"}`,
			want: `{"intent":"refund"}`,
		},
		{
			name: "object with surrounding whitespace",
			text: "\n  {\"intent\":\"refund\"}  \n",
			want: `{"intent":"refund"}`,
		},
		{
			name: "fenced with language tag",
			text: "```json\n{\"intent\":\"refund\"}\n```",
			want: `{"intent":"refund"}`,
		},
		{
			name: "fenced without language tag",
			text: "```\n[1, 2, 3]\n```",
			want: `[1, 2, 3]`,
		},
		{
			name: "prose around object",
			text: `Sure, here is the result: {"intent":"refund"} Hope that helps!`,
			want: `{"intent":"refund"}`,
		},
		{
			name: "prose around array",
			text: `The tags are ["a","b"] as requested.`,
			want: `["a","b"]`,
		},
		{
			name: "bare string is valid JSON",
			text: `"just a string"`,
			want: `"just a string"`,
		},
		{
			name: "no document at all",
			text: "I could not produce anything structured.",
			want: "",
		},
		{
			name: "braces that never parse",
			text: "set {x := 1} and move on",
			want: "",
		},
		{
			name: "empty text",
			text: "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.text); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

type intentResult struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

func newFixtureOrchestrator() *Orchestrator {
	return New(Config{Deterministic: true, FixturesDir: "testdata"}, Deps{})
}

func TestCompleteStructuredFromFixture(t *testing.T) {
	o := newFixtureOrchestrator()

	req := Request{
		Session:   "s1",
		Turn:      "t1",
		Operation: "classify_intent",
		FixtureID: "demo-session",
	}

	result, err := CompleteStructured[intentResult](context.Background(), o, req)
	if err != nil {
		t.Fatalf("CompleteStructured returned error: %v", err)
	}
	if result == nil {
		t.Fatal("expected a decoded result")
	}
	if result.Intent != "account_access" {
		t.Errorf("expected intent %q, got %q", "account_access", result.Intent)
	}
	if result.Confidence != 0.92 {
		t.Errorf("expected confidence 0.92, got %v", result.Confidence)
	}
}

func TestCompleteStructuredNullOnMissingOperation(t *testing.T) {
	o := newFixtureOrchestrator()

	req := Request{
		Session:   "s1",
		Turn:      "t1",
		Operation: "never_registered",
		FixtureID: "demo-session",
	}

	result, err := CompleteStructured[intentResult](context.Background(), o, req)
	if err != nil {
		t.Fatalf("expected null completion, got error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
}

func TestCompleteStructuredNullOnUndecodablePayload(t *testing.T) {
	o := newFixtureOrchestrator()

	// summarize_session carries a JSON string, which cannot decode into the
	// struct shape.
	req := Request{
		Session:   "s1",
		Turn:      "t1",
		Operation: "summarize_session",
		FixtureID: "demo-session",
	}

	result, err := CompleteStructured[intentResult](context.Background(), o, req)
	if err != nil {
		t.Fatalf("expected null completion, got error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
}

func TestCompleteStructuredPropagatesValidation(t *testing.T) {
	o := newFixtureOrchestrator()

	req := Request{Turn: "t1", Operation: "classify_intent", FixtureID: "demo-session"}

	if _, err := CompleteStructured[intentResult](context.Background(), o, req); err == nil {
		t.Fatal("expected a validation error for the missing session")
	}
}
