package completion

import (
	"testing"

	"mercator-hq/callisto/pkg/providers/anthropic"
)

func TestBuildRequestDefaults(t *testing.T) {
	req := Request{
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		Session:   "s1",
		Turn:      "t1",
		Operation: "greet",
	}

	wire := buildRequest(req, "test-model")

	if wire.Model != "test-model" {
		t.Errorf("expected model %q, got %q", "test-model", wire.Model)
	}
	if wire.MaxTokens != defaultMaxTokens {
		t.Errorf("expected default max tokens %d, got %d", defaultMaxTokens, wire.MaxTokens)
	}
	if wire.System != nil {
		t.Errorf("expected no system blocks, got %#v", wire.System)
	}
	if wire.Thinking != nil {
		t.Errorf("expected no thinking config, got %#v", wire.Thinking)
	}
	if wire.Stream {
		t.Error("non-streaming request must not set stream")
	}
}

func TestBuildRequestSystemAlwaysCached(t *testing.T) {
	req := Request{
		System:    "be brief",
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		Session:   "s1",
		Turn:      "t1",
		Operation: "greet",
	}

	wire := buildRequest(req, "test-model")

	if len(wire.System) != 1 {
		t.Fatalf("expected 1 system block, got %d", len(wire.System))
	}
	block := wire.System[0]
	if block.Type != anthropic.BlockText || block.Text != "be brief" {
		t.Errorf("unexpected system block: %+v", block)
	}
	if block.CacheControl == nil || block.CacheControl.Type != "ephemeral" {
		t.Errorf("system block must carry the cache marker, got %+v", block.CacheControl)
	}
}

func TestBuildRequestCacheBoundary(t *testing.T) {
	tests := []struct {
		name     string
		messages int
		marked   int // index carrying the marker, -1 for none
	}{
		{name: "single message unmarked", messages: 1, marked: -1},
		{name: "two messages mark first", messages: 2, marked: 0},
		{name: "five messages mark second to last", messages: 5, marked: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Session: "s1", Turn: "t1", Operation: "chat"}
			for i := 0; i < tt.messages; i++ {
				role := RoleUser
				if i%2 == 1 {
					role = RoleAssistant
				}
				req.Messages = append(req.Messages, Message{Role: role, Content: "turn"})
			}

			wire := buildRequest(req, "test-model")
			if len(wire.Messages) != tt.messages {
				t.Fatalf("expected %d wire messages, got %d", tt.messages, len(wire.Messages))
			}

			for i, msg := range wire.Messages {
				if len(msg.Content) != 1 {
					t.Fatalf("message %d: expected 1 block, got %d", i, len(msg.Content))
				}
				marked := msg.Content[0].CacheControl != nil
				if i == tt.marked && !marked {
					t.Errorf("message %d should carry the cache marker", i)
				}
				if i != tt.marked && marked {
					t.Errorf("message %d should not carry the cache marker", i)
				}
			}
		})
	}
}

func TestBuildRequestThinking(t *testing.T) {
	base := Request{
		Messages:  []Message{{Role: RoleUser, Content: "hard question"}},
		Session:   "s1",
		Turn:      "t1",
		Operation: "reason",
	}

	t.Run("quality tier with budget", func(t *testing.T) {
		req := base
		req.Tier = TierQuality
		req.ReasoningBudget = 2048

		wire := buildRequest(req, "test-model")
		if wire.Thinking == nil {
			t.Fatal("expected thinking config")
		}
		if wire.Thinking.Type != anthropic.ThinkingEnabled || wire.Thinking.BudgetTokens != 2048 {
			t.Errorf("unexpected thinking config: %+v", wire.Thinking)
		}
		if wire.MaxTokens != defaultMaxTokens {
			t.Errorf("a budget under the cap must not change max tokens, got %d", wire.MaxTokens)
		}
	})

	t.Run("budget above cap raises max tokens", func(t *testing.T) {
		req := base
		req.Tier = TierQuality
		req.ReasoningBudget = 8192

		wire := buildRequest(req, "test-model")
		if wire.MaxTokens != 8192+defaultMaxTokens {
			t.Errorf("expected max tokens %d, got %d", 8192+defaultMaxTokens, wire.MaxTokens)
		}
	})

	t.Run("explicit cap above budget is kept", func(t *testing.T) {
		req := base
		req.Tier = TierQuality
		req.ReasoningBudget = 2048
		req.MaxTokens = 10000

		wire := buildRequest(req, "test-model")
		if wire.MaxTokens != 10000 {
			t.Errorf("expected max tokens 10000, got %d", wire.MaxTokens)
		}
	})

	t.Run("fast tier ignores budget", func(t *testing.T) {
		req := base
		req.ReasoningBudget = 2048

		wire := buildRequest(req, "test-model")
		if wire.Thinking != nil {
			t.Errorf("fast tier must not enable thinking, got %+v", wire.Thinking)
		}
	})
}

func TestResponseText(t *testing.T) {
	resp := &anthropic.MessageResponse{
		Content: []anthropic.ResponseBlock{
			{Type: anthropic.BlockText, Text: "The capital "},
			{Type: anthropic.BlockToolUse, ID: "toolu_01", Name: "lookup"},
			{Type: anthropic.BlockText, Text: "is Paris."},
		},
	}

	if got := responseText(resp); got != "The capital is Paris." {
		t.Errorf("expected concatenated text blocks, got %q", got)
	}
}

func TestPromptText(t *testing.T) {
	req := Request{
		System: "be brief",
		Messages: []Message{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
		},
	}

	want := "[system]\nbe brief\n\n[user]\nhi\n\n[assistant]\nhello"
	if got := promptText(req); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
