package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"mercator-hq/callisto/internal/anthropictest"
	"mercator-hq/callisto/pkg/fixtures"
	"mercator-hq/callisto/pkg/ledger"
	"mercator-hq/callisto/pkg/pricing"
	"mercator-hq/callisto/pkg/providers"
	"mercator-hq/callisto/pkg/providers/anthropic"
)

// recordingTracker captures the activity lifecycle for assertions.
type recordingTracker struct {
	mu     sync.Mutex
	opened []ledger.Activity
	closed []error
	usages []ledger.Usage
	costs  []float64
}

func (r *recordingTracker) OpenActivity(_ context.Context, activity ledger.Activity) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, activity)
	return fmt.Sprintf("activity-%d", len(r.opened))
}

func (r *recordingTracker) CloseActivity(_ context.Context, _ string, callErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, callErr)
}

func (r *recordingTracker) RecordUsage(_ context.Context, _ string, usage ledger.Usage, cost float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usages = append(r.usages, usage)
	r.costs = append(r.costs, cost)
}

type snapshotEntry struct {
	kind      string
	operation string
	content   string
}

type recordingAuditor struct {
	mu        sync.Mutex
	snapshots []snapshotEntry
}

func (r *recordingAuditor) SnapshotPrompt(operation, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshotEntry{kind: "prompt", operation: operation, content: content})
}

func (r *recordingAuditor) SnapshotResponse(operation, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshotEntry{kind: "response", operation: operation, content: content})
}

func (r *recordingAuditor) byKind(kind string) []snapshotEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []snapshotEntry
	for _, s := range r.snapshots {
		if s.kind == kind {
			out = append(out, s)
		}
	}
	return out
}

type recordingObserver struct {
	mu           sync.Mutex
	observations []Observation
}

func (r *recordingObserver) ObserveCompletion(obs Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observations = append(r.observations, obs)
}

func (r *recordingObserver) all() []Observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Observation(nil), r.observations...)
}

// liveHarness wires an orchestrator to a scripted provider server with
// recording collaborators and round-number prices.
type liveHarness struct {
	server   *anthropictest.Server
	tracker  *recordingTracker
	auditor  *recordingAuditor
	observer *recordingObserver
	orch     *Orchestrator
}

func newLiveHarness(t *testing.T) *liveHarness {
	t.Helper()

	server := anthropictest.NewServer()
	t.Cleanup(server.Close)

	h := &liveHarness{
		server:   server,
		tracker:  &recordingTracker{},
		auditor:  &recordingAuditor{},
		observer: &recordingObserver{},
	}

	table := pricing.NewTable(map[string]pricing.Entry{
		"test-model": {InputPer1K: 1, OutputPer1K: 2, CacheReadPer1K: 0.1, CacheWritePer1K: 0.5},
	})

	h.orch = New(Config{
		APIKey:       "test-key",
		BaseURL:      server.URL(),
		FastModel:    "test-model",
		QualityModel: "quality-model",
		Timeout:      5 * time.Second,
	}, Deps{
		Pricing:  table,
		Tracker:  h.tracker,
		Auditor:  h.auditor,
		Observer: h.observer,
	})

	return h
}

func liveRequest() Request {
	return Request{
		System:    "be helpful",
		Messages:  []Message{{Role: RoleUser, Content: "what is the capital of France?"}},
		Session:   "sess-1",
		Turn:      "turn-1",
		Operation: "answer_question",
	}
}

// drain collects results until the stream closes.
func drain(t *testing.T, stream <-chan StreamResult) []StreamResult {
	t.Helper()

	var results []StreamResult
	timeout := time.After(5 * time.Second)
	for {
		select {
		case result, ok := <-stream:
			if !ok {
				return results
			}
			results = append(results, result)
		case <-timeout:
			t.Fatal("timed out draining stream")
		}
	}
}

func intPtr(i int) *int {
	return &i
}

func TestRequestValidation(t *testing.T) {
	o := New(Config{Deterministic: true, FixturesDir: "testdata"}, Deps{})

	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{name: "missing session", mutate: func(r *Request) { r.Session = "" }, field: "session"},
		{name: "missing turn", mutate: func(r *Request) { r.Turn = "" }, field: "turn"},
		{name: "missing operation", mutate: func(r *Request) { r.Operation = "" }, field: "operation"},
		{name: "unknown tier", mutate: func(r *Request) { r.Tier = "turbo" }, field: "tier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := liveRequest()
			tt.mutate(&req)

			_, err := o.Complete(context.Background(), req)
			var validationErr *providers.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if validationErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, validationErr.Field)
			}

			stream, err := o.CompleteStreaming(context.Background(), req)
			if err == nil {
				t.Fatal("expected streaming validation error")
			}
			if stream != nil {
				t.Error("expected nil stream on validation failure")
			}
		})
	}
}

func TestCompleteNoClient(t *testing.T) {
	o := New(Config{}, Deps{})

	text, err := o.Complete(context.Background(), liveRequest())
	if err != nil {
		t.Fatalf("expected null completion, got error: %v", err)
	}
	if text != nil {
		t.Fatalf("expected nil text, got %q", *text)
	}
}

func TestCompleteStreamingNoClient(t *testing.T) {
	o := New(Config{}, Deps{})

	stream, err := o.CompleteStreaming(context.Background(), liveRequest())
	if err != nil {
		t.Fatalf("CompleteStreaming returned error: %v", err)
	}

	results := drain(t, stream)
	if len(results) != 1 {
		t.Fatalf("expected exactly one result, got %d: %#v", len(results), results)
	}
	done, ok := results[0].Event.(Done)
	if !ok {
		t.Fatalf("expected Done, got %T", results[0].Event)
	}
	if !done.Usage.IsZero() {
		t.Errorf("expected zero usage, got %+v", done.Usage)
	}
}

func TestCompleteDeterministic(t *testing.T) {
	newReq := func(operation, fixtureID string) Request {
		return Request{
			Session:   "sess-1",
			Turn:      "turn-1",
			Operation: operation,
			FixtureID: fixtureID,
		}
	}

	o := New(Config{Deterministic: true, FixturesDir: "testdata"}, Deps{})

	t.Run("operation payload", func(t *testing.T) {
		text, err := o.Complete(context.Background(), newReq("classify_intent", "demo-session"))
		if err != nil {
			t.Fatalf("Complete returned error: %v", err)
		}
		if text == nil {
			t.Fatal("expected a payload")
		}
		// JSON object keys marshal sorted.
		want := `{"confidence":0.92,"intent":"account_access"}`
		if *text != want {
			t.Errorf("expected payload %q, got %q", want, *text)
		}
	})

	t.Run("missing operation is null", func(t *testing.T) {
		text, err := o.Complete(context.Background(), newReq("never_registered", "demo-session"))
		if err != nil {
			t.Fatalf("expected null completion, got error: %v", err)
		}
		if text != nil {
			t.Fatalf("expected nil text, got %q", *text)
		}
	})

	t.Run("missing fixture id is null", func(t *testing.T) {
		text, err := o.Complete(context.Background(), newReq("classify_intent", ""))
		if err != nil {
			t.Fatalf("expected null completion, got error: %v", err)
		}
		if text != nil {
			t.Fatalf("expected nil text, got %q", *text)
		}
	})

	t.Run("unknown fixture is a hard error", func(t *testing.T) {
		_, err := o.Complete(context.Background(), newReq("classify_intent", "no-such-fixture"))
		var notFound *fixtures.NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected NotFoundError, got %T: %v", err, err)
		}
	})
}

func TestDeterministicSkipsCollaborators(t *testing.T) {
	tracker := &recordingTracker{}
	auditor := &recordingAuditor{}
	observer := &recordingObserver{}

	o := New(Config{Deterministic: true, FixturesDir: "testdata"}, Deps{
		Tracker:  tracker,
		Auditor:  auditor,
		Observer: observer,
	})

	req := Request{
		Session:       "sess-1",
		Turn:          "turn-1",
		Operation:     "classify_intent",
		FixtureID:     "demo-session",
		ResponseIndex: intPtr(0),
	}

	if _, err := o.Complete(context.Background(), req); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	stream, err := o.CompleteStreaming(context.Background(), req)
	if err != nil {
		t.Fatalf("CompleteStreaming returned error: %v", err)
	}
	drain(t, stream)

	if n := len(tracker.opened); n != 0 {
		t.Errorf("deterministic calls must not open activities, got %d", n)
	}
	if n := len(auditor.snapshots); n != 0 {
		t.Errorf("deterministic calls must not snapshot, got %d", n)
	}
	if n := len(observer.all()); n != 0 {
		t.Errorf("deterministic calls must not observe, got %d", n)
	}
}

func TestCompleteStreamingDeterministic(t *testing.T) {
	o := New(Config{Deterministic: true, FixturesDir: "testdata"}, Deps{})

	newReq := func(index *int) Request {
		return Request{
			Session:       "sess-1",
			Turn:          "turn-1",
			Operation:     "chat",
			FixtureID:     "demo-session",
			ResponseIndex: index,
		}
	}

	t.Run("indexed responses", func(t *testing.T) {
		wants := []string{"First canned reply", "Second canned reply"}
		for i, want := range wants {
			stream, err := o.CompleteStreaming(context.Background(), newReq(intPtr(i)))
			if err != nil {
				t.Fatalf("index %d: %v", i, err)
			}

			results := drain(t, stream)
			if len(results) != 2 {
				t.Fatalf("index %d: expected [Text, Done], got %#v", i, results)
			}
			text, ok := results[0].Event.(Text)
			if !ok || text.Fragment != want {
				t.Errorf("index %d: expected Text %q, got %#v", i, want, results[0].Event)
			}
			if _, ok := results[1].Event.(Done); !ok {
				t.Errorf("index %d: expected terminal Done, got %#v", i, results[1].Event)
			}
		}
	})

	t.Run("out of bounds index fails synchronously", func(t *testing.T) {
		for _, index := range []int{2, -1} {
			stream, err := o.CompleteStreaming(context.Background(), newReq(intPtr(index)))
			var indexErr *fixtures.IndexError
			if !errors.As(err, &indexErr) {
				t.Fatalf("index %d: expected IndexError, got %T: %v", index, err, err)
			}
			if stream != nil {
				t.Errorf("index %d: expected nil stream", index)
			}
		}
	})

	t.Run("nil index selects the first response", func(t *testing.T) {
		stream, err := o.CompleteStreaming(context.Background(), newReq(nil))
		if err != nil {
			t.Fatalf("CompleteStreaming returned error: %v", err)
		}
		results := drain(t, stream)
		if len(results) != 2 {
			t.Fatalf("expected [Text, Done], got %#v", results)
		}
		text, ok := results[0].Event.(Text)
		if !ok || text.Fragment != "First canned reply" {
			t.Errorf("expected the first response, got %#v", results[0].Event)
		}
	})
}

func TestCompleteLive(t *testing.T) {
	h := newLiveHarness(t)
	h.server.RespondWith(200, anthropictest.MessageBody("Paris is lovely.", 100, 12, 40, 10))

	text, err := h.orch.Complete(context.Background(), liveRequest())
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text == nil || *text != "Paris is lovely." {
		t.Fatalf("expected response text, got %v", text)
	}

	if h.server.LastPath() != "/v1/messages" {
		t.Errorf("expected messages path, got %q", h.server.LastPath())
	}
	if h.server.LastHeader("x-api-key") != "test-key" {
		t.Errorf("expected api key header, got %q", h.server.LastHeader("x-api-key"))
	}

	var wire anthropic.MessageRequest
	if err := json.Unmarshal(h.server.LastRequestBody(), &wire); err != nil {
		t.Fatalf("request body did not parse: %v", err)
	}
	if wire.Model != "test-model" {
		t.Errorf("expected fast tier model on the wire, got %q", wire.Model)
	}
	if wire.Stream {
		t.Error("non-streaming call must not set stream")
	}
	if len(wire.System) != 1 || wire.System[0].CacheControl == nil {
		t.Errorf("system prompt must carry the cache marker, got %#v", wire.System)
	}

	if len(h.tracker.opened) != 1 {
		t.Fatalf("expected one opened activity, got %d", len(h.tracker.opened))
	}
	activity := h.tracker.opened[0]
	if activity.Session != "sess-1" || activity.Turn != "turn-1" || activity.Operation != "answer_question" {
		t.Errorf("unexpected attribution: %+v", activity)
	}
	if activity.Tier != TierFast || activity.Model != "test-model" {
		t.Errorf("unexpected routing: %+v", activity)
	}
	if len(h.tracker.closed) != 1 || h.tracker.closed[0] != nil {
		t.Errorf("expected one clean close, got %#v", h.tracker.closed)
	}

	wantUsage := ledger.Usage{InputTokens: 150, OutputTokens: 12, CacheReadTokens: 40, CacheWriteTokens: 10}
	if len(h.tracker.usages) != 1 || h.tracker.usages[0] != wantUsage {
		t.Errorf("expected usage %+v, got %#v", wantUsage, h.tracker.usages)
	}

	// 100 uncached in + 12 out + 40 cache read + 10 cache write at the
	// harness prices.
	wantCost := 0.1 + 0.024 + 0.004 + 0.005
	if len(h.tracker.costs) != 1 || math.Abs(h.tracker.costs[0]-wantCost) > 1e-9 {
		t.Errorf("expected cost %v, got %#v", wantCost, h.tracker.costs)
	}

	observations := h.observer.all()
	if len(observations) != 1 {
		t.Fatalf("expected one observation, got %d", len(observations))
	}
	obs := observations[0]
	if obs.Outcome != ledger.OutcomeSuccess || obs.Usage != wantUsage || obs.Model != "test-model" {
		t.Errorf("unexpected observation: %+v", obs)
	}

	prompts := h.auditor.byKind("prompt")
	if len(prompts) != 1 {
		t.Fatalf("expected one prompt snapshot, got %d", len(prompts))
	}
	if !strings.Contains(prompts[0].content, "[system]\nbe helpful") ||
		!strings.Contains(prompts[0].content, "[user]\nwhat is the capital of France?") {
		t.Errorf("prompt snapshot missing content: %q", prompts[0].content)
	}
	responses := h.auditor.byKind("response")
	if len(responses) != 1 || responses[0].content != "Paris is lovely." {
		t.Errorf("unexpected response snapshots: %#v", responses)
	}
}

func TestCompleteLiveQualityTier(t *testing.T) {
	h := newLiveHarness(t)
	h.server.RespondWith(200, anthropictest.MessageBody("Deep answer.", 50, 20, 0, 0))

	req := liveRequest()
	req.Tier = TierQuality
	req.ReasoningBudget = 2048

	if _, err := h.orch.Complete(context.Background(), req); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	if h.tracker.opened[0].Model != "quality-model" || h.tracker.opened[0].Tier != TierQuality {
		t.Errorf("expected quality routing, got %+v", h.tracker.opened[0])
	}

	var wire anthropic.MessageRequest
	if err := json.Unmarshal(h.server.LastRequestBody(), &wire); err != nil {
		t.Fatalf("request body did not parse: %v", err)
	}
	if wire.Model != "quality-model" {
		t.Errorf("expected quality model on the wire, got %q", wire.Model)
	}
	if wire.Thinking == nil || wire.Thinking.BudgetTokens != 2048 {
		t.Errorf("expected thinking budget on the wire, got %#v", wire.Thinking)
	}
}

func TestCompleteLiveFailure(t *testing.T) {
	h := newLiveHarness(t)
	h.server.RespondWithError(500, "api_error", "upstream exploded")

	text, err := h.orch.Complete(context.Background(), liveRequest())
	if err != nil {
		t.Fatalf("provider failures must degrade to null, got error: %v", err)
	}
	if text != nil {
		t.Fatalf("expected nil text, got %q", *text)
	}

	if len(h.tracker.closed) != 1 || h.tracker.closed[0] == nil {
		t.Errorf("expected the activity closed with the call error, got %#v", h.tracker.closed)
	}
	if len(h.tracker.usages) != 0 {
		t.Errorf("failed calls must not record usage, got %#v", h.tracker.usages)
	}

	observations := h.observer.all()
	if len(observations) != 1 || observations[0].Outcome != ledger.OutcomeFailure {
		t.Errorf("expected one failure observation, got %#v", observations)
	}
	if !observations[0].Usage.IsZero() {
		t.Errorf("failure observation must carry zero usage, got %+v", observations[0].Usage)
	}

	if n := len(h.auditor.byKind("response")); n != 0 {
		t.Errorf("failed calls must not snapshot a response, got %d", n)
	}
}

func TestCompleteStreamingLive(t *testing.T) {
	h := newLiveHarness(t)
	h.server.StreamFrames(
		anthropictest.MessageStart(10, 0, 0),
		anthropictest.Ping(),
		anthropictest.TextBlockStart(0),
		anthropictest.TextDelta(0, "Hello"),
		anthropictest.TextDelta(0, ", world"),
		anthropictest.BlockStop(0),
		anthropictest.MessageDelta("end_turn", 7),
		anthropictest.MessageStop(),
	)

	stream, err := h.orch.CompleteStreaming(context.Background(), liveRequest())
	if err != nil {
		t.Fatalf("CompleteStreaming returned error: %v", err)
	}

	results := drain(t, stream)
	if len(results) != 3 {
		t.Fatalf("expected [Text, Text, Done], got %#v", results)
	}
	for i, want := range []string{"Hello", ", world"} {
		text, ok := results[i].Event.(Text)
		if !ok || text.Fragment != want {
			t.Errorf("result %d: expected Text %q, got %#v", i, want, results[i].Event)
		}
	}

	done, ok := results[2].Event.(Done)
	if !ok {
		t.Fatalf("expected terminal Done, got %#v", results[2].Event)
	}
	wantUsage := ledger.Usage{InputTokens: 10, OutputTokens: 7}
	if done.Usage != wantUsage {
		t.Errorf("expected usage %+v, got %+v", wantUsage, done.Usage)
	}

	var wire anthropic.MessageRequest
	if err := json.Unmarshal(h.server.LastRequestBody(), &wire); err != nil {
		t.Fatalf("request body did not parse: %v", err)
	}
	if !wire.Stream {
		t.Error("streaming call must set stream on the wire")
	}

	if len(h.tracker.closed) != 1 || h.tracker.closed[0] != nil {
		t.Errorf("expected one clean close, got %#v", h.tracker.closed)
	}
	if len(h.tracker.usages) != 1 || h.tracker.usages[0] != wantUsage {
		t.Errorf("expected recorded usage %+v, got %#v", wantUsage, h.tracker.usages)
	}

	responses := h.auditor.byKind("response")
	if len(responses) != 1 || responses[0].content != "Hello, world" {
		t.Errorf("expected transcript snapshot, got %#v", responses)
	}

	observations := h.observer.all()
	if len(observations) != 1 || observations[0].Outcome != ledger.OutcomeSuccess {
		t.Errorf("expected one success observation, got %#v", observations)
	}
}

func TestCompleteStreamingLiveToolUse(t *testing.T) {
	h := newLiveHarness(t)
	h.server.StreamFrames(
		anthropictest.MessageStart(5, 0, 0),
		anthropictest.ToolBlockStart(0, "toolu_01", "lookup_invoice"),
		anthropictest.InputJSONDelta(0, `{"invoice_id":`),
		anthropictest.InputJSONDelta(0, `"inv_42"}`),
		anthropictest.BlockStop(0),
		anthropictest.MessageDelta("tool_use", 3),
		anthropictest.MessageStop(),
	)

	stream, err := h.orch.CompleteStreaming(context.Background(), liveRequest())
	if err != nil {
		t.Fatalf("CompleteStreaming returned error: %v", err)
	}

	results := drain(t, stream)
	if len(results) != 2 {
		t.Fatalf("expected [ToolUse, Done], got %#v", results)
	}
	tool, ok := results[0].Event.(ToolUse)
	if !ok {
		t.Fatalf("expected ToolUse, got %T", results[0].Event)
	}
	if tool.ID != "toolu_01" || tool.Name != "lookup_invoice" {
		t.Errorf("unexpected tool identity: %+v", tool)
	}
	if tool.Input["invoice_id"] != "inv_42" {
		t.Errorf("unexpected tool input: %#v", tool.Input)
	}
	if _, ok := results[1].Event.(Done); !ok {
		t.Errorf("expected terminal Done, got %#v", results[1].Event)
	}
}

func TestCompleteStreamingMidStreamError(t *testing.T) {
	h := newLiveHarness(t)
	h.server.StreamFrames(
		anthropictest.MessageStart(10, 0, 0),
		anthropictest.TextBlockStart(0),
		anthropictest.TextDelta(0, "partial"),
		anthropictest.ErrorEvent("overloaded_error", "Overloaded"),
	)

	stream, err := h.orch.CompleteStreaming(context.Background(), liveRequest())
	if err != nil {
		t.Fatalf("CompleteStreaming returned error: %v", err)
	}

	results := drain(t, stream)
	if len(results) != 2 {
		t.Fatalf("expected [Text, error], got %#v", results)
	}
	if text, ok := results[0].Event.(Text); !ok || text.Fragment != "partial" {
		t.Errorf("expected the partial text first, got %#v", results[0])
	}

	var streamErr *providers.StreamError
	if !errors.As(results[1].Err, &streamErr) {
		t.Fatalf("expected terminal StreamError, got %#v", results[1])
	}
	for _, result := range results {
		if _, ok := result.Event.(Done); ok {
			t.Error("a failed stream must not emit Done")
		}
	}

	if len(h.tracker.closed) != 1 || h.tracker.closed[0] == nil {
		t.Errorf("expected the activity closed with the stream error, got %#v", h.tracker.closed)
	}
	observations := h.observer.all()
	if len(observations) != 1 || observations[0].Outcome != ledger.OutcomeFailure {
		t.Errorf("expected one failure observation, got %#v", observations)
	}
}

func TestCompleteStreamingSetupError(t *testing.T) {
	h := newLiveHarness(t)
	h.server.SetHeader("Retry-After", "15")
	h.server.RespondWithError(529, "overloaded_error", "Overloaded")

	stream, err := h.orch.CompleteStreaming(context.Background(), liveRequest())
	if stream != nil {
		t.Error("expected nil stream on setup failure")
	}

	var overloaded *providers.OverloadedError
	if !errors.As(err, &overloaded) {
		t.Fatalf("expected OverloadedError, got %T: %v", err, err)
	}

	if len(h.tracker.closed) != 1 || h.tracker.closed[0] == nil {
		t.Errorf("expected the activity closed with the setup error, got %#v", h.tracker.closed)
	}
	observations := h.observer.all()
	if len(observations) != 1 || observations[0].Outcome != ledger.OutcomeFailure {
		t.Errorf("expected one failure observation, got %#v", observations)
	}
}
