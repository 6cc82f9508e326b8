package completion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/fixtures"
	"mercator-hq/callisto/pkg/ledger"
	"mercator-hq/callisto/pkg/pricing"
	"mercator-hq/callisto/pkg/providers/anthropic"
)

// Config configures an Orchestrator.
type Config struct {
	// APIKey authenticates against the provider. An empty key is not an
	// error: the orchestrator runs with no client configured and live
	// completions degrade to null results.
	APIKey string

	// BaseURL overrides the provider endpoint. Empty uses the default.
	BaseURL string

	// FastModel and QualityModel override the per-tier model identifiers.
	FastModel    string
	QualityModel string

	// Timeout bounds non-streaming provider calls. 0 uses the provider
	// default.
	Timeout time.Duration

	// Deterministic routes every completion through fixtures instead of
	// the provider.
	Deterministic bool

	// FixturesDir is the directory fixture bundles load from.
	// Default: "fixtures"
	FixturesDir string
}

// Deps are the orchestrator's collaborators. Nil fields default to no-ops,
// and a nil pricing table defaults to the built-in one, so the zero value
// is usable.
type Deps struct {
	Pricing  *pricing.Table
	Tracker  Tracker
	Auditor  Auditor
	Observer Observer
}

// streamBuffer is the event channel capacity. The producer still paces
// itself to the consumer once the buffer fills.
const streamBuffer = 16

// Orchestrator coordinates completions: live provider calls with usage and
// cost accounting, or fixture lookups in deterministic operation. Safe for
// concurrent use; the only mutable state is the lazily constructed client
// handle and the fixture cache, both guarded.
type Orchestrator struct {
	config   Config
	pricing  *pricing.Table
	tracker  Tracker
	auditor  Auditor
	observer Observer
	loader   *fixtures.Loader
	logger   *slog.Logger

	clientOnce sync.Once
	client     *anthropic.Client
}

// New creates an Orchestrator.
func New(config Config, deps Deps) *Orchestrator {
	if config.FixturesDir == "" {
		config.FixturesDir = "fixtures"
	}
	if deps.Pricing == nil {
		deps.Pricing = pricing.Default()
	}
	if deps.Tracker == nil {
		deps.Tracker = NopTracker{}
	}
	if deps.Auditor == nil {
		deps.Auditor = NopAuditor{}
	}
	if deps.Observer == nil {
		deps.Observer = NopObserver{}
	}

	return &Orchestrator{
		config:   config,
		pricing:  deps.Pricing,
		tracker:  deps.Tracker,
		auditor:  deps.Auditor,
		observer: deps.Observer,
		loader:   fixtures.NewLoader(config.FixturesDir),
		logger:   slog.Default().With("component", "completion"),
	}
}

// Fixtures exposes the fixture loader, mainly so tests can clear its cache.
func (o *Orchestrator) Fixtures() *fixtures.Loader {
	return o.loader
}

// liveClient constructs the provider client on first use. Returns nil when
// no credentials are configured; that is the degraded no-client mode, not
// an error.
func (o *Orchestrator) liveClient() *anthropic.Client {
	if o.config.APIKey == "" {
		return nil
	}

	o.clientOnce.Do(func() {
		client, err := anthropic.NewClient(anthropic.Config{
			APIKey:  o.config.APIKey,
			BaseURL: o.config.BaseURL,
			Timeout: o.config.Timeout,
		})
		if err != nil {
			o.logger.Error("failed to construct provider client", "error", err)
			return
		}
		o.client = client
	})

	return o.client
}

// resolveModel maps a tier to its model identifier.
func (o *Orchestrator) resolveModel(tier string) string {
	if tier == TierQuality {
		if o.config.QualityModel != "" {
			return o.config.QualityModel
		}
		return DefaultQualityModel
	}
	if o.config.FastModel != "" {
		return o.config.FastModel
	}
	return DefaultFastModel
}

// Complete performs a non-streaming completion and returns the response
// text.
//
// A (nil, nil) return is the null completion: deterministic operation found
// no applicable fixture content, no client is configured, or the provider
// call failed after being attempted. Callers fall back to their own canned
// behavior on nil; retry policy lives with them, not here.
//
// Non-nil errors are reserved for programming and test misconfiguration:
// missing attribution, unknown tier, or a broken fixture reference.
func (o *Orchestrator) Complete(ctx context.Context, req Request) (*string, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	if o.config.Deterministic {
		return o.completeFromFixture(req)
	}

	client := o.liveClient()
	if client == nil {
		o.logger.Info("no provider client configured, returning null completion",
			"operation", req.Operation,
		)
		return nil, nil
	}

	model := o.resolveModel(req.tier())
	wireReq := buildRequest(req, model)

	o.auditor.SnapshotPrompt(req.Operation, promptText(req))

	activityID := o.tracker.OpenActivity(ctx, ledger.Activity{
		Session:   req.Session,
		Turn:      req.Turn,
		Operation: req.Operation,
		Tier:      req.tier(),
		Model:     model,
	})
	started := time.Now()

	resp, err := client.Messages(ctx, wireReq)
	o.tracker.CloseActivity(ctx, activityID, err)
	if err != nil {
		o.observeFailure(req, model, time.Since(started))
		o.logger.Error("completion failed",
			"operation", req.Operation,
			"model", model,
			"error", err,
		)
		return nil, nil
	}

	usage := normalizeUsage(&resp.Usage)
	cost := ledger.Cost(o.pricing.Lookup(model), usage)
	o.tracker.RecordUsage(ctx, activityID, usage, cost)
	o.observer.ObserveCompletion(Observation{
		Tier:      req.tier(),
		Model:     model,
		Operation: req.Operation,
		Outcome:   ledger.OutcomeSuccess,
		Duration:  time.Since(started),
		Usage:     usage,
		Cost:      cost,
	})

	text := responseText(resp)
	o.auditor.SnapshotResponse(req.Operation, text)

	o.logger.Debug("completion succeeded",
		"operation", req.Operation,
		"model", model,
		"output_tokens", usage.OutputTokens,
		"cost_usd", cost,
	)
	return &text, nil
}

// completeFromFixture serves a non-streaming completion from the fixture's
// operations map. Absent payloads are null completions; a broken fixture
// reference is a hard error.
func (o *Orchestrator) completeFromFixture(req Request) (*string, error) {
	if req.FixtureID == "" {
		o.logger.Info("deterministic operation without a fixture id, returning null completion",
			"operation", req.Operation,
		)
		return nil, nil
	}

	fixture, err := o.loader.Load(req.FixtureID)
	if err != nil {
		return nil, err
	}

	payload, found, err := fixture.OperationPayload(req.Operation)
	if err != nil {
		return nil, err
	}
	if !found {
		o.logger.Info("fixture has no payload for operation, returning null completion",
			"fixture", req.FixtureID,
			"operation", req.Operation,
		)
		return nil, nil
	}

	return &payload, nil
}

// CompleteStreaming performs a streaming completion. The returned channel
// is single-shot and caller-paced; it closes after exactly one Done event
// on success or exactly one result with a non-nil Err on provider failure.
//
// Setup failures (validation, fixture misconfiguration, a request that
// never produced a stream) return synchronously with a nil channel.
// Cancelling ctx aborts the provider call and ends the stream.
func (o *Orchestrator) CompleteStreaming(ctx context.Context, req Request) (<-chan StreamResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	if o.config.Deterministic {
		return o.streamFromFixture(req)
	}

	client := o.liveClient()
	if client == nil {
		o.logger.Info("no provider client configured, emitting empty stream",
			"operation", req.Operation,
		)
		out := make(chan StreamResult, 1)
		out <- StreamResult{Event: Done{}}
		close(out)
		return out, nil
	}

	model := o.resolveModel(req.tier())
	wireReq := buildRequest(req, model)

	o.auditor.SnapshotPrompt(req.Operation, promptText(req))

	activityID := o.tracker.OpenActivity(ctx, ledger.Activity{
		Session:   req.Session,
		Turn:      req.Turn,
		Operation: req.Operation,
		Tier:      req.tier(),
		Model:     model,
	})
	started := time.Now()

	stream, err := client.StreamMessages(ctx, wireReq)
	if err != nil {
		o.tracker.CloseActivity(ctx, activityID, err)
		o.observeFailure(req, model, time.Since(started))
		return nil, err
	}

	out := make(chan StreamResult, streamBuffer)
	go o.pump(ctx, req, model, activityID, started, stream, out)
	return out, nil
}

// pump drives one provider stream to completion, forwarding decoded events
// at the caller's pace.
func (o *Orchestrator) pump(ctx context.Context, req Request, model, activityID string, started time.Time, stream *anthropic.Stream, out chan<- StreamResult) {
	defer close(out)
	defer stream.Close()

	dec := newDecoder(o.logger)

	for {
		ev, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			o.failStream(ctx, req, model, activityID, started, out, err)
			return
		}

		events, err := dec.feed(ev)
		if err != nil {
			o.failStream(ctx, req, model, activityID, started, out, err)
			return
		}

		for _, event := range events {
			if !o.send(ctx, out, StreamResult{Event: event}) {
				// Caller abandoned the stream.
				o.tracker.CloseActivity(ctx, activityID, ctx.Err())
				o.observeFailure(req, model, time.Since(started))
				return
			}
		}
	}

	done := dec.finish()
	cost := ledger.Cost(o.pricing.Lookup(model), done.Usage)

	o.tracker.CloseActivity(ctx, activityID, nil)
	o.tracker.RecordUsage(ctx, activityID, done.Usage, cost)
	o.observer.ObserveCompletion(Observation{
		Tier:      req.tier(),
		Model:     model,
		Operation: req.Operation,
		Outcome:   ledger.OutcomeSuccess,
		Duration:  time.Since(started),
		Usage:     done.Usage,
		Cost:      cost,
	})
	o.auditor.SnapshotResponse(req.Operation, dec.transcriptText())

	o.send(ctx, out, StreamResult{Event: done})
}

// failStream records a mid-stream provider failure and surfaces it to the
// consumer. A partially delivered stream cannot be downgraded to a null
// completion, so the error is re-raised instead of swallowed.
func (o *Orchestrator) failStream(ctx context.Context, req Request, model, activityID string, started time.Time, out chan<- StreamResult, err error) {
	o.tracker.CloseActivity(ctx, activityID, err)
	o.observeFailure(req, model, time.Since(started))
	o.logger.Error("streaming completion failed",
		"operation", req.Operation,
		"model", model,
		"error", err,
	)
	o.send(ctx, out, StreamResult{Err: err})
}

// streamFromFixture serves a streaming completion from canned fixture
// content: one Text event followed by Done. Without a fixture id it
// degrades to the empty stream; a broken fixture reference or index is a
// hard error.
func (o *Orchestrator) streamFromFixture(req Request) (<-chan StreamResult, error) {
	out := make(chan StreamResult, 2)

	if req.FixtureID == "" {
		o.logger.Info("deterministic operation without a fixture id, emitting empty stream",
			"operation", req.Operation,
		)
		out <- StreamResult{Event: Done{}}
		close(out)
		return out, nil
	}

	fixture, err := o.loader.Load(req.FixtureID)
	if err != nil {
		return nil, err
	}

	// No explicit index selects the first scripted response.
	index := 0
	if req.ResponseIndex != nil {
		index = *req.ResponseIndex
	}

	text, err := fixture.ResponseAt(index)
	if err != nil {
		return nil, err
	}

	out <- StreamResult{Event: Text{Fragment: text}}
	out <- StreamResult{Event: Done{}}
	close(out)
	return out, nil
}

// send delivers one result unless the caller has gone away.
func (o *Orchestrator) send(ctx context.Context, out chan<- StreamResult, result StreamResult) bool {
	select {
	case out <- result:
		return true
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) observeFailure(req Request, model string, duration time.Duration) {
	o.observer.ObserveCompletion(Observation{
		Tier:      req.tier(),
		Model:     model,
		Operation: req.Operation,
		Outcome:   ledger.OutcomeFailure,
		Duration:  duration,
	})
}
