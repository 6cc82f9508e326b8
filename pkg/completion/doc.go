// Package completion is the model-completion orchestration layer: it turns
// application-level requests into provider calls, reduces the provider's
// streaming protocol to a stable three-variant event shape, accounts token
// usage and cost under cache-aware pricing, and can swap every live call for
// deterministic fixture content without the caller changing.
//
// The façade is the Orchestrator with three operations:
//
//   - Complete returns the response text, or nil. A nil text with a nil
//     error is a first-class result meaning "no content applies": the
//     provider is not configured, the call failed, or no fixture content
//     matched. Callers fall back to their own defaults on nil.
//   - CompleteStreaming returns a lazy sequence of StreamResult values.
//     Every stream ends with exactly one Done event on success, or exactly
//     one Err result when the provider fails mid-stream (never both).
//   - CompleteStructured decodes the response text as JSON into a typed
//     value, tolerating markdown code fences. Parse failures are nil
//     results, not errors.
//
// Hard errors are reserved for broken programs and broken tests: missing
// attribution fields, unknown tiers, and fixture misconfiguration (missing
// fixture, out-of-bounds response index) always surface as non-nil errors
// with matchable messages.
//
// Tier routing: TierFast and TierQuality each map to one model identifier,
// overridable in Config. The extended reasoning budget is honored only on
// the quality tier.
//
// External collaborators plug in at interface boundaries: Tracker (activity
// and cost journal, see ledger/journal), Auditor (plaintext traffic
// snapshots, see audit), and Observer (metrics, see telemetry/metrics).
// All three are fire-and-forget and never fail a completion.
package completion
