// Package fixtures loads the canned-response bundles that substitute for
// live provider calls in deterministic mode.
//
// A fixture is a YAML document with a name, an optional opaque seed section,
// response data in one of two shapes, and an optional operations map:
//
//	name: support-session
//	description: Two-turn support conversation
//	seed:
//	  participants: [alice]
//	responses:
//	  - response: "First canned reply"
//	  - response: "Second canned reply"
//	operations:
//	  classify_intent:
//	    intent: billing
//	    confidence: 0.92
//
// The flat responses list is addressed by integer index. The legacy
// storyline shape maps a caller-supplied key to its own ordered exchange
// list; when a fixture carries only a storyline, index addressing falls
// back to the document-order first key.
//
// Fixtures load lazily and cache for the process lifetime. Misconfiguration
// (missing fixture, out-of-bounds index, missing storyline key) is always a
// hard, descriptively worded error: it means a broken test, not a runtime
// degraded mode.
package fixtures
