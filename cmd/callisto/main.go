// Callisto is a model-completion orchestration layer for the Anthropic
// Messages API.
//
// It provides:
//   - Two-tier model routing (fast vs. quality) with prompt cache boundaries
//   - Streaming protocol decoding into text, tool-use, and done events
//   - Usage tracking and cost computation under cached-token pricing
//   - Deterministic fixture substitution for network-free testing
//   - Best-effort audit snapshots of prompts and responses
//
// Usage:
//
//	# One-shot completion, streamed to stdout
//	callisto complete --operation demo "What is the capital of France?"
//
//	# Same prompt on the quality tier with a reasoning budget
//	callisto complete --tier quality --reasoning-budget 2048 --operation demo "Prove it"
//
//	# Inspect the pricing table and price a hypothetical call
//	callisto pricing show
//	callisto pricing cost --model claude-sonnet-4-20250514 --input 1200 --output 300
//
//	# Work with fixtures and the usage ledger
//	callisto fixtures list
//	callisto ledger summary --since 24h
//
// Configuration comes from a YAML file (--config) plus CALLISTO_* and
// ANTHROPIC_API_KEY environment overrides.
package main

func main() {
	Execute()
}
