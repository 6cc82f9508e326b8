// Package pricing provides the per-model price table used for completion
// cost accounting.
//
// Each model identifier maps to an Entry holding four unit prices, expressed
// in USD per 1,000 tokens, one per token class:
//
//   - Input (fresh prompt) tokens
//   - Output (completion) tokens
//   - Cache-read input tokens (discounted reuse of a cached prefix)
//   - Cache-write input tokens (premium for creating a cache entry)
//
// # Lookup
//
// Lookup never fails: an exact identifier match wins, otherwise the longest
// table key that prefixes the identifier is used, otherwise a zero Entry is
// returned. Cost accounting is best-effort; an unknown model prices to zero
// rather than blocking a completion.
//
//	table := pricing.Default()
//	entry := table.Lookup("claude-sonnet-4-20250514")
//
// # Hot Reload
//
// Tables can be loaded from a YAML file and replaced atomically at runtime.
// Watcher reloads the file when it changes on disk:
//
//	w, err := pricing.NewWatcher(table, "configs/pricing.yaml", logger)
//	if err != nil {
//	    return err
//	}
//	go w.Run(ctx)
//	defer w.Stop()
package pricing
