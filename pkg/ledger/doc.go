// Package ledger defines the usage and cost accounting types shared across
// Callisto: the four-class token Usage record, the pure Cost function that
// prices a usage record against a pricing entry, and the Activity/Record
// types that describe one bracketed provider call.
//
// # Cost Model
//
// A provider reports token usage in four classes: input, output, cache-read
// input, and cache-write input. InputTokens is inclusive of the cached
// classes, so the fresh (uncached) share is derived by subtraction and
// clamped at zero:
//
//	uncached = max(0, input - cacheRead - cacheWrite)
//	cost     = uncached/1000·inputPrice + output/1000·outputPrice
//	         + cacheRead/1000·cacheReadPrice + cacheWrite/1000·cacheWritePrice
//
// Cost is pure: no I/O, never negative, never an error. Models absent from
// the pricing table price to zero.
//
// Persistence of finalized records lives in ledger/store; the asynchronous
// activity journal that feeds it lives in ledger/journal.
package ledger
