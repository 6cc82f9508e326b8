// Package journal implements asynchronous activity journaling for provider
// calls. The journal brackets each live call: OpenActivity registers the
// attribution and routing for a call in flight, CloseActivity finalizes a
// failed bracket, and RecordUsage finalizes a successful one with its usage
// and cost. Finalized records are written to a ledger.Store by a background
// worker so the completion path never blocks on persistence.
//
// All journal methods are best-effort. Write failures and dropped records
// are logged, never surfaced to the caller.
package journal
