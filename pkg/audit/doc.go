// Package audit writes plaintext snapshots of live completion traffic for
// debugging. Every live call produces two files: the outgoing prompt before
// the call and the response text after a success.
//
// Filenames are time-ordered and carry the operation name sanitized to a
// filesystem-safe slug, so a directory listing reads as a chronological
// transcript of what was sent and what came back:
//
//	20260825T091203.481029344-classify-intent-prompt-7f3a81d2.txt
//	20260825T091204.907114820-classify-intent-response-c09d44e1.txt
//
// The whole package is best-effort. Writes happen on a background worker,
// every filesystem error is logged and swallowed, and nothing here can fail
// a user-facing completion.
//
// Two optional companions round out the subsystem: Index keeps a SQLite
// catalog of written snapshots for listing, and Retention prunes snapshots
// older than a configured age on a cron schedule.
package audit
