// Package jobs contains the background workers of the guild registry.
//
// Two workers keep durable storage in sync without ever blocking the
// per-guild mutation path:
//
//   - Persister: a fixed-size worker pool draining a buffered queue of
//     storage tasks (guild upserts, ledger appends)
//   - Flusher: a ticker loop that periodically hands every dirty guild to
//     the persister (write-behind mode)
//
// Failed tasks are logged for operator action and never retried against the
// ledger; the registry's dirty-flag reconciliation covers dropped or failed
// guild upserts on the next flush cycle.
//
// All jobs follow the same lifecycle: NewXxx constructor, Start launches
// the goroutines, Stop signals shutdown and waits for them to drain.
package jobs
