// Package coordinator is the single entry point of the lending engine.
//
// Apply sequences the rule engines around one action: it sweeps stale statuses in the
// snapshot, dispatches the action to the loan or reservation rule engine, and verifies
// the cross-entity invariants on the resulting state. Sweep does the same without an action
// and is what the scheduler calls.
//
// Both functions are pure. The caller fetches the snapshot and persists Result.Events,
// and it must do both atomically.
package coordinator
