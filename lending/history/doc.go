// Package history replays lending domain events into records.
//
// The event log is the only source of truth. A Ledger is rebuilt from the events of a
// dynamic consistency boundary before every decision, and discarded afterwards.
package history
