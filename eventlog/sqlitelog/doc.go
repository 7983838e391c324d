// Package sqlitelog implements eventlog.EventLog on an embedded SQLite database (modernc.org/sqlite, no cgo).
//
// Appends run in a single BEGIN IMMEDIATE transaction that takes the database write lock,
// checks the highest sequence number matching the filter and inserts the events.
// SQLite serializes writers, so the check and the insert can not interleave with another append.
//
// Payload predicates are evaluated with json_extract on the top-level key.
// occurred_at is stored as INTEGER unix nanoseconds so that range filters compare numerically.
//
// The schema is created by the eventlog/migrations package.
package sqlitelog
