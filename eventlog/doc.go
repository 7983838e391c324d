// Package eventlog is the append-only event log the lending shell persists to.
//
// An event log stores StorableEvents in one global sequence and lets callers read
// a "dynamic event stream": all events matching a Filter, together with the highest
// sequence number among them. Appending with the same Filter and that number as the
// expected maximum succeeds only if nothing matching the Filter was appended in between,
// which is the optimistic-concurrency check the lending engine relies on.
//
// Engines:
//   - postgreslog: PostgreSQL via pgx, database/sql or sqlx
//   - sqlitelog: embedded SQLite (modernc.org/sqlite)
//   - memorylog: in-process, for tests and demos
//
// Schema migrations for the SQL engines live in package migrations.
package eventlog
