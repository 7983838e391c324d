// Package postgreslog implements eventlog.EventLog on PostgreSQL.
//
// Use NewFromPGXPool, NewFromSQLDB or NewFromSQLX depending on the connection type your application has.
//
// Append executes one INSERT ... SELECT statement whose CTE computes the highest sequence number
// matching the filter and inserts the events only if it still equals the expected one.
// The statement runs in a SERIALIZABLE transaction, so two appends with overlapping
// filters can not both commit. Serialization failures surface as eventlog.ErrConcurrencyConflict.
//
// Payload predicates are translated to JSONB containment (payload @> '{"key":"val"}').
package postgreslog
