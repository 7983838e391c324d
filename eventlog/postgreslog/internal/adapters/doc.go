// Package adapters lets the Postgres event log run on pgxpool.Pool, sql.DB or sqlx.DB.
//
// Every adapter reads through Query and appends through ExecSerializable,
// which runs the statement in its own SERIALIZABLE transaction.
package adapters
