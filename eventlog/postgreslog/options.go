package postgreslog

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/library-lending/eventlog"
)

var ErrReplicaRequiresPGXPool = errors.New("a replica can only be configured together with a pgxpool.Pool primary")

// Option defines a functional option for configuring EventLog.
type Option func(*EventLog) error

// WithTableName sets the table name, "events" by default.
func WithTableName(tableName string) Option {
	return func(l *EventLog) error {
		if tableName == "" {
			return eventlog.ErrEmptyTableNameSupplied
		}

		l.eventTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the EventLog.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Event counts, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger eventlog.Logger) Option {
	return func(l *EventLog) error {
		l.observer.Logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger. It takes precedence over WithLogger.
func WithContextualLogger(logger eventlog.ContextualLogger) Option {
	return func(l *EventLog) error {
		l.observer.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the collector for query/append durations, event counts, concurrency conflicts and database errors.
func WithMetrics(collector eventlog.MetricsCollector) Option {
	return func(l *EventLog) error {
		l.observer.Metrics = collector
		return nil
	}
}

// WithReplica routes reads with eventlog.EventualConsistency to replica.
// Only valid with NewFromPGXPool.
func WithReplica(replica *pgxpool.Pool) Option {
	return func(l *EventLog) error {
		if replica == nil {
			return eventlog.ErrNilDatabaseConnection
		}

		l.replica = replica

		return nil
	}
}
