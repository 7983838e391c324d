package sqlitelog

import (
	"github.com/AntonStoeckl/library-lending/eventlog"
)

// Option defines a functional option for configuring EventLog.
type Option func(*EventLog) error

// WithTableName sets the events table name, "events" by default.
func WithTableName(tableName string) Option {
	return func(l *EventLog) error {
		if tableName == "" {
			return eventlog.ErrEmptyTableNameSupplied
		}

		l.eventTableName = tableName

		return nil
	}
}

// WithLogger sets a logger for SQL at debug level, operations at info level and failures at error level.
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

// WithMetrics sets the collector for durations, event counts, conflicts and database errors.
func WithMetrics(collector eventlog.MetricsCollector) Option {
	return func(l *EventLog) error {
		l.observer.Metrics = collector
		return nil
	}
}
