package eventlog

import (
	"context"
	"time"
)

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger is the context-aware variant of Logger, also satisfied by *slog.Logger.
// Engines prefer it over Logger when both are configured.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector receives durations, counters and values with string labels.
// The lending shell ships a Prometheus implementation.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// Metric names recorded by the engines.
const (
	MetricQueryDuration       = "eventlog_query_duration_seconds"
	MetricAppendDuration      = "eventlog_append_duration_seconds"
	MetricEventsQueried       = "eventlog_events_queried"
	MetricEventsAppended      = "eventlog_events_appended_total"
	MetricConcurrencyConflict = "eventlog_concurrency_conflicts_total"
	MetricDatabaseErrors      = "eventlog_database_errors_total"
)

// Metric label keys and values used by the engines.
const (
	LabelEngine    = "engine"
	LabelOperation = "operation"
	LabelStatus    = "status"

	OperationQuery  = "query"
	OperationAppend = "append"

	StatusSuccess  = "success"
	StatusError    = "error"
	StatusConflict = "conflict"
)
