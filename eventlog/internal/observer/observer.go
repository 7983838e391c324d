// Package observer holds the logging and metrics plumbing shared by the SQL engines.
//
// Each engine owns one Observer, configured through the engine's functional options.
// All methods are no-ops for collaborators that are not configured.
package observer

import (
	"context"
	"math"
	"time"

	"github.com/AntonStoeckl/library-lending/eventlog"
)

const (
	logMsgSQLExecuted = "executed sql for: "
	logMsgOperation   = "eventlog operation: "
	logAttrError      = "error"
	logAttrQuery      = "query"
	logAttrDurationMS = "duration_ms"
	logAttrEngine     = "engine"
	labelErrorType    = "error_type"
)

// Observer logs and records metrics for one engine.
type Observer struct {
	Engine           string
	Logger           eventlog.Logger
	ContextualLogger eventlog.ContextualLogger
	Metrics          eventlog.MetricsCollector
}

// LogSQL logs an executed statement at debug level.
func (o Observer) LogSQL(ctx context.Context, action string, sqlQuery string, duration time.Duration) {
	o.debug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, ToMilliseconds(duration), logAttrQuery, sqlQuery)
}

// LogOperation logs operational information at info level.
func (o Observer) LogOperation(ctx context.Context, action string, args ...any) {
	args = append([]any{logAttrEngine, o.Engine}, args...)

	switch {
	case o.ContextualLogger != nil:
		o.ContextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	case o.Logger != nil:
		o.Logger.Info(logMsgOperation+action, args...)
	}
}

// LogWarning logs non-critical problems, like failing to close rows.
func (o Observer) LogWarning(ctx context.Context, message string, err error) {
	switch {
	case o.ContextualLogger != nil:
		o.ContextualLogger.WarnContext(ctx, message, logAttrEngine, o.Engine, logAttrError, err.Error())
	case o.Logger != nil:
		o.Logger.Warn(message, logAttrEngine, o.Engine, logAttrError, err.Error())
	}
}

// LogError logs a failure that makes the operation fail.
func (o Observer) LogError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrEngine, o.Engine, logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	switch {
	case o.ContextualLogger != nil:
		o.ContextualLogger.ErrorContext(ctx, message, allArgs...)
	case o.Logger != nil:
		o.Logger.Error(message, allArgs...)
	}
}

func (o Observer) debug(ctx context.Context, message string, args ...any) {
	args = append([]any{logAttrEngine, o.Engine}, args...)

	switch {
	case o.ContextualLogger != nil:
		o.ContextualLogger.DebugContext(ctx, message, args...)
	case o.Logger != nil:
		o.Logger.Debug(message, args...)
	}
}

// QuerySucceeded records duration and event count of a successful query.
func (o Observer) QuerySucceeded(eventCount int, duration time.Duration) {
	if o.Metrics == nil {
		return
	}

	labels := o.labels(eventlog.OperationQuery, eventlog.StatusSuccess)
	o.Metrics.RecordDuration(eventlog.MetricQueryDuration, duration, labels)
	o.Metrics.RecordValue(eventlog.MetricEventsQueried, float64(eventCount), labels)
}

// AppendSucceeded records duration and event count of a successful append.
func (o Observer) AppendSucceeded(eventCount int, duration time.Duration) {
	if o.Metrics == nil {
		return
	}

	labels := o.labels(eventlog.OperationAppend, eventlog.StatusSuccess)
	o.Metrics.RecordDuration(eventlog.MetricAppendDuration, duration, labels)

	for range eventCount {
		o.Metrics.IncrementCounter(eventlog.MetricEventsAppended, labels)
	}
}

// AppendConflicted records a concurrency conflict.
func (o Observer) AppendConflicted(duration time.Duration) {
	if o.Metrics == nil {
		return
	}

	labels := o.labels(eventlog.OperationAppend, eventlog.StatusConflict)
	o.Metrics.RecordDuration(eventlog.MetricAppendDuration, duration, labels)
	o.Metrics.IncrementCounter(eventlog.MetricConcurrencyConflict, labels)
}

// OperationFailed records a database error for operation.
func (o Observer) OperationFailed(operation string, errorType string) {
	if o.Metrics == nil {
		return
	}

	labels := o.labels(operation, eventlog.StatusError)
	labels[labelErrorType] = errorType
	o.Metrics.IncrementCounter(eventlog.MetricDatabaseErrors, labels)
}

func (o Observer) labels(operation string, status string) map[string]string {
	return map[string]string{
		eventlog.LabelEngine:    o.Engine,
		eventlog.LabelOperation: operation,
		eventlog.LabelStatus:    status,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func ToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
