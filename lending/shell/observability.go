package shell

import (
	"context"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/lending/core"
)

const (
	// CommandHandlerDurationMetric tracks command handler execution duration.
	CommandHandlerDurationMetric = "commandhandler_handle_duration_seconds"
	// CommandHandlerCallsMetric tracks total command handler calls.
	CommandHandlerCallsMetric = "commandhandler_handle_calls_total"
	// CommandHandlerIdempotentMetric tracks idempotent operations.
	CommandHandlerIdempotentMetric = "commandhandler_idempotent_operations_total"
	// CommandHandlerRejectionsMetric tracks actions a business rule refused, by reason.
	CommandHandlerRejectionsMetric = "commandhandler_rejections_total"
	// CommandHandlerEventsWrittenMetric tracks events appended per call.
	CommandHandlerEventsWrittenMetric = "commandhandler_events_written"
	// CommandHandlerRetriesMetric tracks retry attempts.
	CommandHandlerRetriesMetric = "commandhandler_retries_total"
	// CommandHandlerRetryDelayMetric tracks the backoff delay before each retry.
	CommandHandlerRetryDelayMetric = "commandhandler_retry_delay_seconds"
	// CommandHandlerMaxRetriesReachedMetric tracks exhausted retries.
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"

	// StatusSuccess indicates successful command completion.
	StatusSuccess = "success"
	// StatusError indicates command processing error.
	StatusError = "error"
	// StatusIdempotent indicates no state change was needed.
	StatusIdempotent = "idempotent"
	// StatusRejected indicates a business rule refused the action.
	StatusRejected = "rejected"

	// LogMsgCommandStarted is logged when command processing begins.
	LogMsgCommandStarted = "command handler started"
	// LogMsgCommandCompleted is logged when command processing succeeds.
	LogMsgCommandCompleted = "command handler completed"
	// LogMsgCommandRejected is logged when a business rule refuses the action.
	LogMsgCommandRejected = "command handler rejected action"
	// LogMsgCommandFailed is logged when command processing fails.
	LogMsgCommandFailed = "command handler failed"

	// LogAttrCommandType identifies the command type in logs.
	LogAttrCommandType = "command_type"
	// LogAttrStatus indicates the command processing status.
	LogAttrStatus = "status"
	// LogAttrDurationMS indicates the processing duration in milliseconds.
	LogAttrDurationMS = "duration_ms"
	// LogAttrEventCount indicates the number of events appended.
	LogAttrEventCount = "event_count"
	// LogAttrAttempts indicates how many attempts the retry loop made.
	LogAttrAttempts = "attempts"
	// LogAttrReason carries the rejection reason.
	LogAttrReason = "reason"
	// LogAttrError contains error details.
	LogAttrError = "error"
	// LogAttrBookID identifies the book the command is about.
	LogAttrBookID = "book_id"
	// LogAttrMemberID identifies the member the command is performed for.
	LogAttrMemberID = "member_id"
)

// Interface aliases, so wiring code can hand the same logger and collector to engines and handlers.

// MetricsCollector interface for collecting command handler performance metrics.
type MetricsCollector = eventlog.MetricsCollector

// ContextualLogger interface for context-aware logging in command handlers.
type ContextualLogger = eventlog.ContextualLogger

// Logger interface for basic logging in command handlers.
type Logger = eventlog.Logger

// observability bundles the optional logging and metrics dependencies of a handler.
type observability struct {
	logger           Logger
	contextualLogger ContextualLogger
	metrics          MetricsCollector
}

// ClassifyOutcome maps a handler outcome to the status label used in logs and metrics.
func ClassifyOutcome(result HandlerResult, err error) string {
	switch {
	case err == nil && result.Idempotent:
		return StatusIdempotent
	case err == nil:
		return StatusSuccess
	case isRejection(err) && !isInvariantViolation(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// BuildCommandLabels creates standard metric labels for command handler operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildRetryLabels creates metric labels for retry attempts.
func BuildRetryLabels(commandType string, attempt int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		"attempt_number":   strconv.Itoa(attempt),
		"error_type":       errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// finish logs and records the outcome of one handler call.
func (o observability) finish(ctx context.Context, commandType string, start time.Time, result HandlerResult, err error) {
	duration := time.Since(start)
	status := ClassifyOutcome(result, err)

	o.recordOutcome(commandType, status, duration, result.EventCount, err)
	o.logOutcome(ctx, commandType, status, result, duration, err)
}

// recordOutcome records duration, calls and the outcome specific counters of one handler call.
func (o observability) recordOutcome(commandType string, status string, duration time.Duration, eventCount int, err error) {
	if o.metrics == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	o.metrics.RecordDuration(CommandHandlerDurationMetric, duration, labels)
	o.metrics.IncrementCounter(CommandHandlerCallsMetric, labels)

	switch status {
	case StatusIdempotent:
		o.metrics.IncrementCounter(CommandHandlerIdempotentMetric, BuildCommandLabels(commandType, status))

	case StatusRejected:
		reason, _ := core.ReasonOf(err)
		o.metrics.IncrementCounter(CommandHandlerRejectionsMetric, map[string]string{
			LogAttrCommandType: commandType,
			LogAttrReason:      string(reason),
		})

	case StatusSuccess:
		o.metrics.RecordValue(CommandHandlerEventsWrittenMetric, float64(eventCount), BuildCommandLabels(commandType, status))
	}
}

func (o observability) logStart(ctx context.Context, commandType string, bookID string, memberID string) {
	args := []any{LogAttrCommandType, commandType, LogAttrBookID, bookID, LogAttrMemberID, memberID}

	if o.contextualLogger != nil {
		o.contextualLogger.DebugContext(ctx, LogMsgCommandStarted, args...)
	} else if o.logger != nil {
		o.logger.Debug(LogMsgCommandStarted, args...)
	}
}

// logOutcome logs successes at info, rejections at warn and failures at error level.
func (o observability) logOutcome(
	ctx context.Context,
	commandType string,
	status string,
	result HandlerResult,
	duration time.Duration,
	err error,
) {
	args := []any{
		LogAttrCommandType, commandType,
		LogAttrStatus, status,
		LogAttrAttempts, result.RetryAttempts,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	switch status {
	case StatusRejected:
		reason, _ := core.ReasonOf(err)
		args = append(args, LogAttrReason, string(reason), LogAttrError, err.Error())
		o.log(ctx, levelWarn, LogMsgCommandRejected, args...)

	case StatusError:
		args = append(args, LogAttrError, err.Error())
		o.log(ctx, levelError, LogMsgCommandFailed, args...)

	default:
		args = append(args, LogAttrEventCount, result.EventCount)
		o.log(ctx, levelInfo, LogMsgCommandCompleted, args...)
	}
}

type level int

const (
	levelInfo level = iota
	levelWarn
	levelError
)

func (o observability) log(ctx context.Context, lvl level, msg string, args ...any) {
	if o.contextualLogger != nil {
		switch lvl {
		case levelWarn:
			o.contextualLogger.WarnContext(ctx, msg, args...)
		case levelError:
			o.contextualLogger.ErrorContext(ctx, msg, args...)
		default:
			o.contextualLogger.InfoContext(ctx, msg, args...)
		}

		return
	}

	if o.logger == nil {
		return
	}

	switch lvl {
	case levelWarn:
		o.logger.Warn(msg, args...)
	case levelError:
		o.logger.Error(msg, args...)
	default:
		o.logger.Info(msg, args...)
	}
}

func isRejection(err error) bool {
	_, ok := core.ReasonOf(err)

	return ok
}

func isInvariantViolation(err error) bool {
	reason, ok := core.ReasonOf(err)

	return ok && reason == core.ReasonInvariantViolation
}

