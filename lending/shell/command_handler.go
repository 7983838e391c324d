package shell

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/lending/coordinator"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/history"
)

const unknownCommandType = "UNKNOWN"

// CommandHandler runs lending actions and sweeps against an event log.
// Each attempt goes through Query -> Unmarshal -> Project -> Apply -> Append and is retried
// with exponential backoff when the append hits a concurrency conflict.
type CommandHandler struct {
	eventLog eventlog.EventLog
	options  handlerOptions
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(eventLog eventlog.EventLog, opts ...Option) (CommandHandler, error) {
	if eventLog == nil {
		return CommandHandler{}, ErrNilEventLog
	}

	options, err := buildHandlerOptions(opts...)
	if err != nil {
		return CommandHandler{}, err
	}

	return CommandHandler{eventLog: eventLog, options: options}, nil
}

// Handle applies one user action.
//
// A rejected action returns its core.Rejection and appends nothing. On success the returned
// HandlerResult holds the coordinator Result of the attempt that was appended.
func (h CommandHandler) Handle(ctx context.Context, action coordinator.Action) (HandlerResult, error) {
	start := time.Now()

	commandType := unknownCommandType
	if action != nil {
		commandType = string(action.ActionType())
	}

	if err := coordinator.Validate(action); err != nil {
		handlerResult := NewErrorResult(RetryMetrics{LastErrorType: ErrorTypeRejected})
		h.options.finish(ctx, commandType, start, handlerResult, err)

		return handlerResult, err
	}

	bookID, memberID := action.BookRef(), action.MemberRef()
	filter := ScopeFilter(bookID, memberID)

	h.options.logStart(ctx, commandType, bookID, memberID)

	return h.run(ctx, commandType, start, func(ctx context.Context) (coordinator.Result, int, error) {
		events, maxSequenceNumber, err := queryHistory(ctx, h.eventLog, filter)
		if err != nil {
			return coordinator.Result{}, 0, err
		}

		snapshot := history.Project(events).Snapshot(bookID, memberID)

		result, err := coordinator.Apply(action, snapshot, h.options.clock.Now())
		if err != nil {
			return coordinator.Result{}, 0, err
		}

		count, err := appendDomainEvents(ctx, h.eventLog, filter, maxSequenceNumber, result.Events)

		return result, count, err
	})
}

// HandleSweep persists the stale statuses of one book's loans and reservations.
// A book with nothing stale yields an idempotent result.
func (h CommandHandler) HandleSweep(ctx context.Context, bookID core.BookIDString) (HandlerResult, error) {
	start := time.Now()
	commandType := string(coordinator.ActionSweep)
	filter := BookScopeFilter(bookID)

	h.options.logStart(ctx, commandType, bookID, "")

	return h.run(ctx, commandType, start, func(ctx context.Context) (coordinator.Result, int, error) {
		events, maxSequenceNumber, err := queryHistory(ctx, h.eventLog, filter)
		if err != nil {
			return coordinator.Result{}, 0, err
		}

		snapshot := history.Project(events).BookSnapshot(bookID)

		result, err := coordinator.Sweep(snapshot, h.options.clock.Now())
		if err != nil {
			return coordinator.Result{}, 0, err
		}

		count, err := appendDomainEvents(ctx, h.eventLog, filter, maxSequenceNumber, result.Events)

		return result, count, err
	})
}

type attemptFunc func(ctx context.Context) (coordinator.Result, int, error)

func (h CommandHandler) run(ctx context.Context, commandType string, start time.Time, attempt attemptFunc) (HandlerResult, error) {
	var result coordinator.Result
	var eventCount int

	retryMetrics, err := RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var attemptErr error
		result, eventCount, attemptErr = attempt(retryCtx)

		return attemptErr
	}, h.options.retryOptionsFor(commandType)...)

	handlerResult := NewSuccessResult(result, eventCount, retryMetrics)
	if err != nil {
		handlerResult = NewErrorResult(retryMetrics)
	}

	h.options.finish(ctx, commandType, start, handlerResult, err)

	return handlerResult, err
}

// queryHistory reads the scope from the primary and decodes it.
func queryHistory(
	ctx context.Context,
	eventLog eventlog.EventLog,
	filter eventlog.Filter,
) (core.DomainEvents, eventlog.MaxSequenceNumberUint, error) {
	storableEvents, maxSequenceNumber, err := eventLog.Query(eventlog.WithStrongConsistency(ctx), filter)
	if err != nil {
		return nil, 0, err
	}

	events, err := DomainEventsFrom(storableEvents)
	if err != nil {
		return nil, 0, err
	}

	return events, maxSequenceNumber, nil
}

// appendDomainEvents appends all events in one call, so they are stored atomically.
func appendDomainEvents(
	ctx context.Context,
	eventLog eventlog.EventLog,
	filter eventlog.Filter,
	expectedMaxSequenceNumber eventlog.MaxSequenceNumberUint,
	events core.DomainEvents,
) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	storableEvents, err := StorableEventsFrom(events)
	if err != nil {
		return 0, err
	}

	err = eventLog.Append(
		eventlog.WithStrongConsistency(ctx),
		filter,
		expectedMaxSequenceNumber,
		storableEvents[0],
		storableEvents[1:]...,
	)
	if err != nil {
		return 0, err
	}

	return len(storableEvents), nil
}
