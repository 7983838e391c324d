package shell

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/lending/catalog"
	"github.com/AntonStoeckl/library-lending/lending/coordinator"
	"github.com/AntonStoeckl/library-lending/lending/core"
)

// CatalogHandler adds books and registers members.
// Both commands are idempotent: repeating one with the same ID appends nothing.
type CatalogHandler struct {
	eventLog eventlog.EventLog
	options  handlerOptions
}

// NewCatalogHandler creates a new CatalogHandler with optional configuration.
func NewCatalogHandler(eventLog eventlog.EventLog, opts ...Option) (CatalogHandler, error) {
	if eventLog == nil {
		return CatalogHandler{}, ErrNilEventLog
	}

	options, err := buildHandlerOptions(opts...)
	if err != nil {
		return CatalogHandler{}, err
	}

	return CatalogHandler{eventLog: eventLog, options: options}, nil
}

// HandleAddBook adds a book to the catalog.
func (h CatalogHandler) HandleAddBook(ctx context.Context, command catalog.AddBook) (HandlerResult, error) {
	bookID := command.BookID.String()

	return h.handle(ctx, command.CommandType(), bookID, "", BookCatalogFilter(bookID),
		func(history core.DomainEvents) (catalog.DecisionResult, error) {
			return catalog.DecideAddBook(history, command)
		},
	)
}

// HandleRegisterMember registers a library member.
func (h CatalogHandler) HandleRegisterMember(ctx context.Context, command catalog.RegisterMember) (HandlerResult, error) {
	memberID := command.MemberID.String()

	return h.handle(ctx, command.CommandType(), "", memberID, MemberCatalogFilter(memberID),
		func(history core.DomainEvents) (catalog.DecisionResult, error) {
			return catalog.DecideRegisterMember(history, command)
		},
	)
}

type decideFunc func(history core.DomainEvents) (catalog.DecisionResult, error)

func (h CatalogHandler) handle(
	ctx context.Context,
	commandType string,
	bookID core.BookIDString,
	memberID core.MemberIDString,
	filter eventlog.Filter,
	decide decideFunc,
) (HandlerResult, error) {
	start := time.Now()
	h.options.logStart(ctx, commandType, bookID, memberID)

	var eventCount int

	retryMetrics, err := RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		events, maxSequenceNumber, queryErr := queryHistory(retryCtx, h.eventLog, filter)
		if queryErr != nil {
			return queryErr
		}

		decision, decideErr := decide(events)
		if decideErr != nil {
			return decideErr
		}

		if !decision.HasEventToAppend() {
			eventCount = 0
			return nil
		}

		var appendErr error
		eventCount, appendErr = appendDomainEvents(retryCtx, h.eventLog, filter, maxSequenceNumber, core.DomainEvents{decision.Event})

		return appendErr
	}, h.options.retryOptionsFor(commandType)...)

	handlerResult := NewSuccessResult(coordinator.Result{}, eventCount, retryMetrics)
	if err != nil {
		handlerResult = NewErrorResult(retryMetrics)
	}

	h.options.finish(ctx, commandType, start, handlerResult, err)

	return handlerResult, err
}
