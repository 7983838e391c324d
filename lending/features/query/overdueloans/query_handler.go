package overdueloans

import (
	"context"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/lending/shell"
)

// QueryHandler reads the lending history and projects the overdue loans.
type QueryHandler struct {
	eventLog shell.QueriesEvents
}

// NewQueryHandler creates a new QueryHandler with the provided event log dependency.
func NewQueryHandler(eventLog shell.QueriesEvents) QueryHandler {
	return QueryHandler{
		eventLog: eventLog,
	}
}

// Handle executes the complete query processing workflow: Query -> Unmarshal -> Project.
func (h QueryHandler) Handle(ctx context.Context, query Query) (OverdueLoans, error) {
	ctx = eventlog.WithEventualConsistency(ctx)

	storableEvents, maxSeq, err := h.eventLog.Query(ctx, BuildEventFilter())
	if err != nil {
		return OverdueLoans{}, err
	}

	events, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return OverdueLoans{}, err
	}

	return Project(events, query, maxSeq), nil
}
