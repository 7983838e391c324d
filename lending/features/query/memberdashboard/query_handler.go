package memberdashboard

import (
	"context"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/lending/shell"
)

// QueryHandler orchestrates the complete query processing workflow.
// It handles event log interactions and delegates projection logic to the pure Project function.
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
func (h QueryHandler) Handle(ctx context.Context, query Query) (MemberDashboard, error) {
	// Dashboards tolerate slightly stale data, so they may be served by a replica.
	ctx = eventlog.WithEventualConsistency(ctx)

	storableEvents, maxSeq, err := h.eventLog.Query(ctx, BuildEventFilter(query))
	if err != nil {
		return MemberDashboard{}, err
	}

	events, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return MemberDashboard{}, err
	}

	return Project(events, query, maxSeq)
}
