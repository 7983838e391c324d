package shell

import (
	"context"

	"github.com/AntonStoeckl/library-lending/eventlog"
)

// QueriesEvents is the read side of the event log that query handlers need.
type QueriesEvents interface {
	Query(ctx context.Context, filter eventlog.Filter) (
		eventlog.StorableEvents,
		eventlog.MaxSequenceNumberUint,
		error,
	)
}
