package eventlog

import (
	"context"
	"errors"
)

var (
	ErrEmptyTableNameSupplied      = errors.New("empty eventTableName supplied")
	ErrNilDatabaseConnection       = errors.New("database connection must not be nil")
	ErrConcurrencyConflict         = errors.New("concurrency error, no rows were affected")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrScanningDBRowFailed         = errors.New("scanning db row failed")
	ErrBuildingStorableEventFailed = errors.New("building storable event failed")
	ErrBuildingQueryFailed         = errors.New("building query failed")
	ErrAppendingEventFailed        = errors.New("appending the event failed")
	ErrGettingRowsAffectedFailed   = errors.New("getting rows affected failed")
	ErrTransactionFailed           = errors.New("event log transaction failed")
)

// MaxSequenceNumberUint is a type alias for uint, representing the maximum sequence number for a "dynamic event stream".
type MaxSequenceNumberUint = uint

// EventLog is implemented by every engine.
type EventLog interface {
	// Query returns all events matching filter in sequence order and the highest sequence number among them.
	Query(ctx context.Context, filter Filter) (StorableEvents, MaxSequenceNumberUint, error)

	// Append stores the events atomically if the highest sequence number of the events matching
	// filter is still expectedMaxSequenceNumber, and fails with ErrConcurrencyConflict otherwise.
	Append(
		ctx context.Context,
		filter Filter,
		expectedMaxSequenceNumber MaxSequenceNumberUint,
		event StorableEvent,
		additionalEvents ...StorableEvent,
	) error
}
