// Package memorylog is an in-process eventlog.EventLog.
//
// It has the same filter and append semantics as the SQL engines and is meant for tests,
// demos and the "memory" store driver of lendingctl. Nothing survives the process.
package memorylog

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/AntonStoeckl/library-lending/eventlog"
)

type record struct {
	sequenceNumber eventlog.MaxSequenceNumberUint
	event          eventlog.StorableEvent
	payload        map[eventlog.FilterKeyString]eventlog.FilterValString
}

// EventLog keeps all events in a slice guarded by a RWMutex.
// The zero value is not usable, construct it with New.
type EventLog struct {
	mu      *sync.RWMutex
	records *[]record
}

// New returns an empty EventLog.
func New() EventLog {
	return EventLog{
		mu:      &sync.RWMutex{},
		records: &[]record{},
	}
}

// Query returns copies of all matching events in sequence order
// and the highest sequence number among them, 0 if there are none.
func (l EventLog) Query(ctx context.Context, filter eventlog.Filter) (
	eventlog.StorableEvents,
	eventlog.MaxSequenceNumberUint,
	error,
) {

	if err := ctx.Err(); err != nil {
		return nil, 0, errors.Join(eventlog.ErrQueryingEventsFailed, err)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	events := make(eventlog.StorableEvents, 0)
	maxSequenceNumber := eventlog.MaxSequenceNumberUint(0)

	for _, r := range *l.records {
		if !filter.Matches(r.event.EventType, r.event.OccurredAt, r.payload) {
			continue
		}

		events = append(events, copyEvent(r.event))
		maxSequenceNumber = r.sequenceNumber
	}

	return events, maxSequenceNumber, nil
}

// Append stores all events if no event matching filter was appended after expectedMaxSequenceNumber.
// Either all events are stored or none.
func (l EventLog) Append(
	ctx context.Context,
	filter eventlog.Filter,
	expectedMaxSequenceNumber eventlog.MaxSequenceNumberUint,
	event eventlog.StorableEvent,
	additionalEvents ...eventlog.StorableEvent,
) error {

	if err := ctx.Err(); err != nil {
		return errors.Join(eventlog.ErrAppendingEventFailed, err)
	}

	allEvents := append(eventlog.StorableEvents{event}, additionalEvents...)

	prepared := make([]record, 0, len(allEvents))
	for _, e := range allEvents {
		payload, err := eventlog.PayloadValues(e.PayloadJSON)
		if err != nil {
			return errors.Join(eventlog.ErrAppendingEventFailed, err)
		}

		prepared = append(prepared, record{event: copyEvent(e), payload: payload})
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	currentMax := eventlog.MaxSequenceNumberUint(0)
	for _, r := range *l.records {
		if filter.Matches(r.event.EventType, r.event.OccurredAt, r.payload) {
			currentMax = r.sequenceNumber
		}
	}

	if currentMax != expectedMaxSequenceNumber {
		return eventlog.ErrConcurrencyConflict
	}

	next := eventlog.MaxSequenceNumberUint(len(*l.records))
	for i := range prepared {
		next++
		prepared[i].sequenceNumber = next
	}

	*l.records = append(*l.records, prepared...)

	return nil
}

// Len returns the number of stored events.
func (l EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(*l.records)
}

func copyEvent(e eventlog.StorableEvent) eventlog.StorableEvent {
	e.PayloadJSON = slices.Clone(e.PayloadJSON)
	e.MetadataJSON = slices.Clone(e.MetadataJSON)

	return e
}
