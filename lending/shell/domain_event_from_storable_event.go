package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/lending/core"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents eventlog.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent eventlog.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.BookAddedToCatalogEventType:
		return unmarshalAs[core.BookAddedToCatalog](storableEvent.PayloadJSON)

	case core.MemberRegisteredEventType:
		return unmarshalAs[core.MemberRegistered](storableEvent.PayloadJSON)

	case core.BookBorrowedEventType:
		return unmarshalAs[core.BookBorrowed](storableEvent.PayloadJSON)

	case core.BookReturnedEventType:
		return unmarshalAs[core.BookReturned](storableEvent.PayloadJSON)

	case core.LoanMarkedOverdueEventType:
		return unmarshalAs[core.LoanMarkedOverdue](storableEvent.PayloadJSON)

	case core.BookReservedEventType:
		return unmarshalAs[core.BookReserved](storableEvent.PayloadJSON)

	case core.ReservationCancelledEventType:
		return unmarshalAs[core.ReservationCancelled](storableEvent.PayloadJSON)

	case core.ReservationExpiredEventType:
		return unmarshalAs[core.ReservationExpired](storableEvent.PayloadJSON)

	case core.ReservationConvertedEventType:
		return unmarshalAs[core.ReservationConverted](storableEvent.PayloadJSON)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshalAs[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	var payload E

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &payload)
	if err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return payload, nil
}
