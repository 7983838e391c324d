package core

import (
	"time"
)

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// DomainEvent represents a business event that has occurred in the domain.
type DomainEvent interface {
	// IsEventType returns the string identifier for this event type.
	IsEventType() string

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time
}

// AllEventTypes lists every event type of the lending domain.
func AllEventTypes() []EventTypeString {
	return []EventTypeString{
		BookAddedToCatalogEventType,
		MemberRegisteredEventType,
		BookBorrowedEventType,
		BookReturnedEventType,
		LoanMarkedOverdueEventType,
		BookReservedEventType,
		ReservationCancelledEventType,
		ReservationExpiredEventType,
		ReservationConvertedEventType,
	}
}

// LendingEventTypes lists the event types that change loans and reservations.
func LendingEventTypes() []EventTypeString {
	return []EventTypeString{
		BookBorrowedEventType,
		BookReturnedEventType,
		LoanMarkedOverdueEventType,
		BookReservedEventType,
		ReservationCancelledEventType,
		ReservationExpiredEventType,
		ReservationConvertedEventType,
	}
}
