package core

import (
	"time"
)

// ReservationCancelledEventType is the event type identifier.
const ReservationCancelledEventType = "ReservationCancelled"

// ReservationCancelled represents when a member gives a hold up.
type ReservationCancelled struct {
	ReservationID ReservationIDString
	BookID        BookIDString
	MemberID      MemberIDString
	OccurredAt    OccurredAt
}

// BuildReservationCancelled creates a new ReservationCancelled event.
func BuildReservationCancelled(reservation Reservation, occurredAt time.Time) ReservationCancelled {
	return ReservationCancelled{
		ReservationID: reservation.ID,
		BookID:        reservation.BookID,
		MemberID:      reservation.MemberID,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ReservationCancelled) IsEventType() string {
	return ReservationCancelledEventType
}

// HasOccurredAt returns when this event occurred.
func (e ReservationCancelled) HasOccurredAt() time.Time {
	return e.OccurredAt
}
