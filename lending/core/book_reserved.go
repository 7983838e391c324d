package core

import (
	"time"
)

// BookReservedEventType is the event type identifier.
const BookReservedEventType = "BookReserved"

// BookReserved represents when a member places a hold on a book. OccurredAt is the creation instant.
type BookReserved struct {
	ReservationID ReservationIDString
	BookID        BookIDString
	MemberID      MemberIDString
	ExpiresAt     time.Time
	OccurredAt    OccurredAt
}

// BuildBookReserved creates a new BookReserved event from the reservation it created.
func BuildBookReserved(reservation Reservation) BookReserved {
	return BookReserved{
		ReservationID: reservation.ID,
		BookID:        reservation.BookID,
		MemberID:      reservation.MemberID,
		ExpiresAt:     ToOccurredAt(reservation.ExpiresAt),
		OccurredAt:    ToOccurredAt(reservation.CreatedAt),
	}
}

// IsEventType returns the event type identifier.
func (e BookReserved) IsEventType() string {
	return BookReservedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookReserved) HasOccurredAt() time.Time {
	return e.OccurredAt
}
