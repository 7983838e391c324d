package core

import (
	"time"
)

// ReservationConvertedEventType is the event type identifier.
const ReservationConvertedEventType = "ReservationConverted"

// ReservationConverted represents when a holder borrows the book they reserved, consuming the hold.
type ReservationConverted struct {
	ReservationID ReservationIDString
	LoanID        LoanIDString
	BookID        BookIDString
	MemberID      MemberIDString
	OccurredAt    OccurredAt
}

// BuildReservationConverted creates a new ReservationConverted event.
func BuildReservationConverted(reservation Reservation, loanID LoanIDString, occurredAt time.Time) ReservationConverted {
	return ReservationConverted{
		ReservationID: reservation.ID,
		LoanID:        loanID,
		BookID:        reservation.BookID,
		MemberID:      reservation.MemberID,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ReservationConverted) IsEventType() string {
	return ReservationConvertedEventType
}

// HasOccurredAt returns when this event occurred.
func (e ReservationConverted) HasOccurredAt() time.Time {
	return e.OccurredAt
}
