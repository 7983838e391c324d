package core

import (
	"time"
)

// ReservationExpiredEventType is the event type identifier.
const ReservationExpiredEventType = "ReservationExpired"

// ReservationExpired represents when a sweep finds an ACTIVE hold past its expiry.
type ReservationExpired struct {
	ReservationID ReservationIDString
	BookID        BookIDString
	MemberID      MemberIDString
	OccurredAt    OccurredAt
}

// BuildReservationExpired creates a new ReservationExpired event.
func BuildReservationExpired(reservation Reservation, occurredAt time.Time) ReservationExpired {
	return ReservationExpired{
		ReservationID: reservation.ID,
		BookID:        reservation.BookID,
		MemberID:      reservation.MemberID,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ReservationExpired) IsEventType() string {
	return ReservationExpiredEventType
}

// HasOccurredAt returns when this event occurred.
func (e ReservationExpired) HasOccurredAt() time.Time {
	return e.OccurredAt
}
