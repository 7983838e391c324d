package core

import "time"

// ReservationStatus is the stored lifecycle status of a Reservation.
type ReservationStatus string

const (
	// ReservationStatusActive means the hold is valid.
	ReservationStatusActive ReservationStatus = "ACTIVE"

	// ReservationStatusExpired means the hold ran out before it was used. Terminal.
	ReservationStatusExpired ReservationStatus = "EXPIRED"

	// ReservationStatusConverted means the holder borrowed the book. Terminal.
	ReservationStatusConverted ReservationStatus = "CONVERTED"

	// ReservationStatusCancelled means the holder gave the hold up. Terminal.
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// Reservations is a slice of Reservation records.
type Reservations = []Reservation

// Reservation is a member's claim of priority on a book (a hold).
// Its status only moves forward, from ACTIVE to exactly one terminal status.
type Reservation struct {
	ID        ReservationIDString
	BookID    BookIDString
	MemberID  MemberIDString
	CreatedAt time.Time
	ExpiresAt time.Time
	Status    ReservationStatus
}

// BuildActiveReservation creates an ACTIVE reservation created at "now" that expires one HoldPeriod later.
func BuildActiveReservation(
	reservationID ReservationIDString,
	bookID BookIDString,
	memberID MemberIDString,
	now time.Time,
) Reservation {

	return Reservation{
		ID:        reservationID,
		BookID:    bookID,
		MemberID:  memberID,
		CreatedAt: now,
		ExpiresAt: now.Add(HoldPeriod),
		Status:    ReservationStatusActive,
	}
}

// IsActive reports whether the reservation is ACTIVE.
func (r Reservation) IsActive() bool {
	return r.Status == ReservationStatusActive
}

// IsExpiredAt reports whether the reservation is ACTIVE and past its expiry at "now",
// regardless of whether a sweep has reclassified it yet.
func (r Reservation) IsExpiredAt(now time.Time) bool {
	return r.IsActive() && now.After(r.ExpiresAt)
}

// WithStatus returns a copy of the reservation with the given status.
func (r Reservation) WithStatus(status ReservationStatus) Reservation {
	r.Status = status

	return r
}

// IsTerminal reports whether the status can never be left again.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusExpired || s == ReservationStatusConverted || s == ReservationStatusCancelled
}
