package reservations

import (
	"time"

	"github.com/AntonStoeckl/library-lending/lending/core"
)

// Converted is the outcome of a successful Convert.
type Converted struct {
	Reservation core.Reservation
	Event       core.ReservationConverted
}

// Convert consumes an ACTIVE reservation because its holder borrowed the book with loanID.
//
//	ERROR: NOT_ACTIVE unless the reservation is ACTIVE
func Convert(reservation core.Reservation, loanID core.LoanIDString, now time.Time) (Converted, error) {
	if !reservation.IsActive() {
		return Converted{}, core.Reject(core.ReasonNotActive, "reservation is "+string(reservation.Status))
	}

	return Converted{
		Reservation: reservation.WithStatus(core.ReservationStatusConverted),
		Event:       core.BuildReservationConverted(reservation, loanID, now),
	}, nil
}
