package reservations

import (
	"time"

	"github.com/AntonStoeckl/library-lending/lending/core"
)

// Cancelled is the outcome of a successful Cancel.
type Cancelled struct {
	Reservation core.Reservation
	Event       core.ReservationCancelled
}

// Cancel gives up an ACTIVE reservation.
//
//	ERROR: NOT_ACTIVE unless the reservation is ACTIVE
func Cancel(reservation core.Reservation, now time.Time) (Cancelled, error) {
	if !reservation.IsActive() {
		return Cancelled{}, core.Reject(core.ReasonNotActive, "reservation is "+string(reservation.Status))
	}

	return Cancelled{
		Reservation: reservation.WithStatus(core.ReservationStatusCancelled),
		Event:       core.BuildReservationCancelled(reservation, now),
	}, nil
}
