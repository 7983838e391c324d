package reservations

import (
	"time"

	"github.com/AntonStoeckl/library-lending/lending/core"
)

// ReclassifyExpired is the periodic expiry sweep.
//
// It returns a copy of reservations in which every ACTIVE reservation with now > ExpiresAt
// is EXPIRED, and one ReservationExpired event per reclassified reservation.
// The sweep is monotonic: CONVERTED, CANCELLED and EXPIRED reservations are never touched,
// so a second run with the same "now" yields no events.
func ReclassifyExpired(reservations core.Reservations, now time.Time) (core.Reservations, core.DomainEvents) {
	swept := make(core.Reservations, len(reservations))
	events := make(core.DomainEvents, 0)

	for i, reservation := range reservations {
		if reservation.IsExpiredAt(now) {
			swept[i] = reservation.WithStatus(core.ReservationStatusExpired)
			events = append(events, core.BuildReservationExpired(reservation, now))

			continue
		}

		swept[i] = reservation
	}

	return swept, events
}
