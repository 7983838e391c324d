package coordinator

import (
	"time"

	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/loans"
	"github.com/AntonStoeckl/library-lending/lending/reservations"
)

// Sweep reclassifies overdue loans and expired reservations in the snapshot and verifies the result.
// The Member of the snapshot may be zero. A snapshot without stale statuses yields a Result
// without events, which makes Sweep a fixed point for a frozen "now".
func Sweep(snapshot Snapshot, now time.Time) (Result, error) {
	if snapshot.Book.IsZero() {
		return Result{}, core.Reject(core.ReasonBookNotFound, "sweep needs a book")
	}

	swept, events := sweepSnapshot(snapshot, now)

	if err := verify(snapshot, swept, now); err != nil {
		return Result{}, err
	}

	return buildResult(ActionSweep, snapshot, outcome{snapshot: swept, events: events}), nil
}

// sweepSnapshot runs both sweeps over every record of the snapshot.
// Events are ordered: overdue loans, expired holds of the book, expired holds of other books.
func sweepSnapshot(s Snapshot, now time.Time) (Snapshot, core.DomainEvents) {
	sweptLoans, overdueEvents := loans.ReclassifyOverdue(s.Loans, now)
	sweptHolds, expiredEvents := reservations.ReclassifyExpired(s.Reservations, now)
	sweptOthers, otherExpiredEvents := reservations.ReclassifyExpired(s.otherBooksReservations(), now)

	events := make(core.DomainEvents, 0, len(overdueEvents)+len(expiredEvents)+len(otherExpiredEvents))
	events = append(events, overdueEvents...)
	events = append(events, expiredEvents...)
	events = append(events, otherExpiredEvents...)

	s.Loans = sweptLoans
	s.Reservations = sweptHolds
	s.MemberReservations = sweptOthers

	return s, events
}
