package coordinator

import (
	"github.com/AntonStoeckl/library-lending/lending/availability"
	"github.com/AntonStoeckl/library-lending/lending/core"
)

// Result is the outcome of a successful Apply or Sweep.
type Result struct {
	Action ActionType

	// Snapshot is the state after the sweep and the action.
	Snapshot Snapshot

	// Loan is the loan the action created or closed, nil for reservation actions and sweeps.
	Loan *core.Loan

	// Reservation is the reservation the action created, cancelled or converted.
	Reservation *core.Reservation

	// Loans and Reservations hold every record that differs from the input snapshot,
	// including the ones the sweep reclassified.
	Loans        core.Loans
	Reservations core.Reservations

	// Events describe the changes in order: sweep events first, then the action's events.
	Events core.DomainEvents

	// Availability is the book's availability after the action.
	Availability availability.Availability
}

// HasChanges reports whether persisting the result would change anything.
func (r Result) HasChanges() bool {
	return len(r.Events) > 0
}

// SweepCounts returns the number of loans marked overdue and reservations expired by the sweep.
func (r Result) SweepCounts() (overdue int, expired int) {
	for _, event := range r.Events {
		switch event.(type) {
		case core.LoanMarkedOverdue:
			overdue++
		case core.ReservationExpired:
			expired++
		}
	}

	return overdue, expired
}
