package coordinator

import (
	"github.com/AntonStoeckl/library-lending/lending/core"
)

// Snapshot is the consistent slice of state one Apply or Sweep call works on.
type Snapshot struct {
	// Member is the acting member. Sweep accepts a zero Member.
	Member core.Member

	Book core.Book

	// Loans are all loans of Book, returned ones included.
	Loans core.Loans

	// Reservations are all reservations of Book, terminal ones included.
	Reservations core.Reservations

	// MemberReservations are the acting member's reservations of other books.
	// Entries for Book are ignored, Reservations is authoritative for them.
	MemberReservations core.Reservations
}

// FindLoan looks up a loan of the book by ID.
func (s Snapshot) FindLoan(loanID core.LoanIDString) (core.Loan, bool) {
	for _, loan := range s.Loans {
		if loan.ID == loanID {
			return loan, true
		}
	}

	return core.Loan{}, false
}

// FindReservation looks up a reservation of the book by ID.
func (s Snapshot) FindReservation(reservationID core.ReservationIDString) (core.Reservation, bool) {
	for _, reservation := range s.Reservations {
		if reservation.ID == reservationID {
			return reservation, true
		}
	}

	return core.Reservation{}, false
}

// MemberActiveReservations returns the acting member's ACTIVE reservations across all books.
func (s Snapshot) MemberActiveReservations() core.Reservations {
	active := make(core.Reservations, 0)

	for _, reservation := range s.allReservations() {
		if reservation.MemberID == s.Member.ID && reservation.IsActive() {
			active = append(active, reservation)
		}
	}

	return active
}

// allReservations returns the book's reservations followed by the member's other reservations.
func (s Snapshot) allReservations() core.Reservations {
	others := s.otherBooksReservations()

	all := make(core.Reservations, 0, len(s.Reservations)+len(others))
	all = append(all, s.Reservations...)
	all = append(all, others...)

	return all
}

func (s Snapshot) otherBooksReservations() core.Reservations {
	others := make(core.Reservations, 0, len(s.MemberReservations))

	for _, reservation := range s.MemberReservations {
		if reservation.BookID != s.Book.ID {
			others = append(others, reservation)
		}
	}

	return others
}

// withLoan returns a copy of the snapshot in which loan replaces the loan with the same ID or is added.
func (s Snapshot) withLoan(loan core.Loan) Snapshot {
	s.Loans = upsertLoan(s.Loans, loan)

	return s
}

// withReservation returns a copy of the snapshot in which reservation replaces the one with the same ID
// or is added to the list it belongs to.
func (s Snapshot) withReservation(reservation core.Reservation) Snapshot {
	if reservation.BookID == s.Book.ID {
		s.Reservations = upsertReservation(s.Reservations, reservation)

		return s
	}

	s.MemberReservations = upsertReservation(s.MemberReservations, reservation)

	return s
}

func upsertLoan(loans core.Loans, loan core.Loan) core.Loans {
	updated := make(core.Loans, 0, len(loans)+1)
	replaced := false

	for _, existing := range loans {
		if existing.ID == loan.ID {
			updated = append(updated, loan)
			replaced = true

			continue
		}

		updated = append(updated, existing)
	}

	if !replaced {
		updated = append(updated, loan)
	}

	return updated
}

func upsertReservation(reservations core.Reservations, reservation core.Reservation) core.Reservations {
	updated := make(core.Reservations, 0, len(reservations)+1)
	replaced := false

	for _, existing := range reservations {
		if existing.ID == reservation.ID {
			updated = append(updated, reservation)
			replaced = true

			continue
		}

		updated = append(updated, existing)
	}

	if !replaced {
		updated = append(updated, reservation)
	}

	return updated
}
