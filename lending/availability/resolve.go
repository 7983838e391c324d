package availability

import (
	"slices"

	"github.com/AntonStoeckl/library-lending/lending/core"
)

// Status is the derived availability of a book.
type Status string

const (
	// Available means at least one copy is neither out nor held.
	Available Status = "AVAILABLE"

	// OnLoan means every copy is out.
	OnLoan Status = "ON_LOAN"

	// Held means the copies that are not out are all claimed by active reservations.
	Held Status = "HELD"
)

// Availability is the result of Resolve.
type Availability struct {
	Status Status

	// HolderMemberID is the borrower of the earliest open loan when OnLoan,
	// the member of the earliest active reservation when Held, and empty when Available.
	HolderMemberID core.MemberIDString

	// Borrowers lists the members with open loans, earliest loan first.
	Borrowers []core.MemberIDString

	// Holders lists the members with active reservations, earliest reservation first.
	Holders []core.MemberIDString

	// FreeCopies is the number of copies that are not out.
	FreeCopies int
}

// IsBorrowedBy reports whether the member has an open loan for the book.
func (a Availability) IsBorrowedBy(memberID core.MemberIDString) bool {
	return slices.Contains(a.Borrowers, memberID)
}

// IsHeldBy reports whether the member holds an active reservation for the book.
func (a Availability) IsHeldBy(memberID core.MemberIDString) bool {
	return slices.Contains(a.Holders, memberID)
}

// Resolve derives the availability of book from its loans and reservations.
// This is a pure function, records of other books are ignored.
//
// Rules:
//
//	ON_LOAN:   every copy has an open (ACTIVE or OVERDUE) loan
//	HELD:      active reservations claim all copies that are not out
//	AVAILABLE: otherwise
//	TIE-BREAK: ON_LOAN wins over HELD, an existing loan is ground truth over a hold
func Resolve(book core.Book, loans core.Loans, reservations core.Reservations) Availability {
	openLoans := OpenLoansOf(book.ID, loans)
	activeReservations := ActiveReservationsOf(book.ID, reservations)

	a := Availability{
		Borrowers:  make([]core.MemberIDString, 0, len(openLoans)),
		Holders:    make([]core.MemberIDString, 0, len(activeReservations)),
		FreeCopies: max(book.Copies()-len(openLoans), 0),
	}

	for _, loan := range openLoans {
		a.Borrowers = append(a.Borrowers, loan.MemberID)
	}

	for _, reservation := range activeReservations {
		a.Holders = append(a.Holders, reservation.MemberID)
	}

	switch {
	case a.FreeCopies == 0:
		a.Status = OnLoan
		a.HolderMemberID = openLoans[0].MemberID

	case len(activeReservations) >= a.FreeCopies:
		a.Status = Held
		a.HolderMemberID = activeReservations[0].MemberID

	default:
		a.Status = Available
	}

	return a
}

// OpenLoansOf returns the ACTIVE or OVERDUE loans of the book, earliest borrow first.
func OpenLoansOf(bookID core.BookIDString, loans core.Loans) core.Loans {
	open := make(core.Loans, 0)

	for _, loan := range loans {
		if loan.BookID == bookID && loan.IsOpen() {
			open = append(open, loan)
		}
	}

	slices.SortStableFunc(open, func(a, b core.Loan) int {
		return a.BorrowedAt.Compare(b.BorrowedAt)
	})

	return open
}

// ActiveReservationsOf returns the ACTIVE reservations of the book, earliest creation first.
func ActiveReservationsOf(bookID core.BookIDString, reservations core.Reservations) core.Reservations {
	active := make(core.Reservations, 0)

	for _, reservation := range reservations {
		if reservation.BookID == bookID && reservation.IsActive() {
			active = append(active, reservation)
		}
	}

	slices.SortStableFunc(active, func(a, b core.Reservation) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return active
}
