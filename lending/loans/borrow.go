package loans

import (
	"time"

	"github.com/AntonStoeckl/library-lending/lending/availability"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/reservations"
)

// Borrowed is the outcome of a successful Borrow.
type Borrowed struct {
	Loan core.Loan

	// ConvertedReservation is the member's hold on the book that the loan consumed, if there was one.
	ConvertedReservation *core.Reservation

	Events core.DomainEvents
}

// Borrow decides whether member may borrow a copy of book.
// bookLoans and bookReservations are all loans and reservations of the book.
//
// Business Rules:
//
//	GIVEN: a member and a book
//	WHEN:  the member borrows the book
//	THEN:  an ACTIVE loan due one LoanPeriod later is created
//	AND:   the member's ACTIVE reservation for the book, if any, is CONVERTED in the same outcome
//	ERROR: ALREADY_BORROWED if the member has an open loan for the book
//	ERROR: UNAVAILABLE if every copy is out
//	ERROR: RESERVED_BY_OTHER if the free copies are held and the member is not a holder
func Borrow(
	member core.Member,
	book core.Book,
	bookLoans core.Loans,
	bookReservations core.Reservations,
	loanID core.LoanIDString,
	now time.Time,
) (Borrowed, error) {

	a := availability.Resolve(book, bookLoans, bookReservations)

	if a.IsBorrowedBy(member.ID) {
		return Borrowed{}, core.Reject(core.ReasonAlreadyBorrowed, "member has an open loan for this book")
	}

	if a.Status == availability.OnLoan {
		return Borrowed{}, core.Reject(core.ReasonUnavailable, "every copy is on loan")
	}

	if a.Status == availability.Held && !a.IsHeldBy(member.ID) {
		return Borrowed{}, core.Reject(core.ReasonReservedByOther, "the free copies are held for other members")
	}

	loan := core.BuildActiveLoan(loanID, book.ID, member.ID, now)
	outcome := Borrowed{
		Loan:   loan,
		Events: core.DomainEvents{core.BuildBookBorrowed(loan)},
	}

	hold, found := reservations.ActiveFor(member.ID, book.ID, bookReservations)
	if !found {
		return outcome, nil
	}

	converted, err := reservations.Convert(hold, loan.ID, now)
	if err != nil {
		return Borrowed{}, err
	}

	outcome.ConvertedReservation = &converted.Reservation
	outcome.Events = append(outcome.Events, converted.Event)

	return outcome, nil
}
