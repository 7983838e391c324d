package reservations

import (
	"fmt"
	"time"

	"github.com/AntonStoeckl/library-lending/lending/availability"
	"github.com/AntonStoeckl/library-lending/lending/core"
)

// Reserved is the outcome of a successful Reserve.
type Reserved struct {
	Reservation core.Reservation
	Event       core.BookReserved
}

// Reserve decides whether member may place a hold on book.
//
// memberActiveReservations are the member's ACTIVE reservations on all books.
// bookLoans and bookReservations are all loans and reservations of the book.
//
// Business Rules:
//
//	GIVEN: a member and a book
//	WHEN:  the member reserves the book
//	THEN:  an ACTIVE reservation expiring one HoldPeriod later is created
//	ERROR: CAPACITY_EXCEEDED if the member already holds MaxActiveReservations reservations
//	ERROR: DUPLICATE_RESERVATION if the member already holds this book
//	ERROR: ALREADY_BORROWED if the member is borrowing this book, holding it would be redundant
//	ERROR: BOOK_UNAVAILABLE_FOR_HOLD if all copies are out with, or held for, other members
func Reserve(
	member core.Member,
	book core.Book,
	memberActiveReservations core.Reservations,
	bookLoans core.Loans,
	bookReservations core.Reservations,
	reservationID core.ReservationIDString,
	now time.Time,
) (Reserved, error) {

	active := countActive(member.ID, memberActiveReservations)
	if active >= core.MaxActiveReservations {
		return Reserved{}, core.Reject(
			core.ReasonCapacityExceeded,
			fmt.Sprintf("member holds %d of %d allowed reservations", active, core.MaxActiveReservations),
		)
	}

	if _, found := ActiveFor(member.ID, book.ID, memberActiveReservations, bookReservations); found {
		return Reserved{}, core.Reject(core.ReasonDuplicateReservation, "member already holds this book")
	}

	a := availability.Resolve(book, bookLoans, bookReservations)

	if a.IsBorrowedBy(member.ID) {
		return Reserved{}, core.Reject(core.ReasonAlreadyBorrowed, "member is already borrowing this book")
	}

	switch a.Status {
	case availability.OnLoan:
		return Reserved{}, core.Reject(core.ReasonBookUnavailableForHold, "all copies are on loan to other members")

	case availability.Held:
		return Reserved{}, core.Reject(core.ReasonBookUnavailableForHold, "all free copies are held for other members")
	}

	reservation := core.BuildActiveReservation(reservationID, book.ID, member.ID, now)

	return Reserved{
		Reservation: reservation,
		Event:       core.BuildBookReserved(reservation),
	}, nil
}

// ActiveFor finds the member's ACTIVE reservation for the book in any of the given lists.
func ActiveFor(
	memberID core.MemberIDString,
	bookID core.BookIDString,
	lists ...core.Reservations,
) (core.Reservation, bool) {

	for _, list := range lists {
		for _, reservation := range list {
			if reservation.MemberID == memberID && reservation.BookID == bookID && reservation.IsActive() {
				return reservation, true
			}
		}
	}

	return core.Reservation{}, false
}

func countActive(memberID core.MemberIDString, reservations core.Reservations) int {
	count := 0

	for _, reservation := range reservations {
		if reservation.MemberID == memberID && reservation.IsActive() {
			count++
		}
	}

	return count
}
