package history

import (
	"slices"

	"github.com/AntonStoeckl/library-lending/lending/coordinator"
	"github.com/AntonStoeckl/library-lending/lending/core"
)

// Ledger holds the records rebuilt from a sequence of domain events, in first-seen order.
type Ledger struct {
	books        []core.Book
	members      []core.Member
	loans        []core.Loan
	reservations []core.Reservation

	bookIndex        map[core.BookIDString]int
	memberIndex      map[core.MemberIDString]int
	loanIndex        map[core.LoanIDString]int
	reservationIndex map[core.ReservationIDString]int
}

// Project replays events in order and returns the resulting Ledger.
//
// Events referring to unknown loans or reservations are skipped, as are repeated catalog
// and registration events, so that partial histories still project.
func Project(events core.DomainEvents) Ledger {
	l := Ledger{
		bookIndex:        make(map[core.BookIDString]int),
		memberIndex:      make(map[core.MemberIDString]int),
		loanIndex:        make(map[core.LoanIDString]int),
		reservationIndex: make(map[core.ReservationIDString]int),
	}

	for _, event := range events {
		l.apply(event)
	}

	return l
}

//nolint:funlen
func (l *Ledger) apply(event core.DomainEvent) {
	switch e := event.(type) {
	case core.BookAddedToCatalog:
		if _, found := l.bookIndex[e.BookID]; found {
			return
		}

		l.bookIndex[e.BookID] = len(l.books)
		l.books = append(l.books, core.Book{
			ID:          e.BookID,
			Title:       e.Title,
			Author:      e.Author,
			Year:        e.Year,
			Language:    e.Language,
			Category:    e.Category,
			CopiesTotal: e.CopiesTotal,
		})

	case core.MemberRegistered:
		if _, found := l.memberIndex[e.MemberID]; found {
			return
		}

		l.memberIndex[e.MemberID] = len(l.members)
		l.members = append(l.members, core.Member{
			ID:        e.MemberID,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Email:     e.Email,
			Role:      core.MemberRole(e.Role),
			JoinedAt:  e.OccurredAt,
		})

	case core.BookBorrowed:
		if _, found := l.loanIndex[e.LoanID]; found {
			return
		}

		l.loanIndex[e.LoanID] = len(l.loans)
		l.loans = append(l.loans, core.Loan{
			ID:         e.LoanID,
			BookID:     e.BookID,
			MemberID:   e.MemberID,
			BorrowedAt: e.OccurredAt,
			DueAt:      e.DueAt,
			Status:     core.LoanStatusActive,
		})

	case core.BookReturned:
		l.updateLoan(e.LoanID, func(loan core.Loan) core.Loan {
			return loan.WithReturnedAt(e.OccurredAt)
		})

	case core.LoanMarkedOverdue:
		l.updateLoan(e.LoanID, func(loan core.Loan) core.Loan {
			return loan.WithStatus(core.LoanStatusOverdue)
		})

	case core.BookReserved:
		if _, found := l.reservationIndex[e.ReservationID]; found {
			return
		}

		l.reservationIndex[e.ReservationID] = len(l.reservations)
		l.reservations = append(l.reservations, core.Reservation{
			ID:        e.ReservationID,
			BookID:    e.BookID,
			MemberID:  e.MemberID,
			CreatedAt: e.OccurredAt,
			ExpiresAt: e.ExpiresAt,
			Status:    core.ReservationStatusActive,
		})

	case core.ReservationCancelled:
		l.updateReservation(e.ReservationID, core.ReservationStatusCancelled)

	case core.ReservationExpired:
		l.updateReservation(e.ReservationID, core.ReservationStatusExpired)

	case core.ReservationConverted:
		l.updateReservation(e.ReservationID, core.ReservationStatusConverted)
	}
}

func (l *Ledger) updateLoan(loanID core.LoanIDString, update func(core.Loan) core.Loan) {
	if i, found := l.loanIndex[loanID]; found {
		l.loans[i] = update(l.loans[i])
	}
}

func (l *Ledger) updateReservation(reservationID core.ReservationIDString, status core.ReservationStatus) {
	if i, found := l.reservationIndex[reservationID]; found {
		l.reservations[i] = l.reservations[i].WithStatus(status)
	}
}

// Book returns the catalog entry with bookID.
func (l Ledger) Book(bookID core.BookIDString) (core.Book, bool) {
	if i, found := l.bookIndex[bookID]; found {
		return l.books[i], true
	}

	return core.Book{}, false
}

// Member returns the registered member with memberID.
func (l Ledger) Member(memberID core.MemberIDString) (core.Member, bool) {
	if i, found := l.memberIndex[memberID]; found {
		return l.members[i], true
	}

	return core.Member{}, false
}

func (l Ledger) Books() []core.Book {
	return slices.Clone(l.books)
}

func (l Ledger) Members() []core.Member {
	return slices.Clone(l.members)
}

func (l Ledger) Loans() core.Loans {
	return slices.Clone(l.loans)
}

func (l Ledger) Reservations() core.Reservations {
	return slices.Clone(l.reservations)
}

// LoansOfBook returns every loan of the book, returned ones included.
func (l Ledger) LoansOfBook(bookID core.BookIDString) core.Loans {
	return filterLoans(l.loans, func(loan core.Loan) bool { return loan.BookID == bookID })
}

// LoansOfMember returns every loan of the member, returned ones included.
func (l Ledger) LoansOfMember(memberID core.MemberIDString) core.Loans {
	return filterLoans(l.loans, func(loan core.Loan) bool { return loan.MemberID == memberID })
}

// ReservationsOfBook returns every reservation of the book, terminal ones included.
func (l Ledger) ReservationsOfBook(bookID core.BookIDString) core.Reservations {
	return filterReservations(l.reservations, func(r core.Reservation) bool { return r.BookID == bookID })
}

// ReservationsOfMember returns every reservation of the member, terminal ones included.
func (l Ledger) ReservationsOfMember(memberID core.MemberIDString) core.Reservations {
	return filterReservations(l.reservations, func(r core.Reservation) bool { return r.MemberID == memberID })
}

// Snapshot builds the coordinator snapshot for memberID acting on bookID.
// Book or Member stay zero when they are unknown, which Apply rejects as not found.
func (l Ledger) Snapshot(bookID core.BookIDString, memberID core.MemberIDString) coordinator.Snapshot {
	snapshot := l.BookSnapshot(bookID)
	snapshot.Member, _ = l.Member(memberID)
	snapshot.MemberReservations = filterReservations(l.reservations, func(r core.Reservation) bool {
		return r.MemberID == memberID && r.BookID != bookID
	})

	return snapshot
}

// BookSnapshot builds the snapshot a sweep of bookID needs, without an acting member.
func (l Ledger) BookSnapshot(bookID core.BookIDString) coordinator.Snapshot {
	book, _ := l.Book(bookID)

	return coordinator.Snapshot{
		Book:         book,
		Loans:        l.LoansOfBook(bookID),
		Reservations: l.ReservationsOfBook(bookID),
	}
}

// BooksWithOpenRecords returns the IDs of books with an open loan or an active reservation,
// in catalog order. Those are the books a sweep can change.
func (l Ledger) BooksWithOpenRecords() []core.BookIDString {
	open := make(map[core.BookIDString]bool)

	for _, loan := range l.loans {
		if loan.IsOpen() {
			open[loan.BookID] = true
		}
	}

	for _, reservation := range l.reservations {
		if reservation.IsActive() {
			open[reservation.BookID] = true
		}
	}

	bookIDs := make([]core.BookIDString, 0, len(open))
	for _, book := range l.books {
		if open[book.ID] {
			bookIDs = append(bookIDs, book.ID)
		}
	}

	return bookIDs
}

func filterLoans(loans core.Loans, keep func(core.Loan) bool) core.Loans {
	filtered := make(core.Loans, 0)
	for _, loan := range loans {
		if keep(loan) {
			filtered = append(filtered, loan)
		}
	}

	return filtered
}

func filterReservations(reservations core.Reservations, keep func(core.Reservation) bool) core.Reservations {
	filtered := make(core.Reservations, 0)
	for _, reservation := range reservations {
		if keep(reservation) {
			filtered = append(filtered, reservation)
		}
	}

	return filtered
}
