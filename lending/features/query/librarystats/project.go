package librarystats

import (
	"cmp"
	"slices"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/history"
	"github.com/AntonStoeckl/library-lending/lending/shell"
)

// Project summarizes the library at the query instant.
//
// Query Logic:
//
//	GIVEN: An instant At and a number TopN
//	WHEN: LibraryStats query is executed
//	THEN: Loans counts every loan ever made, ActiveLoans the open ones not overdue at At,
//	      OverdueLoans the open ones overdue at At
//	INCLUDES: PendingReservations, the ACTIVE reservations not expired at At
//	INCLUDES: MostBorrowed, the TopN books by number of loans, ties broken by title
//	EXCLUDES: books never borrowed from MostBorrowed
func Project(events core.DomainEvents, query Query, maxSeq uint) LibraryStats {
	ledger := history.Project(events)
	stats, borrows := summarize(ledger, query, maxSeq)
	stats.MostBorrowed = mostBorrowed(ledger, borrows, query.TopN)

	return stats
}

// ProjectWithBorrowWindow summarizes the library like Project, but ranks MostBorrowed
// by the BookBorrowed events of window that occurred between BorrowedSince and At.
//
// Query Logic:
//
//	GIVEN: The lending history, the borrow events of a time window and the Query
//	WHEN: LibraryStats query with BorrowedSince is executed
//	THEN: the totals cover the whole history, MostBorrowed only the window
//	EXCLUDES: window events that are no borrows or lie outside [BorrowedSince, At]
func ProjectWithBorrowWindow(events core.DomainEvents, window core.DomainEvents, query Query, maxSeq uint) LibraryStats {
	ledger := history.Project(events)
	stats, _ := summarize(ledger, query, maxSeq)

	borrows := make(map[core.BookIDString]int)
	for _, event := range window {
		borrowed, ok := event.(core.BookBorrowed)
		if !ok || borrowed.OccurredAt.Before(query.BorrowedSince) || borrowed.OccurredAt.After(query.At) {
			continue
		}

		borrows[borrowed.BookID]++
	}

	stats.MostBorrowed = mostBorrowed(ledger, borrows, query.TopN)

	return stats
}

func summarize(ledger history.Ledger, query Query, maxSeq uint) (LibraryStats, map[core.BookIDString]int) {
	stats := LibraryStats{
		Books:          len(ledger.Books()),
		Members:        len(ledger.Members()),
		Loans:          len(ledger.Loans()),
		SequenceNumber: maxSeq,
	}

	borrows := make(map[core.BookIDString]int)

	for _, book := range ledger.Books() {
		stats.Copies += book.Copies()
	}

	for _, loan := range ledger.Loans() {
		borrows[loan.BookID]++

		switch {
		case !loan.IsOpen():
		case loan.Status == core.LoanStatusOverdue || loan.IsOverdueAt(query.At):
			stats.OverdueLoans++
		default:
			stats.ActiveLoans++
		}
	}

	for _, reservation := range ledger.Reservations() {
		if reservation.IsActive() && !reservation.IsExpiredAt(query.At) {
			stats.PendingReservations++
		}
	}

	return stats, borrows
}

func mostBorrowed(ledger history.Ledger, borrows map[core.BookIDString]int, topN int) []BorrowedBook {
	ranked := make([]BorrowedBook, 0, len(borrows))

	for bookID, count := range borrows {
		book, _ := ledger.Book(bookID)
		ranked = append(ranked, BorrowedBook{BookID: bookID, Title: book.Title, Author: book.Author, Borrows: count})
	}

	slices.SortFunc(ranked, func(a, b BorrowedBook) int {
		return cmp.Or(
			cmp.Compare(b.Borrows, a.Borrows),
			cmp.Compare(a.Title, b.Title),
			cmp.Compare(a.BookID, b.BookID),
		)
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	return ranked
}

// BuildEventFilter matches the whole lending history.
func BuildEventFilter() eventlog.Filter {
	return shell.LendingHistoryFilter()
}

// BuildBorrowWindowFilter matches the BookBorrowed events between BorrowedSince and At, both inclusive.
func BuildBorrowWindowFilter(query Query) eventlog.Filter {
	return eventlog.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.BookBorrowedEventType).
		Finalize().
		WithOccurredFrom(query.BorrowedSince).
		WithOccurredUntil(query.At)
}
