package catalogavailability

import (
	"strings"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/lending/coordinator"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/history"
	"github.com/AntonStoeckl/library-lending/lending/shell"
)

// Project derives the availability of every catalog book at the query instant, in catalog order.
//
// Query Logic:
//
//	GIVEN: An instant At and optional Category, Language and Search criteria
//	WHEN: CatalogAvailability query is executed
//	THEN: every book is listed with AVAILABLE, ON_LOAN or HELD
//	EXCLUDES: books not matching every given criterion
//	INCLUDES: stale loans and holds reclassified at At, without persisting anything
//	ERROR: INVARIANT_VIOLATION if the history of a book is inconsistent
func Project(events core.DomainEvents, query Query, maxSeq uint) (CatalogAvailability, error) {
	ledger := history.Project(events)
	books := make([]BookAvailability, 0)

	for _, book := range ledger.Books() {
		if !matches(book, query) {
			continue
		}

		swept, err := coordinator.Sweep(ledger.BookSnapshot(book.ID), query.At)
		if err != nil {
			return CatalogAvailability{}, err
		}

		books = append(books, BookAvailability{
			BookID:      book.ID,
			Title:       book.Title,
			Author:      book.Author,
			Year:        book.Year,
			Language:    book.Language,
			Category:    book.Category,
			CopiesTotal: book.Copies(),
			Status:      swept.Availability.Status,
			FreeCopies:  swept.Availability.FreeCopies,
			OnLoan:      len(swept.Availability.Borrowers),
			Holds:       len(swept.Availability.Holders),
		})
	}

	return CatalogAvailability{
		Books:          books,
		Count:          len(books),
		SequenceNumber: maxSeq,
	}, nil
}

func matches(book core.Book, query Query) bool {
	if query.Category != "" && book.Category != query.Category {
		return false
	}

	if query.Language != "" && book.Language != query.Language {
		return false
	}

	if query.Search == "" {
		return true
	}

	search := strings.ToLower(query.Search)

	return strings.Contains(strings.ToLower(book.Title), search) ||
		strings.Contains(strings.ToLower(book.Author), search)
}

// BuildEventFilter matches the whole lending history.
func BuildEventFilter() eventlog.Filter {
	return shell.LendingHistoryFilter()
}
