package overdueloans

import (
	"slices"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/history"
	"github.com/AntonStoeckl/library-lending/lending/shell"
)

// Project lists the loans overdue at the query instant, most overdue first.
//
// Query Logic:
//
//	GIVEN: An instant At
//	WHEN: OverdueLoans query is executed
//	THEN: every open loan with a due date before At is listed
//	INCLUDES: loans a sweep has not marked yet
//	EXCLUDES: returned loans
func Project(events core.DomainEvents, query Query, maxSeq uint) OverdueLoans {
	ledger := history.Project(events)
	loans := make([]OverdueLoan, 0)

	for _, loan := range ledger.Loans() {
		if !loan.IsOverdueAt(query.At) && loan.Status != core.LoanStatusOverdue {
			continue
		}

		book, _ := ledger.Book(loan.BookID)
		member, _ := ledger.Member(loan.MemberID)

		loans = append(loans, OverdueLoan{
			LoanID:        loan.ID,
			BookID:        loan.BookID,
			Title:         book.Title,
			MemberID:      loan.MemberID,
			MemberName:    member.DisplayName(),
			MemberEmail:   member.Email,
			BorrowedAt:    loan.BorrowedAt,
			DueAt:         loan.DueAt,
			DaysOverdue:   max(-loan.DaysUntilDue(query.At), 0),
			MarkedBySweep: loan.Status == core.LoanStatusOverdue,
		})
	}

	slices.SortStableFunc(loans, func(a, b OverdueLoan) int {
		return a.DueAt.Compare(b.DueAt)
	})

	return OverdueLoans{
		Loans:          loans,
		Count:          len(loans),
		SequenceNumber: maxSeq,
	}
}

// BuildEventFilter matches the whole lending history.
func BuildEventFilter() eventlog.Filter {
	return shell.LendingHistoryFilter()
}
