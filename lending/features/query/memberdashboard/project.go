package memberdashboard

import (
	"slices"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/history"
	"github.com/AntonStoeckl/library-lending/lending/shell"
)

// Project builds the member's dashboard from the history.
//
// Query Logic:
//
//	GIVEN: A member with MemberID and an instant At
//	WHEN: MemberDashboard query is executed
//	THEN: open loans not due at At are active, open loans past due at At are overdue
//	INCLUDES: ACTIVE reservations that have not expired at At
//	EXCLUDES: returned loans (only counted) and reservations of other members
//	ERROR: MEMBER_NOT_FOUND if the member is not registered
func Project(events core.DomainEvents, query Query, maxSeq uint) (MemberDashboard, error) {
	ledger := history.Project(events)
	memberID := query.MemberID.String()

	member, found := ledger.Member(memberID)
	if !found {
		return MemberDashboard{}, core.Reject(core.ReasonMemberNotFound, "member "+memberID)
	}

	dashboard := MemberDashboard{
		MemberID:           member.ID,
		DisplayName:        member.DisplayName(),
		ActiveLoans:        make([]LoanInfo, 0),
		OverdueLoans:       make([]LoanInfo, 0),
		ActiveReservations: make([]ReservationInfo, 0),
		SequenceNumber:     maxSeq,
	}

	for _, loan := range ledger.LoansOfMember(memberID) {
		switch {
		case !loan.IsOpen():
			dashboard.ReturnedLoans++
		case loan.Status == core.LoanStatusOverdue || loan.IsOverdueAt(query.At):
			dashboard.OverdueLoans = append(dashboard.OverdueLoans, loanInfo(ledger, loan, query))
		default:
			dashboard.ActiveLoans = append(dashboard.ActiveLoans, loanInfo(ledger, loan, query))
		}
	}

	for _, reservation := range ledger.ReservationsOfMember(memberID) {
		if reservation.IsActive() && !reservation.IsExpiredAt(query.At) {
			dashboard.ActiveReservations = append(dashboard.ActiveReservations, ReservationInfo{
				ReservationID: reservation.ID,
				BookID:        reservation.BookID,
				Title:         titleOf(ledger, reservation.BookID),
				CreatedAt:     reservation.CreatedAt,
				ExpiresAt:     reservation.ExpiresAt,
			})
		}
	}

	byDueAt := func(a, b LoanInfo) int { return a.DueAt.Compare(b.DueAt) }
	slices.SortStableFunc(dashboard.ActiveLoans, byDueAt)
	slices.SortStableFunc(dashboard.OverdueLoans, byDueAt)
	slices.SortStableFunc(dashboard.ActiveReservations, func(a, b ReservationInfo) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})

	return dashboard, nil
}

func loanInfo(ledger history.Ledger, loan core.Loan, query Query) LoanInfo {
	return LoanInfo{
		LoanID:       loan.ID,
		BookID:       loan.BookID,
		Title:        titleOf(ledger, loan.BookID),
		BorrowedAt:   loan.BorrowedAt,
		DueAt:        loan.DueAt,
		DaysUntilDue: loan.DaysUntilDue(query.At),
	}
}

func titleOf(ledger history.Ledger, bookID core.BookIDString) string {
	book, _ := ledger.Book(bookID)

	return book.Title
}

// BuildEventFilter matches the member's registration and lending events, plus the whole catalog for book titles.
func BuildEventFilter(query Query) eventlog.Filter {
	lendingTypes := core.LendingEventTypes()
	memberID := query.MemberID.String()

	return eventlog.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.MemberRegisteredEventType, lendingTypes...).
		AndAnyPredicateOf(eventlog.P(shell.PayloadKeyMemberID, memberID)).
		OrMatching().
		AnyEventTypeOf(core.BookAddedToCatalogEventType).
		Finalize()
}
