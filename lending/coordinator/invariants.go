package coordinator

import (
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/library-lending/lending/availability"
	"github.com/AntonStoeckl/library-lending/lending/core"
)

// ErrInvariantViolation signals that a post-action check failed.
// It is a defect in the rule engines or a non-atomic snapshot, never a user error.
var ErrInvariantViolation = core.Rejection{Reason: core.ReasonInvariantViolation}

type memberBook struct {
	memberID core.MemberIDString
	bookID   core.BookIDString
}

// verify checks the cross-entity invariants on post and the allowed status transitions from pre to post.
func verify(pre Snapshot, post Snapshot, now time.Time) error {
	var violations []error

	violations = append(violations, verifyBook(post)...)
	violations = append(violations, verifyMembers(post)...)
	violations = append(violations, verifyRecords(post, now)...)
	violations = append(violations, verifyTransitions(pre, post)...)

	if len(violations) == 0 {
		return nil
	}

	return errors.Join(append([]error{ErrInvariantViolation}, violations...)...)
}

func verifyBook(post Snapshot) []error {
	var violations []error

	copies := post.Book.Copies()
	openLoans := availability.OpenLoansOf(post.Book.ID, post.Loans)
	activeHolds := availability.ActiveReservationsOf(post.Book.ID, post.Reservations)

	if len(openLoans) > copies {
		violations = append(violations, fmt.Errorf(
			"book %s has %d open loans for %d copies", post.Book.ID, len(openLoans), copies))
	}

	if len(openLoans)+len(activeHolds) > copies {
		violations = append(violations, fmt.Errorf(
			"book %s has %d open loans and %d active reservations for %d copies",
			post.Book.ID, len(openLoans), len(activeHolds), copies))
	}

	borrowers := make(map[core.MemberIDString]bool, len(openLoans))
	for _, loan := range openLoans {
		borrowers[loan.MemberID] = true
	}

	for _, reservation := range activeHolds {
		if borrowers[reservation.MemberID] {
			violations = append(violations, fmt.Errorf(
				"member %s borrows and holds book %s", reservation.MemberID, post.Book.ID))
		}
	}

	for _, loan := range post.Loans {
		if loan.BookID != post.Book.ID {
			violations = append(violations, fmt.Errorf("loan %s belongs to book %s", loan.ID, loan.BookID))
		}
	}

	for _, reservation := range post.Reservations {
		if reservation.BookID != post.Book.ID {
			violations = append(violations, fmt.Errorf(
				"reservation %s belongs to book %s", reservation.ID, reservation.BookID))
		}
	}

	return violations
}

func verifyMembers(post Snapshot) []error {
	var violations []error

	activePerMember := make(map[core.MemberIDString]int)
	activePerMemberBook := make(map[memberBook]int)

	for _, reservation := range post.allReservations() {
		if !reservation.IsActive() {
			continue
		}

		activePerMember[reservation.MemberID]++
		activePerMemberBook[memberBook{memberID: reservation.MemberID, bookID: reservation.BookID}]++
	}

	for memberID, count := range activePerMember {
		if count > core.MaxActiveReservations {
			violations = append(violations, fmt.Errorf(
				"member %s holds %d active reservations", memberID, count))
		}
	}

	for key, count := range activePerMemberBook {
		if count > 1 {
			violations = append(violations, fmt.Errorf(
				"member %s holds %d active reservations for book %s", key.memberID, count, key.bookID))
		}
	}

	return violations
}

func verifyRecords(post Snapshot, now time.Time) []error {
	var violations []error

	for _, loan := range post.Loans {
		if !loan.DueAt.Equal(loan.BorrowedAt.Add(core.LoanPeriod)) {
			violations = append(violations, fmt.Errorf("loan %s is not due one loan period after borrowing", loan.ID))
		}

		if (loan.ReturnedAt != nil) != (loan.Status == core.LoanStatusReturned) {
			violations = append(violations, fmt.Errorf("loan %s has status %s and returnedAt %v",
				loan.ID, loan.Status, loan.ReturnedAt))
		}

		if loan.Status == core.LoanStatusActive && now.After(loan.DueAt) {
			violations = append(violations, fmt.Errorf("loan %s is still ACTIVE after its due date", loan.ID))
		}
	}

	for _, reservation := range post.allReservations() {
		if !reservation.ExpiresAt.Equal(reservation.CreatedAt.Add(core.HoldPeriod)) {
			violations = append(violations, fmt.Errorf(
				"reservation %s does not expire one hold period after creation", reservation.ID))
		}

		if reservation.IsExpiredAt(now) {
			violations = append(violations, fmt.Errorf(
				"reservation %s is still ACTIVE after its expiry", reservation.ID))
		}
	}

	return violations
}

func verifyTransitions(pre Snapshot, post Snapshot) []error {
	var violations []error

	postLoans := make(map[core.LoanIDString]core.LoanStatus, len(post.Loans))
	for _, loan := range post.Loans {
		postLoans[loan.ID] = loan.Status
	}

	for _, loan := range pre.Loans {
		status, found := postLoans[loan.ID]
		if !found {
			violations = append(violations, fmt.Errorf("loan %s disappeared", loan.ID))

			continue
		}

		if !loanTransitionAllowed(loan.Status, status) {
			violations = append(violations, fmt.Errorf("loan %s moved from %s to %s", loan.ID, loan.Status, status))
		}
	}

	postReservations := make(map[core.ReservationIDString]core.ReservationStatus)
	for _, reservation := range post.allReservations() {
		postReservations[reservation.ID] = reservation.Status
	}

	for _, reservation := range pre.allReservations() {
		status, found := postReservations[reservation.ID]
		if !found {
			violations = append(violations, fmt.Errorf("reservation %s disappeared", reservation.ID))

			continue
		}

		if status != reservation.Status && !(reservation.Status == core.ReservationStatusActive && status.IsTerminal()) {
			violations = append(violations, fmt.Errorf(
				"reservation %s moved from %s to %s", reservation.ID, reservation.Status, status))
		}
	}

	return violations
}

func loanTransitionAllowed(from core.LoanStatus, to core.LoanStatus) bool {
	switch {
	case from == to:
		return true
	case from == core.LoanStatusActive:
		return to == core.LoanStatusOverdue || to == core.LoanStatusReturned
	case from == core.LoanStatusOverdue:
		return to == core.LoanStatusReturned
	default:
		return false
	}
}
