// Package lendingfixtures provides test fixtures for the lending packages.
package lendingfixtures

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-lending/lending/core"
)

// T0 is a fixed instant tests measure their timelines from.
var T0 = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

// Days returns the instant n days after T0.
func Days(n int) time.Time {
	return T0.Add(time.Duration(n) * 24 * time.Hour)
}

// GivenMember builds a registered member with a fresh ID.
func GivenMember(t testing.TB, firstName string) core.Member {
	t.Helper()

	return core.Member{
		ID:        uuid.NewString(),
		FirstName: firstName,
		LastName:  "Tester",
		Email:     firstName + "@example.org",
		Role:      core.RoleMember,
		JoinedAt:  T0.Add(-30 * 24 * time.Hour),
	}
}

// GivenBook builds a catalog book with a fresh ID and the given number of copies.
func GivenBook(t testing.TB, title string, copies int) core.Book {
	t.Helper()

	return core.Book{
		ID:          uuid.NewString(),
		Title:       title,
		Author:      "Jane Author",
		Year:        1999,
		Language:    "en",
		Category:    "fiction",
		CopiesTotal: copies,
	}
}

// GivenActiveLoan builds an ACTIVE loan of book to member borrowed at borrowedAt.
func GivenActiveLoan(t testing.TB, book core.Book, member core.Member, borrowedAt time.Time) core.Loan {
	t.Helper()

	return core.BuildActiveLoan(uuid.NewString(), book.ID, member.ID, borrowedAt)
}

// GivenOverdueLoan builds a loan already reclassified as OVERDUE.
func GivenOverdueLoan(t testing.TB, book core.Book, member core.Member, borrowedAt time.Time) core.Loan {
	t.Helper()

	return GivenActiveLoan(t, book, member, borrowedAt).WithStatus(core.LoanStatusOverdue)
}

// GivenReturnedLoan builds a loan that was returned at returnedAt.
func GivenReturnedLoan(
	t testing.TB,
	book core.Book,
	member core.Member,
	borrowedAt time.Time,
	returnedAt time.Time,
) core.Loan {

	t.Helper()

	return GivenActiveLoan(t, book, member, borrowedAt).WithReturnedAt(returnedAt)
}

// GivenActiveReservation builds an ACTIVE reservation of book by member created at createdAt.
func GivenActiveReservation(
	t testing.TB,
	book core.Book,
	member core.Member,
	createdAt time.Time,
) core.Reservation {

	t.Helper()

	return core.BuildActiveReservation(uuid.NewString(), book.ID, member.ID, createdAt)
}

// GivenReservationWithStatus builds a reservation of book by member in the given status.
func GivenReservationWithStatus(
	t testing.TB,
	book core.Book,
	member core.Member,
	createdAt time.Time,
	status core.ReservationStatus,
) core.Reservation {

	t.Helper()

	return GivenActiveReservation(t, book, member, createdAt).WithStatus(status)
}

// NewID returns a fresh random ID string.
func NewID() string {
	return uuid.NewString()
}
