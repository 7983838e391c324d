package history_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/lending/coordinator"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/history"
	. "github.com/AntonStoeckl/library-lending/testutil/lendingfixtures" //nolint:revive
)

func givenCatalogEvents(t *testing.T, book core.Book, members ...core.Member) core.DomainEvents {
	t.Helper()

	events := core.DomainEvents{
		core.BuildBookAddedToCatalog(uuid.MustParse(book.ID), book.Title, book.Author, book.Year, book.Language, book.Category, book.CopiesTotal, Days(-10)),
	}

	for _, m := range members {
		events = append(events, core.BuildMemberRegistered(uuid.MustParse(m.ID), m.FirstName, m.LastName, m.Email, m.Role, Days(-10)))
	}

	return events
}

func Test_Project_ReplaysCoordinatorResults(t *testing.T) {
	// arrange
	m1 := GivenMember(t, "m1")
	m2 := GivenMember(t, "m2")
	book := GivenBook(t, "Dune", 2)
	events := givenCatalogEvents(t, book, m1, m2)

	steps := []struct {
		at     int
		member core.Member
		action func(snapshot coordinator.Snapshot) coordinator.Action
	}{
		{at: 0, member: m1, action: func(_ coordinator.Snapshot) coordinator.Action { return coordinator.NewBorrow(m1.ID, book.ID) }},
		{at: 1, member: m2, action: func(_ coordinator.Snapshot) coordinator.Action { return coordinator.NewReserve(m2.ID, book.ID) }},
		{at: 3, member: m1, action: func(s coordinator.Snapshot) coordinator.Action {
			return coordinator.Return{MemberID: m1.ID, BookID: book.ID, LoanID: s.Loans[0].ID}
		}},
		{at: 4, member: m2, action: func(_ coordinator.Snapshot) coordinator.Action { return coordinator.NewBorrow(m2.ID, book.ID) }},
	}

	// act
	var last coordinator.Result
	for _, step := range steps {
		snapshot := history.Project(events).Snapshot(book.ID, step.member.ID)

		result, err := coordinator.Apply(step.action(snapshot), snapshot, Days(step.at))
		require.NoError(t, err)

		events = append(events, result.Events...)
		last = result
	}

	ledger := history.Project(events)

	// assert
	projected := ledger.Snapshot(book.ID, m2.ID)
	assert.Equal(t, last.Snapshot.Loans, projected.Loans)
	assert.Equal(t, last.Snapshot.Reservations, projected.Reservations)

	require.Len(t, ledger.Loans(), 2)
	assert.Equal(t, core.LoanStatusReturned, ledger.Loans()[0].Status)
	assert.Equal(t, core.LoanStatusActive, ledger.Loans()[1].Status)
	require.Len(t, ledger.Reservations(), 1)
	assert.Equal(t, core.ReservationStatusConverted, ledger.Reservations()[0].Status)
}

func Test_Project_SnapshotSplitsReservationsByBook(t *testing.T) {
	// arrange
	m1 := GivenMember(t, "m1")
	dune := GivenBook(t, "Dune", 1)
	emma := GivenBook(t, "Emma", 1)
	events := append(givenCatalogEvents(t, dune, m1), givenCatalogEvents(t, emma)...)
	events = append(events,
		core.BuildBookReserved(GivenActiveReservation(t, dune, m1, Days(0))),
		core.BuildBookReserved(GivenActiveReservation(t, emma, m1, Days(0))),
	)

	// act
	snapshot := history.Project(events).Snapshot(dune.ID, m1.ID)

	// assert
	assert.Equal(t, dune.ID, snapshot.Book.ID)
	assert.Equal(t, m1.ID, snapshot.Member.ID)
	require.Len(t, snapshot.Reservations, 1)
	assert.Equal(t, dune.ID, snapshot.Reservations[0].BookID)
	require.Len(t, snapshot.MemberReservations, 1)
	assert.Equal(t, emma.ID, snapshot.MemberReservations[0].BookID)
	assert.Len(t, snapshot.MemberActiveReservations(), 2)
}

func Test_Project_IgnoresUnknownAndRepeatedRecords(t *testing.T) {
	// arrange
	m1 := GivenMember(t, "m1")
	book := GivenBook(t, "Dune", 2)
	events := givenCatalogEvents(t, book, m1)
	events = append(events, givenCatalogEvents(t, book, m1)...)

	stray := GivenActiveLoan(t, book, m1, Days(0))
	events = append(events,
		core.BuildBookReturned(stray, Days(1)),
		core.BuildReservationCancelled(GivenActiveReservation(t, book, m1, Days(0)), Days(1)),
	)

	// act
	ledger := history.Project(events)

	// assert
	assert.Len(t, ledger.Books(), 1)
	assert.Len(t, ledger.Members(), 1)
	assert.Empty(t, ledger.Loans())
	assert.Empty(t, ledger.Reservations())

	unknown := ledger.Snapshot(NewID(), NewID())
	assert.True(t, unknown.Book.IsZero())
	assert.True(t, unknown.Member.IsZero())
}

func Test_Ledger_BooksWithOpenRecords(t *testing.T) {
	// arrange
	m1 := GivenMember(t, "m1")
	onLoan := GivenBook(t, "On loan", 1)
	held := GivenBook(t, "Held", 1)
	idle := GivenBook(t, "Idle", 1)
	returned := GivenBook(t, "Returned", 1)

	events := givenCatalogEvents(t, onLoan, m1)
	events = append(events, givenCatalogEvents(t, held)...)
	events = append(events, givenCatalogEvents(t, idle)...)
	events = append(events, givenCatalogEvents(t, returned)...)

	returnedLoan := GivenActiveLoan(t, returned, m1, Days(0))
	events = append(events,
		core.BuildBookBorrowed(GivenActiveLoan(t, onLoan, m1, Days(0))),
		core.BuildBookReserved(GivenActiveReservation(t, held, m1, Days(0))),
		core.BuildBookBorrowed(returnedLoan),
		core.BuildBookReturned(returnedLoan, Days(2)),
	)

	// act
	bookIDs := history.Project(events).BooksWithOpenRecords()

	// assert
	assert.Equal(t, []core.BookIDString{onLoan.ID, held.ID}, bookIDs)
}
