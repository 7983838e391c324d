package memberdashboard_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/features/query/memberdashboard"
	. "github.com/AntonStoeckl/library-lending/testutil/lendingfixtures" //nolint:revive
)

func givenCatalogEvents(t *testing.T, member core.Member, books ...core.Book) core.DomainEvents {
	t.Helper()

	events := core.DomainEvents{
		core.BuildMemberRegistered(uuid.MustParse(member.ID), member.FirstName, member.LastName, member.Email, member.Role, T0),
	}

	for _, book := range books {
		events = append(events, core.BuildBookAddedToCatalog(
			uuid.MustParse(book.ID), book.Title, book.Author, book.Year, book.Language, book.Category, book.CopiesTotal, T0,
		))
	}

	return events
}

func Test_Project_EvaluatesStatusesAtTheQueryInstant(t *testing.T) {
	// arrange
	member := GivenMember(t, "Mira")
	dune, emma, ulysses := GivenBook(t, "Dune", 1), GivenBook(t, "Emma", 1), GivenBook(t, "Ulysses", 1)
	events := givenCatalogEvents(t, member, dune, emma, ulysses)

	late := GivenActiveLoan(t, dune, member, T0)
	recent := GivenActiveLoan(t, emma, member, Days(10))
	returned := GivenActiveLoan(t, ulysses, member, T0)
	hold := GivenActiveReservation(t, ulysses, member, Days(12))
	staleHold := GivenActiveReservation(t, dune, member, Days(1))

	events = append(events,
		core.BuildBookBorrowed(late),
		core.BuildBookBorrowed(recent),
		core.BuildBookBorrowed(returned),
		core.BuildBookReturned(returned, Days(3)),
		core.BuildBookReserved(staleHold),
		core.BuildBookReserved(hold),
	)
	query := memberdashboard.BuildQuery(uuid.MustParse(member.ID), Days(16))

	// act
	dashboard, err := memberdashboard.Project(events, query, 9)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "Mira Tester", dashboard.DisplayName)
	assert.Equal(t, uint(9), dashboard.GetSequenceNumber())
	assert.Equal(t, 1, dashboard.ReturnedLoans)

	require.Len(t, dashboard.OverdueLoans, 1, "due at day 15, not marked by a sweep yet")
	assert.Equal(t, late.ID, dashboard.OverdueLoans[0].LoanID)
	assert.Equal(t, "Dune", dashboard.OverdueLoans[0].Title)
	assert.Equal(t, -1, dashboard.OverdueLoans[0].DaysUntilDue)

	require.Len(t, dashboard.ActiveLoans, 1)
	assert.Equal(t, recent.ID, dashboard.ActiveLoans[0].LoanID)
	assert.Equal(t, 9, dashboard.ActiveLoans[0].DaysUntilDue)

	require.Len(t, dashboard.ActiveReservations, 1, "the hold from day 1 expired on day 8")
	assert.Equal(t, hold.ID, dashboard.ActiveReservations[0].ReservationID)
	assert.Equal(t, "Ulysses", dashboard.ActiveReservations[0].Title)
}

func Test_Project_UnknownMember(t *testing.T) {
	// arrange
	query := memberdashboard.BuildQuery(uuid.New(), T0)

	// act
	_, err := memberdashboard.Project(core.DomainEvents{}, query, 0)

	// assert
	assert.ErrorIs(t, err, core.ErrMemberNotFound)
}
