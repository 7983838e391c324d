package librarystats_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/eventlog/memorylog"
	"github.com/AntonStoeckl/library-lending/lending/catalog"
	"github.com/AntonStoeckl/library-lending/lending/coordinator"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/features/query/librarystats"
	"github.com/AntonStoeckl/library-lending/lending/shell"
	. "github.com/AntonStoeckl/library-lending/testutil/lendingfixtures" //nolint:revive
)

func givenRegisteredMember(t *testing.T, catalogHandler shell.CatalogHandler, firstName string) string {
	t.Helper()

	memberID := uuid.New()
	_, err := catalogHandler.HandleRegisterMember(t.Context(),
		catalog.BuildRegisterMember(memberID, firstName, "Tester", firstName+"@example.org", core.RoleMember, T0))
	require.NoError(t, err)

	return memberID.String()
}

func givenCatalogBook(t *testing.T, catalogHandler shell.CatalogHandler, title string, copies int) string {
	t.Helper()

	bookID := uuid.New()
	_, err := catalogHandler.HandleAddBook(t.Context(),
		catalog.BuildAddBook(bookID, title, "Some Author", 2000, "en", "fiction", copies, T0))
	require.NoError(t, err)

	return bookID.String()
}

func givenBorrowAt(t *testing.T, log memorylog.EventLog, at time.Time, memberID string, bookID string) {
	t.Helper()

	commands, err := shell.NewCommandHandler(log, shell.WithClock(core.FixedClock{At: at}))
	require.NoError(t, err)
	_, err = commands.Handle(t.Context(), coordinator.NewBorrow(memberID, bookID))
	require.NoError(t, err)
}

func Test_QueryHandler_Handle_RanksBorrowsWithinTheWindow(t *testing.T) {
	// setup
	log := memorylog.New()
	catalogHandler, err := shell.NewCatalogHandler(log)
	require.NoError(t, err)
	handler := librarystats.NewQueryHandler(log)

	// arrange
	mira := givenRegisteredMember(t, catalogHandler, "Mira")
	otto := givenRegisteredMember(t, catalogHandler, "Otto")
	dune := givenCatalogBook(t, catalogHandler, "Dune", 2)
	emma := givenCatalogBook(t, catalogHandler, "Emma", 1)

	givenBorrowAt(t, log, T0, mira, dune)
	givenBorrowAt(t, log, T0, otto, dune)
	givenBorrowAt(t, log, Days(10), mira, emma)

	query := librarystats.BuildQuery(Days(12), 0)

	// act
	allTime, allTimeErr := handler.Handle(t.Context(), query)
	windowed, windowedErr := handler.Handle(t.Context(), query.WithBorrowedSince(Days(5)))
	empty, emptyErr := handler.Handle(t.Context(), librarystats.BuildQuery(Days(8), 0).WithBorrowedSince(Days(5)))

	// assert
	require.NoError(t, allTimeErr)
	require.Len(t, allTime.MostBorrowed, 2)
	assert.Equal(t, "Dune", allTime.MostBorrowed[0].Title)
	assert.Equal(t, 2, allTime.MostBorrowed[0].Borrows)

	require.NoError(t, windowedErr)
	assert.Equal(t, 3, windowed.Loans, "totals cover the whole history")
	require.Len(t, windowed.MostBorrowed, 1)
	assert.Equal(t, emma, windowed.MostBorrowed[0].BookID)
	assert.Equal(t, "Emma", windowed.MostBorrowed[0].Title)
	assert.Equal(t, 1, windowed.MostBorrowed[0].Borrows)

	require.NoError(t, emptyErr)
	assert.Empty(t, empty.MostBorrowed, "the day 10 borrow lies after the query instant")
}
