package memberdashboard_test

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
	"github.com/AntonStoeckl/library-lending/lending/features/query/memberdashboard"
	"github.com/AntonStoeckl/library-lending/lending/shell"
	. "github.com/AntonStoeckl/library-lending/testutil/lendingfixtures" //nolint:revive
)

func Test_QueryHandler_Handle_OnlyShowsTheMembersRecords(t *testing.T) {
	// setup
	log := memorylog.New()
	clock := shell.WithClock(core.FixedClock{At: T0})
	catalogHandler, err := shell.NewCatalogHandler(log)
	require.NoError(t, err)
	commands, err := shell.NewCommandHandler(log, clock)
	require.NoError(t, err)

	// arrange
	bookID, memberID, otherID := uuid.New(), uuid.New(), uuid.New()
	_, err = catalogHandler.HandleAddBook(t.Context(), catalog.BuildAddBook(bookID, "Dune", "Frank Herbert", 1965, "en", "", 2, T0))
	require.NoError(t, err)
	for _, id := range []uuid.UUID{memberID, otherID} {
		_, err = catalogHandler.HandleRegisterMember(t.Context(),
			catalog.BuildRegisterMember(id, "Mira", "Tester", "mira@example.org", core.RoleMember, T0))
		require.NoError(t, err)
	}
	_, err = commands.Handle(t.Context(), coordinator.NewBorrow(memberID.String(), bookID.String()))
	require.NoError(t, err)
	_, err = commands.Handle(t.Context(), coordinator.NewBorrow(otherID.String(), bookID.String()))
	require.NoError(t, err)

	handler := memberdashboard.NewQueryHandler(log)

	// act
	dashboard, err := handler.Handle(t.Context(), memberdashboard.BuildQuery(memberID, T0.Add(time.Hour)))

	// assert
	require.NoError(t, err)
	require.Len(t, dashboard.ActiveLoans, 1)
	assert.Equal(t, "Dune", dashboard.ActiveLoans[0].Title)
	assert.Equal(t, 15, dashboard.ActiveLoans[0].DaysUntilDue)
	assert.Empty(t, dashboard.OverdueLoans)
	assert.Positive(t, dashboard.SequenceNumber)
}
