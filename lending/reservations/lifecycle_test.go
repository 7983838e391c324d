package reservations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/reservations"
	. "github.com/AntonStoeckl/library-lending/testutil/lendingfixtures" //nolint:revive
)

func Test_Cancel_Success(t *testing.T) {
	// arrange
	hold := GivenActiveReservation(t, GivenBook(t, "Dune", 1), GivenMember(t, "ada"), Days(0))

	// act
	cancelled, err := reservations.Cancel(hold, Days(1))

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.ReservationStatusCancelled, cancelled.Reservation.Status)
	assert.Equal(t, hold.ID, cancelled.Event.ReservationID)
	assert.Equal(t, Days(1), cancelled.Event.OccurredAt)
}

func Test_Cancel_And_Convert_RejectTerminalReservations(t *testing.T) {
	book := GivenBook(t, "Dune", 1)
	member := GivenMember(t, "ada")

	for _, status := range []core.ReservationStatus{
		core.ReservationStatusExpired,
		core.ReservationStatusConverted,
		core.ReservationStatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			// arrange
			hold := GivenReservationWithStatus(t, book, member, Days(0), status)

			// act
			_, cancelErr := reservations.Cancel(hold, Days(1))
			_, convertErr := reservations.Convert(hold, NewID(), Days(1))

			// assert
			assert.ErrorIs(t, cancelErr, core.ErrNotActive)
			assert.ErrorIs(t, convertErr, core.ErrNotActive)
		})
	}
}

func Test_Convert_Success(t *testing.T) {
	// arrange
	hold := GivenActiveReservation(t, GivenBook(t, "Dune", 1), GivenMember(t, "ada"), Days(0))
	loanID := NewID()

	// act
	converted, err := reservations.Convert(hold, loanID, Days(2))

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.ReservationStatusConverted, converted.Reservation.Status)
	assert.Equal(t, loanID, converted.Event.LoanID)
}

func Test_ReclassifyExpired_ScenarioA(t *testing.T) {
	// arrange
	book := GivenBook(t, "Dune", 1)
	member := GivenMember(t, "ada")
	hold := GivenActiveReservation(t, book, member, Days(0))

	// act
	swept, events := reservations.ReclassifyExpired(core.Reservations{hold}, Days(8))

	// assert
	require.Len(t, swept, 1)
	assert.Equal(t, core.ReservationStatusExpired, swept[0].Status)
	require.Len(t, events, 1)
	expired, ok := events[0].(core.ReservationExpired)
	require.True(t, ok)
	assert.Equal(t, hold.ID, expired.ReservationID)
	assert.Equal(t, member.ID, expired.MemberID)
}

func Test_ReclassifyExpired_LeavesOthersAlone_AndIsAFixedPoint(t *testing.T) {
	// arrange
	book := GivenBook(t, "Dune", 1)
	member := GivenMember(t, "ada")
	input := core.Reservations{
		GivenActiveReservation(t, book, member, Days(5)),
		GivenReservationWithStatus(t, book, member, Days(0), core.ReservationStatusConverted),
		GivenReservationWithStatus(t, book, member, Days(0), core.ReservationStatusCancelled),
		GivenActiveReservation(t, book, member, Days(0)),
	}

	// act
	once, firstEvents := reservations.ReclassifyExpired(input, Days(8))
	twice, secondEvents := reservations.ReclassifyExpired(once, Days(8))

	// assert
	assert.Equal(t, core.ReservationStatusActive, once[0].Status)
	assert.Equal(t, core.ReservationStatusConverted, once[1].Status)
	assert.Equal(t, core.ReservationStatusCancelled, once[2].Status)
	assert.Equal(t, core.ReservationStatusExpired, once[3].Status)
	assert.Len(t, firstEvents, 1)
	assert.Equal(t, once, twice)
	assert.Empty(t, secondEvents)
}
