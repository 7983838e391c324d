package loans_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/loans"
	. "github.com/AntonStoeckl/library-lending/testutil/lendingfixtures" //nolint:revive
)

func Test_Borrow_Success_WhenBookIsAvailable(t *testing.T) {
	// arrange
	member := GivenMember(t, "ada")
	book := GivenBook(t, "Dune", 1)
	loanID := NewID()
	now := Days(0)

	// act
	borrowed, err := loans.Borrow(member, book, nil, nil, loanID, now)

	// assert
	require.NoError(t, err)
	assert.Equal(t, loanID, borrowed.Loan.ID)
	assert.Equal(t, core.LoanStatusActive, borrowed.Loan.Status)
	assert.Equal(t, now, borrowed.Loan.BorrowedAt)
	assert.Equal(t, Days(15), borrowed.Loan.DueAt)
	assert.Nil(t, borrowed.Loan.ReturnedAt)
	assert.Nil(t, borrowed.ConvertedReservation)
	require.Len(t, borrowed.Events, 1)
	assert.IsType(t, core.BookBorrowed{}, borrowed.Events[0])
}

func Test_Borrow_ConvertsOwnReservation(t *testing.T) {
	// arrange
	member := GivenMember(t, "ada")
	book := GivenBook(t, "Dune", 1)
	hold := GivenActiveReservation(t, book, member, Days(0))

	// act
	borrowed, err := loans.Borrow(member, book, nil, core.Reservations{hold}, NewID(), Days(2))

	// assert
	require.NoError(t, err)
	require.NotNil(t, borrowed.ConvertedReservation)
	assert.Equal(t, hold.ID, borrowed.ConvertedReservation.ID)
	assert.Equal(t, core.ReservationStatusConverted, borrowed.ConvertedReservation.Status)
	require.Len(t, borrowed.Events, 2)
	assert.IsType(t, core.BookBorrowed{}, borrowed.Events[0])
	converted, ok := borrowed.Events[1].(core.ReservationConverted)
	require.True(t, ok)
	assert.Equal(t, borrowed.Loan.ID, converted.LoanID)
}

func Test_Borrow_Success_WhenAnotherCopyIsFree(t *testing.T) {
	// arrange
	member := GivenMember(t, "ada")
	other := GivenMember(t, "bob")
	book := GivenBook(t, "Dune", 2)
	otherLoan := GivenActiveLoan(t, book, other, Days(0))

	// act
	_, err := loans.Borrow(member, book, core.Loans{otherLoan}, nil, NewID(), Days(1))

	// assert
	assert.NoError(t, err)
}

func Test_Borrow_Rejections(t *testing.T) {
	member := GivenMember(t, "ada")
	other := GivenMember(t, "bob")
	book := GivenBook(t, "Dune", 1)

	testCases := []struct {
		name           string
		loans          core.Loans
		reservations   core.Reservations
		expectedReason core.Reason
	}{
		{
			name:           "member is already borrowing the book",
			loans:          core.Loans{GivenActiveLoan(t, book, member, Days(0))},
			expectedReason: core.ReasonAlreadyBorrowed,
		},
		{
			name:           "member is borrowing the book and it is overdue",
			loans:          core.Loans{GivenOverdueLoan(t, book, member, Days(-20))},
			expectedReason: core.ReasonAlreadyBorrowed,
		},
		{
			name:           "the only copy is on loan to another member",
			loans:          core.Loans{GivenActiveLoan(t, book, other, Days(0))},
			expectedReason: core.ReasonUnavailable,
		},
		{
			name:           "another member holds the book",
			reservations:   core.Reservations{GivenActiveReservation(t, book, other, Days(0))},
			expectedReason: core.ReasonReservedByOther,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := loans.Borrow(member, book, tc.loans, tc.reservations, NewID(), Days(1))

			// assert
			require.Error(t, err)
			reason, ok := core.ReasonOf(err)
			require.True(t, ok)
			assert.Equal(t, tc.expectedReason, reason)
		})
	}
}

func Test_Borrow_IgnoresReturnedLoansAndTerminalReservations(t *testing.T) {
	// arrange
	member := GivenMember(t, "ada")
	other := GivenMember(t, "bob")
	book := GivenBook(t, "Dune", 1)
	history := core.Loans{GivenReturnedLoan(t, book, other, Days(-30), Days(-20))}
	holds := core.Reservations{
		GivenReservationWithStatus(t, book, other, Days(-10), core.ReservationStatusCancelled),
		GivenReservationWithStatus(t, book, other, Days(-9), core.ReservationStatusExpired),
	}

	// act
	_, err := loans.Borrow(member, book, history, holds, NewID(), Days(0))

	// assert
	assert.NoError(t, err)
}
