package loans_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/loans"
	. "github.com/AntonStoeckl/library-lending/testutil/lendingfixtures" //nolint:revive
)

func Test_ReclassifyOverdue_MarksOnlyActiveLoansPastDue(t *testing.T) {
	// arrange
	member := GivenMember(t, "ada")
	book := GivenBook(t, "Dune", 4)
	pastDue := GivenActiveLoan(t, book, member, Days(0))
	notYetDue := GivenActiveLoan(t, book, member, Days(10))
	exactlyDue := GivenActiveLoan(t, book, member, Days(1))
	returned := GivenReturnedLoan(t, book, member, Days(-1), Days(2))

	// act
	swept, events := loans.ReclassifyOverdue(core.Loans{pastDue, notYetDue, exactlyDue, returned}, Days(16))

	// assert
	require.Len(t, swept, 4)
	assert.Equal(t, core.LoanStatusOverdue, swept[0].Status)
	assert.Equal(t, core.LoanStatusActive, swept[1].Status)
	assert.Equal(t, core.LoanStatusActive, swept[2].Status, "due date itself is not overdue yet")
	assert.Equal(t, core.LoanStatusReturned, swept[3].Status)
	require.Len(t, events, 1)
	marked, ok := events[0].(core.LoanMarkedOverdue)
	require.True(t, ok)
	assert.Equal(t, pastDue.ID, marked.LoanID)
}

func Test_ReclassifyOverdue_IsAFixedPoint(t *testing.T) {
	// arrange
	member := GivenMember(t, "ada")
	book := GivenBook(t, "Dune", 1)
	input := core.Loans{GivenActiveLoan(t, book, member, Days(0))}
	once, _ := loans.ReclassifyOverdue(input, Days(16))

	// act
	twice, events := loans.ReclassifyOverdue(once, Days(16))

	// assert
	assert.Equal(t, once, twice)
	assert.Empty(t, events)
	assert.Equal(t, core.LoanStatusActive, input[0].Status, "input must not be mutated")
}

func Test_ReclassifyOverdue_NeverRevertsOverdue(t *testing.T) {
	// arrange
	loan := GivenOverdueLoan(t, GivenBook(t, "Dune", 1), GivenMember(t, "ada"), Days(0))

	// act
	swept, events := loans.ReclassifyOverdue(core.Loans{loan}, Days(1))

	// assert
	assert.Equal(t, core.LoanStatusOverdue, swept[0].Status)
	assert.Empty(t, events)
}
