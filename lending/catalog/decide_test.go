package catalog_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/lending/catalog"
	"github.com/AntonStoeckl/library-lending/lending/core"
	. "github.com/AntonStoeckl/library-lending/testutil/lendingfixtures" //nolint:revive
)

func givenAddBook(bookID uuid.UUID) catalog.AddBook {
	return catalog.BuildAddBook(bookID, "Learning Domain-Driven Design", "Vlad Khononov", 2021, "en", "software", 2, T0)
}

func givenRegisterMember(memberID uuid.UUID) catalog.RegisterMember {
	return catalog.BuildRegisterMember(memberID, "Ada", "Lovelace", "ada@example.org", "", T0)
}

func Test_DecideAddBook_Success_WhenBookNotInCatalog(t *testing.T) {
	// arrange
	bookID := uuid.New()

	// act
	result, err := catalog.DecideAddBook(core.DomainEvents{}, givenAddBook(bookID))

	// assert
	require.NoError(t, err)
	require.True(t, result.HasEventToAppend())
	event, ok := result.Event.(core.BookAddedToCatalog)
	require.True(t, ok)
	assert.Equal(t, bookID.String(), event.BookID)
	assert.Equal(t, 2, event.CopiesTotal)
	assert.Equal(t, T0, event.OccurredAt)
}

func Test_DecideAddBook_Idempotent_WhenBookAlreadyInCatalog(t *testing.T) {
	// arrange
	bookID := uuid.New()
	first, err := catalog.DecideAddBook(core.DomainEvents{}, givenAddBook(bookID))
	require.NoError(t, err)

	// act
	result, err := catalog.DecideAddBook(core.DomainEvents{first.Event}, givenAddBook(bookID))

	// assert
	require.NoError(t, err)
	assert.False(t, result.HasEventToAppend())
	assert.Nil(t, result.Event)
}

func Test_DecideAddBook_InvalidCommand(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c catalog.AddBook) catalog.AddBook
	}{
		{name: "missing id", mutate: func(c catalog.AddBook) catalog.AddBook { c.BookID = uuid.Nil; return c }},
		{name: "missing title", mutate: func(c catalog.AddBook) catalog.AddBook { c.Title = ""; return c }},
		{name: "no copies", mutate: func(c catalog.AddBook) catalog.AddBook { c.CopiesTotal = 0; return c }},
		{name: "bad language", mutate: func(c catalog.AddBook) catalog.AddBook { c.Language = "not a tag!"; return c }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// act
			_, err := catalog.DecideAddBook(core.DomainEvents{}, tt.mutate(givenAddBook(uuid.New())))

			// assert
			assert.ErrorIs(t, err, core.ErrInvalidAction)
		})
	}
}

func Test_DecideRegisterMember_Success_DefaultsToMemberRole(t *testing.T) {
	// arrange
	memberID := uuid.New()

	// act
	result, err := catalog.DecideRegisterMember(core.DomainEvents{}, givenRegisterMember(memberID))

	// assert
	require.NoError(t, err)
	require.True(t, result.HasEventToAppend())
	event, ok := result.Event.(core.MemberRegistered)
	require.True(t, ok)
	assert.Equal(t, memberID.String(), event.MemberID)
	assert.Equal(t, string(core.RoleMember), event.Role)
}

func Test_DecideRegisterMember_Idempotent_WhenAlreadyRegistered(t *testing.T) {
	// arrange
	memberID := uuid.New()
	history := core.DomainEvents{
		core.BuildMemberRegistered(memberID, "Ada", "Lovelace", "ada@example.org", core.RoleLibrarian, Days(-1)),
	}

	// act
	result, err := catalog.DecideRegisterMember(history, givenRegisterMember(memberID))

	// assert
	require.NoError(t, err)
	assert.False(t, result.HasEventToAppend())
}

func Test_DecideRegisterMember_InvalidCommand(t *testing.T) {
	badEmail := givenRegisterMember(uuid.New())
	badEmail.Email = "nope"

	badRole := givenRegisterMember(uuid.New())
	badRole.Role = "janitor"

	for _, command := range []catalog.RegisterMember{badEmail, badRole} {
		_, err := catalog.DecideRegisterMember(core.DomainEvents{}, command)
		assert.ErrorIs(t, err, core.ErrInvalidAction)
	}
}
