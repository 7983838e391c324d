package shell_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/lending/catalog"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/shell"
	. "github.com/AntonStoeckl/library-lending/testutil/lendingfixtures" //nolint:revive
)

func Test_CatalogHandler_HandleAddBook_IsIdempotent(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	command := catalog.BuildAddBook(uuid.New(), "Emma", "Jane Austen", 1815, "en", "classic", 3, T0)

	// act
	first, firstErr := env.catalog.HandleAddBook(t.Context(), command)
	second, secondErr := env.catalog.HandleAddBook(t.Context(), command)

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.False(t, first.Idempotent)
	assert.True(t, second.Idempotent)
	assert.Equal(t, 1, env.log.Len())
	assert.Len(t, env.metrics.CounterRecords(shell.CommandHandlerIdempotentMetric), 1)
}

func Test_CatalogHandler_HandleRegisterMember_InvalidEmail(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	command := catalog.BuildRegisterMember(uuid.New(), "Mira", "Tester", "not-an-email", core.RoleMember, T0)

	// act
	_, err := env.catalog.HandleRegisterMember(t.Context(), command)

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidAction)
	assert.Equal(t, 0, env.log.Len())
}
