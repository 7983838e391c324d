package shell_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/eventlog/memorylog"
	"github.com/AntonStoeckl/library-lending/lending/catalog"
	"github.com/AntonStoeckl/library-lending/lending/coordinator"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/shell"
	. "github.com/AntonStoeckl/library-lending/testutil/lendingfixtures" //nolint:revive
	"github.com/AntonStoeckl/library-lending/testutil/observability/testdoubles"
)

type testEnvironment struct {
	log      memorylog.EventLog
	commands shell.CommandHandler
	catalog  shell.CatalogHandler
	metrics  *testdoubles.MetricsCollectorSpy
	logger   *testdoubles.ContextualLoggerSpy
	now      *time.Time
}

func setupTestEnvironment(t *testing.T) *testEnvironment {
	t.Helper()

	log := memorylog.New()

	return setupTestEnvironmentWith(t, log, log)
}

// setupTestEnvironmentWith lets the command handler write through a wrapped event log.
func setupTestEnvironmentWith(t *testing.T, log memorylog.EventLog, commandLog eventlog.EventLog) *testEnvironment {
	t.Helper()

	now := T0
	env := &testEnvironment{
		log:     log,
		metrics: testdoubles.NewMetricsCollectorSpy(),
		logger:  testdoubles.NewContextualLoggerSpy(),
		now:     &now,
	}

	opts := []shell.Option{
		shell.WithClock(core.ClockFunc(func() time.Time { return *env.now })),
		shell.WithRetryOptions(shell.WithBaseDelay(time.Millisecond), shell.WithJitterFactor(0)),
		shell.WithMetrics(env.metrics),
		shell.WithContextualLogger(env.logger),
	}

	var err error
	env.commands, err = shell.NewCommandHandler(commandLog, opts...)
	require.NoError(t, err)
	env.catalog, err = shell.NewCatalogHandler(log, opts...)
	require.NoError(t, err)

	return env
}

func (env *testEnvironment) advanceTo(at time.Time) {
	*env.now = at
}

func givenBookInCatalog(t *testing.T, env *testEnvironment, copies int) core.BookIDString {
	t.Helper()

	command := catalog.BuildAddBook(uuid.New(), "Dune", "Frank Herbert", 1965, "en", "science fiction", copies, T0)
	_, err := env.catalog.HandleAddBook(t.Context(), command)
	require.NoError(t, err)

	return command.BookID.String()
}

func givenRegisteredMember(t *testing.T, env *testEnvironment, firstName string) core.MemberIDString {
	t.Helper()

	command := catalog.BuildRegisterMember(uuid.New(), firstName, "Tester", firstName+"@example.org", core.RoleMember, T0)
	_, err := env.catalog.HandleRegisterMember(t.Context(), command)
	require.NoError(t, err)

	return command.MemberID.String()
}

func givenBorrowed(t *testing.T, env *testEnvironment, memberID, bookID string) core.LoanIDString {
	t.Helper()

	borrow := coordinator.NewBorrow(memberID, bookID)
	_, err := env.commands.Handle(t.Context(), borrow)
	require.NoError(t, err)

	return borrow.LoanID
}

func Test_CommandHandler_Handle_Borrow_Success(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	bookID := givenBookInCatalog(t, env, 1)
	memberID := givenRegisteredMember(t, env, "Mira")
	eventsBefore := env.log.Len()

	// act
	result, err := env.commands.Handle(t.Context(), coordinator.NewBorrow(memberID, bookID))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, 1, result.EventCount)
	assert.Equal(t, 1, result.RetryAttempts)
	require.NotNil(t, result.Result.Loan)
	assert.Equal(t, core.LoanStatusActive, result.Result.Loan.Status)
	assert.Equal(t, T0.Add(core.LoanPeriod), result.Result.Loan.DueAt)
	assert.Equal(t, eventsBefore+1, env.log.Len())
	assert.True(t, env.logger.HasMessageContaining("info", shell.LogMsgCommandCompleted))

	calls := env.metrics.CounterRecords(shell.CommandHandlerCallsMetric)
	require.NotEmpty(t, calls)
	assert.Equal(t, shell.BuildCommandLabels("BORROW", shell.StatusSuccess), calls[len(calls)-1].Labels)
}

func Test_CommandHandler_Handle_Rejection_AppendsNothing(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	bookID := givenBookInCatalog(t, env, 1)
	holder := givenRegisteredMember(t, env, "Hana")
	other := givenRegisteredMember(t, env, "Otto")
	_, err := env.commands.Handle(t.Context(), coordinator.NewReserve(holder, bookID))
	require.NoError(t, err)
	eventsBefore := env.log.Len()

	// act
	result, err := env.commands.Handle(t.Context(), coordinator.NewBorrow(other, bookID))

	// assert
	assert.ErrorIs(t, err, core.ErrReservedByOther)
	assert.Equal(t, 1, result.RetryAttempts, "rejections are not retried")
	assert.Equal(t, shell.ErrorTypeRejected, result.LastErrorType)
	assert.Equal(t, eventsBefore, env.log.Len())
	assert.True(t, env.logger.HasMessageContaining("warn", shell.LogMsgCommandRejected))

	rejections := env.metrics.CounterRecords(shell.CommandHandlerRejectionsMetric)
	require.Len(t, rejections, 1)
	assert.Equal(t, string(core.ReasonReservedByOther), rejections[0].Labels[shell.LogAttrReason])
}

func Test_CommandHandler_Handle_InvalidAction(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)

	// act
	_, err := env.commands.Handle(t.Context(), coordinator.Borrow{MemberID: "not-a-uuid", BookID: NewID(), LoanID: NewID()})

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidAction)
	assert.Equal(t, 0, env.log.Len())
}

func Test_CommandHandler_Handle_UnknownMember(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	bookID := givenBookInCatalog(t, env, 1)

	// act
	_, err := env.commands.Handle(t.Context(), coordinator.NewBorrow(NewID(), bookID))

	// assert
	assert.ErrorIs(t, err, core.ErrMemberNotFound)
}

func Test_CommandHandler_Handle_CapacityCountsReservationsOfOtherBooks(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	memberID := givenRegisteredMember(t, env, "Mira")

	for range core.MaxActiveReservations {
		bookID := givenBookInCatalog(t, env, 1)
		_, err := env.commands.Handle(t.Context(), coordinator.NewReserve(memberID, bookID))
		require.NoError(t, err)
	}

	fourthBook := givenBookInCatalog(t, env, 1)

	// act
	_, err := env.commands.Handle(t.Context(), coordinator.NewReserve(memberID, fourthBook))

	// assert
	assert.ErrorIs(t, err, core.ErrCapacityExceeded)
}

func Test_CommandHandler_Handle_ReturnPersistsTheOverdueSweepFirst(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	bookID := givenBookInCatalog(t, env, 1)
	memberID := givenRegisteredMember(t, env, "Mira")
	loanID := givenBorrowed(t, env, memberID, bookID)
	env.advanceTo(Days(20))

	// act
	result, err := env.commands.Handle(t.Context(), coordinator.Return{MemberID: memberID, BookID: bookID, LoanID: loanID})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.EventCount)
	require.Len(t, result.Result.Events, 2)
	assert.IsType(t, core.LoanMarkedOverdue{}, result.Result.Events[0])
	returned, ok := result.Result.Events[1].(core.BookReturned)
	require.True(t, ok)
	assert.True(t, returned.WasOverdue)
}

func Test_CommandHandler_Handle_RetriesOnConcurrencyConflict(t *testing.T) {
	// arrange
	log := memorylog.New()
	conflicting := &conflictingEventLog{EventLog: log}
	env := setupTestEnvironmentWith(t, log, conflicting)
	bookID := givenBookInCatalog(t, env, 1)
	memberID := givenRegisteredMember(t, env, "Mira")
	conflicting.conflictsLeft.Store(2)

	// act
	result, err := env.commands.Handle(t.Context(), coordinator.NewBorrow(memberID, bookID))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.RetryAttempts)
	assert.Greater(t, result.TotalRetryDelay, time.Duration(0))
	assert.False(t, result.RetriesExhausted)
	assert.Len(t, env.metrics.CounterRecords(shell.CommandHandlerRetriesMetric), 2)
}

func Test_CommandHandler_Handle_RetriesExhausted(t *testing.T) {
	// arrange
	log := memorylog.New()
	conflicting := &conflictingEventLog{EventLog: log}
	env := setupTestEnvironmentWith(t, log, conflicting)
	bookID := givenBookInCatalog(t, env, 1)
	memberID := givenRegisteredMember(t, env, "Mira")
	conflicting.conflictsLeft.Store(100)
	eventsBefore := log.Len()

	// act
	result, err := env.commands.Handle(t.Context(), coordinator.NewBorrow(memberID, bookID))

	// assert
	assert.ErrorIs(t, err, eventlog.ErrConcurrencyConflict)
	assert.True(t, result.RetriesExhausted)
	assert.Equal(t, shell.ErrorTypeConcurrencyConflict, result.LastErrorType)
	assert.Equal(t, eventsBefore, log.Len())
	assert.True(t, env.logger.HasMessageContaining("error", shell.LogMsgCommandFailed))
}

func Test_CommandHandler_Handle_ConcurrentBorrowsOfTheLastCopy(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	bookID := givenBookInCatalog(t, env, 1)
	members := []string{
		givenRegisteredMember(t, env, "Ada"),
		givenRegisteredMember(t, env, "Bo"),
		givenRegisteredMember(t, env, "Cy"),
	}
	borrows := make([]coordinator.Borrow, 0, len(members))
	for _, memberID := range members {
		borrows = append(borrows, coordinator.NewBorrow(memberID, bookID))
	}

	// act
	errs := make([]error, len(borrows))
	var wg sync.WaitGroup
	for i, borrow := range borrows {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.commands.Handle(context.Background(), borrow)
		}()
	}
	wg.Wait()

	// assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, core.ErrUnavailable)
	}
	assert.Equal(t, 1, succeeded, "exactly one member gets the last copy")
}

func Test_CommandHandler_HandleSweep(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	bookID := givenBookInCatalog(t, env, 2)
	borrower := givenRegisteredMember(t, env, "Mira")
	holder := givenRegisteredMember(t, env, "Hana")
	givenBorrowed(t, env, borrower, bookID)
	_, err := env.commands.Handle(t.Context(), coordinator.NewReserve(holder, bookID))
	require.NoError(t, err)
	env.advanceTo(Days(16))

	// act
	first, firstErr := env.commands.HandleSweep(t.Context(), bookID)
	second, secondErr := env.commands.HandleSweep(t.Context(), bookID)

	// assert
	require.NoError(t, firstErr)
	overdue, expired := first.Result.SweepCounts()
	assert.Equal(t, 1, overdue)
	assert.Equal(t, 1, expired)
	assert.Equal(t, 2, first.EventCount)

	require.NoError(t, secondErr)
	assert.True(t, second.Idempotent, "a second sweep at the same instant changes nothing")
}

func Test_CommandHandler_HandleSweep_UnknownBook(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)

	// act
	_, err := env.commands.HandleSweep(t.Context(), NewID())

	// assert
	assert.ErrorIs(t, err, core.ErrBookNotFound)
}

func Test_NewCommandHandler_FailsWithoutEventLog(t *testing.T) {
	_, err := shell.NewCommandHandler(nil)
	assert.ErrorIs(t, err, shell.ErrNilEventLog)

	_, err = shell.NewCatalogHandler(memorylog.New(), shell.WithClock(nil))
	assert.ErrorIs(t, err, shell.ErrNilClock)
}

// conflictingEventLog fails the next conflictsLeft appends with a concurrency conflict.
type conflictingEventLog struct {
	eventlog.EventLog
	conflictsLeft atomic.Int32
}

func (l *conflictingEventLog) Append(
	ctx context.Context,
	filter eventlog.Filter,
	expectedMaxSequenceNumber eventlog.MaxSequenceNumberUint,
	event eventlog.StorableEvent,
	additionalEvents ...eventlog.StorableEvent,
) error {
	if l.conflictsLeft.Add(-1) >= 0 {
		return eventlog.ErrConcurrencyConflict
	}

	return l.EventLog.Append(ctx, filter, expectedMaxSequenceNumber, event, additionalEvents...)
}
