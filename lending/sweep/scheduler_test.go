package sweep_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/eventlog/memorylog"
	"github.com/AntonStoeckl/library-lending/lending/catalog"
	"github.com/AntonStoeckl/library-lending/lending/coordinator"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/shell"
	"github.com/AntonStoeckl/library-lending/lending/sweep"
	. "github.com/AntonStoeckl/library-lending/testutil/lendingfixtures" //nolint:revive
	"github.com/AntonStoeckl/library-lending/testutil/observability/testdoubles"
)

type library struct {
	log      memorylog.EventLog
	commands shell.CommandHandler
	now      *time.Time
}

func givenLibrary(t *testing.T) *library {
	t.Helper()

	now := T0
	l := &library{log: memorylog.New(), now: &now}
	clock := shell.WithClock(core.ClockFunc(func() time.Time { return *l.now }))

	var err error
	l.commands, err = shell.NewCommandHandler(l.log, clock)
	require.NoError(t, err)

	return l
}

func (l *library) givenBookLentAndHeld(t *testing.T) core.BookIDString {
	t.Helper()

	catalogHandler, err := shell.NewCatalogHandler(l.log)
	require.NoError(t, err)

	bookID, borrower, holder := uuid.New(), uuid.New(), uuid.New()
	_, err = catalogHandler.HandleAddBook(t.Context(), catalog.BuildAddBook(bookID, "Dune", "Frank Herbert", 1965, "en", "", 2, T0))
	require.NoError(t, err)

	for _, memberID := range []uuid.UUID{borrower, holder} {
		_, err = catalogHandler.HandleRegisterMember(t.Context(),
			catalog.BuildRegisterMember(memberID, "Mira", "", memberID.String()+"@example.org", core.RoleMember, T0))
		require.NoError(t, err)
	}

	_, err = l.commands.Handle(t.Context(), coordinator.NewBorrow(borrower.String(), bookID.String()))
	require.NoError(t, err)
	_, err = l.commands.Handle(t.Context(), coordinator.NewReserve(holder.String(), bookID.String()))
	require.NoError(t, err)

	return bookID.String()
}

func Test_Scheduler_SweepOnce_PersistsStaleStatuses(t *testing.T) {
	// arrange
	l := givenLibrary(t)
	l.givenBookLentAndHeld(t)
	l.givenBookLentAndHeld(t)
	*l.now = Days(16)
	metrics := testdoubles.NewMetricsCollectorSpy()
	scheduler, err := sweep.NewScheduler(l.log, l.commands, sweep.WithConcurrency(2), sweep.WithMetrics(metrics))
	require.NoError(t, err)

	// act
	first, firstErr := scheduler.SweepOnce(t.Context())
	second, secondErr := scheduler.SweepOnce(t.Context())

	// assert
	require.NoError(t, firstErr)
	assert.Equal(t, 2, first.BooksVisited)
	assert.Equal(t, 2, first.LoansMarkedOverdue)
	assert.Equal(t, 2, first.ReservationsExpired)
	assert.Zero(t, first.Failures)
	assert.Len(t, metrics.CounterRecords(sweep.MetricRecordsReclassified), 4)

	require.NoError(t, secondErr)
	assert.Equal(t, 2, second.BooksVisited, "the loans are still open")
	assert.Zero(t, second.LoansMarkedOverdue)
	assert.Zero(t, second.ReservationsExpired)
}

func Test_Scheduler_SweepOnce_NothingToSweep(t *testing.T) {
	// arrange
	l := givenLibrary(t)
	scheduler, err := sweep.NewScheduler(l.log, l.commands)
	require.NoError(t, err)

	// act
	report, err := scheduler.SweepOnce(t.Context())

	// assert
	require.NoError(t, err)
	assert.Zero(t, report.BooksVisited)
}

func Test_Scheduler_SweepOnce_CountsFailures(t *testing.T) {
	// arrange
	l := givenLibrary(t)
	l.givenBookLentAndHeld(t)
	logger := testdoubles.NewContextualLoggerSpy()
	scheduler, err := sweep.NewScheduler(l.log, failingSweepHandler{}, sweep.WithLogger(logger))
	require.NoError(t, err)

	// act
	report, err := scheduler.SweepOnce(t.Context())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, report.BooksVisited)
	assert.Equal(t, 1, report.Failures)
	assert.True(t, logger.HasMessageContaining("error", "sweep of book failed"))
}

func Test_Scheduler_Run_SweepsUntilCanceled(t *testing.T) {
	// arrange
	l := givenLibrary(t)
	l.givenBookLentAndHeld(t)
	counting := &countingSweepHandler{next: l.commands}
	scheduler, err := sweep.NewScheduler(l.log, counting, sweep.WithInterval(5*time.Millisecond))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(t.Context())

	// act
	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	assert.Eventually(t, func() bool { return counting.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	// assert
	select {
	case runErr := <-done:
		assert.NoError(t, runErr)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func Test_NewScheduler_InvalidOptions(t *testing.T) {
	l := givenLibrary(t)

	_, err := sweep.NewScheduler(nil, l.commands)
	assert.ErrorIs(t, err, sweep.ErrNilEventLog)

	_, err = sweep.NewScheduler(l.log, nil)
	assert.ErrorIs(t, err, sweep.ErrNilSweepHandler)

	_, err = sweep.NewScheduler(l.log, l.commands, sweep.WithInterval(0))
	assert.ErrorIs(t, err, sweep.ErrInvalidInterval)

	_, err = sweep.NewScheduler(l.log, l.commands, sweep.WithConcurrency(0))
	assert.ErrorIs(t, err, sweep.ErrInvalidConcurrency)
}

type failingSweepHandler struct{}

func (failingSweepHandler) HandleSweep(context.Context, core.BookIDString) (shell.HandlerResult, error) {
	return shell.HandlerResult{}, errors.New("database is gone")
}

type countingSweepHandler struct {
	next  sweep.SweepHandler
	calls atomic.Int32
}

func (h *countingSweepHandler) HandleSweep(ctx context.Context, bookID core.BookIDString) (shell.HandlerResult, error) {
	h.calls.Add(1)

	return h.next.HandleSweep(ctx, bookID)
}
