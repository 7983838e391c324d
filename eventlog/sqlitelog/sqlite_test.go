package sqlitelog_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/eventlog/migrations"
	"github.com/AntonStoeckl/library-lending/eventlog/sqlitelog"
	"github.com/AntonStoeckl/library-lending/testutil/eventlogtest"
	"github.com/AntonStoeckl/library-lending/testutil/observability/testdoubles"
)

func givenMigratedDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlitelog.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = migrations.Up(t.Context(), db, migrations.SQLite, nil)
	require.NoError(t, err)

	return db
}

func Test_SQLiteLog_Conformance(t *testing.T) {
	eventlogtest.Run(t, func(t *testing.T) eventlog.EventLog {
		log, err := sqlitelog.New(givenMigratedDB(t))
		require.NoError(t, err)

		return log
	})
}

func Test_SQLiteLog_New_FailsFast(t *testing.T) {
	_, err := sqlitelog.New(nil)
	assert.ErrorIs(t, err, eventlog.ErrNilDatabaseConnection)

	_, err = sqlitelog.New(givenMigratedDB(t), sqlitelog.WithTableName(""))
	assert.ErrorIs(t, err, eventlog.ErrEmptyTableNameSupplied)
}

func Test_SQLiteLog_Query_FailsForUnknownTable(t *testing.T) {
	// arrange
	log, err := sqlitelog.New(givenMigratedDB(t), sqlitelog.WithTableName("nope"))
	require.NoError(t, err)

	// act
	_, _, queryErr := log.Query(t.Context(), eventlog.Filter{})

	// assert
	assert.ErrorIs(t, queryErr, eventlog.ErrQueryingEventsFailed)
}

func Test_SQLiteLog_ObservesOperations(t *testing.T) {
	// arrange
	ctx := t.Context()
	logger := testdoubles.NewContextualLoggerSpy()
	metrics := testdoubles.NewMetricsCollectorSpy()
	log, err := sqlitelog.New(givenMigratedDB(t), sqlitelog.WithContextualLogger(logger), sqlitelog.WithMetrics(metrics))
	require.NoError(t, err)

	bookID := eventlogtest.GivenUniqueID(t)
	scope := eventlogtest.ScopeOf(bookID, "m")
	event := eventlogtest.GivenEvent(t, "BookBorrowed", eventlogtest.Now, `{"BookID":"`+bookID+`","MemberID":"m"}`)

	// act
	require.NoError(t, log.Append(ctx, scope, 0, event))
	conflictErr := log.Append(ctx, scope, 0, event)
	_, _, queryErr := log.Query(ctx, scope)

	// assert
	assert.ErrorIs(t, conflictErr, eventlog.ErrConcurrencyConflict)
	require.NoError(t, queryErr)

	assert.True(t, logger.HasMessageContaining("debug", "executed sql for: append"))
	assert.True(t, logger.HasMessageContaining("info", "events appended"))
	assert.True(t, logger.HasMessageContaining("info", "concurrency conflict detected"))
	assert.True(t, logger.HasMessageContaining("info", "query completed"))

	assert.Len(t, metrics.CounterRecords(eventlog.MetricEventsAppended), 1)
	assert.Len(t, metrics.CounterRecords(eventlog.MetricConcurrencyConflict), 1)
	require.Len(t, metrics.ValueRecords(eventlog.MetricEventsQueried), 1)
	assert.InDelta(t, 1.0, metrics.ValueRecords(eventlog.MetricEventsQueried)[0].Value, 0.001)
	assert.Equal(t, "sqlite", metrics.DurationRecords(eventlog.MetricQueryDuration)[0].Labels[eventlog.LabelEngine])
}

func Test_DSN_ConfiguresImmediateTransactions(t *testing.T) {
	dsn := sqlitelog.DSN("/tmp/x.db")

	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "_txlock=immediate")
	assert.Contains(t, dsn, "busy_timeout%285000%29")
}
