package postgreslog_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/eventlog/migrations"
	"github.com/AntonStoeckl/library-lending/eventlog/postgreslog"
	"github.com/AntonStoeckl/library-lending/testutil/eventlogtest"
	"github.com/AntonStoeckl/library-lending/testutil/observability/testdoubles"
)

const dsnEnv = "LENDING_TEST_POSTGRES_DSN"

func givenPostgresDSN(t *testing.T) string {
	t.Helper()

	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s is not set", dsnEnv)
	}

	return dsn
}

func givenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, givenPostgresDSN(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	_, err = migrations.Up(ctx, db, migrations.Postgres, nil)
	require.NoError(t, err)

	return pool
}

func cleanUp(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(t.Context(), "TRUNCATE TABLE events RESTART IDENTITY")
	require.NoError(t, err)
}

//nolint:funlen
func Test_PostgresLog_Conformance(t *testing.T) {
	pool := givenMigratedPool(t)
	dsn := givenPostgresDSN(t)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	sqlxDB, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlxDB.Close() })

	factories := []struct {
		name  string
		build func() (postgreslog.EventLog, error)
	}{
		{name: "pgxpool", build: func() (postgreslog.EventLog, error) { return postgreslog.NewFromPGXPool(pool) }},
		{name: "sqldb", build: func() (postgreslog.EventLog, error) { return postgreslog.NewFromSQLDB(sqlDB) }},
		{name: "sqlx", build: func() (postgreslog.EventLog, error) { return postgreslog.NewFromSQLX(sqlxDB) }},
	}

	for _, f := range factories {
		t.Run(f.name, func(t *testing.T) {
			eventlogtest.Run(t, func(t *testing.T) eventlog.EventLog {
				cleanUp(t, pool)

				log, newErr := f.build()
				require.NoError(t, newErr)

				return log
			})
		})
	}
}

func Test_PostgresLog_Replica_ServesEventualReadsOnly(t *testing.T) {
	// arrange
	primary := givenMigratedPool(t)
	cleanUp(t, primary)

	replica, err := pgxpool.New(t.Context(), givenPostgresDSN(t))
	require.NoError(t, err)
	defer replica.Close()

	logger := testdoubles.NewContextualLoggerSpy()
	log, err := postgreslog.NewFromPGXPool(primary, postgreslog.WithReplica(replica), postgreslog.WithContextualLogger(logger))
	require.NoError(t, err)

	bookID := eventlogtest.GivenUniqueID(t)
	scope := eventlogtest.ScopeOf(bookID, "m")
	require.NoError(t, log.Append(t.Context(), scope, 0,
		eventlogtest.GivenEvent(t, "BookAddedToCatalog", eventlogtest.Now, `{"BookID":"`+bookID+`"}`)))

	// act
	events, _, queryErr := log.Query(eventlog.WithEventualConsistency(t.Context()), scope)

	// assert
	require.NoError(t, queryErr)
	assert.Len(t, events, 1)
	assert.True(t, logger.HasMessageContaining("info", "query completed"))
}

func Test_PostgresLog_ReplicaRequiresPGXPool(t *testing.T) {
	// arrange
	pool := givenMigratedPool(t)
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer func() { _ = sqlDB.Close() }()

	// act
	_, err := postgreslog.NewFromSQLDB(sqlDB, postgreslog.WithReplica(pool))

	// assert
	assert.ErrorIs(t, err, postgreslog.ErrReplicaRequiresPGXPool)
}
