package config

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver for the sqldb and sqlx adapters
)

const (
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
	defaultConnectTimeout    = time.Second * 5
)

var (
	ErrParsingDSNFailed   = errors.New("parsing postgres dsn failed")
	ErrConnectingFailed   = errors.New("connecting to postgres failed")
	ErrPingingFailed      = errors.New("pinging postgres failed")
	ErrMissingReplicaPool = errors.New("replica dsn is set but the adapter does not support replicas")
)

// PGXPoolConfig builds a pgxpool.Config for dsn with the configured pool size.
func (c PostgresConfig) PGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrParsingDSNFailed, err)
	}

	poolConfig.MaxConns = c.MaxConns
	poolConfig.MinConns = c.MinConns
	poolConfig.MaxConnLifetime = defaultMaxConnLifetime
	poolConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	poolConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return poolConfig, nil
}

// OpenPGXPools connects the primary pool and, if ReplicaDSN is set, the replica pool.
// The replica is nil when no ReplicaDSN is configured.
func (c PostgresConfig) OpenPGXPools(ctx context.Context) (*pgxpool.Pool, *pgxpool.Pool, error) {
	primary, err := c.openPGXPool(ctx, c.DSN)
	if err != nil {
		return nil, nil, err
	}

	if c.ReplicaDSN == "" {
		return primary, nil, nil
	}

	replica, err := c.openPGXPool(ctx, c.ReplicaDSN)
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	return primary, replica, nil
}

func (c PostgresConfig) openPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := c.PGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, errors.Join(ErrPingingFailed, pingErr)
	}

	return pool, nil
}

// OpenSQLDB opens a lib/pq backed *sql.DB sized like the pgx pool.
func (c PostgresConfig) OpenSQLDB(ctx context.Context) (*sql.DB, error) {
	if c.ReplicaDSN != "" {
		return nil, ErrMissingReplicaPool
	}

	db, err := sql.Open("postgres", c.DSN)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	c.configureSQLDB(db)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrPingingFailed, pingErr)
	}

	return db, nil
}

// OpenSQLX opens a lib/pq backed *sqlx.DB sized like the pgx pool.
func (c PostgresConfig) OpenSQLX(ctx context.Context) (*sqlx.DB, error) {
	if c.ReplicaDSN != "" {
		return nil, ErrMissingReplicaPool
	}

	db, err := sqlx.Open("postgres", c.DSN)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	c.configureSQLDB(db.DB)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrPingingFailed, pingErr)
	}

	return db, nil
}

func (c PostgresConfig) configureSQLDB(db *sql.DB) {
	db.SetMaxOpenConns(int(c.MaxConns))
	db.SetMaxIdleConns(int(c.MinConns))
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}
