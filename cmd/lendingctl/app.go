package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending/eventlog"
	"github.com/AntonStoeckl/library-lending/eventlog/memorylog"
	"github.com/AntonStoeckl/library-lending/eventlog/migrations"
	"github.com/AntonStoeckl/library-lending/eventlog/postgreslog"
	"github.com/AntonStoeckl/library-lending/eventlog/sqlitelog"
	"github.com/AntonStoeckl/library-lending/internal/config"
	"github.com/AntonStoeckl/library-lending/lending/shell"
	"github.com/AntonStoeckl/library-lending/lending/shell/promadapter"
)

const metricsNamespace = "lending"

// ErrUnsupportedDriver is returned for a store driver lendingctl cannot open.
var ErrUnsupportedDriver = errors.New("unsupported store driver")

// app carries what every subcommand shares: configuration, logger and metrics.
type app struct {
	configFile string
	output     string

	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *promadapter.MetricsCollector
}

// store is an opened event log plus the *sql.DB migrations run on, if any.
type store struct {
	eventLog    eventlog.EventLog
	migrationDB *sql.DB
	dialect     migrations.Dialect
	closers     []func() error
}

func (a *app) init(cmd *cobra.Command) error {
	if err := validOutputFormat(a.output); err != nil {
		return err
	}

	var opts []config.LoadOption
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(cfg.Log, cmd.ErrOrStderr())

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = promadapter.NewMetricsCollector(a.registry, promadapter.WithNamespace(metricsNamespace))

	return nil
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOptions))
	}

	return slog.New(slog.NewTextHandler(w, handlerOptions))
}

func (a *app) openStore(ctx context.Context) (*store, error) {
	switch a.cfg.Store.Driver {
	case config.DriverMemory:
		a.logger.Warn("using the in-memory store, nothing survives this process")
		return &store{eventLog: memorylog.New()}, nil

	case config.DriverSQLite:
		return a.openSQLiteStore()

	case config.DriverPostgres:
		return a.openPostgresStore(ctx)

	default:
		return nil, errors.Join(ErrUnsupportedDriver, errors.New(a.cfg.Store.Driver))
	}
}

func (a *app) openSQLiteStore() (*store, error) {
	db, err := sqlitelog.Open(a.cfg.SQLite.Path)
	if err != nil {
		return nil, err
	}

	eventLog, err := sqlitelog.New(db,
		sqlitelog.WithContextualLogger(a.logger),
		sqlitelog.WithMetrics(a.metrics),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &store{
		eventLog:    eventLog,
		migrationDB: db,
		dialect:     migrations.SQLite,
		closers:     []func() error{db.Close},
	}, nil
}

func (a *app) openPostgresStore(ctx context.Context) (*store, error) {
	pgConfig := a.cfg.Postgres
	engineOptions := []postgreslog.Option{
		postgreslog.WithContextualLogger(a.logger),
		postgreslog.WithMetrics(a.metrics),
	}

	switch pgConfig.Adapter {
	case config.AdapterSQLDB:
		db, err := pgConfig.OpenSQLDB(ctx)
		if err != nil {
			return nil, err
		}

		eventLog, err := postgreslog.NewFromSQLDB(db, engineOptions...)
		if err != nil {
			_ = db.Close()
			return nil, err
		}

		return &store{eventLog: eventLog, migrationDB: db, dialect: migrations.Postgres, closers: []func() error{db.Close}}, nil

	case config.AdapterSQLX:
		db, err := pgConfig.OpenSQLX(ctx)
		if err != nil {
			return nil, err
		}

		eventLog, err := postgreslog.NewFromSQLX(db, engineOptions...)
		if err != nil {
			_ = db.Close()
			return nil, err
		}

		return &store{eventLog: eventLog, migrationDB: db.DB, dialect: migrations.Postgres, closers: []func() error{db.Close}}, nil

	default:
		primary, replica, err := pgConfig.OpenPGXPools(ctx)
		if err != nil {
			return nil, err
		}

		closers := []func() error{closePool(primary)}
		if replica != nil {
			engineOptions = append(engineOptions, postgreslog.WithReplica(replica))
			closers = append(closers, closePool(replica))
		}

		eventLog, err := postgreslog.NewFromPGXPool(primary, engineOptions...)
		if err != nil {
			closeAll(closers)
			return nil, err
		}

		migrationDB := stdlib.OpenDBFromPool(primary)
		closers = append([]func() error{migrationDB.Close}, closers...)

		return &store{eventLog: eventLog, migrationDB: migrationDB, dialect: migrations.Postgres, closers: closers}, nil
	}
}

func (a *app) closeStore(ctx context.Context, s *store) {
	if err := closeAll(s.closers); err != nil {
		a.logger.ErrorContext(ctx, "closing the store failed", "error", err.Error())
	}
}

func closePool(pool *pgxpool.Pool) func() error {
	return func() error {
		pool.Close()
		return nil
	}
}

func closeAll(closers []func() error) error {
	var errs []error
	for _, closeFn := range closers {
		errs = append(errs, closeFn())
	}

	return errors.Join(errs...)
}

func (a *app) handlerOptions() []shell.Option {
	return []shell.Option{
		shell.WithContextualLogger(a.logger),
		shell.WithMetrics(a.metrics),
		shell.WithRetryOptions(
			shell.WithMaxAttempts(a.cfg.Retry.MaxAttempts),
			shell.WithBaseDelay(a.cfg.Retry.BaseDelay),
		),
	}
}

func (a *app) commandHandler(s *store) (shell.CommandHandler, error) {
	return shell.NewCommandHandler(s.eventLog, a.handlerOptions()...)
}

func (a *app) catalogHandler(s *store) (shell.CatalogHandler, error) {
	return shell.NewCatalogHandler(s.eventLog, a.handlerOptions()...)
}
