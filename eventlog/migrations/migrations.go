// Package migrations embeds the SQL schema of the event log and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/AntonStoeckl/library-lending/eventlog"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedded embed.FS

// Dialect selects the migration set.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

var (
	ErrUnsupportedDialect = errors.New("unsupported migration dialect")
	ErrMigrationFailed    = errors.New("applying migrations failed")
)

// Applied describes one migration that Up executed.
type Applied struct {
	Version    int64
	Source     string
	DurationMS float64
}

// State describes one known migration and whether it is applied.
type State struct {
	Version int64
	Source  string
	Applied bool
}

// Up applies all pending migrations of dialect to db.
// Each applied migration is logged at info level if logger is not nil.
func Up(ctx context.Context, db *sql.DB, dialect Dialect, logger eventlog.Logger) ([]Applied, error) {
	provider, err := newProvider(db, dialect)
	if err != nil {
		return nil, err
	}

	results, upErr := provider.Up(ctx)
	if upErr != nil {
		return nil, errors.Join(ErrMigrationFailed, upErr)
	}

	applied := make([]Applied, 0, len(results))
	for _, r := range results {
		a := Applied{
			Version:    r.Source.Version,
			Source:     r.Source.Path,
			DurationMS: float64(r.Duration.Microseconds()) / 1000,
		}
		applied = append(applied, a)

		if logger != nil {
			logger.Info("migration applied", "dialect", string(dialect), "version", a.Version, "source", a.Source, "duration_ms", a.DurationMS)
		}
	}

	return applied, nil
}

// Status lists all known migrations of dialect and whether they are applied to db.
func Status(ctx context.Context, db *sql.DB, dialect Dialect) ([]State, error) {
	provider, err := newProvider(db, dialect)
	if err != nil {
		return nil, err
	}

	statuses, statusErr := provider.Status(ctx)
	if statusErr != nil {
		return nil, errors.Join(ErrMigrationFailed, statusErr)
	}

	states := make([]State, 0, len(statuses))
	for _, s := range statuses {
		states = append(states, State{
			Version: s.Source.Version,
			Source:  s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}

	return states, nil
}

func newProvider(db *sql.DB, dialect Dialect) (*goose.Provider, error) {
	var gooseDialect goose.Dialect

	switch dialect {
	case Postgres:
		gooseDialect = goose.DialectPostgres
	case SQLite:
		gooseDialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
	}

	if db == nil {
		return nil, eventlog.ErrNilDatabaseConnection
	}

	fsys, err := fs.Sub(embedded, string(dialect))
	if err != nil {
		return nil, errors.Join(ErrMigrationFailed, err)
	}

	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return nil, errors.Join(ErrMigrationFailed, err)
	}

	return provider, nil
}
