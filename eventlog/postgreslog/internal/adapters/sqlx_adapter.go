package adapters

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db *sqlx.DB
}

func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// Query executes a query using the sqlx.DB and returns wrapped rows.
func (s *SQLXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows.Rows}, nil
}

// ExecSerializable runs query in a SERIALIZABLE transaction started with BeginTxx.
func (s *SQLXAdapter) ExecSerializable(ctx context.Context, query string) (DBResult, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}

	result, execErr := tx.ExecContext(ctx, query)
	if execErr != nil {
		return nil, errors.Join(execErr, rollbackStd(tx.Tx))
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, commitErr
	}

	return &stdResult{result: result}, nil
}
