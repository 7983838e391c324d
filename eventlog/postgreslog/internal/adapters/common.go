package adapters

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// sqlStateSerializationFailure is raised when a SERIALIZABLE transaction can not commit.
const sqlStateSerializationFailure = "40001"

// IsSerializationFailure reports whether err carries SQLSTATE 40001, from pgx or from lib/pq.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == sqlStateSerializationFailure
	}

	return false
}

// stdRows wraps standard library sql.Rows to implement DBRows interface.
type stdRows struct {
	rows *sql.Rows
}

func (s *stdRows) Next() bool {
	return s.rows.Next()
}

func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

func (s *stdRows) Err() error {
	return s.rows.Err()
}

func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdResult wraps standard library sql.Result to implement DBResult interface.
type stdResult struct {
	result sql.Result
}

func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}

type stdTxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// execSerializableStd runs query in a SERIALIZABLE database/sql transaction.
func execSerializableStd(ctx context.Context, db stdTxBeginner, query string) (DBResult, error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}

	result, execErr := tx.ExecContext(ctx, query)
	if execErr != nil {
		return nil, errors.Join(execErr, rollbackStd(tx))
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, commitErr
	}

	return &stdResult{result: result}, nil
}

func rollbackStd(tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}
