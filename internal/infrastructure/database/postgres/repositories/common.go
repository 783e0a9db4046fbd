// Package repositories contains the pgx-backed implementations of the
// domain repository interfaces.
package repositories

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations, raised by the partial index that allows only one pending
// signoff per task.
const pgUniqueViolation = "23505"

// queryer abstracts pgxpool.Pool and pgx.Tx so queries can run inside or
// outside a transaction.
type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// isNoRows reports whether err is pgx's empty-result sentinel.
func isNoRows(err error) bool {
	return stderrors.Is(err, pgx.ErrNoRows)
}

// wrapDB wraps a driver error as ErrCodeDatabaseError, or as ErrCodeTimeout
// when the query deadline expired.
func wrapDB(err error, msg string) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrCodeTimeout, msg)
	}
	return errors.Wrap(err, errors.ErrCodeDatabaseError, msg)
}

// inTx runs fn inside a transaction, committing on success and rolling back
// on any error or panic.
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return wrapDB(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapDB(err, "failed to commit transaction")
	}
	return nil
}
