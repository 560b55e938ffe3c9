// Package store holds the Postgres-backed stores for tenants, workflows and
// the activation audit trail.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/flowplane/internal/apperr"
)

// DB is the subset of *pgxpool.Pool used by the stores.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// rowError maps pgx.ErrNoRows to a not-found error and wraps everything else.
func rowError(err error, op, notFoundMsg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.Wrap(apperr.ENotFound, op, notFoundMsg, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
