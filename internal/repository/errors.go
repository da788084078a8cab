// Package repository provides database access for domain entities.
package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

// Postgres error codes mapped to the domain error taxonomy.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// errNoRowsAffected marks an update/delete that matched no row. Aliased to
// pgx.ErrNoRows so mapError surfaces it as models.ErrNotFound.
var errNoRowsAffected = pgx.ErrNoRows

// mapError translates driver errors into the sentinel taxonomy so callers
// can match with errors.Is instead of inspecting pg error codes.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, models.ErrConflict, pgErr.ConstraintName)
		case pgCheckViolation:
			return fmt.Errorf("%s: %w: %s", op, models.ErrValidation, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
