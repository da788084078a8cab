package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

// repositoryNotFound maps a raw driver miss onto the domain taxonomy for the
// few queries the services run directly instead of through a repository.
func repositoryNotFound(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
