package repository

import (
	"context"
	"time"

	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

// ExchangeRateRepository handles stored exchange rate operations.
type ExchangeRateRepository struct {
	db database.PGXDB
}

// NewExchangeRateRepository creates a new ExchangeRateRepository.
func NewExchangeRateRepository(db database.PGXDB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// Create stores a rate for a currency pair and date. Duplicate (from, to,
// date) rows surface as models.ErrConflict.
func (r *ExchangeRateRepository) Create(ctx context.Context, rate *models.ExchangeRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO exchange_rates (from_currency, to_currency, rate, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, rate.FromCurrency, rate.ToCurrency, rate.Rate, models.DateOnly(rate.Date),
	).Scan(&rate.ID, &rate.CreatedAt)
	return mapError("create exchange rate", err)
}

// GetByID retrieves a rate by ID.
func (r *ExchangeRateRepository) GetByID(ctx context.Context, id int) (*models.ExchangeRate, error) {
	var e models.ExchangeRate
	err := r.db.QueryRow(ctx, `
		SELECT id, from_currency, to_currency, rate, date, created_at
		FROM exchange_rates WHERE id = $1
	`, id).Scan(&e.ID, &e.FromCurrency, &e.ToCurrency, &e.Rate, &e.Date, &e.CreatedAt)
	if err != nil {
		return nil, mapError("get exchange rate", err)
	}
	return &e, nil
}

// Lookup returns the most recent stored rate for the pair at or before the
// given date.
func (r *ExchangeRateRepository) Lookup(
	ctx context.Context,
	from, to models.Currency,
	on time.Time,
) (*models.ExchangeRate, error) {
	var e models.ExchangeRate
	err := r.db.QueryRow(ctx, `
		SELECT id, from_currency, to_currency, rate, date, created_at
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND date <= $3
		ORDER BY date DESC
		LIMIT 1
	`, from, to, models.DateOnly(on)).Scan(
		&e.ID, &e.FromCurrency, &e.ToCurrency, &e.Rate, &e.Date, &e.CreatedAt)
	if err != nil {
		return nil, mapError("lookup exchange rate", err)
	}
	return &e, nil
}

// Update modifies a stored rate. Moving it onto another pair's (from, to,
// date) slot surfaces as models.ErrConflict.
func (r *ExchangeRateRepository) Update(ctx context.Context, rate *models.ExchangeRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE exchange_rates SET
			from_currency = $2,
			to_currency = $3,
			rate = $4,
			date = $5
		WHERE id = $1
	`, rate.ID, rate.FromCurrency, rate.ToCurrency, rate.Rate, models.DateOnly(rate.Date))
	if err != nil {
		return mapError("update exchange rate", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update exchange rate", errNoRowsAffected)
	}
	return nil
}

// Delete removes a rate by ID.
func (r *ExchangeRateRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM exchange_rates WHERE id = $1`, id)
	if err != nil {
		return mapError("delete exchange rate", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("delete exchange rate", errNoRowsAffected)
	}
	return nil
}
