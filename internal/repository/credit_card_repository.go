package repository

import (
	"context"

	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

// CreditCardRepository handles credit card database operations.
type CreditCardRepository struct {
	db database.PGXDB
}

// NewCreditCardRepository creates a new CreditCardRepository.
func NewCreditCardRepository(db database.PGXDB) *CreditCardRepository {
	return &CreditCardRepository{db: db}
}

const creditCardColumns = `id, issuer_country, currency, fx_fee_percent, iof_percent,
	cardholder_name, final_digits, is_active, created_at, updated_at`

func scanCreditCard(row interface{ Scan(dest ...any) error }, c *models.CreditCard) error {
	return row.Scan(&c.ID, &c.IssuerCountry, &c.Currency, &c.FXFeePercent, &c.IOFPercent,
		&c.CardholderName, &c.FinalDigits, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
}

// Create adds a new credit card.
func (r *CreditCardRepository) Create(ctx context.Context, card *models.CreditCard) error {
	if err := card.Validate(); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO credit_cards (issuer_country, currency, fx_fee_percent, iof_percent,
			cardholder_name, final_digits, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, card.IssuerCountry, card.Currency, card.FXFeePercent, card.IOFPercent,
		card.CardholderName, card.FinalDigits, card.IsActive,
	).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
	return mapError("create credit card", err)
}

// GetByID retrieves a credit card by ID.
func (r *CreditCardRepository) GetByID(ctx context.Context, id int) (*models.CreditCard, error) {
	var c models.CreditCard
	err := scanCreditCard(r.db.QueryRow(ctx, `
		SELECT `+creditCardColumns+` FROM credit_cards WHERE id = $1
	`, id), &c)
	if err != nil {
		return nil, mapError("get credit card", err)
	}
	return &c, nil
}

// ListActive retrieves all active credit cards.
func (r *CreditCardRepository) ListActive(ctx context.Context) ([]models.CreditCard, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+creditCardColumns+` FROM credit_cards WHERE is_active ORDER BY id
	`)
	if err != nil {
		return nil, mapError("list active credit cards", err)
	}
	defer rows.Close()

	var cards []models.CreditCard
	for rows.Next() {
		var c models.CreditCard
		if err := scanCreditCard(rows, &c); err != nil {
			return nil, mapError("scan credit card", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate credit cards", err)
	}
	return cards, nil
}

// Update modifies an existing credit card.
func (r *CreditCardRepository) Update(ctx context.Context, card *models.CreditCard) error {
	if err := card.Validate(); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE credit_cards SET
			issuer_country = $2,
			currency = $3,
			fx_fee_percent = $4,
			iof_percent = $5,
			cardholder_name = $6,
			final_digits = $7,
			is_active = $8,
			updated_at = NOW()
		WHERE id = $1
	`, card.ID, card.IssuerCountry, card.Currency, card.FXFeePercent, card.IOFPercent,
		card.CardholderName, card.FinalDigits, card.IsActive)
	if err != nil {
		return mapError("update credit card", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update credit card", errNoRowsAffected)
	}
	return nil
}

// Delete removes a credit card. Invoices for the card are deleted by cascade;
// variable payments keep their rows with the card reference nulled, so the
// expense history survives.
func (r *CreditCardRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM credit_cards WHERE id = $1`, id)
	if err != nil {
		return mapError("delete credit card", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("delete credit card", errNoRowsAffected)
	}
	return nil
}
