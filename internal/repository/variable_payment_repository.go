package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/fees"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

// VariablePaymentRepository handles variable payment database operations.
//
// Fee fields are owned by the write path: every Create and Update re-derives
// fx_fee_amount and iof_amount from the amount and the linked card's fee
// profile, so callers can never store stale or hand-picked fees.
type VariablePaymentRepository struct {
	db database.PGXDB
}

// NewVariablePaymentRepository creates a new VariablePaymentRepository.
func NewVariablePaymentRepository(db database.PGXDB) *VariablePaymentRepository {
	return &VariablePaymentRepository{db: db}
}

const variablePaymentColumns = `id, date, description, amount, currency, country, category,
	linked_credit_card, credit_card_id, fx_fee_amount, iof_amount, created_at, updated_at`

func scanVariablePayment(row interface{ Scan(dest ...any) error }, p *models.VariablePayment) error {
	return row.Scan(&p.ID, &p.Date, &p.Description, &p.Amount, &p.Currency, &p.Country,
		&p.Category, &p.LinkedCreditCard, &p.CreditCardID, &p.FXFeeAmount, &p.IOFAmount,
		&p.CreatedAt, &p.UpdatedAt)
}

// recomputeFees derives the fee fields before persistence. A payment not
// linked to a card always stores zero fees, whatever was set before.
func (r *VariablePaymentRepository) recomputeFees(ctx context.Context, p *models.VariablePayment) error {
	p.FXFeeAmount = decimal.Zero
	p.IOFAmount = decimal.Zero
	if !p.LinkedCreditCard || p.CreditCardID == nil {
		return nil
	}

	var card models.CreditCard
	err := r.db.QueryRow(ctx, `
		SELECT currency, fx_fee_percent, iof_percent FROM credit_cards WHERE id = $1
	`, *p.CreditCardID).Scan(&card.Currency, &card.FXFeePercent, &card.IOFPercent)
	if err != nil {
		if errors.Is(err, errNoRowsAffected) {
			return fmt.Errorf("credit card %d: %w", *p.CreditCardID, models.ErrNotFound)
		}
		return fmt.Errorf("load card fee profile: %w", err)
	}

	fx, iof := fees.Compute(p.Amount, p.Currency, p.Country, &card)
	p.FXFeeAmount = fx.Round(2)
	p.IOFAmount = iof.Round(2)
	return nil
}

// Create adds a new variable payment, deriving its fee fields.
func (r *VariablePaymentRepository) Create(ctx context.Context, payment *models.VariablePayment) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	if err := r.recomputeFees(ctx, payment); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO variable_payments (date, description, amount, currency, country, category,
			linked_credit_card, credit_card_id, fx_fee_amount, iof_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, models.DateOnly(payment.Date), payment.Description, payment.Amount, payment.Currency,
		payment.Country, payment.Category, payment.LinkedCreditCard, payment.CreditCardID,
		payment.FXFeeAmount, payment.IOFAmount,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	return mapError("create variable payment", err)
}

// GetByID retrieves a variable payment by ID.
func (r *VariablePaymentRepository) GetByID(ctx context.Context, id int) (*models.VariablePayment, error) {
	var p models.VariablePayment
	err := scanVariablePayment(r.db.QueryRow(ctx, `
		SELECT `+variablePaymentColumns+` FROM variable_payments WHERE id = $1
	`, id), &p)
	if err != nil {
		return nil, mapError("get variable payment", err)
	}
	return &p, nil
}

// ListByDateRange retrieves payments dated within [start, end].
func (r *VariablePaymentRepository) ListByDateRange(
	ctx context.Context,
	start, end time.Time,
) ([]models.VariablePayment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+variablePaymentColumns+` FROM variable_payments
		WHERE date >= $1 AND date <= $2
		ORDER BY date, id
	`, models.DateOnly(start), models.DateOnly(end))
	if err != nil {
		return nil, mapError("list variable payments by date range", err)
	}
	defer rows.Close()
	return collectVariablePayments(rows)
}

// ListByCard retrieves payments charged to a card.
func (r *VariablePaymentRepository) ListByCard(ctx context.Context, cardID int) ([]models.VariablePayment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+variablePaymentColumns+` FROM variable_payments
		WHERE credit_card_id = $1
		ORDER BY date, id
	`, cardID)
	if err != nil {
		return nil, mapError("list variable payments by card", err)
	}
	defer rows.Close()
	return collectVariablePayments(rows)
}

// Update modifies an existing variable payment, re-deriving its fee fields.
func (r *VariablePaymentRepository) Update(ctx context.Context, payment *models.VariablePayment) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	if err := r.recomputeFees(ctx, payment); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE variable_payments SET
			date = $2,
			description = $3,
			amount = $4,
			currency = $5,
			country = $6,
			category = $7,
			linked_credit_card = $8,
			credit_card_id = $9,
			fx_fee_amount = $10,
			iof_amount = $11,
			updated_at = NOW()
		WHERE id = $1
	`, payment.ID, models.DateOnly(payment.Date), payment.Description, payment.Amount,
		payment.Currency, payment.Country, payment.Category, payment.LinkedCreditCard,
		payment.CreditCardID, payment.FXFeeAmount, payment.IOFAmount)
	if err != nil {
		return mapError("update variable payment", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update variable payment", errNoRowsAffected)
	}
	return nil
}

// Delete removes a variable payment. Checklist rows referencing it cascade.
func (r *VariablePaymentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM variable_payments WHERE id = $1`, id)
	if err != nil {
		return mapError("delete variable payment", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("delete variable payment", errNoRowsAffected)
	}
	return nil
}

func collectVariablePayments(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
},
) ([]models.VariablePayment, error) {
	var payments []models.VariablePayment
	for rows.Next() {
		var p models.VariablePayment
		if err := scanVariablePayment(rows, &p); err != nil {
			return nil, mapError("scan variable payment", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate variable payments", err)
	}
	return payments, nil
}
