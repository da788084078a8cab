package repository

import (
	"context"

	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

// FixedPaymentRepository handles fixed payment database operations.
type FixedPaymentRepository struct {
	db database.PGXDB
}

// NewFixedPaymentRepository creates a new FixedPaymentRepository.
func NewFixedPaymentRepository(db database.PGXDB) *FixedPaymentRepository {
	return &FixedPaymentRepository{db: db}
}

const fixedPaymentColumns = `id, description, amount, currency, country, frequency,
	start_date, end_date, is_active, created_at, updated_at`

func scanFixedPayment(row interface{ Scan(dest ...any) error }, p *models.FixedPayment) error {
	return row.Scan(&p.ID, &p.Description, &p.Amount, &p.Currency, &p.Country, &p.Frequency,
		&p.StartDate, &p.EndDate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
}

// Create adds a new fixed payment.
func (r *FixedPaymentRepository) Create(ctx context.Context, payment *models.FixedPayment) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO fixed_payments (description, amount, currency, country, frequency,
			start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, payment.Description, payment.Amount, payment.Currency, payment.Country,
		payment.Frequency, models.DateOnly(payment.StartDate), payment.EndDate, payment.IsActive,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	return mapError("create fixed payment", err)
}

// GetByID retrieves a fixed payment by ID.
func (r *FixedPaymentRepository) GetByID(ctx context.Context, id int) (*models.FixedPayment, error) {
	var p models.FixedPayment
	err := scanFixedPayment(r.db.QueryRow(ctx, `
		SELECT `+fixedPaymentColumns+` FROM fixed_payments WHERE id = $1
	`, id), &p)
	if err != nil {
		return nil, mapError("get fixed payment", err)
	}
	return &p, nil
}

// ListActive retrieves all fixed payments with the active flag set.
func (r *FixedPaymentRepository) ListActive(ctx context.Context) ([]models.FixedPayment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+fixedPaymentColumns+` FROM fixed_payments WHERE is_active ORDER BY id
	`)
	if err != nil {
		return nil, mapError("list fixed payments", err)
	}
	defer rows.Close()

	var payments []models.FixedPayment
	for rows.Next() {
		var p models.FixedPayment
		if err := scanFixedPayment(rows, &p); err != nil {
			return nil, mapError("scan fixed payment", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate fixed payments", err)
	}
	return payments, nil
}

// Update modifies an existing fixed payment.
func (r *FixedPaymentRepository) Update(ctx context.Context, payment *models.FixedPayment) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE fixed_payments SET
			description = $2,
			amount = $3,
			currency = $4,
			country = $5,
			frequency = $6,
			start_date = $7,
			end_date = $8,
			is_active = $9,
			updated_at = NOW()
		WHERE id = $1
	`, payment.ID, payment.Description, payment.Amount, payment.Currency, payment.Country,
		payment.Frequency, models.DateOnly(payment.StartDate), payment.EndDate, payment.IsActive)
	if err != nil {
		return mapError("update fixed payment", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update fixed payment", errNoRowsAffected)
	}
	return nil
}

// Delete removes a fixed payment. Checklist rows referencing it cascade.
func (r *FixedPaymentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM fixed_payments WHERE id = $1`, id)
	if err != nil {
		return mapError("delete fixed payment", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("delete fixed payment", errNoRowsAffected)
	}
	return nil
}
