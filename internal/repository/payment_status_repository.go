package repository

import (
	"context"
	"time"

	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

// PaymentStatusRepository handles checklist row storage. The derivation
// pipeline (expected-amount copy, status resolution) runs in the status
// service before these writes; this layer maps the PaymentRef sum type onto
// the three reference columns and back.
type PaymentStatusRepository struct {
	db database.PGXDB
}

// NewPaymentStatusRepository creates a new PaymentStatusRepository.
func NewPaymentStatusRepository(db database.PGXDB) *PaymentStatusRepository {
	return &PaymentStatusRepository{db: db}
}

const statusColumns = `id, fixed_payment_id, variable_payment_id, credit_card_invoice_id,
	month_year, due_date, status, is_paid, paid_date, expected_amount, actual_amount,
	currency, notes, created_at, updated_at`

// refColumns splits a PaymentRef into the three nullable reference columns.
func refColumns(ref models.PaymentRef) (fixedID, variableID, invoiceID *int) {
	id := ref.ID()
	switch ref.Kind() {
	case models.RefFixed:
		fixedID = &id
	case models.RefVariable:
		variableID = &id
	case models.RefInvoice:
		invoiceID = &id
	}
	return fixedID, variableID, invoiceID
}

func scanStatus(row interface{ Scan(dest ...any) error }, s *models.PaymentStatus) error {
	var fixedID, variableID, invoiceID *int
	var notes *string
	if err := row.Scan(&s.ID, &fixedID, &variableID, &invoiceID,
		&s.MonthYear, &s.DueDate, &s.Status, &s.IsPaid, &s.PaidDate,
		&s.ExpectedAmount, &s.ActualAmount, &s.Currency, &notes,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return err
	}
	switch {
	case fixedID != nil:
		s.Ref = models.FixedRef(*fixedID)
	case variableID != nil:
		s.Ref = models.VariableRef(*variableID)
	case invoiceID != nil:
		s.Ref = models.InvoiceRef(*invoiceID)
	}
	if notes != nil {
		s.Notes = *notes
	}
	return nil
}

// Create inserts a checklist row. A second row for the same obligation and
// month surfaces as models.ErrConflict.
func (r *PaymentStatusRepository) Create(ctx context.Context, status *models.PaymentStatus) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if status.Status == "" {
		status.Status = models.StatusPending
	}
	fixedID, variableID, invoiceID := refColumns(status.Ref)
	err := r.db.QueryRow(ctx, `
		INSERT INTO payment_statuses (fixed_payment_id, variable_payment_id, credit_card_invoice_id,
			payment_type, month_year, due_date, status, is_paid, paid_date,
			expected_amount, actual_amount, currency, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, fixedID, variableID, invoiceID, status.Ref.Kind(),
		models.MonthBucket(status.MonthYear), models.DateOnly(status.DueDate),
		status.Status, status.IsPaid, status.PaidDate,
		status.ExpectedAmount, status.ActualAmount, status.Currency, nullableText(status.Notes),
	).Scan(&status.ID, &status.CreatedAt, &status.UpdatedAt)
	return mapError("create payment status", err)
}

// GetByID retrieves a checklist row by ID.
func (r *PaymentStatusRepository) GetByID(ctx context.Context, id int) (*models.PaymentStatus, error) {
	var s models.PaymentStatus
	err := scanStatus(r.db.QueryRow(ctx, `
		SELECT `+statusColumns+` FROM payment_statuses WHERE id = $1
	`, id), &s)
	if err != nil {
		return nil, mapError("get payment status", err)
	}
	return &s, nil
}

// ListByMonth retrieves the checklist for a month bucket, ordered by due
// date then obligation kind.
func (r *PaymentStatusRepository) ListByMonth(ctx context.Context, month time.Time) ([]models.PaymentStatus, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+statusColumns+` FROM payment_statuses
		WHERE month_year = $1
		ORDER BY due_date, payment_type, id
	`, models.MonthBucket(month))
	if err != nil {
		return nil, mapError("list payment statuses by month", err)
	}
	defer rows.Close()
	return collectStatuses(rows)
}

// ListByInvoice retrieves checklist rows attached to an invoice.
func (r *PaymentStatusRepository) ListByInvoice(ctx context.Context, invoiceID int) ([]models.PaymentStatus, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+statusColumns+` FROM payment_statuses
		WHERE credit_card_invoice_id = $1
		ORDER BY month_year, id
	`, invoiceID)
	if err != nil {
		return nil, mapError("list payment statuses by invoice", err)
	}
	defer rows.Close()
	return collectStatuses(rows)
}

// Update rewrites a checklist row.
func (r *PaymentStatusRepository) Update(ctx context.Context, status *models.PaymentStatus) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if status.Status == "" {
		status.Status = models.StatusPending
	}
	fixedID, variableID, invoiceID := refColumns(status.Ref)
	tag, err := r.db.Exec(ctx, `
		UPDATE payment_statuses SET
			fixed_payment_id = $2,
			variable_payment_id = $3,
			credit_card_invoice_id = $4,
			payment_type = $5,
			month_year = $6,
			due_date = $7,
			status = $8,
			is_paid = $9,
			paid_date = $10,
			expected_amount = $11,
			actual_amount = $12,
			currency = $13,
			notes = $14,
			updated_at = NOW()
		WHERE id = $1
	`, status.ID, fixedID, variableID, invoiceID, status.Ref.Kind(),
		models.MonthBucket(status.MonthYear), models.DateOnly(status.DueDate),
		status.Status, status.IsPaid, status.PaidDate,
		status.ExpectedAmount, status.ActualAmount, status.Currency, nullableText(status.Notes))
	if err != nil {
		return mapError("update payment status", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("update payment status", errNoRowsAffected)
	}
	return nil
}

// Delete removes a checklist row by ID.
func (r *PaymentStatusRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payment_statuses WHERE id = $1`, id)
	if err != nil {
		return mapError("delete payment status", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("delete payment status", errNoRowsAffected)
	}
	return nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func collectStatuses(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
},
) ([]models.PaymentStatus, error) {
	var statuses []models.PaymentStatus
	for rows.Next() {
		var s models.PaymentStatus
		if err := scanStatus(rows, &s); err != nil {
			return nil, mapError("scan payment status", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate payment statuses", err)
	}
	return statuses, nil
}
