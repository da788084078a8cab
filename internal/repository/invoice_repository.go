package repository

import (
	"context"

	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

// InvoiceRepository handles credit card invoice database operations. It only
// offers storage primitives; billing-cycle rules (one open invoice per card,
// successor creation on close) live in the invoice service, which composes
// these primitives inside transactions.
type InvoiceRepository struct {
	db database.PGXDB
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(db database.PGXDB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, credit_card_id, start_date, end_date, is_closed, created_at, updated_at`

func scanInvoice(row interface{ Scan(dest ...any) error }, inv *models.CreditCardInvoice) error {
	return row.Scan(&inv.ID, &inv.CreditCardID, &inv.StartDate, &inv.EndDate, &inv.IsClosed,
		&inv.CreatedAt, &inv.UpdatedAt)
}

// Create inserts an invoice row. Duplicate (card, start, end) periods and a
// second open invoice for the same card surface as models.ErrConflict.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.CreditCardInvoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO credit_card_invoices (credit_card_id, start_date, end_date, is_closed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, inv.CreditCardID, models.DateOnly(inv.StartDate), models.DateOnly(inv.EndDate), inv.IsClosed,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	return mapError("create invoice", err)
}

// GetByID retrieves an invoice by ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id int) (*models.CreditCardInvoice, error) {
	var inv models.CreditCardInvoice
	err := scanInvoice(r.db.QueryRow(ctx, `
		SELECT `+invoiceColumns+` FROM credit_card_invoices WHERE id = $1
	`, id), &inv)
	if err != nil {
		return nil, mapError("get invoice", err)
	}
	return &inv, nil
}

// GetOpenForCard returns the card's single open invoice, or models.ErrNotFound.
func (r *InvoiceRepository) GetOpenForCard(ctx context.Context, cardID int) (*models.CreditCardInvoice, error) {
	var inv models.CreditCardInvoice
	err := scanInvoice(r.db.QueryRow(ctx, `
		SELECT `+invoiceColumns+` FROM credit_card_invoices
		WHERE credit_card_id = $1 AND NOT is_closed
	`, cardID), &inv)
	if err != nil {
		return nil, mapError("get open invoice", err)
	}
	return &inv, nil
}

// ListByCard retrieves all invoices of a card, newest billing period first.
func (r *InvoiceRepository) ListByCard(ctx context.Context, cardID int) ([]models.CreditCardInvoice, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+invoiceColumns+` FROM credit_card_invoices
		WHERE credit_card_id = $1
		ORDER BY start_date DESC, id DESC
	`, cardID)
	if err != nil {
		return nil, mapError("list invoices", err)
	}
	defer rows.Close()

	var invoices []models.CreditCardInvoice
	for rows.Next() {
		var inv models.CreditCardInvoice
		if err := scanInvoice(rows, &inv); err != nil {
			return nil, mapError("scan invoice", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate invoices", err)
	}
	return invoices, nil
}

// SetClosed flips an invoice to closed. Closing is terminal; there is no
// reverse operation.
func (r *InvoiceRepository) SetClosed(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE credit_card_invoices SET is_closed = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return mapError("close invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("close invoice", errNoRowsAffected)
	}
	return nil
}

// CloseOpenForCard closes every open invoice of a card except the given one
// (pass 0 to close all). Returns the number of invoices closed.
func (r *InvoiceRepository) CloseOpenForCard(ctx context.Context, cardID, exceptID int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE credit_card_invoices SET is_closed = TRUE, updated_at = NOW()
		WHERE credit_card_id = $1 AND NOT is_closed AND id <> $2
	`, cardID, exceptID)
	if err != nil {
		return 0, mapError("close open invoices for card", err)
	}
	return tag.RowsAffected(), nil
}

// Totals computes the invoice's read-side aggregates from the checklist rows
// referencing it. Nothing is cached, so the numbers cannot drift from their
// sources.
func (r *InvoiceRepository) Totals(ctx context.Context, invoiceID int) (models.InvoiceTotals, error) {
	var totals models.InvoiceTotals
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(expected_amount), 0), COUNT(*)
		FROM payment_statuses
		WHERE credit_card_invoice_id = $1
	`, invoiceID).Scan(&totals.TotalAmount, &totals.PurchasesCount)
	if err != nil {
		return models.InvoiceTotals{}, mapError("invoice totals", err)
	}
	return totals, nil
}

// Delete removes an invoice. Normally invoices only disappear when their
// card is deleted (cascade); this exists for the CRUD surface.
func (r *InvoiceRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM credit_card_invoices WHERE id = $1`, id)
	if err != nil {
		return mapError("delete invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("delete invoice", errNoRowsAffected)
	}
	return nil
}
