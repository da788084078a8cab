package service

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
	"gitlab.com/afonsoc/finance-tracker/internal/repository"
)

// StatusService is the write path for the monthly payment checklist. Every
// save re-copies the expected amount and currency from the referenced
// obligation and re-derives the status from the paid flag and due date, so
// stored rows are always a consistent snapshot of their source.
type StatusService struct {
	db  database.DB
	now func() time.Time
}

// NewStatusService creates a StatusService on the given database handle.
func NewStatusService(db database.DB) *StatusService {
	return &StatusService{db: db, now: time.Now}
}

// Create inserts a checklist row after running the derivation pipeline.
func (s *StatusService) Create(ctx context.Context, status *models.PaymentStatus) error {
	return s.save(ctx, status, false)
}

// Update rewrites a checklist row after re-running the derivation pipeline.
func (s *StatusService) Update(ctx context.Context, status *models.PaymentStatus) error {
	return s.save(ctx, status, true)
}

func (s *StatusService) save(ctx context.Context, status *models.PaymentStatus, existing bool) error {
	if !status.Ref.IsSet() {
		return fmt.Errorf("%w: a checklist row must reference exactly one obligation", models.ErrInvalidRef)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save payment status: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := s.copyExpected(ctx, tx, status); err != nil {
		return err
	}
	s.deriveStatus(status)

	repo := repository.NewPaymentStatusRepository(tx)
	if existing {
		err = repo.Update(ctx, status)
	} else {
		err = repo.Create(ctx, status)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save payment status: %w", err)
	}
	return nil
}

// copyExpected snapshots the expected amount and currency from the
// referenced obligation. Fixed and variable payments contribute their base
// amount; an invoice contributes its fee-inclusive total and its card's
// billing currency. The snapshot is taken at save time, not lazily, so
// historical checklist rows keep the amount that was due back then.
func (s *StatusService) copyExpected(ctx context.Context, db database.PGXDB, status *models.PaymentStatus) error {
	switch status.Ref.Kind() {
	case models.RefFixed:
		payment, err := repository.NewFixedPaymentRepository(db).GetByID(ctx, status.Ref.ID())
		if err != nil {
			return err
		}
		status.ExpectedAmount = payment.Amount
		status.Currency = payment.Currency

	case models.RefVariable:
		payment, err := repository.NewVariablePaymentRepository(db).GetByID(ctx, status.Ref.ID())
		if err != nil {
			return err
		}
		status.ExpectedAmount = payment.Amount
		status.Currency = payment.Currency

	case models.RefInvoice:
		// The row being rewritten must not count towards the total it is
		// about to store.
		var total models.InvoiceTotals
		err := db.QueryRow(ctx, `
			SELECT COALESCE(SUM(expected_amount), 0), COUNT(*)
			FROM payment_statuses
			WHERE credit_card_invoice_id = $1 AND id <> $2
		`, status.Ref.ID(), status.ID).Scan(&total.TotalAmount, &total.PurchasesCount)
		if err != nil {
			return fmt.Errorf("invoice totals for status: %w", err)
		}

		var currency models.Currency
		err = db.QueryRow(ctx, `
			SELECT c.currency
			FROM credit_card_invoices i
			JOIN credit_cards c ON c.id = i.credit_card_id
			WHERE i.id = $1
		`, status.Ref.ID()).Scan(&currency)
		if err != nil {
			return repositoryNotFound("invoice for status", err)
		}

		status.ExpectedAmount = total.TotalWithFees()
		status.Currency = currency

	default:
		return fmt.Errorf("%w: unknown obligation kind %q", models.ErrInvalidRef, status.Ref.Kind())
	}
	return nil
}

// deriveStatus resolves the status from the paid flag and due date,
// overwriting whatever the caller supplied. Cancelled is the one exception:
// it is never derived, and an unpaid cancelled row stays cancelled.
func (s *StatusService) deriveStatus(status *models.PaymentStatus) {
	today := models.DateOnly(s.now())

	if status.IsPaid {
		status.Status = models.StatusPaid
		if status.PaidDate == nil {
			status.PaidDate = &today
		}
		return
	}

	status.PaidDate = nil
	if status.Status == models.StatusCancelled {
		return
	}
	if models.DateOnly(status.DueDate).Before(today) {
		status.Status = models.StatusOverdue
	} else {
		status.Status = models.StatusPending
	}
}

// Describe resolves the human-readable description and country of the
// obligation a checklist row tracks. Unresolvable references fall back to
// "Unknown Payment" and "Unknown" rather than erroring, since checklist
// listings must survive dangling rows.
func (s *StatusService) Describe(ctx context.Context, status *models.PaymentStatus) (description, country string) {
	const (
		unknownPayment = "Unknown Payment"
		unknownCountry = "Unknown"
	)

	switch status.Ref.Kind() {
	case models.RefFixed:
		payment, err := repository.NewFixedPaymentRepository(s.db).GetByID(ctx, status.Ref.ID())
		if err != nil {
			return unknownPayment, unknownCountry
		}
		return payment.Description, string(payment.Country)

	case models.RefVariable:
		payment, err := repository.NewVariablePaymentRepository(s.db).GetByID(ctx, status.Ref.ID())
		if err != nil {
			return unknownPayment, unknownCountry
		}
		return payment.Description, string(payment.Country)

	case models.RefInvoice:
		var cardholder string
		var issuerCountry models.Country
		err := s.db.QueryRow(ctx, `
			SELECT c.cardholder_name, c.issuer_country
			FROM credit_card_invoices i
			JOIN credit_cards c ON c.id = i.credit_card_id
			WHERE i.id = $1
		`, status.Ref.ID()).Scan(&cardholder, &issuerCountry)
		if err != nil {
			return unknownPayment, unknownCountry
		}
		return "Credit Card Invoice - " + cardholder, string(issuerCountry)
	}

	return unknownPayment, unknownCountry
}

// Checklist returns the month's checklist rows ordered by due date.
func (s *StatusService) Checklist(ctx context.Context, month time.Time) ([]models.PaymentStatus, error) {
	return repository.NewPaymentStatusRepository(s.db).ListByMonth(ctx, month)
}
