// Package service implements the billing-cycle and payment-tracking rules on
// top of the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/logger"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
	"gitlab.com/afonsoc/finance-tracker/internal/repository"
)

// InvoiceService owns the billing-cycle state machine: invoices open,
// accumulate charges, close exactly once, and closing spawns the successor
// cycle. At most one invoice per card is ever open.
type InvoiceService struct {
	db            database.DB
	now           func() time.Time
	closedCounter metric.Int64Counter
}

// NewInvoiceService creates an InvoiceService on the given database handle.
func NewInvoiceService(db database.DB) *InvoiceService {
	meter := otel.Meter("gitlab.com/afonsoc/finance-tracker")
	counter, err := meter.Int64Counter("invoices.closed",
		metric.WithDescription("Number of credit card invoices closed"))
	if err != nil {
		logger.Log.Warn().Err(err).Msg("invoices.closed counter unavailable")
	}
	return &InvoiceService{
		db:            db,
		now:           time.Now,
		closedCounter: counter,
	}
}

// NextBillingPeriod returns the successor cycle for an invoice ending on
// end: it starts the next day and always ends on the last calendar day of
// the month containing that start, so successor cycles snap to month
// boundaries even when the closed invoice had free-form dates.
func NextBillingPeriod(end time.Time) (start, nextEnd time.Time) {
	start = models.DateOnly(end).AddDate(0, 0, 1)
	return start, models.MonthEnd(start)
}

// CurrentMonthPeriod returns the calendar-month cycle containing the given
// day, used when an open invoice is created lazily.
func CurrentMonthPeriod(today time.Time) (start, end time.Time) {
	return models.MonthBucket(today), models.MonthEnd(today)
}

// CloseInvoice closes an open invoice and creates its successor in the same
// transaction, so a crash can never leave the card without an open cycle.
// Closing an already-closed invoice is a no-op returning no successor.
func (s *InvoiceService) CloseInvoice(ctx context.Context, invoiceID int) (*models.CreditCardInvoice, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin close invoice: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	repo := repository.NewInvoiceRepository(tx)

	inv, err := repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.IsClosed {
		return nil, nil
	}

	if err := repo.SetClosed(ctx, inv.ID); err != nil {
		return nil, err
	}

	start, end := NextBillingPeriod(inv.EndDate)
	successor := &models.CreditCardInvoice{
		CreditCardID: inv.CreditCardID,
		StartDate:    start,
		EndDate:      end,
	}
	if err := repo.Create(ctx, successor); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit close invoice: %w", err)
	}

	if s.closedCounter != nil {
		s.closedCounter.Add(ctx, 1)
	}
	logger.Log.Info().
		Int("invoice_id", inv.ID).
		Int("successor_id", successor.ID).
		Int("card_id", inv.CreditCardID).
		Time("successor_start", successor.StartDate).
		Time("successor_end", successor.EndDate).
		Msg("invoice closed, successor opened")

	return successor, nil
}

// CreateInvoice inserts an invoice. Saving an open invoice closes any other
// open invoice of the same card inside the same transaction: a second open
// cycle silently supersedes the first instead of erroring.
func (s *InvoiceService) CreateInvoice(ctx context.Context, inv *models.CreditCardInvoice) error {
	if inv.IsClosed {
		return repository.NewInvoiceRepository(s.db).Create(ctx, inv)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create invoice: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	repo := repository.NewInvoiceRepository(tx)
	closed, err := repo.CloseOpenForCard(ctx, inv.CreditCardID, 0)
	if err != nil {
		return err
	}
	if closed > 0 {
		logger.Log.Debug().
			Int("card_id", inv.CreditCardID).
			Int64("closed", closed).
			Msg("closed superseded open invoices")
	}
	if err := repo.Create(ctx, inv); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create invoice: %w", err)
	}
	return nil
}

// GetOpenInvoiceForCard returns the card's single open invoice, or nil when
// the card has none.
func (s *InvoiceService) GetOpenInvoiceForCard(ctx context.Context, cardID int) (*models.CreditCardInvoice, error) {
	inv, err := repository.NewInvoiceRepository(s.db).GetOpenForCard(ctx, cardID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// GetOrCreateOpenInvoice returns the card's open invoice, lazily creating
// one for the current calendar month when none exists.
func (s *InvoiceService) GetOrCreateOpenInvoice(ctx context.Context, cardID int) (*models.CreditCardInvoice, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin get-or-create invoice: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	repo := repository.NewInvoiceRepository(tx)
	inv, err := repo.GetOpenForCard(ctx, cardID)
	if err == nil {
		return inv, tx.Commit(ctx)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	start, end := CurrentMonthPeriod(s.now())
	inv = &models.CreditCardInvoice{
		CreditCardID: cardID,
		StartDate:    start,
		EndDate:      end,
	}
	if err := repo.Create(ctx, inv); err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Another writer opened the cycle between our miss and the
			// insert; the unique index decided the race, so take theirs.
			if rerr := tx.Rollback(ctx); rerr != nil {
				logger.Log.Debug().Err(rerr).Msg("rollback after invoice create race")
			}
			return repository.NewInvoiceRepository(s.db).GetOpenForCard(ctx, cardID)
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit get-or-create invoice: %w", err)
	}

	logger.Log.Info().
		Int("invoice_id", inv.ID).
		Int("card_id", cardID).
		Msg("open invoice created lazily")
	return inv, nil
}

// Totals returns the invoice's read-side aggregates.
func (s *InvoiceService) Totals(ctx context.Context, invoiceID int) (models.InvoiceTotals, error) {
	return repository.NewInvoiceRepository(s.db).Totals(ctx, invoiceID)
}

// RecalculateTotals is a compatibility no-op kept for interface stability:
// totals are aggregate queries, never stored, so there is nothing to
// recompute.
func (s *InvoiceService) RecalculateTotals(_ context.Context, _ int) error {
	return nil
}

// SeedInvoices backfills billing history for active cards that have no
// invoices yet: months consecutive calendar-month cycles ending with the
// current month, all but the current one closed. Cards that already have
// invoices are skipped. Pass cardID 0 to process every active card.
// Returns the number of invoices created.
func (s *InvoiceService) SeedInvoices(ctx context.Context, cardID, months int) (int, error) {
	if months < 1 {
		return 0, fmt.Errorf("%w: months must be at least 1", models.ErrValidation)
	}

	cardRepo := repository.NewCreditCardRepository(s.db)
	var cards []models.CreditCard
	if cardID != 0 {
		card, err := cardRepo.GetByID(ctx, cardID)
		if err != nil {
			return 0, err
		}
		if !card.IsActive {
			logger.Log.Debug().Int("card_id", card.ID).Msg("card is inactive, skipping")
			return 0, nil
		}
		cards = append(cards, *card)
	} else {
		var err error
		cards, err = cardRepo.ListActive(ctx)
		if err != nil {
			return 0, err
		}
	}

	invRepo := repository.NewInvoiceRepository(s.db)
	today := s.now()
	created := 0
	for _, card := range cards {
		existing, err := invRepo.ListByCard(ctx, card.ID)
		if err != nil {
			return created, err
		}
		if len(existing) > 0 {
			logger.Log.Debug().Int("card_id", card.ID).Msg("card already has invoices, skipping")
			continue
		}

		for i := months - 1; i >= 0; i-- {
			monthStart := models.MonthBucket(today).AddDate(0, -i, 0)
			inv := &models.CreditCardInvoice{
				CreditCardID: card.ID,
				StartDate:    monthStart,
				EndDate:      models.MonthEnd(monthStart),
				IsClosed:     i != 0,
			}
			if err := invRepo.Create(ctx, inv); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
