package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

func TestInvoiceRepository(t *testing.T) {
	ctx := context.Background()
	db := database.TestTx(t)
	repo := NewInvoiceRepository(db)

	card := testCard()
	require.NoError(t, NewCreditCardRepository(db).Create(ctx, card))

	t.Run("create and get", func(t *testing.T) {
		inv := &models.CreditCardInvoice{
			CreditCardID: card.ID,
			StartDate:    date(2025, time.June, 1),
			EndDate:      date(2025, time.June, 30),
		}
		require.NoError(t, repo.Create(ctx, inv))
		require.NotZero(t, inv.ID)

		got, err := repo.GetByID(ctx, inv.ID)
		require.NoError(t, err)
		require.Equal(t, card.ID, got.CreditCardID)
		require.False(t, got.IsClosed)
		require.Equal(t, 30, got.BillingPeriodDays())
	})

	t.Run("second open invoice for the same card conflicts", func(t *testing.T) {
		inv := &models.CreditCardInvoice{
			CreditCardID: card.ID,
			StartDate:    date(2025, time.July, 1),
			EndDate:      date(2025, time.July, 31),
		}
		require.ErrorIs(t, repo.Create(ctx, inv), models.ErrConflict)
	})

	t.Run("duplicate billing period conflicts even when closed", func(t *testing.T) {
		inv := &models.CreditCardInvoice{
			CreditCardID: card.ID,
			StartDate:    date(2025, time.June, 1),
			EndDate:      date(2025, time.June, 30),
			IsClosed:     true,
		}
		require.ErrorIs(t, repo.Create(ctx, inv), models.ErrConflict)
	})

	t.Run("create rejects inverted period", func(t *testing.T) {
		inv := &models.CreditCardInvoice{
			CreditCardID: card.ID,
			StartDate:    date(2025, time.August, 31),
			EndDate:      date(2025, time.August, 1),
			IsClosed:     true,
		}
		require.ErrorIs(t, repo.Create(ctx, inv), models.ErrValidation)
	})
}

func TestInvoiceRepository_OpenInvoiceQueries(t *testing.T) {
	ctx := context.Background()
	db := database.TestTx(t)
	repo := NewInvoiceRepository(db)

	card := testCard()
	require.NoError(t, NewCreditCardRepository(db).Create(ctx, card))

	closed := &models.CreditCardInvoice{
		CreditCardID: card.ID,
		StartDate:    date(2025, time.May, 1),
		EndDate:      date(2025, time.May, 31),
		IsClosed:     true,
	}
	require.NoError(t, repo.Create(ctx, closed))

	open := &models.CreditCardInvoice{
		CreditCardID: card.ID,
		StartDate:    date(2025, time.June, 1),
		EndDate:      date(2025, time.June, 30),
	}
	require.NoError(t, repo.Create(ctx, open))

	t.Run("get open for card skips closed cycles", func(t *testing.T) {
		got, err := repo.GetOpenForCard(ctx, card.ID)
		require.NoError(t, err)
		require.Equal(t, open.ID, got.ID)
	})

	t.Run("list by card returns full history", func(t *testing.T) {
		invoices, err := repo.ListByCard(ctx, card.ID)
		require.NoError(t, err)
		require.Len(t, invoices, 2)
	})

	t.Run("close open for card honors the exception", func(t *testing.T) {
		n, err := repo.CloseOpenForCard(ctx, card.ID, open.ID)
		require.NoError(t, err)
		require.Zero(t, n, "the excepted invoice stays open")

		n, err = repo.CloseOpenForCard(ctx, card.ID, 0)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		_, err = repo.GetOpenForCard(ctx, card.ID)
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("set closed on a missing invoice", func(t *testing.T) {
		require.ErrorIs(t, repo.SetClosed(ctx, 999999), models.ErrNotFound)
	})
}
