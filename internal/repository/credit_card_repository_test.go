package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testCard() *models.CreditCard {
	return &models.CreditCard{
		IssuerCountry:  models.CountryBrazil,
		Currency:       models.CurrencyBRL,
		FXFeePercent:   dec("2.5"),
		IOFPercent:     dec("6.38"),
		CardholderName: "Test Cardholder",
		FinalDigits:    "4242",
		IsActive:       true,
	}
}

func TestCreditCardRepository(t *testing.T) {
	ctx := context.Background()
	db := database.TestTx(t)
	repo := NewCreditCardRepository(db)

	t.Run("create and get", func(t *testing.T) {
		card := testCard()
		require.NoError(t, repo.Create(ctx, card))
		require.NotZero(t, card.ID)
		require.False(t, card.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, card.ID)
		require.NoError(t, err)
		require.Equal(t, "Test Cardholder", got.CardholderName)
		require.Equal(t, "4242", got.FinalDigits)
		require.Equal(t, models.CountryBrazil, got.IssuerCountry)
		require.True(t, dec("6.38").Equal(got.IOFPercent))
	})

	t.Run("create rejects invalid card", func(t *testing.T) {
		card := testCard()
		card.FinalDigits = "42"
		require.ErrorIs(t, repo.Create(ctx, card), models.ErrValidation)
	})

	t.Run("get missing card", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999999)
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("list active skips deactivated cards", func(t *testing.T) {
		active := testCard()
		require.NoError(t, repo.Create(ctx, active))

		retired := testCard()
		retired.IsActive = false
		require.NoError(t, repo.Create(ctx, retired))

		cards, err := repo.ListActive(ctx)
		require.NoError(t, err)

		ids := make(map[int]bool, len(cards))
		for _, c := range cards {
			ids[c.ID] = true
		}
		require.True(t, ids[active.ID])
		require.False(t, ids[retired.ID])
	})

	t.Run("update", func(t *testing.T) {
		card := testCard()
		require.NoError(t, repo.Create(ctx, card))

		card.CardholderName = "Renamed Holder"
		card.FXFeePercent = dec("3.0")
		require.NoError(t, repo.Update(ctx, card))

		got, err := repo.GetByID(ctx, card.ID)
		require.NoError(t, err)
		require.Equal(t, "Renamed Holder", got.CardholderName)
		require.True(t, dec("3.0").Equal(got.FXFeePercent))
	})

	t.Run("update missing card", func(t *testing.T) {
		card := testCard()
		card.ID = 999999
		require.ErrorIs(t, repo.Update(ctx, card), models.ErrNotFound)
	})

	t.Run("delete missing card", func(t *testing.T) {
		require.ErrorIs(t, repo.Delete(ctx, 999999), models.ErrNotFound)
	})
}

func TestCreditCardRepository_DeleteSemantics(t *testing.T) {
	ctx := context.Background()
	db := database.TestTx(t)
	cards := NewCreditCardRepository(db)
	invoices := NewInvoiceRepository(db)
	payments := NewVariablePaymentRepository(db)

	card := testCard()
	require.NoError(t, cards.Create(ctx, card))

	inv := &models.CreditCardInvoice{
		CreditCardID: card.ID,
		StartDate:    date(2025, time.June, 1),
		EndDate:      date(2025, time.June, 30),
	}
	require.NoError(t, invoices.Create(ctx, inv))

	payment := &models.VariablePayment{
		Date:             date(2025, time.June, 10),
		Description:      "Groceries",
		Amount:           dec("80.00"),
		Currency:         models.CurrencyBRL,
		Country:          models.CountryBrazil,
		Category:         models.CategoryFood,
		LinkedCreditCard: true,
		CreditCardID:     &card.ID,
	}
	require.NoError(t, payments.Create(ctx, payment))

	require.NoError(t, cards.Delete(ctx, card.ID))

	t.Run("invoices go with the card", func(t *testing.T) {
		_, err := invoices.GetByID(ctx, inv.ID)
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("variable payments survive with the link nulled", func(t *testing.T) {
		got, err := payments.GetByID(ctx, payment.ID)
		require.NoError(t, err)
		require.Nil(t, got.CreditCardID)
	})
}
