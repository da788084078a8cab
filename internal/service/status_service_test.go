package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
	"gitlab.com/afonsoc/finance-tracker/internal/repository"
)

func newStatusService(db database.DB, today time.Time) *StatusService {
	svc := NewStatusService(db)
	svc.now = func() time.Time { return today }
	return svc
}

func TestDeriveStatus(t *testing.T) {
	today := date(2025, time.June, 15)
	svc := newStatusService(nil, today)

	t.Run("paid sets status and stamps paid date", func(t *testing.T) {
		status := &models.PaymentStatus{IsPaid: true, DueDate: date(2025, time.June, 20)}
		svc.deriveStatus(status)
		require.Equal(t, models.StatusPaid, status.Status)
		require.NotNil(t, status.PaidDate)
		require.Equal(t, today, *status.PaidDate)
	})

	t.Run("paid keeps an explicit paid date", func(t *testing.T) {
		paidOn := date(2025, time.June, 2)
		status := &models.PaymentStatus{IsPaid: true, PaidDate: &paidOn, DueDate: date(2025, time.June, 20)}
		svc.deriveStatus(status)
		require.Equal(t, paidOn, *status.PaidDate)
	})

	t.Run("unpaid past due is overdue", func(t *testing.T) {
		status := &models.PaymentStatus{DueDate: date(2025, time.June, 14)}
		svc.deriveStatus(status)
		require.Equal(t, models.StatusOverdue, status.Status)
		require.Nil(t, status.PaidDate)
	})

	t.Run("due today is still pending", func(t *testing.T) {
		status := &models.PaymentStatus{DueDate: today}
		svc.deriveStatus(status)
		require.Equal(t, models.StatusPending, status.Status)
	})

	t.Run("unpaid clears a stale paid date", func(t *testing.T) {
		paidOn := date(2025, time.June, 2)
		status := &models.PaymentStatus{IsPaid: false, PaidDate: &paidOn, DueDate: date(2025, time.June, 30)}
		svc.deriveStatus(status)
		require.Nil(t, status.PaidDate)
	})

	t.Run("cancelled is never rederived", func(t *testing.T) {
		status := &models.PaymentStatus{Status: models.StatusCancelled, DueDate: date(2025, time.June, 1)}
		svc.deriveStatus(status)
		require.Equal(t, models.StatusCancelled, status.Status)
	})
}

func TestStatusService_CreateFixed(t *testing.T) {
	ctx := context.Background()
	db := database.TestTx(t)
	svc := newStatusService(db, date(2025, time.June, 15))

	rent := &models.FixedPayment{
		Description: "Rent",
		Amount:      dec("1200.00"),
		Currency:    models.CurrencyEUR,
		Country:     models.CountryPortugal,
		Frequency:   models.FrequencyMonthly,
		StartDate:   date(2024, time.January, 1),
		IsActive:    true,
	}
	require.NoError(t, repository.NewFixedPaymentRepository(db).Create(ctx, rent))

	status := &models.PaymentStatus{
		Ref:       models.FixedRef(rent.ID),
		MonthYear: date(2025, time.June, 1),
		DueDate:   date(2025, time.June, 5),
	}
	require.NoError(t, svc.Create(ctx, status))

	require.True(t, dec("1200.00").Equal(status.ExpectedAmount))
	require.Equal(t, models.CurrencyEUR, status.Currency)
	require.Equal(t, models.StatusOverdue, status.Status, "June 5 is past June 15")

	t.Run("second row for the same month conflicts", func(t *testing.T) {
		dup := &models.PaymentStatus{
			Ref:       models.FixedRef(rent.ID),
			MonthYear: date(2025, time.June, 28),
			DueDate:   date(2025, time.June, 5),
		}
		require.ErrorIs(t, svc.Create(ctx, dup), models.ErrConflict)
	})

	t.Run("next month gets its own row", func(t *testing.T) {
		next := &models.PaymentStatus{
			Ref:       models.FixedRef(rent.ID),
			MonthYear: date(2025, time.July, 1),
			DueDate:   date(2025, time.July, 5),
		}
		require.NoError(t, svc.Create(ctx, next))
		require.Equal(t, models.StatusPending, next.Status)
	})

	t.Run("unset reference is rejected", func(t *testing.T) {
		err := svc.Create(ctx, &models.PaymentStatus{
			MonthYear: date(2025, time.June, 1),
			DueDate:   date(2025, time.June, 5),
		})
		require.ErrorIs(t, err, models.ErrInvalidRef)
	})
}

func TestStatusService_VariableCopiesBaseAmount(t *testing.T) {
	ctx := context.Background()
	db := database.TestTx(t)
	svc := newStatusService(db, date(2025, time.June, 15))
	card := newTestCard(t, db)

	// A USD charge on a BRL Brazilian card carries both surcharges, but the
	// checklist tracks the base amount only.
	payment := &models.VariablePayment{
		Date:             date(2025, time.June, 10),
		Description:      "Flight tickets",
		Amount:           dec("100.00"),
		Currency:         models.CurrencyUSD,
		Country:          models.CountryBrazil,
		Category:         models.CategoryTransport,
		LinkedCreditCard: true,
		CreditCardID:     &card.ID,
	}
	require.NoError(t, repository.NewVariablePaymentRepository(db).Create(ctx, payment))
	require.False(t, payment.FXFeeAmount.IsZero(), "fee derivation must have run")

	status := &models.PaymentStatus{
		Ref:       models.VariableRef(payment.ID),
		MonthYear: date(2025, time.June, 1),
		DueDate:   date(2025, time.June, 20),
	}
	require.NoError(t, svc.Create(ctx, status))

	require.True(t, dec("100.00").Equal(status.ExpectedAmount),
		"expected base amount, got %s", status.ExpectedAmount)
	require.Equal(t, models.CurrencyUSD, status.Currency)
}

func TestStatusService_InvoiceCopiesTotals(t *testing.T) {
	ctx := context.Background()
	db := database.TestTx(t)
	svc := newStatusService(db, date(2025, time.June, 15))
	card := newTestCard(t, db)

	inv := &models.CreditCardInvoice{
		CreditCardID: card.ID,
		StartDate:    date(2025, time.May, 1),
		EndDate:      date(2025, time.May, 31),
		IsClosed:     true,
	}
	require.NoError(t, repository.NewInvoiceRepository(db).Create(ctx, inv))

	statuses := repository.NewPaymentStatusRepository(db)
	for month, amount := range map[time.Month]string{
		time.March: "80.00",
		time.April: "20.50",
	} {
		require.NoError(t, statuses.Create(ctx, &models.PaymentStatus{
			Ref:            models.InvoiceRef(inv.ID),
			MonthYear:      date(2025, month, 1),
			DueDate:        date(2025, month, 20),
			Status:         models.StatusPaid,
			IsPaid:         true,
			ExpectedAmount: dec(amount),
			Currency:       models.CurrencyBRL,
		}))
	}

	t.Run("new row snapshots the invoice total and card currency", func(t *testing.T) {
		status := &models.PaymentStatus{
			Ref:       models.InvoiceRef(inv.ID),
			MonthYear: date(2025, time.June, 1),
			DueDate:   date(2025, time.June, 20),
		}
		require.NoError(t, svc.Create(ctx, status))
		require.True(t, dec("100.50").Equal(status.ExpectedAmount), "got %s", status.ExpectedAmount)
		require.Equal(t, models.CurrencyBRL, status.Currency)

		t.Run("rewriting excludes the row's own contribution", func(t *testing.T) {
			require.NoError(t, svc.Update(ctx, status))
			require.True(t, dec("100.50").Equal(status.ExpectedAmount),
				"total must not compound on resave, got %s", status.ExpectedAmount)
		})
	})

	t.Run("missing invoice fails", func(t *testing.T) {
		status := &models.PaymentStatus{
			Ref:       models.InvoiceRef(999999),
			MonthYear: date(2025, time.June, 1),
			DueDate:   date(2025, time.June, 20),
		}
		require.ErrorIs(t, svc.Create(ctx, status), models.ErrNotFound)
	})
}

func TestStatusService_CancelledSurvivesResave(t *testing.T) {
	ctx := context.Background()
	db := database.TestTx(t)
	svc := newStatusService(db, date(2025, time.June, 15))

	gym := &models.FixedPayment{
		Description: "Gym",
		Amount:      dec("45.00"),
		Currency:    models.CurrencyEUR,
		Country:     models.CountryPortugal,
		Frequency:   models.FrequencyMonthly,
		StartDate:   date(2024, time.January, 1),
		IsActive:    true,
	}
	require.NoError(t, repository.NewFixedPaymentRepository(db).Create(ctx, gym))

	status := &models.PaymentStatus{
		Ref:       models.FixedRef(gym.ID),
		MonthYear: date(2025, time.June, 1),
		DueDate:   date(2025, time.June, 1),
		Status:    models.StatusCancelled,
	}
	require.NoError(t, svc.Create(ctx, status))
	require.Equal(t, models.StatusCancelled, status.Status,
		"cancelled beats overdue derivation even past due")

	require.NoError(t, svc.Update(ctx, status))
	require.Equal(t, models.StatusCancelled, status.Status)
}

func TestStatusService_Describe(t *testing.T) {
	ctx := context.Background()
	db := database.TestTx(t)
	svc := newStatusService(db, date(2025, time.June, 15))

	t.Run("fixed payment", func(t *testing.T) {
		rent := &models.FixedPayment{
			Description: "Rent",
			Amount:      dec("1200.00"),
			Currency:    models.CurrencyEUR,
			Country:     models.CountryPortugal,
			Frequency:   models.FrequencyMonthly,
			StartDate:   date(2024, time.January, 1),
			IsActive:    true,
		}
		require.NoError(t, repository.NewFixedPaymentRepository(db).Create(ctx, rent))

		description, country := svc.Describe(ctx, &models.PaymentStatus{Ref: models.FixedRef(rent.ID)})
		require.Equal(t, "Rent", description)
		require.Equal(t, "Portugal", country)
	})

	t.Run("invoice uses cardholder and issuer country", func(t *testing.T) {
		card := newTestCard(t, db)
		inv := &models.CreditCardInvoice{
			CreditCardID: card.ID,
			StartDate:    date(2025, time.June, 1),
			EndDate:      date(2025, time.June, 30),
		}
		require.NoError(t, repository.NewInvoiceRepository(db).Create(ctx, inv))

		description, country := svc.Describe(ctx, &models.PaymentStatus{Ref: models.InvoiceRef(inv.ID)})
		require.Equal(t, "Credit Card Invoice - Test Cardholder", description)
		require.Equal(t, "Brazil", country)
	})

	t.Run("dangling reference falls back", func(t *testing.T) {
		description, country := svc.Describe(ctx, &models.PaymentStatus{Ref: models.FixedRef(999999)})
		require.Equal(t, "Unknown Payment", description)
		require.Equal(t, "Unknown", country)
	})
}

func TestStatusService_Checklist(t *testing.T) {
	ctx := context.Background()
	db := database.TestTx(t)
	svc := newStatusService(db, date(2025, time.June, 15))

	fixedRepo := repository.NewFixedPaymentRepository(db)
	month := date(2025, time.June, 1)
	for _, p := range []struct {
		description string
		due         time.Time
	}{
		{"Internet", date(2025, time.June, 25)},
		{"Rent", date(2025, time.June, 5)},
	} {
		payment := &models.FixedPayment{
			Description: p.description,
			Amount:      dec("50.00"),
			Currency:    models.CurrencyEUR,
			Country:     models.CountryPortugal,
			Frequency:   models.FrequencyMonthly,
			StartDate:   date(2024, time.January, 1),
			IsActive:    true,
		}
		require.NoError(t, fixedRepo.Create(ctx, payment))
		require.NoError(t, svc.Create(ctx, &models.PaymentStatus{
			Ref:       models.FixedRef(payment.ID),
			MonthYear: month,
			DueDate:   p.due,
		}))
	}

	checklist, err := svc.Checklist(ctx, month)
	require.NoError(t, err)
	require.Len(t, checklist, 2)
	require.Equal(t, date(2025, time.June, 5), checklist[0].DueDate, "ordered by due date")

	description, _ := svc.Describe(ctx, &checklist[0])
	require.Equal(t, "Rent", description)

	other, err := svc.Checklist(ctx, date(2025, time.September, 1))
	require.NoError(t, err)
	require.Empty(t, other)
}
