package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

// lostRaceDB replays the losing side of two concurrent open-invoice
// creations: inside the transaction the open-invoice lookup misses and the
// insert trips the one-open-invoice-per-card index; outside it, the winner's
// invoice is there to be read back.
type lostRaceDB struct {
	winner models.CreditCardInvoice
}

type fakeRow struct {
	err  error
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return r.scan(dest...)
}

func (d *lostRaceDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *lostRaceDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

// QueryRow outside the transaction serves the winner's open invoice.
func (d *lostRaceDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return fakeRow{scan: func(dest ...any) error {
		*(dest[0].(*int)) = d.winner.ID
		*(dest[1].(*int)) = d.winner.CreditCardID
		*(dest[2].(*time.Time)) = d.winner.StartDate
		*(dest[3].(*time.Time)) = d.winner.EndDate
		*(dest[4].(*bool)) = d.winner.IsClosed
		*(dest[5].(*time.Time)) = d.winner.CreatedAt
		*(dest[6].(*time.Time)) = d.winner.UpdatedAt
		return nil
	}}
}

func (d *lostRaceDB) Begin(context.Context) (pgx.Tx, error) {
	return &lostRaceTx{}, nil
}

type lostRaceTx struct {
	pgx.Tx
}

func (t *lostRaceTx) Rollback(context.Context) error { return nil }

func (t *lostRaceTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	if strings.Contains(sql, "INSERT INTO credit_card_invoices") {
		return fakeRow{err: &pgconn.PgError{
			Code:           "23505",
			ConstraintName: "idx_one_open_invoice_per_card",
		}}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func TestInvoiceService_GetOrCreateOpenInvoiceLostRace(t *testing.T) {
	winner := models.CreditCardInvoice{
		ID:           42,
		CreditCardID: 7,
		StartDate:    date(2025, time.June, 1),
		EndDate:      date(2025, time.June, 30),
	}
	svc := newInvoiceService(&lostRaceDB{winner: winner}, date(2025, time.June, 15))

	inv, err := svc.GetOrCreateOpenInvoice(context.Background(), winner.CreditCardID)
	require.NoError(t, err, "losing the creation race must not surface a conflict")
	require.Equal(t, winner.ID, inv.ID)
	require.Equal(t, winner.StartDate, inv.StartDate)
	require.False(t, inv.IsClosed)
}
