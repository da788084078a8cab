package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations creates the database schema.
//
// Two constraints back the invoice engine's application-level invariants:
// the partial unique index on open invoices (at most one open invoice per
// card) and the per-kind partial unique indexes on payment_statuses (at most
// one checklist row per obligation per month). A CHECK constraint guarantees
// a status row references exactly one obligation.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			base_currency TEXT NOT NULL DEFAULT 'EUR',
			monthly_income_brl DECIMAL(10, 2) NOT NULL DEFAULT 0,
			monthly_income_eur DECIMAL(10, 2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS credit_cards (
			id SERIAL PRIMARY KEY,
			issuer_country TEXT NOT NULL,
			currency TEXT NOT NULL,
			fx_fee_percent DECIMAL(5, 2) NOT NULL DEFAULT 0,
			iof_percent DECIMAL(5, 2) NOT NULL DEFAULT 0,
			cardholder_name TEXT NOT NULL,
			final_digits CHAR(4) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS exchange_rates (
			id SERIAL PRIMARY KEY,
			from_currency TEXT NOT NULL,
			to_currency TEXT NOT NULL,
			rate DECIMAL(10, 6) NOT NULL CHECK (rate > 0),
			date DATE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (from_currency, to_currency, date)
		)`,

		`CREATE TABLE IF NOT EXISTS fixed_payments (
			id SERIAL PRIMARY KEY,
			description TEXT NOT NULL,
			amount DECIMAL(10, 2) NOT NULL CHECK (amount > 0),
			currency TEXT NOT NULL,
			country TEXT NOT NULL,
			frequency TEXT NOT NULL DEFAULT 'monthly',
			start_date DATE NOT NULL,
			end_date DATE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS variable_payments (
			id SERIAL PRIMARY KEY,
			date DATE NOT NULL,
			description TEXT NOT NULL,
			amount DECIMAL(10, 2) NOT NULL CHECK (amount > 0),
			currency TEXT NOT NULL,
			country TEXT NOT NULL,
			category TEXT NOT NULL,
			linked_credit_card BOOLEAN NOT NULL DEFAULT FALSE,
			credit_card_id INTEGER REFERENCES credit_cards(id) ON DELETE SET NULL,
			fx_fee_amount DECIMAL(10, 2) NOT NULL DEFAULT 0,
			iof_amount DECIMAL(10, 2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_variable_payments_card ON variable_payments(credit_card_id)`,
		`CREATE INDEX IF NOT EXISTS idx_variable_payments_date ON variable_payments(date)`,

		`CREATE TABLE IF NOT EXISTS credit_card_invoices (
			id SERIAL PRIMARY KEY,
			credit_card_id INTEGER NOT NULL REFERENCES credit_cards(id) ON DELETE CASCADE,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL CHECK (end_date >= start_date),
			is_closed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (credit_card_id, start_date, end_date)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_invoice_per_card
			ON credit_card_invoices(credit_card_id) WHERE NOT is_closed`,

		`CREATE TABLE IF NOT EXISTS payment_statuses (
			id SERIAL PRIMARY KEY,
			fixed_payment_id INTEGER REFERENCES fixed_payments(id) ON DELETE CASCADE,
			variable_payment_id INTEGER REFERENCES variable_payments(id) ON DELETE CASCADE,
			credit_card_invoice_id INTEGER REFERENCES credit_card_invoices(id) ON DELETE CASCADE,
			payment_type TEXT NOT NULL,
			month_year DATE NOT NULL,
			due_date DATE NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			is_paid BOOLEAN NOT NULL DEFAULT FALSE,
			paid_date DATE,
			expected_amount DECIMAL(10, 2) NOT NULL,
			actual_amount DECIMAL(10, 2),
			currency TEXT NOT NULL,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (num_nonnulls(fixed_payment_id, variable_payment_id, credit_card_invoice_id) = 1)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_status_fixed_month
			ON payment_statuses(fixed_payment_id, month_year) WHERE fixed_payment_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_status_variable_month
			ON payment_statuses(variable_payment_id, month_year) WHERE variable_payment_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_status_invoice_month
			ON payment_statuses(credit_card_invoice_id, month_year) WHERE credit_card_invoice_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_payment_statuses_month ON payment_statuses(month_year)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_statuses_due ON payment_statuses(due_date)`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
