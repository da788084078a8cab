// Package cmd defines the finance-tracker command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"gitlab.com/afonsoc/finance-tracker/internal/config"
	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/logger"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "fintrack - personal multi-country finance tracker",
	Long: `fintrack records fixed and variable payments, credit cards and
exchange rates, and tracks per-month payment status against them.

Credit card spending rolls up into billing-cycle invoices: closing an
invoice opens the next cycle automatically.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withPool loads configuration, connects to the database, and hands both to
// fn, closing the pool afterwards.
func withPool(ctx context.Context, fn func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
