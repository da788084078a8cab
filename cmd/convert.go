package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"gitlab.com/afonsoc/finance-tracker/internal/config"
	"gitlab.com/afonsoc/finance-tracker/internal/exchange"
	"gitlab.com/afonsoc/finance-tracker/internal/models"
	"gitlab.com/afonsoc/finance-tracker/internal/repository"
)

var convertDate string

var convertCmd = &cobra.Command{
	Use:   "convert <amount> <from> <to>",
	Short: "Convert an amount between currencies using stored rates",
	Example: `  fintrack convert 100.00 BRL EUR
  fintrack convert 250 USD BRL --date 2025-03-15`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[0])
		}
		from, to := models.Currency(args[1]), models.Currency(args[2])
		if !from.Valid() || !to.Valid() {
			return fmt.Errorf("%w: currencies must be one of BRL, EUR, USD", models.ErrValidation)
		}

		on := time.Now()
		if convertDate != "" {
			if on, err = time.Parse("2006-01-02", convertDate); err != nil {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", convertDate)
			}
		}

		return withPool(cmd.Context(), func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
			converter := exchange.NewConverter(repository.NewExchangeRateRepository(pool), cfg.ExchangeCacheTTL)
			result, err := converter.Convert(ctx, amount, from, to, on)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s = %s %s (rate %s as of %s)\n",
				amount.StringFixed(2), from, result.Amount.StringFixed(2), to,
				result.Rate, result.RateDate.Format("2006-01-02"))
			return nil
		})
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertDate, "date", "", "rate date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(convertCmd)
}
