package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"gitlab.com/afonsoc/finance-tracker/internal/config"
	"gitlab.com/afonsoc/finance-tracker/internal/service"
)

var (
	seedMonths int
	seedCardID int
)

var seedInvoicesCmd = &cobra.Command{
	Use:   "seed-invoices",
	Short: "Backfill billing cycles for cards without invoices",
	Long: `Create consecutive calendar-month invoices for active credit cards
that have none yet, ending with an open invoice for the current month.
Cards that already have invoices are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, _ *config.Config, pool *pgxpool.Pool) error {
			created, err := service.NewInvoiceService(pool).SeedInvoices(ctx, seedCardID, seedMonths)
			if err != nil {
				return err
			}
			fmt.Printf("Created %d invoices.\n", created)
			return nil
		})
	},
}

var closeInvoiceCmd = &cobra.Command{
	Use:   "close-invoice <invoice-id>",
	Short: "Close a billing cycle and open the next one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var invoiceID int
		if _, err := fmt.Sscanf(args[0], "%d", &invoiceID); err != nil {
			return fmt.Errorf("invalid invoice id %q", args[0])
		}
		return withPool(cmd.Context(), func(ctx context.Context, _ *config.Config, pool *pgxpool.Pool) error {
			successor, err := service.NewInvoiceService(pool).CloseInvoice(ctx, invoiceID)
			if err != nil {
				return err
			}
			if successor == nil {
				fmt.Printf("Invoice %d was already closed.\n", invoiceID)
				return nil
			}
			fmt.Printf("Invoice %d closed. Next cycle: %s to %s (invoice %d).\n",
				invoiceID,
				successor.StartDate.Format("2006-01-02"),
				successor.EndDate.Format("2006-01-02"),
				successor.ID)
			return nil
		})
	},
}

func init() {
	seedInvoicesCmd.Flags().IntVar(&seedMonths, "months", 3, "number of monthly cycles to create per card")
	seedInvoicesCmd.Flags().IntVar(&seedCardID, "credit-card-id", 0, "only process this credit card")
	rootCmd.AddCommand(seedInvoicesCmd)
	rootCmd.AddCommand(closeInvoiceCmd)
}
