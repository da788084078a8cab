package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"gitlab.com/afonsoc/finance-tracker/internal/config"
	"gitlab.com/afonsoc/finance-tracker/internal/service"
)

var statusesMonth string

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "Print the payment checklist for a month",
	RunE: func(cmd *cobra.Command, args []string) error {
		month := time.Now()
		if statusesMonth != "" {
			parsed, err := time.Parse("2006-01", statusesMonth)
			if err != nil {
				return fmt.Errorf("invalid month %q, expected YYYY-MM", statusesMonth)
			}
			month = parsed
		}

		return withPool(cmd.Context(), func(ctx context.Context, _ *config.Config, pool *pgxpool.Pool) error {
			svc := service.NewStatusService(pool)
			statuses, err := svc.Checklist(ctx, month)
			if err != nil {
				return err
			}
			if len(statuses) == 0 {
				fmt.Printf("No payments tracked for %s.\n", month.Format("January 2006"))
				return nil
			}

			fmt.Printf("Payment checklist for %s:\n", month.Format("January 2006"))
			for _, st := range statuses {
				description, country := svc.Describe(ctx, &st)
				fmt.Printf("  [%-9s] %-40s %8s %s  due %s  (%s)\n",
					st.Status, description, st.ExpectedAmount.StringFixed(2), st.Currency,
					st.DueDate.Format("2006-01-02"), country)
			}
			return nil
		})
	},
}

func init() {
	statusesCmd.Flags().StringVar(&statusesMonth, "month", "", "month to list (YYYY-MM, default current)")
	rootCmd.AddCommand(statusesCmd)
}
