package cmd

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"gitlab.com/afonsoc/finance-tracker/internal/config"
	"gitlab.com/afonsoc/finance-tracker/internal/database"
	"gitlab.com/afonsoc/finance-tracker/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, _ *config.Config, pool *pgxpool.Pool) error {
			if err := database.RunMigrations(ctx, pool); err != nil {
				return err
			}
			logger.Log.Info().Msg("database schema up to date")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
