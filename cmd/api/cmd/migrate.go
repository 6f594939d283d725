package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eventhub/eventhub-go/internal/repository"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := migrateUp(cmd.Context(), cfg.DBDriver, cfg.DatabaseDSN); err != nil {
			return err
		}
		logger.Info().Str("driver", cfg.DBDriver).Msg("migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		db, err := repository.NewDB(cmd.Context(), cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err := repository.MigrateDown(db, migrateSteps); err != nil {
			return err
		}
		logger.Info().Int("steps", migrateSteps).Msg("migrations rolled back")
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

// migrateUp opens a dedicated pool, since the migrator closes it when done.
func migrateUp(ctx context.Context, driver, dsn string) error {
	db, err := repository.NewDB(ctx, driver, dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	return repository.MigrateUp(db)
}
