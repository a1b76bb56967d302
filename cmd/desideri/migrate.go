package main

import (
	"context"

	"github.com/spf13/cobra"

	"desideri-go/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Creates or updates the schema on the configured database. Safe to run
repeatedly; useful before the first serve in CI or on a fresh Postgres.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func openStore() (*db.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger.Info("connecting to database", "driver", cfg.DBDriver)
	return db.Open(cfg.DBDriver, cfg.DBDSN)
}

func runMigrate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("migrations applied", "dialect", store.Dialect)
	return nil
}
