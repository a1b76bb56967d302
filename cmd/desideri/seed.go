package main

import (
	"context"

	"github.com/spf13/cobra"

	"desideri-go/internal/db"
)

var (
	seedForce bool
	seedFile  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the menu catalog",
	Long: `Loads the menu catalog YAML (the embedded default unless --file or
catalog_file is set). Items are upserted by name. Without --force a menu
that already has items is left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "upsert even when the menu is not empty")
	seedCmd.Flags().StringVar(&seedFile, "file", "", "catalog YAML (overrides catalog_file)")
}

func runSeed(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.CatalogFile
	if seedFile != "" {
		path = seedFile
	}
	catalog, err := db.LoadCatalog(path)
	if err != nil {
		return err
	}

	store, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	empty, err := store.IsCatalogEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty && !seedForce {
		logger.Info("menu already populated, skipping (use --force to upsert)")
		return nil
	}
	if err := store.SeedCatalog(ctx, catalog); err != nil {
		return err
	}
	logger.Info("catalog seeded", "items", len(catalog.Menu))
	return nil
}
