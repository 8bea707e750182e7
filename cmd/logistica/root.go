package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"logistica/infrastructure/config"
	"logistica/infrastructure/jsonstore"
	"logistica/infrastructure/sqlite"
)

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "logistica",
		Short: "Return logistics: product catalog, return schedules, conference and Rua 08 storage",
		Long: `logistica serves the warehouse web application and offers maintenance
commands for seeding the admin account and importing CSV files.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./config.yaml when present)")

	load := func() (config.Config, error) {
		cfg, err := config.Load(configFile)
		if err != nil {
			return config.Config{}, err
		}
		slog.SetDefault(config.NewLogger(cfg.Logging, os.Stderr))
		return cfg, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newSeedAdminCmd(load),
		newImportCmd(load),
	)
	return root
}

type configLoader func() (config.Config, error)

// openStorage opens the sqlite database with its schema applied and the JSON
// collection store.
func openStorage(ctx context.Context, cfg config.Config) (*sqlite.DB, *jsonstore.Store, error) {
	db, err := sqlite.OpenDB(cfg.Storage.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if cfg.Storage.MigrationsDir != "" {
		err = sqlite.ApplyMigrations(ctx, db, cfg.Storage.MigrationsDir)
	} else {
		err = sqlite.ApplyEmbeddedMigrations(ctx, db)
	}
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}

	store, err := jsonstore.Open(cfg.Storage.DataDir)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, store, nil
}
