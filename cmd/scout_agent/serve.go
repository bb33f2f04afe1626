package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-sourcer/internal/config"
	"github.com/jonathan/talent-sourcer/internal/db"
	"github.com/jonathan/talent-sourcer/internal/logging"
	"github.com/jonathan/talent-sourcer/internal/pipeline"
	"github.com/jonathan/talent-sourcer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for ingesting records, running resolution passes and matching requirements.`,
	RunE:  runServe,
}

var (
	serveConfig string
	servePort   int
)

func init() {
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "Path to config JSON file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfig)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}
	if secret := os.Getenv("API_SECRET"); secret != "" {
		cfg.APISecret = secret
	}
	if cfg.APISecret == "" {
		return fmt.Errorf("API_SECRET environment variable or api_secret config field is required")
	}

	logger, err := logging.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure is not actionable

	engine := pipeline.New(cfg, logger)

	var store *db.DB
	if cfg.DatabaseURL != "" {
		store, err = db.Connect(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := store.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		if err := restoreFromStore(cmd.Context(), store, engine); err != nil {
			return err
		}
	}

	srv, err := server.New(cfg, engine, store, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// restoreFromStore rebuilds the working set and the last published
// snapshot from the database, so a restarted server can detect splits
// against the pre-restart partition.
func restoreFromStore(ctx context.Context, store *db.DB, engine *pipeline.Engine) error {
	records, err := store.LoadRecords(ctx)
	if err != nil {
		return err
	}
	engine.AddRecords(records)

	version, err := store.LatestVersion(ctx)
	if err != nil {
		return err
	}
	if version == 0 {
		return nil
	}
	snap, err := store.LoadSnapshot(ctx, version)
	if err != nil {
		return err
	}
	engine.Restore(snap)
	return nil
}
