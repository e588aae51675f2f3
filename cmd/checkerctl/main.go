// Package main is checkerctl, the operator CLI for the Granblue Checker.
// It talks to the database directly and is meant for deployment tasks
// (migrations, seeding, bulk loads) rather than day-to-day admin work,
// which goes through the API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	databaseURL string
	imageDir    string
	verbose     bool

	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "checkerctl",
	Short: "Operator tools for the Granblue Checker",
	Long: `checkerctl runs deployment tasks against the Granblue Checker database:
schema migrations, taxonomy seeding, bulk item uploads and exports.

The connection string comes from --database-url or DATABASE_URL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&imageDir, "image-dir", envOr("IMAGE_DIR", "./data/images"), "Directory item images are stored in (or set IMAGE_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	bulkUploadCmd.Flags().StringVar(&bulkType, "type", "", "Item type of every row: character, weapon or summon (required)")
	bulkUploadCmd.Flags().StringVar(&bulkCSV, "csv", "", "Path to the bulk sheet (required)")
	bulkUploadCmd.Flags().StringVar(&bulkImages, "images", "", "Directory holding the image files the sheet names")
	_ = bulkUploadCmd.MarkFlagRequired("type")
	_ = bulkUploadCmd.MarkFlagRequired("csv")

	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv or pdf")
	exportCmd.Flags().StringVar(&exportFont, "font", os.Getenv("SNAPSHOT_FONT"), "TrueType/OpenType font for pdf output (or set SNAPSHOT_FONT)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(bulkUploadCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var errNoDatabase = errors.New("no database configured: pass --database-url or set DATABASE_URL")

// openPool connects to the configured database and checks it is reachable.
// The caller closes the pool.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errNoDatabase
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
