package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/coverletter-agent/internal/db"
)

var (
	dbURL          string
	pruneOlderThan time.Duration
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database migrations",
	RunE:  runMigrate,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete stale sessions and cached pages",
	Long:  `Deletes sessions not updated within --older-than, and cached pages fetched before it.`,
	RunE:  runPrune,
}

func init() {
	for _, cmd := range []*cobra.Command{migrateCmd, pruneCmd} {
		cmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
		rootCmd.AddCommand(cmd)
	}
	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 30*24*time.Hour, "Age after which sessions and cached pages are deleted")
}

// connect opens the database named by --db-url or DATABASE_URL.
func connect(ctx context.Context) (*db.DB, error) {
	url := dbURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	return db.Connect(ctx, url)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	database, err := connect(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	version, err := database.MigrationVersion(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Database is at migration version %d\n", version)
	return nil
}

func runPrune(_ *cobra.Command, _ []string) error {
	if pruneOlderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}

	ctx := context.Background()
	database, err := connect(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	cutoff := time.Now().Add(-pruneOlderThan)
	sessions, err := database.DeleteSessionsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	pages, err := database.DeletePagesBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Deleted %d sessions and %d cached pages older than %s\n", sessions, pages, pruneOlderThan)
	return nil
}
