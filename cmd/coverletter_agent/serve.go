package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/coverletter-agent/internal/config"
	"github.com/jonathan/coverletter-agent/internal/db"
	"github.com/jonathan/coverletter-agent/internal/fetch"
	"github.com/jonathan/coverletter-agent/internal/pipeline"
	"github.com/jonathan/coverletter-agent/internal/server"
)

var (
	serveFlags   commonFlags
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that drives wizard sessions over JSON endpoints.

Sessions are kept in memory unless a database is configured with --db-url or DATABASE_URL, in
which case sessions and fetched pages are stored in PostgreSQL. JWT_SECRET is required.`,
	RunE: runServe,
}

func init() {
	serveFlags.register(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := serveFlags.resolve(cmd, os.Getenv)
	if err != nil {
		return err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	ctx := context.Background()
	client, err := newCompleter(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	var (
		database *db.DB
		store    pipeline.SessionStore = pipeline.NewMemoryStore()
		pages    fetch.PageStore
	)
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if serveMigrate {
			if err := database.Migrate(ctx); err != nil {
				database.Close()
				return err
			}
		}
		store = pipeline.NewPostgresStore(database)
		pages = database
		log.Printf("[serve] sessions and page cache stored in PostgreSQL")
	} else {
		log.Printf("[serve] no database configured; sessions are kept in memory")
	}

	orch, err := newOrchestrator(cfg, newSource(cfg, pages), client)
	if err != nil {
		if database != nil {
			database.Close()
		}
		return err
	}

	srv, err := server.New(server.Config{
		Port:         servePort,
		Orchestrator: orch,
		Store:        store,
		JWT:          jwtConfig,
		DB:           database,
	})
	if err != nil {
		if database != nil {
			database.Close()
		}
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
