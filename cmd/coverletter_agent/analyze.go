package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/coverletter-agent/internal/observability"
	"github.com/jonathan/coverletter-agent/internal/pipeline"
)

var analyzeFlags commonFlags

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract the hiring criteria from a job posting",
	Long: `Fetches the job posting (and the optional company page) concurrently and extracts the job
description, required skills, talent type and keywords as JSON. The JSON can be passed to
"generate --analysis".`,
	RunE: runAnalyze,
}

func init() {
	analyzeFlags.register(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := analyzeFlags.resolve(cmd, os.Getenv)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := newCompleter(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	orch, err := newOrchestrator(cfg, newSource(cfg, nil), client)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stderr)
	sess := pipeline.NewSession(pipeline.ParseLocale(cfg.Locale))
	if out := orch.Analyze(ctx, sess, cfg.JobURL, cfg.CompanyURL); !out.Success {
		printer.PrintFailure(string(out.Kind), out.Error)
		return &wizardError{Step: "analyze", Outcome: out}
	}
	if cfg.Verbose {
		printer.PrintJobAnalysis(sess.Snapshot.Analysis)
	}

	data, err := json.MarshalIndent(sess.Snapshot.Analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	return writeOutput(cfg.Output, string(data))
}
