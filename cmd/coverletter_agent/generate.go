package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/coverletter-agent/internal/composition"
	"github.com/jonathan/coverletter-agent/internal/ingestion"
	"github.com/jonathan/coverletter-agent/internal/observability"
	"github.com/jonathan/coverletter-agent/internal/pipeline"
	"github.com/jonathan/coverletter-agent/internal/types"
)

var (
	generateFlags    commonFlags
	generateAnalysis string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a cover letter from a saved analysis and a résumé",
	Long:  `Reads the JSON written by "analyze" and a résumé file, and composes the cover letter as Markdown.`,
	RunE:  runGenerate,
}

func init() {
	generateFlags.register(generateCmd)
	generateCmd.Flags().StringVarP(&generateAnalysis, "analysis", "a", "", "Path to the analysis JSON written by analyze (required)")
	_ = generateCmd.MarkFlagRequired("analysis")
	rootCmd.AddCommand(generateCmd)
}

// loadAnalysis reads and validates an analysis JSON file.
func loadAnalysis(path string) (*types.JobAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis: %w", err)
	}
	var analysis types.JobAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}
	if err := analysis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis: %w", err)
	}
	return &analysis, nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := generateFlags.resolve(cmd, os.Getenv)
	if err != nil {
		return err
	}
	if cfg.Resume == "" {
		return fmt.Errorf("--resume is required")
	}

	analysis, err := loadAnalysis(generateAnalysis)
	if err != nil {
		return err
	}

	ctx := context.Background()
	resume, err := ingestion.ReadFile(ctx, cfg.Resume)
	if err != nil {
		return fmt.Errorf("failed to read résumé: %w", err)
	}

	client, err := newCompleter(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	composer, err := composition.New(client, composition.WithLanguage(cfg.Language))
	if err != nil {
		return err
	}

	composeCtx, cancel := context.WithTimeout(ctx, cfg.CompletionTimeoutDuration(pipeline.DefaultCompletionTimeout))
	defer cancel()
	content, err := composer.Compose(composeCtx, analysis, resume.Text)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintGeneratedContent(content)
	}
	return writeOutput(cfg.Output, content.CoverLetter)
}
