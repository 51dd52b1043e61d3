package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/coverletter-agent/internal/config"
	"github.com/jonathan/coverletter-agent/internal/observability"
	"github.com/jonathan/coverletter-agent/internal/pipeline"
)

var runFlags commonFlags

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full wizard: analyze the posting, read the résumé, write the cover letter",
	Long: `Runs the three wizard steps in order:
  1. fetch the job posting (and company page) and extract the hiring criteria
  2. read the résumé
  3. compose the cover letter and its three-point summary

The cover letter is written as Markdown to --out, or printed when --out is not set.
Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runWizardCmd,
}

func init() {
	runFlags.register(runCommand)
	rootCmd.AddCommand(runCommand)
}

// wizardError reports the failed step of a wizard run with its user-facing message.
type wizardError struct {
	Step    string
	Outcome pipeline.Outcome
}

func (e *wizardError) Error() string {
	return fmt.Sprintf("%s failed (%s): %s", e.Step, e.Outcome.Kind, e.Outcome.Error)
}

func runWizardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := runFlags.resolve(cmd, os.Getenv)
	if err != nil {
		return err
	}
	if cfg.JobURL == "" {
		return fmt.Errorf("--job-url is required")
	}
	if cfg.Resume == "" {
		return fmt.Errorf("--resume is required")
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

	_, err = runWizard(ctx, orch, cfg, observability.NewPrinter(os.Stderr), os.Stdout)
	return err
}

// runWizard drives one session through every step. Progress and summaries go to printer; the
// cover letter goes to cfg.Output, or to stdout when no output file is configured.
func runWizard(ctx context.Context, orch *pipeline.Orchestrator, cfg *config.Config, printer *observability.Printer, stdout io.Writer) (*pipeline.Session, error) {
	sess := pipeline.NewSession(pipeline.ParseLocale(cfg.Locale))
	orch = orch.WithProgress(func(event pipeline.ProgressEvent) {
		printer.PrintStep(event.Stage, event.Step, event.Message)
	})

	step := func(name string, outcome pipeline.Outcome) error {
		if outcome.Success {
			return nil
		}
		printer.PrintFailure(string(outcome.Kind), outcome.Error)
		return &wizardError{Step: name, Outcome: outcome}
	}

	if err := step("analyze", orch.Analyze(ctx, sess, cfg.JobURL, cfg.CompanyURL)); err != nil {
		return sess, err
	}
	if cfg.Verbose {
		printer.PrintJobAnalysis(sess.Snapshot.Analysis)
	}

	data, err := os.ReadFile(cfg.Resume)
	if err != nil {
		return sess, fmt.Errorf("failed to read résumé: %w", err)
	}
	upload := pipeline.Upload{FileName: filepath.Base(cfg.Resume), Data: data}
	if err := step("resume", orch.AttachResume(ctx, sess, upload)); err != nil {
		return sess, err
	}
	printer.PrintResume(sess.Snapshot.Resume)

	if err := step("generate", orch.Generate(ctx, sess)); err != nil {
		return sess, err
	}
	content := sess.Snapshot.Content
	if cfg.Verbose {
		printer.PrintGeneratedContent(content)
	}

	if cfg.Output != "" {
		if err := writeOutput(cfg.Output, content.CoverLetter+"\n"); err != nil {
			return sess, err
		}
		_, _ = fmt.Fprintf(stdout, "Cover letter written to %s\n\n%s\n", cfg.Output, content.Summary)
		return sess, nil
	}

	_, err = fmt.Fprintf(stdout, "%s\n\n%s\n%s\n", content.CoverLetter, strings.Repeat("-", 40), content.Summary)
	return sess, err
}
