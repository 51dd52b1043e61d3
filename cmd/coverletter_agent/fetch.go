package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/coverletter-agent/internal/fetch"
)

var fetchFlags commonFlags

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a page and print its sanitized text",
	Long: `Fetches a single page the way the wizard does: one GET, scripts, styles, headers and
footers removed, whitespace collapsed, and the text truncated to --max-chars characters.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchFlags.register(fetchCmd)
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := fetchFlags.resolve(cmd, os.Getenv)
	if err != nil {
		return err
	}

	// The headless render may follow the HTTP fetch.
	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.FetchTimeoutDuration(fetch.DefaultTimeout))
	defer cancel()

	result, err := newFetcher(cfg).Fetch(ctx, args[0])
	if err != nil {
		return err
	}
	if result.Text == "" {
		return fmt.Errorf("no readable text at %s", args[0])
	}
	if cfg.Verbose {
		_, _ = fmt.Fprintf(os.Stderr, "HTTP %d, %d characters\n", result.StatusCode, len([]rune(result.Text)))
	}

	return writeOutput(cfg.Output, result.Text)
}

// writeOutput writes text to path, or to stdout when path is empty.
func writeOutput(path, text string) error {
	if path == "" {
		_, err := fmt.Fprintln(os.Stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
