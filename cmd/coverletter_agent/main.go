// Package main provides the entry point for the cover letter agent CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coverletter_agent",
	Short: "Cover letter agent",
	Long: `Cover letter agent reads a job posting (and optionally a company page), extracts the hiring
criteria, and writes a cover letter and a three-point summary from your résumé.

Use "run" for the full wizard from the terminal, or "serve" to drive sessions over HTTP.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
