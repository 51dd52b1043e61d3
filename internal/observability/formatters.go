// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/coverletter-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// writeList writes up to limit items under a heading.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", clip(items[i], 50)))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
	sb.WriteString("\n")
}

// PrintJobAnalysis outputs a human-readable summary of the extracted hiring criteria.
func (p *Printer) PrintJobAnalysis(analysis *types.JobAnalysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	writeList(&sb, "Job Description", analysis.JobDescription, maxItemsToShow)
	writeList(&sb, "Required Skills", analysis.RequiredSkills, maxItemsToShow)
	writeList(&sb, "Talent Type", analysis.TalentType, 3)
	if len(analysis.Keywords) > 0 {
		sb.WriteString("Keywords: " + strings.Join(analysis.Keywords, ", "))
	}

	p.printBox("JOB ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResume outputs the metadata of an attached résumé.
func (p *Printer) PrintResume(resume *types.Resume) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", resume.FileName))
	sb.WriteString(fmt.Sprintf("Format:   %s\n", resume.Format))
	sb.WriteString(fmt.Sprintf("Extracted %d characters\n", resume.Characters))
	if resume.Hash != "" {
		sb.WriteString(fmt.Sprintf("SHA256:   %s", clip(resume.Hash, 16)))
	}

	p.printBox("RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGeneratedContent outputs the summary and the opening lines of the cover letter.
func (p *Printer) PrintGeneratedContent(content *types.GeneratedContent) {
	if content == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("Summary:\n")
	for _, line := range strings.Split(content.Summary, "\n") {
		if strings.TrimSpace(line) != "" {
			sb.WriteString("  " + line + "\n")
		}
	}
	sb.WriteString("\n")

	lines := strings.Split(content.CoverLetter, "\n")
	sb.WriteString(fmt.Sprintf("Cover letter: %d characters, %d lines\n",
		utf8.RuneCountInString(content.CoverLetter), len(lines)))
	count := min(len(lines), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString("  " + lines[i] + "\n")
	}
	if len(lines) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more lines", len(lines)-maxItemsToShow))
	}

	p.printBox("GENERATED CONTENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStep outputs a one-line progress marker for a wizard step.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStep(stage int, step, message string) {
	fmt.Fprintf(p.out, "[%d/3] %-8s %s\n", stage, step, message)
}

// PrintFailure outputs a failed action with its user-facing message.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFailure(kind, message string) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip("⚠ "+kind, boxWidth-4))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(message, boxWidth-4))
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}
