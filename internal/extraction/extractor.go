// Package extraction turns sanitized job posting text into a structured JobAnalysis using a
// schema-constrained completion.
package extraction

import (
	"context"
	"log"
	"strings"

	"github.com/jonathan/coverletter-agent/internal/llm"
	"github.com/jonathan/coverletter-agent/internal/prompts"
	"github.com/jonathan/coverletter-agent/internal/schemas"
	"github.com/jonathan/coverletter-agent/internal/types"
)

// DefaultLanguage is the output language of the analysis.
const DefaultLanguage = "Korean"

// noCompanyText stands in for a missing or unavailable company page.
const noCompanyText = "(not provided)"

// Extractor produces JobAnalysis documents.
type Extractor struct {
	completer llm.StructuredCompleter
	schema    *llm.Schema
	tier      llm.ModelTier
	language  string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLanguage sets the output language of the analysis.
func WithLanguage(language string) Option {
	return func(e *Extractor) {
		if language != "" {
			e.language = language
		}
	}
}

// WithTier selects the model tier used for extraction.
func WithTier(tier llm.ModelTier) Option {
	return func(e *Extractor) { e.tier = tier }
}

// New creates an Extractor backed by completer.
func New(completer llm.StructuredCompleter, opts ...Option) (*Extractor, error) {
	schema, err := llm.SchemaFor(schemas.JobAnalysis, "Hiring criteria extracted from a job posting")
	if err != nil {
		return nil, err
	}
	e := &Extractor{
		completer: completer,
		schema:    schema,
		tier:      llm.TierStandard,
		language:  DefaultLanguage,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Analyze extracts hiring criteria from the job posting text, using the company text as context.
// Empty job text returns ErrMissingContent without calling the completion service.
func (e *Extractor) Analyze(ctx context.Context, jobText, companyText string) (*types.JobAnalysis, error) {
	if strings.TrimSpace(jobText) == "" {
		return nil, ErrMissingContent
	}

	prompt, err := BuildPrompt(jobText, companyText, e.language)
	if err != nil {
		return nil, &Error{Message: "failed to build prompt", Cause: err}
	}

	analysis, err := llm.CompleteInto[types.JobAnalysis](ctx, e.completer, e.tier, prompt, e.schema)
	if err != nil {
		log.Printf("[EXTRACT] completion failed: %v", err)
		return nil, &Error{Message: "completion failed", Cause: err}
	}

	if err := analysis.Validate(); err != nil {
		log.Printf("[EXTRACT] analysis rejected: %v", err)
		return nil, &Error{Message: "analysis incomplete", Cause: err}
	}

	log.Printf("[EXTRACT] %d duties, %d skills, %d talent traits, %d keywords",
		len(analysis.JobDescription), len(analysis.RequiredSkills), len(analysis.TalentType), len(analysis.Keywords))
	return analysis, nil
}

// BuildPrompt renders the analysis prompt.
func BuildPrompt(jobText, companyText, language string) (string, error) {
	if strings.TrimSpace(companyText) == "" {
		companyText = noCompanyText
	}
	if language == "" {
		language = DefaultLanguage
	}
	return prompts.Render(prompts.AnalysisFile, prompts.AnalyzeJobKey, map[string]string{
		"JobText":     jobText,
		"CompanyText": companyText,
		"Language":    language,
	})
}
