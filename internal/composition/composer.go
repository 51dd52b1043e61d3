// Package composition drafts a cover letter from a job analysis and a résumé.
package composition

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/coverletter-agent/internal/llm"
	"github.com/jonathan/coverletter-agent/internal/prompts"
	"github.com/jonathan/coverletter-agent/internal/schemas"
	"github.com/jonathan/coverletter-agent/internal/types"
)

// DefaultTargetLength is the requested cover letter length in characters, spaces included.
const DefaultTargetLength = 1000

// DefaultLanguage is the language the cover letter is written in.
const DefaultLanguage = "Korean"

// Composer produces GeneratedContent.
type Composer struct {
	completer    llm.StructuredCompleter
	schema       *llm.Schema
	tier         llm.ModelTier
	language     string
	targetLength int
}

// Option configures a Composer.
type Option func(*Composer)

// WithLanguage sets the output language.
func WithLanguage(language string) Option {
	return func(c *Composer) {
		if language != "" {
			c.language = language
		}
	}
}

// WithTier selects the model tier used for composition.
func WithTier(tier llm.ModelTier) Option {
	return func(c *Composer) { c.tier = tier }
}

// WithTargetLength sets the requested length in characters.
func WithTargetLength(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.targetLength = n
		}
	}
}

// New creates a Composer backed by completer.
func New(completer llm.StructuredCompleter, opts ...Option) (*Composer, error) {
	schema, err := llm.SchemaFor(schemas.GeneratedContent, "A Markdown cover letter and its three-point summary")
	if err != nil {
		return nil, err
	}
	c := &Composer{
		completer:    completer,
		schema:       schema,
		tier:         llm.TierAdvanced,
		language:     DefaultLanguage,
		targetLength: DefaultTargetLength,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Compose writes a cover letter that matches the résumé to the analysis.
// The result is rejected whole unless both fields are non-empty and the summary is no longer
// than the cover letter.
func (c *Composer) Compose(ctx context.Context, analysis *types.JobAnalysis, resumeText string) (*types.GeneratedContent, error) {
	if analysis == nil {
		return nil, ErrMissingAnalysis
	}
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrMissingResume
	}

	prompt, err := BuildPrompt(analysis, resumeText, c.language, c.targetLength)
	if err != nil {
		return nil, &Error{Message: "failed to build prompt", Cause: err}
	}

	content, err := llm.CompleteInto[types.GeneratedContent](ctx, c.completer, c.tier, prompt, c.schema)
	if err != nil {
		log.Printf("[COMPOSE] completion failed: %v", err)
		return nil, &Error{Message: "completion failed", Cause: err}
	}

	content.CoverLetter = strings.TrimSpace(content.CoverLetter)
	content.Summary = strings.TrimSpace(content.Summary)
	if err := CheckStructure(content); err != nil {
		log.Printf("[COMPOSE] content rejected: %v", err)
		return nil, &Error{Message: "content rejected", Cause: err}
	}

	log.Printf("[COMPOSE] cover letter: %d characters, summary: %d characters",
		utf8.RuneCountInString(content.CoverLetter), utf8.RuneCountInString(content.Summary))
	return content, nil
}

// CheckStructure verifies the structural guarantees of generated content.
func CheckStructure(content *types.GeneratedContent) error {
	if err := content.Validate(); err != nil {
		return err
	}
	summary := utf8.RuneCountInString(content.Summary)
	letter := utf8.RuneCountInString(content.CoverLetter)
	if summary > letter {
		return fmt.Errorf("summary (%d characters) is longer than the cover letter (%d characters)", summary, letter)
	}
	return nil
}

// BuildPrompt renders the composition prompt.
func BuildPrompt(analysis *types.JobAnalysis, resumeText, language string, targetLength int) (string, error) {
	if language == "" {
		language = DefaultLanguage
	}
	if targetLength <= 0 {
		targetLength = DefaultTargetLength
	}
	return prompts.Render(prompts.CompositionFile, prompts.ComposeLetterKey, map[string]string{
		"JobDescription": strings.Join(analysis.JobDescription, ", "),
		"RequiredSkills": strings.Join(analysis.RequiredSkills, ", "),
		"TalentType":     strings.Join(analysis.TalentType, ", "),
		"Keywords":       strings.Join(analysis.Keywords, ", "),
		"ResumeText":     resumeText,
		"Language":       language,
		"TargetLength":   strconv.Itoa(targetLength),
	})
}
