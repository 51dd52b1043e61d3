// Package types provides type definitions for the structured documents passed between pipeline stages.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// JobAnalysis is the structured hiring criteria extracted from a job posting and company page.
// JSON field names follow the wire shape the front end already consumes.
type JobAnalysis struct {
	JobDescription []string `json:"jobDescription" validate:"required"`
	RequiredSkills []string `json:"requiredSkills" validate:"required"`
	TalentType     []string `json:"talentType" validate:"required"`
	Keywords       []string `json:"keywords" validate:"required"` // 5-7 recommended, not enforced
}

// Validate checks that every list is present. An empty list is a valid answer.
func (a *JobAnalysis) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}

// Clone returns a deep copy so callers can never mutate a stored analysis.
func (a *JobAnalysis) Clone() *JobAnalysis {
	if a == nil {
		return nil
	}
	return &JobAnalysis{
		JobDescription: cloneStrings(a.JobDescription),
		RequiredSkills: cloneStrings(a.RequiredSkills),
		TalentType:     cloneStrings(a.TalentType),
		Keywords:       cloneStrings(a.Keywords),
	}
}

// GeneratedContent is the composed cover letter plus its short summary.
type GeneratedContent struct {
	CoverLetter string `json:"coverLetter" validate:"required"` // Markdown
	Summary     string `json:"summary" validate:"required"`     // 3-point summary
}

// Validate checks that both fields are present.
func (c *GeneratedContent) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// Resume is the plain text extracted from an uploaded résumé file.
type Resume struct {
	Text       string `json:"text" validate:"required"`
	FileName   string `json:"file_name,omitempty"`
	Format     string `json:"format,omitempty"`     // text, markdown, pdf, docx
	Characters int    `json:"characters"`           // rune count of Text
	Hash       string `json:"hash,omitempty"`       // SHA256 hex digest of Text
}

// IsEmpty reports whether the résumé carries no usable text.
func (r *Resume) IsEmpty() bool {
	return r == nil || strings.TrimSpace(r.Text) == ""
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
