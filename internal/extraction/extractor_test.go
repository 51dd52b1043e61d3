package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/coverletter-agent/internal/llm"
)

const validAnalysis = `{
	"jobDescription": ["Design and operate payment APIs", "Mentor backend engineers"],
	"requiredSkills": ["Go", "PostgreSQL", "Clear written communication"],
	"talentType": ["Takes ownership", "Customer obsessed"],
	"keywords": ["fintech", "payments", "backend", "distributed systems", "Go"]
}`

func newExtractor(t *testing.T, stub *llm.Stub, opts ...Option) *Extractor {
	t.Helper()
	e, err := New(stub, opts...)
	require.NoError(t, err)
	return e
}

func TestAnalyze_Success(t *testing.T) {
	stub := llm.NewStub(validAnalysis)
	e := newExtractor(t, stub)

	analysis, err := e.Analyze(context.Background(), "Senior Go engineer at a payments company", "We move money")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL", "Clear written communication"}, analysis.RequiredSkills)
	assert.Len(t, analysis.Keywords, 5)
	assert.Equal(t, 1, stub.Calls())

	prompt := stub.Prompts()[0]
	assert.Contains(t, prompt, "Senior Go engineer at a payments company")
	assert.Contains(t, prompt, "We move money")
	assert.Contains(t, prompt, "Korean")
}

func TestAnalyze_MissingContentMakesNoCall(t *testing.T) {
	stub := llm.NewStub(validAnalysis)
	e := newExtractor(t, stub)

	for _, jobText := range []string{"", "   \n\t "} {
		analysis, err := e.Analyze(context.Background(), jobText, "company text")
		assert.ErrorIs(t, err, ErrMissingContent)
		assert.Nil(t, analysis)
	}
	assert.Equal(t, 0, stub.Calls())
}

func TestAnalyze_EmptyCompanyTextAllowed(t *testing.T) {
	stub := llm.NewStub(validAnalysis)
	e := newExtractor(t, stub, WithLanguage("English"))

	_, err := e.Analyze(context.Background(), "Go engineer", "")
	require.NoError(t, err)

	prompt := stub.Prompts()[0]
	assert.Contains(t, prompt, noCompanyText)
	assert.Contains(t, prompt, "English")
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name string
		stub *llm.Stub
	}{
		{name: "transport error", stub: llm.NewStub().WithError(errors.New("429 quota exceeded"))},
		{name: "missing field", stub: llm.NewStub(`{"jobDescription":["a"],"requiredSkills":["b"],"talentType":["c"]}`)},
		{name: "not json", stub: llm.NewStub("Sorry, I can't read that page.")},
		{name: "non-string entry", stub: llm.NewStub(`{"jobDescription":["a"],"requiredSkills":[1],"talentType":["c"],"keywords":["d"]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newExtractor(t, tt.stub)
			analysis, err := e.Analyze(context.Background(), "Go engineer", "")
			require.Error(t, err)
			assert.Nil(t, analysis)
			assert.ErrorIs(t, err, ErrExtractionFailed)

			var extractionErr *Error
			require.True(t, errors.As(err, &extractionErr))
			assert.NotNil(t, extractionErr.Cause)
		})
	}
}

func TestAnalyze_EmptyListAccepted(t *testing.T) {
	stub := llm.NewStub(`{"jobDescription":["Build APIs"],"requiredSkills":["Go"],"talentType":[],"keywords":["backend"]}`)
	e := newExtractor(t, stub)

	analysis, err := e.Analyze(context.Background(), "Go engineer", "")
	require.NoError(t, err)
	assert.NotNil(t, analysis.TalentType)
	assert.Empty(t, analysis.TalentType)
}

func TestAnalyze_EntriesReturnedAsCompleted(t *testing.T) {
	stub := llm.NewStub(`{"jobDescription":[" Build APIs "],"requiredSkills":["Go","go"],"talentType":["Owner"],"keywords":["backend"]}`)
	e := newExtractor(t, stub)

	analysis, err := e.Analyze(context.Background(), "Go engineer", "")
	require.NoError(t, err)
	assert.Equal(t, []string{" Build APIs "}, analysis.JobDescription)
	assert.Equal(t, []string{"Go", "go"}, analysis.RequiredSkills)
}

func TestBuildPrompt_JobTextWithPlaceholderIsStable(t *testing.T) {
	first, err := BuildPrompt("Job mentions {{.CompanyText}} literally", "ACME CORP", "English")
	require.NoError(t, err)
	assert.Contains(t, first, "Job mentions {{.CompanyText}} literally")

	for i := 0; i < 100; i++ {
		again, err := BuildPrompt("Job mentions {{.CompanyText}} literally", "ACME CORP", "English")
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestBuildPrompt_DefaultLanguage(t *testing.T) {
	prompt, err := BuildPrompt("job", "company", "")
	require.NoError(t, err)
	assert.Contains(t, prompt, DefaultLanguage)
}
