package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/coverletter-agent/internal/types"
)

func testAnalysis() *types.JobAnalysis {
	return &types.JobAnalysis{
		JobDescription: []string{"Build distributed systems"},
		RequiredSkills: []string{"Go"},
		TalentType:     []string{"Curious"},
		Keywords:       []string{"backend", "distributed systems"},
	}
}

func testResume() *types.Resume {
	return &types.Resume{Text: "Five years of Go", FileName: "cv.txt", Format: "text", Characters: 16}
}

func testContent(letter string) *types.GeneratedContent {
	return &types.GeneratedContent{CoverLetter: letter, Summary: "1. Go"}
}

func mustTransition(t *testing.T, s Snapshot, ev Event) Snapshot {
	t.Helper()
	next, err := Transition(s, ev)
	require.NoError(t, err)
	return next
}

func generatedSnapshot(t *testing.T) Snapshot {
	t.Helper()
	s := mustTransition(t, NewSnapshot(), AnalysisCompleted("https://jobs.example/1", "", testAnalysis()))
	s = mustTransition(t, s, ResumeAttached(testResume()))
	return mustTransition(t, s, ContentGenerated(testContent("# Dear team")))
}

func TestState_Stage(t *testing.T) {
	assert.Equal(t, 1, StateAwaitingJobURL.Stage())
	assert.Equal(t, 2, StateAnalyzed.Stage())
	assert.Equal(t, 2, StateResumeAttached.Stage())
	assert.Equal(t, 3, StateGenerated.Stage())

	assert.True(t, StateGenerated.Valid())
	assert.False(t, State("done").Valid())
}

func TestTransition_HappyPath(t *testing.T) {
	s := NewSnapshot()
	assert.Equal(t, StateAwaitingJobURL, s.State)

	s = mustTransition(t, s, AnalysisCompleted("https://jobs.example/1", "https://corp.example", testAnalysis()))
	assert.Equal(t, StateAnalyzed, s.State)
	assert.Equal(t, "https://jobs.example/1", s.JobURL)
	assert.Equal(t, "https://corp.example", s.CompanyURL)
	require.NotNil(t, s.Analysis)

	s = mustTransition(t, s, ResumeAttached(testResume()))
	assert.Equal(t, StateResumeAttached, s.State)
	assert.Equal(t, "Five years of Go", s.Resume.Text)

	s = mustTransition(t, s, ContentGenerated(testContent("# Dear team")))
	assert.Equal(t, StateGenerated, s.State)
	assert.Equal(t, "# Dear team", s.Content.CoverLetter)
}

func TestTransition_RegenerateReplacesContent(t *testing.T) {
	s := generatedSnapshot(t)
	s = mustTransition(t, s, ContentGenerated(testContent("# Second draft")))

	assert.Equal(t, StateGenerated, s.State)
	assert.Equal(t, "# Second draft", s.Content.CoverLetter)
}

func TestTransition_ReplaceResume(t *testing.T) {
	s := mustTransition(t, NewSnapshot(), AnalysisCompleted("u", "", testAnalysis()))
	s = mustTransition(t, s, ResumeAttached(testResume()))
	s = mustTransition(t, s, ResumeAttached(&types.Resume{Text: "Ten years of Rust"}))

	assert.Equal(t, StateResumeAttached, s.State)
	assert.Equal(t, "Ten years of Rust", s.Resume.Text)
}

func TestTransition_Rejected(t *testing.T) {
	analyzed := mustTransition(t, NewSnapshot(), AnalysisCompleted("u", "", testAnalysis()))

	tests := []struct {
		name  string
		from  Snapshot
		event Event
	}{
		{"resume before analysis", NewSnapshot(), ResumeAttached(testResume())},
		{"generate before analysis", NewSnapshot(), ContentGenerated(testContent("x"))},
		{"back from first step", NewSnapshot(), GoBack()},
		{"analysis twice", analyzed, AnalysisCompleted("u", "", testAnalysis())},
		{"nil analysis", NewSnapshot(), AnalysisCompleted("u", "", nil)},
		{"empty resume", analyzed, ResumeAttached(&types.Resume{Text: "   "})},
		{"nil resume", analyzed, ResumeAttached(nil)},
		{"generate without resume", analyzed, ContentGenerated(testContent("x"))},
		{"unknown event", analyzed, Event{Kind: "teleport"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Transition(tt.from, tt.event)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))

			var transitionErr *TransitionError
			require.ErrorAs(t, err, &transitionErr)
			assert.Equal(t, tt.from.State, transitionErr.From)
			assert.Equal(t, tt.from, next)
		})
	}
}

func TestTransition_GoBack(t *testing.T) {
	generated := generatedSnapshot(t)

	analyzed := mustTransition(t, generated, GoBack())
	assert.Equal(t, StateAnalyzed, analyzed.State)
	assert.Nil(t, analyzed.Content)
	assert.NotNil(t, analyzed.Resume)
	assert.NotNil(t, analyzed.Analysis)

	first := mustTransition(t, analyzed, GoBack())
	assert.Equal(t, StateAwaitingJobURL, first.State)
	assert.NotNil(t, first.Analysis)
	assert.Equal(t, "https://jobs.example/1", first.JobURL)
}

func TestTransition_NewAnalysisKeepsResume(t *testing.T) {
	s := generatedSnapshot(t)
	s = mustTransition(t, s, GoBack())
	s = mustTransition(t, s, GoBack())

	fresh := testAnalysis()
	fresh.Keywords = []string{"frontend"}
	s = mustTransition(t, s, AnalysisCompleted("https://jobs.example/2", "", fresh))

	assert.Equal(t, StateAnalyzed, s.State)
	assert.Equal(t, []string{"frontend"}, s.Analysis.Keywords)
	assert.Equal(t, "Five years of Go", s.Resume.Text)
	assert.Nil(t, s.Content)

	// The résumé carried over, so generation is possible straight away.
	s = mustTransition(t, s, ContentGenerated(testContent("# Frontend letter")))
	assert.Equal(t, StateGenerated, s.State)
}

func TestTransition_Reset(t *testing.T) {
	for _, from := range []Snapshot{NewSnapshot(), generatedSnapshot(t)} {
		s := mustTransition(t, from, Reset())
		assert.Equal(t, NewSnapshot(), s)
	}
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	s := mustTransition(t, NewSnapshot(), AnalysisCompleted("u", "", testAnalysis()))
	s = mustTransition(t, s, ResumeAttached(testResume()))
	before := s.Clone()

	next := mustTransition(t, s, ContentGenerated(testContent("# Letter")))
	next.Analysis.Keywords[0] = "changed"
	next.Resume.Text = "changed"

	assert.Equal(t, before, s)
}

func TestTransition_PayloadIsCopied(t *testing.T) {
	analysis := testAnalysis()
	s := mustTransition(t, NewSnapshot(), AnalysisCompleted("u", "", analysis))

	analysis.RequiredSkills[0] = "COBOL"
	assert.Equal(t, "Go", s.Analysis.RequiredSkills[0])
}

func TestCanApply(t *testing.T) {
	assert.NoError(t, CanApply(StateAwaitingJobURL, EventAnalysisCompleted))
	assert.NoError(t, CanApply(StateGenerated, EventContentGenerated))
	assert.ErrorIs(t, CanApply(StateGenerated, EventAnalysisCompleted), ErrInvalidTransition)
	assert.ErrorIs(t, CanApply(StateAwaitingJobURL, EventGoBack), ErrInvalidTransition)
}
