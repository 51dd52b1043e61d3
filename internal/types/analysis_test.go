package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAnalysis() *JobAnalysis {
	return &JobAnalysis{
		JobDescription: []string{"Build distributed systems"},
		RequiredSkills: []string{"Go", "Kubernetes"},
		TalentType:     []string{"Collaborative"},
		Keywords:       []string{"backend", "distributed systems"},
	}
}

func TestJobAnalysis_Validate(t *testing.T) {
	assert.NoError(t, sampleAnalysis().Validate())

	missing := sampleAnalysis()
	missing.TalentType = nil
	assert.Error(t, missing.Validate())

	empty := sampleAnalysis()
	empty.TalentType = []string{}
	assert.NoError(t, empty.Validate())
	assert.NoError(t, empty.Clone().Validate())
}

func TestJobAnalysis_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(sampleAnalysis())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"jobDescription", "requiredSkills", "talentType", "keywords"} {
		assert.Contains(t, raw, key)
	}
}

func TestJobAnalysis_CloneIsDeep(t *testing.T) {
	original := sampleAnalysis()
	clone := original.Clone()
	clone.RequiredSkills[0] = "Rust"

	assert.Equal(t, "Go", original.RequiredSkills[0])
	assert.Nil(t, (*JobAnalysis)(nil).Clone())
}

func TestGeneratedContent_Validate(t *testing.T) {
	assert.NoError(t, (&GeneratedContent{CoverLetter: "# Letter", Summary: "short"}).Validate())
	assert.Error(t, (&GeneratedContent{CoverLetter: "# Letter"}).Validate())
	assert.Error(t, (&GeneratedContent{Summary: "short"}).Validate())
}

func TestResume_IsEmpty(t *testing.T) {
	var nilResume *Resume
	assert.True(t, nilResume.IsEmpty())
	assert.True(t, (&Resume{Text: "  \n\t"}).IsEmpty())
	assert.False(t, (&Resume{Text: "Go engineer"}).IsEmpty())
}
