package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStub_CallOrder(t *testing.T) {
	stub := NewStub("first", "second")
	ctx := context.Background()

	got, err := stub.CompleteJSON(ctx, TierStandard, "a", nil)
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = stub.CompleteJSON(ctx, TierStandard, "b", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = stub.CompleteJSON(ctx, TierStandard, "c", nil)
	assert.Error(t, err)

	assert.Equal(t, 3, stub.Calls())
	assert.Equal(t, []string{"a", "b", "c"}, stub.Prompts())
}

func TestStub_ByPrompt(t *testing.T) {
	stub := NewStub("ordered").OnPrompt("known prompt", "by hash")

	got, err := stub.CompleteJSON(context.Background(), TierLite, "known prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "by hash", got)
}

func TestPromptHash(t *testing.T) {
	assert.Len(t, PromptHash("x"), 64)
	assert.Equal(t, PromptHash("x"), PromptHash("x"))
	assert.NotEqual(t, PromptHash("x"), PromptHash("y"))
}
