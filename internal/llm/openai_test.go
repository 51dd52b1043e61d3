package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/coverletter-agent/internal/schemas"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), DefaultOpenAIConfig(), "")
	assert.Error(t, err)

	_, err = NewClient(context.Background(), DefaultGeminiConfig(), "")
	assert.Error(t, err)

	_, err = NewClient(context.Background(), &Config{Provider: "anthropic"}, "key")
	assert.Error(t, err)
}

func TestOpenAIClient_CompleteJSON(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"coverLetter\":\"# Hi\",\"summary\":\"1. a\"}"}
			}]
		}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(DefaultOpenAIConfig(), "test-key", WithOpenAIBaseURL(server.URL+"/"))
	require.NoError(t, err)

	schema, err := SchemaFor(schemas.GeneratedContent, "cover letter")
	require.NoError(t, err)

	raw, err := client.CompleteJSON(context.Background(), TierStandard, "write it", schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"coverLetter":"# Hi","summary":"1. a"}`, raw)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	format, ok := body["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	jsonSchema := format["json_schema"].(map[string]any)
	assert.Equal(t, schemas.GeneratedContent, jsonSchema["name"])
	assert.Equal(t, true, jsonSchema["strict"])
}

func TestOpenAIClient_BadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad schema","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(DefaultOpenAIConfig(), "test-key", WithOpenAIBaseURL(server.URL+"/"))
	require.NoError(t, err)

	_, err = client.CompleteJSON(context.Background(), TierStandard, "write it", nil)
	require.Error(t, err)

	var completionErr *CompletionError
	require.True(t, errors.As(err, &completionErr))
	assert.Equal(t, http.StatusBadRequest, completionErr.StatusCode)
	assert.False(t, completionErr.RateLimited())
}
