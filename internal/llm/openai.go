package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
)

// OpenAIClient implements Client using the official openai-go SDK (chat completions with
// strict json_schema response format).
type OpenAIClient struct {
	client openai.Client
	config *Config
}

// OpenAIOption customizes the OpenAI client.
type OpenAIOption func(*[]openaiopt.RequestOption)

// WithOpenAIBaseURL points the client at a compatible endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(opts *[]openaiopt.RequestOption) {
		*opts = append(*opts, openaiopt.WithBaseURL(url))
	}
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string, options ...OpenAIOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if config == nil {
		config = DefaultOpenAIConfig()
	}

	opts := []openaiopt.RequestOption{openaiopt.WithAPIKey(apiKey)}
	for _, o := range options {
		o(&opts)
	}
	return &OpenAIClient{client: openai.NewClient(opts...), config: config}, nil
}

// CompleteJSON asks OpenAI for a JSON response constrained by schema.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, tier ModelTier, prompt string, schema *Schema) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(modelName),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(0.1),
	}
	if schema != nil {
		schemaMap, err := schema.openAISchema()
		if err != nil {
			return "", err
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schema.Name,
					Description: openai.String(schema.Description),
					Schema:      schemaMap,
					Strict:      openai.Bool(true),
				},
			},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		completionErr := &CompletionError{Provider: ProviderOpenAI, Model: modelName, Message: "chat completion failed", Cause: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			completionErr.StatusCode = apiErr.StatusCode
		}
		return "", completionErr
	}
	if len(resp.Choices) == 0 {
		return "", &CompletionError{Provider: ProviderOpenAI, Model: modelName, Message: "empty choices"}
	}
	if refusal := resp.Choices[0].Message.Refusal; refusal != "" {
		return "", &CompletionError{Provider: ProviderOpenAI, Model: modelName, Message: "model refused: " + refusal}
	}

	return CleanJSONBlock(resp.Choices[0].Message.Content), nil
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the HTTP client holds no long-lived resources.
func (c *OpenAIClient) Close() error {
	return nil
}
