package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// CompletionError represents a failed call to the completion service.
type CompletionError struct {
	Provider   Provider
	Model      string
	StatusCode int // HTTP status when the provider reported one
	Message    string
	Cause      error
}

func (e *CompletionError) Error() string {
	msg := fmt.Sprintf("%s completion (%s): %s", e.Provider, e.Model, e.Message)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CompletionError) Unwrap() error {
	return e.Cause
}

// RateLimited reports whether the provider rejected the call for quota reasons.
func (e *CompletionError) RateLimited() bool {
	return e.StatusCode == 429
}

// ErrNilSchema is returned when CompleteInto is called without a schema.
var ErrNilSchema = errors.New("schema is required")

// ResponseError indicates the completion returned JSON that does not satisfy its schema.
type ResponseError struct {
	Schema string
	Raw    string
	Cause  error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("response does not match schema %s: %v", e.Schema, e.Cause)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}

// CompleteInto requests a completion, validates it against schema and decodes it into T.
// The result is all-or-nothing: any validation or decoding failure returns no value.
func CompleteInto[T any](ctx context.Context, c StructuredCompleter, tier ModelTier, prompt string, schema *Schema) (*T, error) {
	if schema == nil {
		return nil, ErrNilSchema
	}

	raw, err := c.CompleteJSON(ctx, tier, prompt, schema)
	if err != nil {
		return nil, err
	}
	raw = CleanJSONBlock(raw)

	if err := schema.Validate(raw); err != nil {
		return nil, &ResponseError{Schema: schema.Name, Raw: raw, Cause: err}
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &ResponseError{Schema: schema.Name, Raw: raw, Cause: err}
	}
	return &out, nil
}
