package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// Stub is a deterministic StructuredCompleter for tests and offline runs.
// A response registered for a prompt's hash wins; otherwise responses are served in call order.
type Stub struct {
	mu       sync.Mutex
	ordered  []string
	byPrompt map[string]string
	err      error
	prompts  []string
}

// NewStub returns a stub that answers calls in order with responses.
func NewStub(responses ...string) *Stub {
	return &Stub{ordered: responses, byPrompt: make(map[string]string)}
}

// WithError makes every call fail with err.
func (s *Stub) WithError(err error) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

// OnPrompt registers a response for an exact prompt.
func (s *Stub) OnPrompt(prompt, response string) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byPrompt[PromptHash(prompt)] = response
	return s
}

// CompleteJSON implements StructuredCompleter.
func (s *Stub) CompleteJSON(_ context.Context, _ ModelTier, prompt string, _ *Schema) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := len(s.prompts)
	s.prompts = append(s.prompts, prompt)

	if s.err != nil {
		return "", s.err
	}
	if resp, ok := s.byPrompt[PromptHash(prompt)]; ok {
		return resp, nil
	}
	if call < len(s.ordered) {
		return s.ordered[call], nil
	}
	return "", fmt.Errorf("stub: no response for call %d", call+1)
}

// Calls returns the number of completion requests received.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// Prompts returns a copy of every prompt received, in order.
func (s *Stub) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

// PromptHash returns the hex SHA-256 of a prompt.
func PromptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
