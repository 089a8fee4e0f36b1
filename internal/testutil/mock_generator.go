// mock_generator.go - Stub model clients for testing
package testutil

import (
	"context"
	"sync"
)

// MockGenerator implements llm.Generator for testing. With no Fn set it echoes
// the prompt back, which lets tests inspect exactly what the model received.
type MockGenerator struct {
	Name string
	Fn   func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

// NewEchoGenerator returns a generator that answers with its input.
func NewEchoGenerator() *MockGenerator {
	return &MockGenerator{Name: "mock/echo"}
}

// NewFailingGenerator returns a generator that always fails with err.
func NewFailingGenerator(err error) *MockGenerator {
	return &MockGenerator{
		Name: "mock/failing",
		Fn: func(context.Context, string) (string, error) {
			return "", err
		},
	}
}

// NewFixedGenerator returns a generator that always answers with text.
func NewFixedGenerator(text string) *MockGenerator {
	return &MockGenerator{
		Name: "mock/fixed",
		Fn: func(context.Context, string) (string, error) {
			return text, nil
		},
	}
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.Fn != nil {
		return m.Fn(ctx, prompt)
	}
	return prompt, nil
}

func (m *MockGenerator) Model() string {
	if m.Name == "" {
		return "mock"
	}
	return m.Name
}

// Calls returns how many times Generate was invoked.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// LastPrompt returns the most recent prompt, or "" if none was sent.
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}
