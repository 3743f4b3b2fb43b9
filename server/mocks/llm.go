// Package mocks provides hand-written test doubles for the relay's two
// outbound dependencies: the completion client and the Fonnte sender.
package mocks

import (
	"context"

	"github.com/teilomillet/gollm"
	"github.com/teilomillet/gollm/llm"
	"github.com/teilomillet/gollm/utils"
)

// MockLLM implements gollm.LLM for testing purposes. It provides a flexible
// way to simulate completion behavior without making actual API calls.
//
// Example usage:
//
//	mockLLM := NewMockLLM(func(ctx context.Context, prompt *gollm.Prompt) (string, error) {
//	    return "mocked response", nil
//	})
type MockLLM struct {
	GenerateFunc func(context.Context, *gollm.Prompt) (string, error)
	DebugFunc    func(string, ...interface{})
	Provider     string
	Model        string

	// SystemPrompt records the last value passed to SetSystemPrompt so
	// tests can assert the persona was installed.
	SystemPrompt string
}

// NewMockLLM creates a new MockLLM with optional generate function.
// If generateFunc is nil, Generate will return empty string with no error.
func NewMockLLM(generateFunc func(context.Context, *gollm.Prompt) (string, error)) *MockLLM {
	return &MockLLM{
		GenerateFunc: generateFunc,
		Provider:     "mock",
		Model:        "mock-model",
	}
}

// Generate implements the core LLM functionality.
// It uses the provided GenerateFunc if available, otherwise returns empty string.
// The opts parameter is ignored in the mock to simplify testing.
func (m *MockLLM) Generate(ctx context.Context, prompt *gollm.Prompt, opts ...llm.GenerateOption) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", nil
}

// Debug captures debug messages if DebugFunc is provided.
func (m *MockLLM) Debug(format string, args ...interface{}) {
	if m.DebugFunc != nil {
		m.DebugFunc(format, args...)
	}
}

// GetPromptJSONSchema returns a minimal valid JSON schema.
func (m *MockLLM) GetPromptJSONSchema(opts ...gollm.SchemaOption) ([]byte, error) {
	return []byte(`{}`), nil
}

// GetProvider returns the mock provider name
func (m *MockLLM) GetProvider() string {
	return m.Provider
}

// GetModel returns the mock model name
func (m *MockLLM) GetModel() string {
	return m.Model
}

// GetLogLevel returns a default log level.
func (m *MockLLM) GetLogLevel() gollm.LogLevel {
	return gollm.LogLevelInfo
}

// UpdateLogLevel is a no-op in the mock.
func (m *MockLLM) UpdateLogLevel(level gollm.LogLevel) {
}

// SetLogLevel is a no-op in the mock.
func (m *MockLLM) SetLogLevel(level gollm.LogLevel) {
}

// GetLogger returns nil as we don't need logging in tests.
func (m *MockLLM) GetLogger() utils.Logger {
	return nil
}

// NewPrompt creates a simple prompt with user role.
func (m *MockLLM) NewPrompt(text string) *gollm.Prompt {
	return &gollm.Prompt{
		Messages: []gollm.PromptMessage{
			{Role: "user", Content: text},
		},
	}
}

// SetEndpoint is a no-op in the mock.
func (m *MockLLM) SetEndpoint(endpoint string) {
}

// SetOption is a no-op in the mock.
func (m *MockLLM) SetOption(key string, value interface{}) {
}

// SupportsJSONSchema returns true to indicate schema support.
func (m *MockLLM) SupportsJSONSchema() bool {
	return true
}

// GenerateWithSchema uses the standard Generate function.
// Schema validation is not performed in the mock.
func (m *MockLLM) GenerateWithSchema(ctx context.Context, prompt *gollm.Prompt, schema interface{}, opts ...llm.GenerateOption) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", nil
}

// SetOllamaEndpoint is a no-op in the mock.
func (m *MockLLM) SetOllamaEndpoint(endpoint string) error {
	return nil
}

// SetSystemPrompt records the system prompt for assertions.
func (m *MockLLM) SetSystemPrompt(prompt string, cacheType llm.CacheType) {
	m.SystemPrompt = prompt
}
