package llm

import (
	"context"
	"sync"
	"time"
)

// MockCoreLLM provides a configurable mock implementation of CoreLLM
// for testing middleware and client composition.
type MockCoreLLM struct {
	mu sync.Mutex

	// Response configuration.
	Response      string
	TokensIn      int
	TokensOut     int
	Error         error
	Model         string
	ResponseDelay time.Duration

	// Tracking.
	CallCount   int
	LastPrompt  string
	LastOpts    map[string]any
	LastContext context.Context
}

// NewMockCoreLLM creates a mock with default successful behavior.
func NewMockCoreLLM() *MockCoreLLM {
	return &MockCoreLLM{
		Response:  "test response",
		TokensIn:  10,
		TokensOut: 20,
		Model:     "test-model",
	}
}

// DoRequest implements CoreLLM with configurable behavior. When
// ResponseDelay is set, the call honors context cancellation while
// waiting.
func (m *MockCoreLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	m.mu.Lock()
	m.CallCount++
	m.LastPrompt = prompt
	m.LastOpts = opts
	m.LastContext = ctx
	delay := m.ResponseDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", 0, 0, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return "", 0, 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return "", 0, 0, m.Error
	}
	return m.Response, m.TokensIn, m.TokensOut, nil
}

// GetModel returns the configured model name.
func (m *MockCoreLLM) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Model
}

// SetModel updates the configured model name.
func (m *MockCoreLLM) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Model = model
}
