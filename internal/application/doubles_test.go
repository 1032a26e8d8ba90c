package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

// stubClient is an in-memory ports.LLMClient for workflow tests.
type stubClient struct {
	model    string
	response string
	err      error
	delay    time.Duration

	// completeFn replaces the canned response when set.
	completeFn func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	calls   int
	prompts []string
}

func (c *stubClient) Complete(ctx context.Context, prompt string, _ map[string]any) (string, error) {
	c.mu.Lock()
	c.calls++
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if c.completeFn != nil {
		return c.completeFn(ctx, prompt)
	}
	return c.response, c.err
}

func (c *stubClient) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	text, err := c.Complete(ctx, prompt, options)
	return text, 10, 20, err
}

func (c *stubClient) GetModel() string { return c.model }

func (c *stubClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *stubClient) lastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return ""
	}
	return c.prompts[len(c.prompts)-1]
}

// stubFactory resolves model ids from a fixed map. Unknown ids fail
// with *ports.UnsupportedModelError, matching the production factory.
type stubFactory struct {
	clients map[string]*stubClient
	errs    map[string]error

	mu      sync.Mutex
	created []string
}

func (f *stubFactory) CreateClient(modelID string, _ ports.ClientOverrides) (ports.LLMClient, error) {
	f.mu.Lock()
	f.created = append(f.created, modelID)
	f.mu.Unlock()

	if err, ok := f.errs[modelID]; ok {
		return nil, err
	}
	if client, ok := f.clients[modelID]; ok {
		return client, nil
	}
	return nil, &ports.UnsupportedModelError{ModelID: modelID}
}

func (f *stubFactory) createdModels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

// stubPrompts serves templates from a map.
type stubPrompts struct {
	templates map[string]string
}

func (s *stubPrompts) Get(name string) (string, error) {
	template, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ports.ErrPromptNotFound, name)
	}
	return template, nil
}

func defaultTestPrompts() *stubPrompts {
	return &stubPrompts{templates: map[string]string{
		ports.JudgePrompt: "Question: {question}\nAssistant A: {answer_a}\nAssistant B: {answer_b}",
		ports.StoryPrompt: "Write a story about {topic}",
	}}
}

// stubModelCatalog provides just the default model; the workflow never
// inspects descriptors directly.
type stubModelCatalog struct {
	defaultModel string
}

func (c *stubModelCatalog) ActiveModels() []string { return []string{c.defaultModel} }
func (c *stubModelCatalog) Model(string) (domain.ModelDescriptor, bool) {
	return domain.ModelDescriptor{}, false
}
func (c *stubModelCatalog) Provider(string) (domain.ProviderDescriptor, bool) {
	return domain.ProviderDescriptor{}, false
}
func (c *stubModelCatalog) DefaultModel() string { return c.defaultModel }
func (c *stubModelCatalog) Refresh() bool        { return true }
func (c *stubModelCatalog) Health() ports.CatalogHealth {
	return ports.CatalogHealth{Status: "healthy", ConfigLoaded: true, DefaultModel: c.defaultModel}
}
