// Package llm provides a unified interface for calling LLM providers
// behind the comparison service: direct Anthropic, direct Mistral,
// direct Google, and a multi-provider gateway proxy. Cross-cutting
// concerns (timeouts, rate limiting, metrics, tracing) are composed
// through a middleware chain so provider adapters stay focused on
// request formatting and error classification.
//
// Basic usage:
//
//	client, err := llm.NewClient("gateway", llm.ClientConfig{
//	    APIKey: os.Getenv("OPENROUTER_API_KEY"),
//	    Model:  "meta-llama/llama-4-maverick",
//	})
//	response, err := client.Complete(ctx, "Hello!", nil)
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/arbiterhq/arbiter/internal/ports"
)

// CoreLLM defines the minimal interface that provider adapters must
// implement. The middleware system wraps any conforming implementation.
type CoreLLM interface {
	// DoRequest sends a prompt to the provider and returns the response
	// text plus input/output token counts. The opts map carries
	// provider-specific parameters such as temperature or max tokens.
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (response string, tokensIn, tokensOut int, err error)

	// GetModel returns the currently configured model name.
	GetModel() string

	// SetModel updates the model used for subsequent requests.
	SetModel(model string)
}

// Middleware wraps a CoreLLM implementation to add cross-cutting
// functionality without modifying provider logic.
type Middleware func(CoreLLM) CoreLLM

// ClientConfig holds all configuration options for creating a client.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model specifies which model to use for requests.
	Model string

	// BaseURL overrides the provider's default endpoint when set.
	BaseURL string

	// Timeout bounds individual requests. Zero means no client-level
	// timeout (the caller's context still applies).
	Timeout time.Duration

	// Middleware is applied in the order specified, outermost first.
	Middleware []Middleware
}

// Client implements ports.LLMClient by delegating to a middleware-
// wrapped provider adapter.
type Client struct {
	core CoreLLM
}

var _ ports.LLMClient = (*Client)(nil)

// NewClient assembles the middleware chain around the adapter for
// providerType and validates configuration before returning a
// ready-to-use client.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", providerType, err)
	}

	// Apply middleware in reverse order so the first entry is outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core}, nil
}

// Complete sends a prompt to the LLM and returns the response text,
// discarding token usage information.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.CompleteWithUsage(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage sends a prompt to the LLM and returns the response
// along with input and output token counts.
func (c *Client) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	return c.core.DoRequest(ctx, prompt, options)
}

// GetModel returns the model identifier served by this client.
func (c *Client) GetModel() string { return c.core.GetModel() }

// ProviderFactory creates a CoreLLM adapter from configuration.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

// providerFactories maps provider type names to their adapters.
// Adapters register themselves in init so the set stays closed to this
// package while remaining easy to extend.
var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider adapter under the given
// type name, replacing any previous registration.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}
