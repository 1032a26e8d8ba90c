// Package ports defines the interfaces between the comparison engine
// and its infrastructure collaborators: LLM clients, the model catalog,
// the prompt store, and metrics. Implementations live under
// infrastructure/; the application layer depends only on these
// contracts so every collaborator can be replaced by a test double.
package ports

import (
	"context"
	"time"

	"github.com/arbiterhq/arbiter/internal/domain"
)

// LLMClient defines the interface for interacting with Large Language
// Model providers. Implementations handle provider-specific details
// like authentication, request formatting, and response parsing.
type LLMClient interface {
	// Complete sends a completion request to the LLM provider and
	// returns the generated text. The options map allows flexibility
	// for different providers without changing the interface. Common
	// options include:
	//   - "temperature": float64
	//   - "max_tokens": int
	//   - "model": string (specific model version)
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// CompleteWithUsage behaves like Complete but also returns input
	// and output token counts for cost tracking.
	CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error)

	// GetModel returns the model identifier served by this client.
	GetModel() string
}

// ClientOverrides carries per-call parameter overrides that take
// precedence over catalog-sourced capability defaults.
type ClientOverrides struct {
	// Temperature overrides the catalog temperature when non-nil.
	Temperature *float64
	// MaxTokens overrides the catalog max-token limit when non-nil.
	MaxTokens *int
	// Timeout overrides the catalog request timeout when nonzero.
	Timeout time.Duration
}

// ClientFactory resolves model identifiers to ready-to-call clients.
// Resolution prefers the model catalog; identifiers absent from the
// catalog fall back to a name-pattern heuristic, and identifiers
// neither source can place fail with *UnsupportedModelError.
type ClientFactory interface {
	// CreateClient returns a client for the given model identifier.
	CreateClient(modelID string, overrides ClientOverrides) (LLMClient, error)
}

// ModelCatalog exposes the catalog of available models and providers,
// backed by hot-reloadable external configuration with built-in
// fallbacks. Read methods never fail: configuration problems downgrade
// to the fallback descriptor set.
type ModelCatalog interface {
	// ActiveModels returns the identifiers of all active models.
	ActiveModels() []string

	// Model returns the descriptor for the given identifier, or false
	// when the catalog (including fallbacks) does not know it.
	Model(id string) (domain.ModelDescriptor, bool)

	// Provider returns the descriptor for the given provider id.
	Provider(id string) (domain.ProviderDescriptor, bool)

	// DefaultModel returns the identifier of the default judge model.
	DefaultModel() string

	// Refresh forces a reload of the backing configuration and reports
	// whether the reload succeeded.
	Refresh() bool

	// Health reports the catalog's current condition.
	Health() CatalogHealth
}

// CatalogHealth is the catalog's self-reported condition.
type CatalogHealth struct {
	// Status is "healthy", "degraded", or "error".
	Status string `json:"status"`
	// ConfigLoaded reports whether the dynamic configuration is active
	// (false means the fallback set is serving reads).
	ConfigLoaded bool `json:"config_loaded"`
	// TotalModels and ActiveModels count catalog entries.
	TotalModels  int `json:"total_models"`
	ActiveModels int `json:"active_models"`
	// Providers counts known provider descriptors.
	Providers int `json:"providers"`
	// DefaultModel is the current default model identifier.
	DefaultModel string `json:"default_model"`
}

// Template names the comparison engine requests from a PromptStore.
const (
	// JudgePrompt evaluates two answers and returns a structured
	// preference.
	JudgePrompt = "judge"
	// StoryPrompt generates a candidate answer from a topic.
	StoryPrompt = "story"
)

// PromptStore supplies named prompt templates. The store is an opaque
// collaborator: callers fetch by name and never inspect where the
// template came from.
type PromptStore interface {
	// Get returns the template body registered under name.
	Get(name string) (string, error)
}

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations integrate with observability platforms such
// as Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)
}
