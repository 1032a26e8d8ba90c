package catalog

import (
	"sort"

	"github.com/arbiterhq/arbiter/internal/domain"
)

// fallbackModels is the static descriptor set served when the dynamic
// configuration cannot be loaded. It covers the benchmark finalists so
// the service keeps judging even without a generated config file.
var fallbackModels = []domain.ModelDescriptor{
	{
		ID:          "llama-4-maverick",
		DisplayName: "Llama 4 Maverick",
		Provider:    "openrouter",
		Route:       "meta-llama/llama-4-maverick",
		IsDefault:   true,
		Status:      domain.ModelActive,
		Performance: domain.ModelPerformance{AverageTime: 3.0, Ranking: 1, Consistency: true},
		Capability:  domain.ModelCapabilities{MaxTokens: 1024, Temperature: 0, TimeoutSeconds: 30},
	},
	{
		ID:          "claude-4-sonnet",
		DisplayName: "Claude 4 Sonnet",
		Provider:    "anthropic",
		Route:       "anthropic/claude-sonnet-4",
		Status:      domain.ModelActive,
		Performance: domain.ModelPerformance{AverageTime: 4.0, Ranking: 2, Consistency: true},
		Capability:  domain.ModelCapabilities{MaxTokens: 1024, Temperature: 0, TimeoutSeconds: 30},
	},
	{
		ID:          "google-gemini-2.5-pro",
		DisplayName: "Gemini 2.5 Pro",
		Provider:    "openrouter",
		Route:       "google/gemini-2.5-pro",
		Status:      domain.ModelActive,
		Performance: domain.ModelPerformance{AverageTime: 4.5, Ranking: 3, Consistency: true},
		Capability:  domain.ModelCapabilities{MaxTokens: 1024, Temperature: 0, TimeoutSeconds: 30},
	},
}

var fallbackProviders = []domain.ProviderDescriptor{
	{
		ID:          "anthropic",
		Family:      domain.FamilyAnthropic,
		RequiresKey: "ANTHROPIC_API_KEY",
	},
	{
		ID:          "openrouter",
		Family:      domain.FamilyGateway,
		RequiresKey: "OPENROUTER_API_KEY",
		BaseURL:     "https://openrouter.ai/api/v1",
	},
}

// FallbackDefaultModel is the default judge when the fallback set is
// serving reads.
const FallbackDefaultModel = "llama-4-maverick"

// fallbackSnapshot builds the static snapshot. configLoaded stays
// false so health checks report the degraded state.
func fallbackSnapshot() *snapshot {
	snap := &snapshot{
		models:       make(map[string]domain.ModelDescriptor, len(fallbackModels)),
		providers:    make(map[string]domain.ProviderDescriptor, len(fallbackProviders)),
		defaultModel: FallbackDefaultModel,
	}
	for _, m := range fallbackModels {
		snap.models[m.ID] = m
		if m.Active() {
			snap.active = append(snap.active, m.ID)
		}
	}
	sort.Strings(snap.active)
	for _, p := range fallbackProviders {
		snap.providers[p.ID] = p
	}
	return snap
}
