package llm

import (
	"strings"

	"github.com/arbiterhq/arbiter/internal/domain"
)

// heuristicRule pairs a model-name predicate with the provider
// descriptor to use when the predicate matches.
type heuristicRule struct {
	matches  func(modelID string) bool
	provider domain.ProviderDescriptor
}

func prefixRule(prefix string, provider domain.ProviderDescriptor) heuristicRule {
	return heuristicRule{
		matches:  func(modelID string) bool { return strings.HasPrefix(modelID, prefix) },
		provider: provider,
	}
}

// heuristicRules is the ordered last-resort table for model identifiers
// the catalog does not know. Explicit catalog lookups always win; this
// table only guesses a provider from naming convention. Order matters:
// the first matching rule wins.
var heuristicRules = []heuristicRule{
	prefixRule("anthropic/", domain.ProviderDescriptor{
		ID: "anthropic", Family: domain.FamilyAnthropic, RequiresKey: "ANTHROPIC_API_KEY",
	}),
	prefixRule("google/", domain.ProviderDescriptor{
		ID: "google", Family: domain.FamilyGoogle, RequiresKey: "GEMINI_API_KEY",
	}),
	prefixRule("openai/", domain.ProviderDescriptor{
		ID: "gateway", Family: domain.FamilyGateway, RequiresKey: "OPENROUTER_API_KEY",
	}),
	prefixRule("mistral", domain.ProviderDescriptor{
		ID: "mistral", Family: domain.FamilyMistral, RequiresKey: "MISTRAL_API_KEY",
	}),
	prefixRule("deepseek/", domain.ProviderDescriptor{
		ID: "gateway", Family: domain.FamilyGateway, RequiresKey: "OPENROUTER_API_KEY",
	}),
	prefixRule("qwen/", domain.ProviderDescriptor{
		ID: "gateway", Family: domain.FamilyGateway, RequiresKey: "OPENROUTER_API_KEY",
	}),
	prefixRule("meta-llama/", domain.ProviderDescriptor{
		ID: "gateway", Family: domain.FamilyGateway, RequiresKey: "OPENROUTER_API_KEY",
	}),
	{
		// Any remaining vendor-prefixed path is a valid gateway route.
		matches: func(modelID string) bool { return strings.Contains(modelID, "/") },
		provider: domain.ProviderDescriptor{
			ID: "gateway", Family: domain.FamilyGateway, RequiresKey: "OPENROUTER_API_KEY",
		},
	},
}

// guessProvider resolves a model identifier to a provider descriptor by
// naming convention. The second return value is false when no rule
// matches, meaning the identifier cannot be placed with any provider.
func guessProvider(modelID string) (domain.ProviderDescriptor, bool) {
	for _, rule := range heuristicRules {
		if rule.matches(modelID) {
			return rule.provider, true
		}
	}
	return domain.ProviderDescriptor{}, false
}

// nativeModelID converts a gateway-style slashed identifier into the
// form a direct provider expects by stripping the vendor prefix.
// Identifiers without a slash pass through unchanged.
func nativeModelID(modelID string) string {
	if idx := strings.IndexByte(modelID, '/'); idx >= 0 {
		return modelID[idx+1:]
	}
	return modelID
}
