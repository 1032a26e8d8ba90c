package domain

// ModelStatus describes the lifecycle state of a catalog model.
type ModelStatus string

const (
	// ModelActive means the model can be selected for comparisons.
	ModelActive ModelStatus = "active"
	// ModelInactive means the model is temporarily unavailable.
	ModelInactive ModelStatus = "inactive"
	// ModelDeprecated means the model is scheduled for removal.
	ModelDeprecated ModelStatus = "deprecated"
)

// APIFamily identifies how a provider's endpoint is reached: through a
// dedicated native SDK, or through the unified gateway proxy.
type APIFamily string

const (
	// FamilyAnthropic routes through Anthropic's native messages API.
	FamilyAnthropic APIFamily = "anthropic"
	// FamilyMistral routes through Mistral's native (OpenAI-compatible)
	// chat API.
	FamilyMistral APIFamily = "mistral"
	// FamilyGoogle routes through Google's native Gemini API.
	FamilyGoogle APIFamily = "google"
	// FamilyGateway routes through the unified multi-provider gateway.
	FamilyGateway APIFamily = "gateway"
)

// ModelPerformance holds benchmark statistics recorded for a model by
// the external catalog generator.
type ModelPerformance struct {
	// AverageTime is the mean response time in seconds.
	AverageTime float64 `json:"average_time"`
	// Ranking is the model's position in the benchmark (1 is best).
	Ranking int `json:"ranking"`
	// Consistency reports whether the model answered consistently
	// across benchmark repetitions.
	Consistency bool `json:"consistency"`
}

// ModelCapabilities holds the default request parameters for a model.
// Per-call overrides always take precedence over these values.
type ModelCapabilities struct {
	MaxTokens      int     `json:"max_tokens"`
	Temperature    float64 `json:"temperature"`
	TimeoutSeconds int     `json:"timeout"`
}

// ModelDescriptor describes one model in the catalog. The core only
// reads descriptors; the backing configuration is produced externally.
type ModelDescriptor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Provider    string `json:"provider"`
	// Route is the provider-facing model path. Empty means the ID is
	// sent as-is.
	Route       string            `json:"route,omitempty"`
	IsDefault   bool              `json:"is_default"`
	Status      ModelStatus       `json:"status"`
	Performance ModelPerformance  `json:"performance"`
	Capability  ModelCapabilities `json:"capabilities"`
}

// Active reports whether the model may be used for comparisons.
func (m ModelDescriptor) Active() bool { return m.Status == ModelActive }

// ProviderDescriptor describes how to materialize a client for a
// provider referenced by catalog models.
type ProviderDescriptor struct {
	// ID is the provider identifier models reference.
	ID string `json:"-"`
	// Family selects the adapter used to reach the provider.
	Family APIFamily `json:"api_type"`
	// RequiresKey names the environment variable holding the
	// provider's credential.
	RequiresKey string `json:"requires_key"`
	// BaseURL overrides the provider's default endpoint when set.
	BaseURL string `json:"base_url"`
}

// Direct reports whether the provider is reached through a dedicated
// native API rather than the gateway.
func (p ProviderDescriptor) Direct() bool {
	switch p.Family {
	case FamilyAnthropic, FamilyMistral, FamilyGoogle:
		return true
	default:
		return false
	}
}
