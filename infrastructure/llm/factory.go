package llm

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

// gatewayKeyEnv names the credential for the multi-provider gateway.
// It doubles as the fallback route when a direct provider's own
// credential is absent.
const gatewayKeyEnv = "OPENROUTER_API_KEY"

// familyEnvVars maps API families to their default credential
// environment variables, used when a provider descriptor does not name
// one explicitly.
var familyEnvVars = map[domain.APIFamily]string{
	domain.FamilyAnthropic: "ANTHROPIC_API_KEY",
	domain.FamilyMistral:   "MISTRAL_API_KEY",
	domain.FamilyGoogle:    "GEMINI_API_KEY",
	domain.FamilyGateway:   gatewayKeyEnv,
}

// FactoryConfig configures a Factory.
type FactoryConfig struct {
	// Catalog resolves model identifiers to descriptors. Required.
	Catalog ports.ModelCatalog

	// Metrics receives per-request metrics. Optional.
	Metrics ports.MetricsCollector

	// Logger receives resolution warnings. Defaults to slog.Default().
	Logger *slog.Logger

	// ServiceName labels trace spans. Defaults to "arbiter".
	ServiceName string

	// RequestsPerSecond and Burst configure the per-client rate
	// limiter. Zero RequestsPerSecond disables rate limiting.
	RequestsPerSecond rate.Limit
	Burst             int

	// LookupEnv resolves credential environment variables. Defaults to
	// os.LookupEnv; tests substitute a map lookup.
	LookupEnv func(string) (string, bool)
}

// Factory implements ports.ClientFactory. Resolution prefers the
// catalog; identifiers the catalog does not know fall back to the
// naming heuristic, and identifiers neither source can place fail with
// *ports.UnsupportedModelError.
type Factory struct {
	catalog     ports.ModelCatalog
	metrics     ports.MetricsCollector
	logger      *slog.Logger
	serviceName string
	rps         rate.Limit
	burst       int
	lookupEnv   func(string) (string, bool)
}

var _ ports.ClientFactory = (*Factory)(nil)

// NewFactory creates a client factory backed by the given catalog.
func NewFactory(config FactoryConfig) *Factory {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	serviceName := config.ServiceName
	if serviceName == "" {
		serviceName = "arbiter"
	}
	lookupEnv := config.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Factory{
		catalog:     config.Catalog,
		metrics:     config.Metrics,
		logger:      logger,
		serviceName: serviceName,
		rps:         config.RequestsPerSecond,
		burst:       burst,
		lookupEnv:   lookupEnv,
	}
}

// CreateClient resolves modelID to a ready-to-call client. Per-call
// overrides take precedence over catalog capability defaults. A direct
// provider whose credential is absent falls back to the gateway when
// the gateway key exists; otherwise resolution fails with
// *ports.MissingCredentialError.
func (f *Factory) CreateClient(modelID string, overrides ports.ClientOverrides) (ports.LLMClient, error) {
	provider, caps, route, err := f.resolve(modelID)
	if err != nil {
		return nil, err
	}

	envVar := provider.RequiresKey
	if envVar == "" {
		envVar = familyEnvVars[provider.Family]
	}

	apiKey, ok := f.lookupEnv(envVar)
	if !ok || apiKey == "" {
		if !provider.Direct() {
			return nil, &ports.MissingCredentialError{Provider: provider.ID, EnvVar: envVar}
		}
		gatewayKey, haveGateway := f.lookupEnv(gatewayKeyEnv)
		if !haveGateway || gatewayKey == "" {
			return nil, &ports.MissingCredentialError{Provider: provider.ID, EnvVar: envVar}
		}
		f.logger.Warn("direct provider credential missing, routing through gateway",
			"provider", provider.ID,
			"env_var", envVar,
			"model", modelID)
		provider = domain.ProviderDescriptor{ID: "gateway", Family: domain.FamilyGateway, RequiresKey: gatewayKeyEnv}
		apiKey = gatewayKey
	}

	requestModel := route
	if provider.Direct() {
		requestModel = nativeModelID(route)
	}

	timeout := time.Duration(caps.TimeoutSeconds) * time.Second
	if overrides.Timeout > 0 {
		timeout = overrides.Timeout
	}

	client, err := NewClient(string(provider.Family), ClientConfig{
		APIKey:     apiKey,
		Model:      requestModel,
		BaseURL:    provider.BaseURL,
		Timeout:    timeout,
		Middleware: f.buildMiddleware(provider.ID, timeout),
	})
	if err != nil {
		return nil, err
	}

	return &overrideClient{
		LLMClient:   client,
		temperature: resolveTemperature(caps, overrides),
		maxTokens:   resolveMaxTokens(caps, overrides),
	}, nil
}

// resolve finds the provider descriptor, capability defaults, and
// provider-facing model path for a model identifier.
func (f *Factory) resolve(modelID string) (domain.ProviderDescriptor, domain.ModelCapabilities, string, error) {
	if desc, ok := f.catalog.Model(modelID); ok {
		route := desc.Route
		if route == "" {
			route = desc.ID
		}
		if provider, ok := f.catalog.Provider(desc.Provider); ok {
			return provider, desc.Capability, route, nil
		}
		// Catalog validation should prevent dangling provider refs;
		// fall through to the heuristic if one slips in.
	}

	if provider, ok := guessProvider(modelID); ok {
		return provider, domain.ModelCapabilities{}, modelID, nil
	}

	return domain.ProviderDescriptor{}, domain.ModelCapabilities{}, "", &ports.UnsupportedModelError{
		ModelID:   modelID,
		Available: f.catalog.ActiveModels(),
	}
}

// buildMiddleware assembles the chain shared by every client: tracing
// outermost, then metrics, rate limiting, and the timeout closest to
// the provider.
func (f *Factory) buildMiddleware(providerID string, timeout time.Duration) []Middleware {
	chain := []Middleware{TracingMiddleware(f.serviceName)}
	if f.metrics != nil {
		chain = append(chain, MetricsMiddleware(providerID, f.metrics))
	}
	if f.rps > 0 {
		chain = append(chain, RateLimitMiddleware(f.rps, f.burst))
	}
	if timeout > 0 {
		chain = append(chain, TimeoutMiddleware(timeout))
	}
	return chain
}

func resolveTemperature(caps domain.ModelCapabilities, overrides ports.ClientOverrides) *float64 {
	if overrides.Temperature != nil {
		return overrides.Temperature
	}
	if caps.Temperature > 0 {
		temp := caps.Temperature
		return &temp
	}
	return nil
}

func resolveMaxTokens(caps domain.ModelCapabilities, overrides ports.ClientOverrides) int {
	if overrides.MaxTokens != nil {
		return *overrides.MaxTokens
	}
	return caps.MaxTokens
}

// overrideClient injects resolved capability defaults into every call
// without clobbering options the caller set explicitly.
type overrideClient struct {
	ports.LLMClient
	temperature *float64
	maxTokens   int
}

func (c *overrideClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	return c.LLMClient.Complete(ctx, prompt, c.merge(options))
}

func (c *overrideClient) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	return c.LLMClient.CompleteWithUsage(ctx, prompt, c.merge(options))
}

func (c *overrideClient) merge(options map[string]any) map[string]any {
	if c.temperature == nil && c.maxTokens <= 0 {
		return options
	}
	merged := make(map[string]any, len(options)+2)
	for k, v := range options {
		merged[k] = v
	}
	if c.temperature != nil {
		if _, ok := merged["temperature"]; !ok {
			merged["temperature"] = *c.temperature
		}
	}
	if c.maxTokens > 0 {
		if _, ok := merged["max_tokens"]; !ok {
			merged["max_tokens"] = c.maxTokens
		}
	}
	return merged
}
