package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// GatewayDefaultModel is used when no model is configured.
	GatewayDefaultModel = "meta-llama/llama-4-maverick"
	// GatewayBaseURL is the OpenRouter OpenAI-compatible endpoint.
	GatewayBaseURL = "https://openrouter.ai/api/v1"
)

func init() {
	RegisterProviderFactory("gateway", newGatewayProvider)
}

// reasoningDisabledModels lists gateway models whose reasoning mode is
// switched off entirely. Judge prompts need direct verdicts; reasoning
// traces inflate latency and cost without improving parse rates.
var reasoningDisabledModels = map[string]struct{}{
	"qwen/qwen3-30b-a3b-instruct-2507": {},
	"deepseek/deepseek-chat-v3.1":      {},
	"x-ai/grok-4":                      {},
}

// ReasoningEffortFor returns the reasoning effort hint sent to the
// gateway for the given model. Models on the disabled list get "none",
// Anthropic-family routes accept only a bounded budget so they get
// "low", and everything else gets "minimal".
func ReasoningEffortFor(model string) string {
	if _, ok := reasoningDisabledModels[model]; ok {
		return "none"
	}
	if strings.HasPrefix(model, "anthropic/") {
		return "low"
	}
	return "minimal"
}

// gatewayProvider implements CoreLLM for the multi-provider gateway
// (OpenRouter), which exposes an OpenAI-compatible surface for models
// from many upstream vendors.
type gatewayProvider struct {
	BaseProvider
	client     *openai.Client
	classifier ErrorClassifier
	estimator  *TokenCounter
}

// newGatewayProvider creates a gateway provider instance.
func newGatewayProvider(config ClientConfig) (CoreLLM, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = GatewayDefaultModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = GatewayBaseURL
	if config.BaseURL != "" {
		validated, err := ValidateBaseURL(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid BaseURL: %w", err)
		}
		clientConfig.BaseURL = validated
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: ValidateTimeout(config.Timeout)}
	}

	p := &gatewayProvider{
		client:     openai.NewClientWithConfig(clientConfig),
		classifier: ErrorClassifier{Provider: "gateway"},
		estimator:  NewTokenCounter(),
	}
	p.SetModel(model)
	return p, nil
}

// DoRequest sends a chat completion request through the gateway and
// returns the response text with token usage.
func (p *gatewayProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	options := ParseRequestOptions(opts, p.GetModel())

	req := buildChatRequest(prompt, options)
	req.ReasoningEffort = ReasoningEffortFor(options.Model)

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", 0, 0, classifyOpenAIError(&p.classifier, err)
	}

	if len(resp.Choices) == 0 {
		return "", 0, 0, NewProviderError("gateway", ErrorTypeUnknown, 0, "no choices", ErrNoResponseChoice)
	}

	content := resp.Choices[0].Message.Content
	tokensIn := p.estimator.GetTokenCount(resp.Usage.PromptTokens, prompt)
	tokensOut := p.estimator.GetTokenCount(resp.Usage.CompletionTokens, content)

	return content, tokensIn, tokensOut, nil
}
