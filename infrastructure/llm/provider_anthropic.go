package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicDefaultModel is used when no model is configured.
const AnthropicDefaultModel = "claude-sonnet-4-20250514"

func init() {
	RegisterProviderFactory("anthropic", newAnthropicProvider)
}

// anthropicProvider implements CoreLLM for Anthropic's Messages API.
// Judge work requires plain text verdicts, so extended thinking stays
// disabled and only text blocks are read from responses.
type anthropicProvider struct {
	BaseProvider
	client     anthropic.Client
	classifier ErrorClassifier
	estimator  *TokenCounter
}

// newAnthropicProvider creates an Anthropic provider instance.
func newAnthropicProvider(config ClientConfig) (CoreLLM, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = AnthropicDefaultModel
	}

	baseURL, err := ValidateBaseURL(config.BaseURL)
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	p := &anthropicProvider{
		client:     anthropic.NewClient(opts...),
		classifier: ErrorClassifier{Provider: "anthropic"},
		estimator:  NewTokenCounter(),
	}
	p.SetModel(model)
	return p, nil
}

// DoRequest sends a request to Anthropic's Messages API and returns the
// response text with token usage.
func (p *anthropicProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	options := ParseRequestOptions(opts, p.GetModel())
	params := p.buildParams(prompt, options)

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", 0, 0, p.wrapError(err)
	}

	return p.processResponse(message, prompt)
}

// buildParams creates the API request parameters.
func (p *anthropicProvider) buildParams(prompt string, options RequestOptions) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(options.Model),
		MaxTokens: int64(options.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if options.Temperature != nil {
		params.Temperature = anthropic.Float(*options.Temperature)
	}
	if options.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: options.System}}
	}

	return params
}

// processResponse extracts text content and token counts from the API
// response. Non-text blocks are skipped.
func (p *anthropicProvider) processResponse(message *anthropic.Message, prompt string) (string, int, int, error) {
	var responseText strings.Builder
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.TextBlock:
			responseText.WriteString(content.Text)
		}
	}

	response := responseText.String()
	if response == "" {
		return "", 0, 0, NewProviderError("anthropic", ErrorTypeUnknown, 0, "empty response", ErrEmptyResponse)
	}

	tokensIn := p.estimator.GetTokenCount(int(message.Usage.InputTokens), prompt)
	tokensOut := p.estimator.GetTokenCount(int(message.Usage.OutputTokens), response)

	return response, tokensIn, tokensOut, nil
}

// wrapError classifies Anthropic SDK errors into ProviderError values.
func (p *anthropicProvider) wrapError(err error) error {
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return p.classifier.ClassifyHTTPError(anthropicErr.StatusCode, anthropicErr.Error(), err)
	}
	return p.classifier.ClassifyContextError(err)
}
