package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// MistralDefaultModel is used when no model is configured.
	MistralDefaultModel = "mistral-large-latest"
	// MistralBaseURL is Mistral's OpenAI-compatible endpoint.
	MistralBaseURL = "https://api.mistral.ai/v1"
)

func init() {
	RegisterProviderFactory("mistral", newMistralProvider)
}

// mistralProvider implements CoreLLM for Mistral's chat completions
// API, which is OpenAI-compatible.
type mistralProvider struct {
	BaseProvider
	client     *openai.Client
	classifier ErrorClassifier
	estimator  *TokenCounter
}

// newMistralProvider creates a Mistral provider instance.
func newMistralProvider(config ClientConfig) (CoreLLM, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = MistralDefaultModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = MistralBaseURL
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

	p := &mistralProvider{
		client:     openai.NewClientWithConfig(clientConfig),
		classifier: ErrorClassifier{Provider: "mistral"},
		estimator:  NewTokenCounter(),
	}
	p.SetModel(model)
	return p, nil
}

// DoRequest sends a chat completion request to Mistral and returns the
// response text with token usage.
func (p *mistralProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	options := ParseRequestOptions(opts, p.GetModel())

	resp, err := p.client.CreateChatCompletion(ctx, buildChatRequest(prompt, options))
	if err != nil {
		return "", 0, 0, classifyOpenAIError(&p.classifier, err)
	}

	if len(resp.Choices) == 0 {
		return "", 0, 0, NewProviderError("mistral", ErrorTypeUnknown, 0, "no choices", ErrNoResponseChoice)
	}

	content := resp.Choices[0].Message.Content
	tokensIn := p.estimator.GetTokenCount(resp.Usage.PromptTokens, prompt)
	tokensOut := p.estimator.GetTokenCount(resp.Usage.CompletionTokens, content)

	return content, tokensIn, tokensOut, nil
}

// buildChatRequest assembles an OpenAI-compatible chat completion
// request from a prompt and parsed options. Shared by every adapter
// that speaks the OpenAI wire format.
func buildChatRequest(prompt string, options RequestOptions) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if options.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: options.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:    options.Model,
		Messages: messages,
	}
	if options.Temperature != nil {
		req.Temperature = float32(*options.Temperature)
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = options.MaxTokens
	}
	return req
}

// classifyOpenAIError classifies errors from OpenAI-compatible APIs
// into ProviderError values.
func classifyOpenAIError(classifier *ErrorClassifier, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return classifier.ClassifyContextError(err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = "unknown error"
		}
		return classifier.ClassifyHTTPError(apiErr.HTTPStatusCode, message, err)
	}

	return NewProviderError(classifier.Provider, ErrorTypeUnknown, 0, "request failed", err)
}
