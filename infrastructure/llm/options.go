package llm

import (
	"fmt"
	"net/url"
	"sync"
	"time"
)

// Default request parameters applied when neither the caller nor the
// catalog supplies a value.
const (
	// DefaultMaxTokens bounds response length when unspecified.
	DefaultMaxTokens = 1024
	// MinRequestTimeout and MaxRequestTimeout bound configurable
	// request timeouts.
	MinRequestTimeout = 1 * time.Second
	MaxRequestTimeout = 10 * time.Minute
)

// BaseProvider provides common, thread-safe model-name management for
// all provider adapters.
type BaseProvider struct {
	mu    sync.RWMutex
	model string
}

// GetModel returns the model currently configured for the provider.
func (b *BaseProvider) GetModel() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model
}

// SetModel updates the model name for the provider.
func (b *BaseProvider) SetModel(model string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.model = model
}

// RequestOptions is the standardized parameter set extracted from the
// per-request options map.
type RequestOptions struct {
	// MaxTokens caps the number of generated tokens.
	MaxTokens int
	// Model is the model identifier for this request.
	Model string
	// Temperature controls output randomness; nil means the provider
	// default applies.
	Temperature *float64
	// System carries an optional system prompt.
	System string
}

// ParseRequestOptions extracts and validates request parameters from an
// options map, applying defaults for missing or invalid entries.
func ParseRequestOptions(opts map[string]any, defaultModel string) RequestOptions {
	options := RequestOptions{
		MaxTokens: extractInt(opts, "max_tokens", DefaultMaxTokens, func(v int) bool { return v > 0 }),
		Model:     extractString(opts, "model", defaultModel),
		System:    extractString(opts, "system", ""),
	}

	if temp, ok := extractFloat(opts, "temperature"); ok && temp >= 0.0 && temp <= 2.0 {
		options.Temperature = &temp
	}

	return options
}

// extractInt reads an int option, falling back to defaultVal when the
// key is missing, mistyped, or rejected by the validator.
func extractInt(opts map[string]any, key string, defaultVal int, valid func(int) bool) int {
	if opts == nil {
		return defaultVal
	}
	val, ok := opts[key].(int)
	if !ok || (valid != nil && !valid(val)) {
		return defaultVal
	}
	return val
}

// extractString reads a string option, falling back to defaultVal when
// the key is missing, mistyped, or empty.
func extractString(opts map[string]any, key, defaultVal string) string {
	if opts == nil {
		return defaultVal
	}
	if val, ok := opts[key].(string); ok && val != "" {
		return val
	}
	return defaultVal
}

// extractFloat reads a float64 option, reporting whether it was present
// and correctly typed.
func extractFloat(opts map[string]any, key string) (float64, bool) {
	if opts == nil {
		return 0, false
	}
	val, ok := opts[key].(float64)
	return val, ok
}

// TokenCounter estimates token counts from text when exact tokenizer
// output is unavailable.
type TokenCounter struct {
	// CharactersPerToken is the approximate character-per-token ratio.
	CharactersPerToken float64
}

// NewTokenCounter creates a TokenCounter with a ratio suitable for
// English text.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{CharactersPerToken: 4.0}
}

// EstimateTokens returns an approximate token count for text.
func (tc *TokenCounter) EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return int(float64(len(text)) / tc.CharactersPerToken)
}

// GetTokenCount returns actualCount when the API reported one, and an
// estimate otherwise.
func (tc *TokenCounter) GetTokenCount(actualCount int, text string) int {
	if actualCount > 0 {
		return actualCount
	}
	return tc.EstimateTokens(text)
}

// ValidateBaseURL validates and normalizes a base URL string. An empty
// string is valid and means the provider default should be used.
func ValidateBaseURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", nil
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL scheme must be http or https, got: %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL must include a host")
	}

	return parsed.String(), nil
}

// ValidateTimeout clamps a request timeout to the supported range.
// Zero or negative values mean the system default should be used.
func ValidateTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	if timeout < MinRequestTimeout {
		return MinRequestTimeout
	}
	if timeout > MaxRequestTimeout {
		return MaxRequestTimeout
	}
	return timeout
}
