package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterhq/arbiter/internal/domain"
)

func TestGuessProvider(t *testing.T) {
	tests := []struct {
		name       string
		modelID    string
		wantFamily domain.APIFamily
		wantOK     bool
	}{
		{name: "anthropic prefix", modelID: "anthropic/claude-sonnet-4", wantFamily: domain.FamilyAnthropic, wantOK: true},
		{name: "google prefix", modelID: "google/gemini-2.5-pro", wantFamily: domain.FamilyGoogle, wantOK: true},
		{name: "openai prefix routes to gateway", modelID: "openai/gpt-5-mini", wantFamily: domain.FamilyGateway, wantOK: true},
		{name: "mistral bare name", modelID: "mistral-large-latest", wantFamily: domain.FamilyMistral, wantOK: true},
		{name: "deepseek prefix", modelID: "deepseek/deepseek-chat-v3.1", wantFamily: domain.FamilyGateway, wantOK: true},
		{name: "qwen prefix", modelID: "qwen/qwen3-30b-a3b-instruct-2507", wantFamily: domain.FamilyGateway, wantOK: true},
		{name: "meta-llama prefix", modelID: "meta-llama/llama-4-maverick", wantFamily: domain.FamilyGateway, wantOK: true},
		{name: "unknown slashed path defaults to gateway", modelID: "x-ai/grok-4", wantFamily: domain.FamilyGateway, wantOK: true},
		{name: "unknown bare name unresolvable", modelID: "gpt-4", wantOK: false},
		{name: "empty id unresolvable", modelID: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, ok := guessProvider(tt.modelID)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantFamily, provider.Family)
				assert.NotEmpty(t, provider.RequiresKey)
			}
		})
	}
}

func TestNativeModelID(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4", nativeModelID("anthropic/claude-sonnet-4"))
	assert.Equal(t, "gemini-2.5-pro", nativeModelID("google/gemini-2.5-pro"))
	assert.Equal(t, "mistral-large-latest", nativeModelID("mistral-large-latest"))
}

func TestReasoningEffortFor(t *testing.T) {
	assert.Equal(t, "none", ReasoningEffortFor("qwen/qwen3-30b-a3b-instruct-2507"))
	assert.Equal(t, "none", ReasoningEffortFor("deepseek/deepseek-chat-v3.1"))
	assert.Equal(t, "low", ReasoningEffortFor("anthropic/claude-sonnet-4"))
	assert.Equal(t, "minimal", ReasoningEffortFor("meta-llama/llama-4-maverick"))
	assert.Equal(t, "minimal", ReasoningEffortFor("google/gemini-2.5-pro"))
}
