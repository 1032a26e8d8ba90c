package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

func newTestProducer(factory *stubFactory) *AnswerProducer {
	return NewAnswerProducer(factory, defaultTestPrompts(), slog.New(slog.DiscardHandler))
}

func TestAnswerProducerSupplied(t *testing.T) {
	factory := &stubFactory{}
	producer := newTestProducer(factory)

	outcome := producer.Produce(context.Background(), domain.SideA, "why is the sky blue", domain.SuppliedAnswer("Rayleigh scattering."))

	require.False(t, outcome.Failed())
	assert.Equal(t, "Rayleigh scattering.", outcome.Text)
	assert.Empty(t, factory.createdModels(), "supplied answers must not touch the factory")
}

func TestAnswerProducerGenerated(t *testing.T) {
	client := &stubClient{model: "writer-model", response: "Once upon a time."}
	factory := &stubFactory{clients: map[string]*stubClient{"writer-model": client}}
	producer := newTestProducer(factory)

	outcome := producer.Produce(context.Background(), domain.SideB, "dragons", domain.GeneratedAnswer("writer-model"))

	require.False(t, outcome.Failed())
	assert.Equal(t, "Once upon a time.", outcome.Text)
	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, "Write a story about dragons", client.lastPrompt())
}

func TestAnswerProducerFailureText(t *testing.T) {
	tests := []struct {
		name     string
		side     domain.Side
		factory  *stubFactory
		contains []string
	}{
		{
			name:     "unknown model",
			side:     domain.SideA,
			factory:  &stubFactory{},
			contains: []string{"MODEL_ERROR:", "not supported"},
		},
		{
			name: "missing credential",
			side: domain.SideA,
			factory: &stubFactory{errs: map[string]error{
				"writer-model": &ports.MissingCredentialError{Provider: "anthropic", EnvVar: "ANTHROPIC_API_KEY"},
			}},
			contains: []string{"A_ERROR:", "MissingCredentialError"},
		},
		{
			name: "timeout",
			side: domain.SideB,
			factory: &stubFactory{clients: map[string]*stubClient{
				"writer-model": {model: "writer-model", err: errors.New("request failed: context deadline exceeded")},
			}},
			contains: []string{"B_ERROR:", "TimeoutError"},
		},
		{
			name: "provider failure",
			side: domain.SideB,
			factory: &stubFactory{clients: map[string]*stubClient{
				"writer-model": {model: "writer-model", err: errors.New("upstream returned 500")},
			}},
			contains: []string{"B_ERROR:", "ProviderError", "upstream returned 500"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			producer := newTestProducer(tt.factory)
			outcome := producer.Produce(context.Background(), tt.side, "question", domain.GeneratedAnswer("writer-model"))

			require.True(t, outcome.Failed())
			for _, part := range tt.contains {
				assert.Contains(t, outcome.FailureText(), part)
			}
		})
	}
}

func TestAnswerProducerRecoversPanic(t *testing.T) {
	client := &stubClient{
		model: "writer-model",
		completeFn: func(context.Context, string) (string, error) {
			panic("provider blew up")
		},
	}
	factory := &stubFactory{clients: map[string]*stubClient{"writer-model": client}}
	producer := newTestProducer(factory)

	outcome := producer.Produce(context.Background(), domain.SideA, "question", domain.GeneratedAnswer("writer-model"))

	require.True(t, outcome.Failed())
	assert.Contains(t, outcome.Err.Error(), "panicked")
	assert.Empty(t, outcome.Text)
}

func TestAnswerOutcomeFailureTextEmptyOnSuccess(t *testing.T) {
	outcome := AnswerOutcome{Side: domain.SideA, Text: "fine"}
	assert.Empty(t, outcome.FailureText())
}

func TestRenderTemplate(t *testing.T) {
	out := renderTemplate("Q: {question} A: {answer_a} B: {answer_b}", map[string]string{
		"question": "why?",
		"answer_a": "because",
		"answer_b": "no idea",
	})
	assert.Equal(t, "Q: why? A: because B: no idea", out)

	// Unknown placeholders stay visible.
	assert.Equal(t, "hi {name}", renderTemplate("hi {name}", map[string]string{"other": "x"}))
	assert.Equal(t, "plain", renderTemplate("plain", nil))
}
