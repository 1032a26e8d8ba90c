package application

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

func newTestInvoker(factory *stubFactory, prompts ports.PromptStore) *JudgeInvoker {
	if prompts == nil {
		prompts = defaultTestPrompts()
	}
	return NewJudgeInvoker(factory, prompts, &stubModelCatalog{defaultModel: "default-judge"}, slog.New(slog.DiscardHandler))
}

func TestJudgeInvokerResolveModel(t *testing.T) {
	invoker := newTestInvoker(&stubFactory{}, nil)

	assert.Equal(t, "explicit-judge", invoker.ResolveModel("explicit-judge"))
	assert.Equal(t, "default-judge", invoker.ResolveModel(""))
}

func TestJudgeInvokerJudgeOne(t *testing.T) {
	client := &stubClient{model: "default-judge", response: `{"Preference": 1, "Reasoning": "clear"}`}
	factory := &stubFactory{clients: map[string]*stubClient{"default-judge": client}}
	invoker := newTestInvoker(factory, nil)

	output := invoker.JudgeOne(context.Background(), "what is Go", "a language", "a board game", "")

	require.NoError(t, output.Err)
	assert.Equal(t, "default-judge", output.Model)
	assert.Equal(t, `{"Preference": 1, "Reasoning": "clear"}`, output.Raw)

	prompt := client.lastPrompt()
	assert.Contains(t, prompt, "what is Go")
	assert.Contains(t, prompt, "a language")
	assert.Contains(t, prompt, "a board game")
}

func TestJudgeInvokerJudgeOneFailures(t *testing.T) {
	tests := []struct {
		name    string
		factory *stubFactory
		prompts ports.PromptStore
		wantErr string
	}{
		{
			name:    "missing template",
			factory: &stubFactory{},
			prompts: &stubPrompts{templates: map[string]string{}},
			wantErr: "prompt not found",
		},
		{
			name:    "unresolvable judge model",
			factory: &stubFactory{},
			wantErr: "not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker := newTestInvoker(tt.factory, tt.prompts)
			output := invoker.JudgeOne(context.Background(), "q", "a", "b", "")

			require.Error(t, output.Err)
			assert.Contains(t, output.Err.Error(), tt.wantErr)
			assert.Equal(t, "default-judge", output.Model)
			assert.Empty(t, output.Raw)
		})
	}
}

func TestJudgeInvokerJudgeBatch(t *testing.T) {
	client := &stubClient{
		model: "default-judge",
		completeFn: func(_ context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "question-two") {
				return `{"Preference": 2}`, nil
			}
			return `{"Preference": 1}`, nil
		},
	}
	factory := &stubFactory{clients: map[string]*stubClient{"default-judge": client}}
	invoker := newTestInvoker(factory, nil)

	requests := []domain.ComparisonRequest{
		{Question: "question-one", AnswerA: "a1", AnswerB: "b1"},
		{Question: "question-two", AnswerA: "a2", AnswerB: "b2"},
		{Question: "question-three", AnswerA: "a3", AnswerB: "b3"},
	}

	outputs := invoker.JudgeBatch(context.Background(), requests, "")

	require.Len(t, outputs, 3)
	assert.Equal(t, 3, client.callCount())
	assert.Equal(t, `{"Preference": 1}`, outputs[0].Raw)
	assert.Equal(t, `{"Preference": 2}`, outputs[1].Raw)
	assert.Equal(t, `{"Preference": 1}`, outputs[2].Raw)
	for _, output := range outputs {
		assert.NoError(t, output.Err)
		assert.Equal(t, "default-judge", output.Model)
	}
}

func TestJudgeInvokerJudgeBatchItemIsolation(t *testing.T) {
	client := &stubClient{
		model: "default-judge",
		completeFn: func(_ context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "poisoned") {
				return "", assert.AnError
			}
			return `{"Preference": 1}`, nil
		},
	}
	factory := &stubFactory{clients: map[string]*stubClient{"default-judge": client}}
	invoker := newTestInvoker(factory, nil)

	requests := []domain.ComparisonRequest{
		{Question: "fine", AnswerA: "a", AnswerB: "b"},
		{Question: "poisoned", AnswerA: "a", AnswerB: "b"},
		{Question: "also fine", AnswerA: "a", AnswerB: "b"},
	}

	outputs := invoker.JudgeBatch(context.Background(), requests, "")

	require.Len(t, outputs, 3)
	assert.NoError(t, outputs[0].Err)
	assert.Error(t, outputs[1].Err)
	assert.NoError(t, outputs[2].Err)
	assert.Equal(t, 3, client.callCount(), "one failing item must not cancel the others")
}

func TestJudgeInvokerJudgeBatchStructuralFailure(t *testing.T) {
	invoker := newTestInvoker(&stubFactory{}, nil)

	requests := []domain.ComparisonRequest{
		{Question: "q1", AnswerA: "a", AnswerB: "b"},
		{Question: "q2", AnswerA: "a", AnswerB: "b"},
	}

	outputs := invoker.JudgeBatch(context.Background(), requests, "ghost-model")

	require.Len(t, outputs, 2)
	for _, output := range outputs {
		require.Error(t, output.Err)
		assert.Contains(t, output.Err.Error(), "not supported")
		assert.Equal(t, "ghost-model", output.Model)
	}
}
