package application

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

// JudgeOutput is the raw product of one judge invocation. Raw is passed
// to the parser untouched; judges routinely return malformed or
// natural-language output instead of the requested structure, and
// classifying that is the parser's job, not the invoker's.
type JudgeOutput struct {
	// Raw is the unmodified judge response text.
	Raw string
	// Model is the resolved judge model identifier.
	Model string
	// Err is set when the invocation itself failed.
	Err error
}

// JudgeInvoker builds the judge prompt from the store template and
// invokes the resolved judge model.
type JudgeInvoker struct {
	factory ports.ClientFactory
	prompts ports.PromptStore
	catalog ports.ModelCatalog
	logger  *slog.Logger
}

// NewJudgeInvoker creates a judge invoker.
func NewJudgeInvoker(factory ports.ClientFactory, prompts ports.PromptStore, catalog ports.ModelCatalog, logger *slog.Logger) *JudgeInvoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &JudgeInvoker{factory: factory, prompts: prompts, catalog: catalog, logger: logger}
}

// ResolveModel returns the judge model to use: the explicit request
// when present, the catalog default otherwise.
func (j *JudgeInvoker) ResolveModel(requested string) string {
	if requested != "" {
		return requested
	}
	return j.catalog.DefaultModel()
}

// JudgeOne invokes the judge once for a question and two answers. The
// returned output always carries the resolved model identifier, even on
// failure.
func (j *JudgeInvoker) JudgeOne(ctx context.Context, question, answerA, answerB, judgeModel string) JudgeOutput {
	model := j.ResolveModel(judgeModel)
	output := JudgeOutput{Model: model}

	template, err := j.prompts.Get(ports.JudgePrompt)
	if err != nil {
		output.Err = err
		return output
	}

	client, err := j.factory.CreateClient(model, ports.ClientOverrides{})
	if err != nil {
		j.logger.Warn("judge model unavailable", "model", model, "error", err)
		output.Err = err
		return output
	}

	prompt := renderTemplate(template, map[string]string{
		"question": question,
		"answer_a": answerA,
		"answer_b": answerB,
	})

	raw, err := client.Complete(ctx, prompt, nil)
	if err != nil {
		j.logger.Warn("judge invocation failed", "model", model, "error", err)
		output.Err = err
		return output
	}

	output.Raw = raw
	return output
}

// JudgeBatch fans the judge across all requests in parallel and returns
// outputs in input order. Individual failures are captured per item; a
// structural failure (template or client construction) degrades to a
// uniform error output for every item instead of aborting the batch.
func (j *JudgeInvoker) JudgeBatch(ctx context.Context, requests []domain.ComparisonRequest, judgeModel string) []JudgeOutput {
	model := j.ResolveModel(judgeModel)
	outputs := make([]JudgeOutput, len(requests))

	template, err := j.prompts.Get(ports.JudgePrompt)
	if err != nil {
		return uniformErrorOutputs(outputs, model, err)
	}
	client, err := j.factory.CreateClient(model, ports.ClientOverrides{})
	if err != nil {
		j.logger.Warn("judge model unavailable for batch", "model", model, "error", err)
		return uniformErrorOutputs(outputs, model, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		g.Go(func() error {
			prompt := renderTemplate(template, map[string]string{
				"question": req.Question,
				"answer_a": req.AnswerA,
				"answer_b": req.AnswerB,
			})

			raw, err := client.Complete(gctx, prompt, nil)
			outputs[i] = JudgeOutput{Raw: raw, Model: model, Err: err}
			// Item failures stay in the slot; returning the error would
			// cancel the sibling judgments.
			return nil
		})
	}
	_ = g.Wait()

	return outputs
}

func uniformErrorOutputs(outputs []JudgeOutput, model string, err error) []JudgeOutput {
	for i := range outputs {
		outputs[i] = JudgeOutput{Model: model, Err: err}
	}
	return outputs
}
