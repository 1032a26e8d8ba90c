// Package application implements the comparison workflow: answer
// production, judge invocation, response parsing, and the orchestrating
// engine. It depends only on the domain types and the ports interfaces;
// all provider and catalog specifics stay behind those contracts.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

// AnswerOutcome is the result of producing one side's answer. Exactly
// one of Text and Err is meaningful.
type AnswerOutcome struct {
	// Side identifies which answer this outcome belongs to.
	Side domain.Side
	// Text is the produced answer when Err is nil.
	Text string
	// Err is the production failure, nil on success.
	Err error
}

// Failed reports whether answer production failed.
func (o AnswerOutcome) Failed() bool { return o.Err != nil }

// FailureText renders the failure in the legacy sentinel vocabulary:
// "MODEL_ERROR: <details>" for unresolvable models and
// "<SIDE>_ERROR: <type>: <details>" for everything else. It is only
// used at the serialization boundary; callers branch on Err.
func (o AnswerOutcome) FailureText() string {
	if o.Err == nil {
		return ""
	}
	var unsupported *ports.UnsupportedModelError
	if errors.As(o.Err, &unsupported) {
		return "MODEL_ERROR: " + unsupported.Error()
	}
	return fmt.Sprintf("%s_ERROR: %s: %s", o.Side, failureType(o.Err), o.Err.Error())
}

// failureType names the error category for sentinel output.
func failureType(err error) string {
	var missing *ports.MissingCredentialError
	if errors.As(err, &missing) {
		return "MissingCredentialError"
	}
	if strings.Contains(err.Error(), "context deadline exceeded") {
		return "TimeoutError"
	}
	return "ProviderError"
}

// AnswerProducer produces one side's answer: supplied answers pass
// through verbatim with no model call, generated answers invoke the
// resolved model with the story template. Produce always returns a
// value; failures are captured in the outcome, never propagated.
type AnswerProducer struct {
	factory ports.ClientFactory
	prompts ports.PromptStore
	logger  *slog.Logger
}

// NewAnswerProducer creates an answer producer.
func NewAnswerProducer(factory ports.ClientFactory, prompts ports.PromptStore, logger *slog.Logger) *AnswerProducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerProducer{factory: factory, prompts: prompts, logger: logger}
}

// Produce obtains the answer for one side of a comparison.
func (p *AnswerProducer) Produce(ctx context.Context, side domain.Side, question string, source domain.AnswerSource) (outcome AnswerOutcome) {
	outcome = AnswerOutcome{Side: side}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("answer production panicked", "side", side.String(), "panic", r)
			outcome.Text = ""
			outcome.Err = fmt.Errorf("answer production panicked: %v", r)
		}
	}()

	if source.Kind() == domain.AnswerSupplied {
		outcome.Text = source.Text()
		return outcome
	}

	client, err := p.factory.CreateClient(source.ModelID(), ports.ClientOverrides{})
	if err != nil {
		p.logger.Warn("answer model unavailable",
			"side", side.String(), "model", source.ModelID(), "error", err)
		outcome.Err = err
		return outcome
	}

	template, err := p.prompts.Get(ports.StoryPrompt)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	prompt := renderTemplate(template, map[string]string{"topic": question})
	text, err := client.Complete(ctx, prompt, nil)
	if err != nil {
		p.logger.Warn("answer generation failed",
			"side", side.String(), "model", source.ModelID(), "error", err)
		outcome.Err = err
		return outcome
	}

	outcome.Text = text
	return outcome
}

// renderTemplate substitutes {name} placeholders. Unknown placeholders
// stay intact so missing variables remain visible.
func renderTemplate(template string, vars map[string]string) string {
	for name, value := range vars {
		template = strings.ReplaceAll(template, "{"+name+"}", value)
	}
	return template
}
