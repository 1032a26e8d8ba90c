package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

// DefaultComparisonTimeout bounds a comparison when no timeout is
// configured.
const DefaultComparisonTimeout = 30 * time.Second

// ComparisonEngine orchestrates one comparison: produce both answers
// concurrently, evaluate walkover, judge, parse. The whole sequence
// runs under a single deadline; expiry yields a Timeout verdict with
// the elapsed time recorded, regardless of which phase was in flight.
type ComparisonEngine struct {
	producer *AnswerProducer
	judge    *JudgeInvoker
	parser   *ResponseParser
	metrics  ports.MetricsCollector
	logger   *slog.Logger
	timeout  time.Duration
}

// EngineConfig configures a ComparisonEngine.
type EngineConfig struct {
	Producer *AnswerProducer
	Judge    *JudgeInvoker
	Parser   *ResponseParser

	// Metrics receives per-comparison metrics. Optional.
	Metrics ports.MetricsCollector

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Timeout is the per-comparison (and per-batch) deadline. Zero
	// means DefaultComparisonTimeout.
	Timeout time.Duration
}

// NewComparisonEngine creates the engine.
func NewComparisonEngine(config EngineConfig) *ComparisonEngine {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultComparisonTimeout
	}
	return &ComparisonEngine{
		producer: config.Producer,
		judge:    config.Judge,
		parser:   config.Parser,
		metrics:  config.Metrics,
		logger:   logger,
		timeout:  timeout,
	}
}

// Timeout returns the configured comparison deadline.
func (e *ComparisonEngine) Timeout() time.Duration { return e.timeout }

// Compare runs one comparison. The answer sources decide whether each
// side's text is passed through or generated; for the pre-generated
// path both sources are supplied and no producer model call happens.
// Compare always returns a result, never an error.
func (e *ComparisonEngine) Compare(ctx context.Context, req domain.ComparisonRequest, sourceA, sourceB domain.AnswerSource) domain.ComparisonResult {
	start := time.Now()
	req = req.Normalized()

	if err := validateInputs(req, sourceA, sourceB); err != nil {
		return domain.ComparisonResult{
			Question:         req.Question,
			AnswerA:          req.AnswerA,
			AnswerB:          req.AnswerB,
			ModelAName:       req.ModelAName,
			ModelBName:       req.ModelBName,
			JudgeModel:       e.judge.ResolveModel(req.JudgeModel),
			Verdict:          domain.ErrorVerdict(err.Error()),
			CreatedAt:        start,
			ExecutionSeconds: time.Since(start).Seconds(),
		}
	}

	result := domain.ComparisonResult{
		Question:   req.Question,
		AnswerA:    req.AnswerA,
		AnswerB:    req.AnswerB,
		ModelAName: req.ModelAName,
		ModelBName: req.ModelBName,
		JudgeModel: e.judge.ResolveModel(req.JudgeModel),
		CreatedAt:  start,
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// The goroutine works on its own copy; after a timeout the caller
	// keeps mutating result while the run may still be finishing.
	base := result
	done := make(chan domain.ComparisonResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("comparison panicked", "panic", r)
				failed := base
				failed.Verdict = domain.ErrorVerdict(fmt.Sprintf("comparison panicked: %v", r))
				done <- failed
			}
		}()
		done <- e.run(ctx, req, base, sourceA, sourceB)
	}()

	select {
	case result = <-done:
	case <-ctx.Done():
		result.Verdict = domain.TimeoutVerdict(e.timeout)
		result.Reasoning = fmt.Sprintf("comparison interrupted after %.2fs", time.Since(start).Seconds())
		e.logger.Warn("comparison timed out", "timeout", e.timeout, "judge_model", result.JudgeModel)
	}

	result.ExecutionSeconds = time.Since(start).Seconds()
	e.record("compare", result.Verdict, time.Since(start))
	return result
}

// run executes the comparison state machine. It must respect ctx but
// the caller enforces the hard deadline.
func (e *ComparisonEngine) run(ctx context.Context, req domain.ComparisonRequest, result domain.ComparisonResult, sourceA, sourceB domain.AnswerSource) domain.ComparisonResult {
	var outcomeA, outcomeB AnswerOutcome

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		outcomeA = e.producer.Produce(gctx, domain.SideA, req.Question, sourceA)
		return nil
	})
	g.Go(func() error {
		outcomeB = e.producer.Produce(gctx, domain.SideB, req.Question, sourceB)
		return nil
	})
	_ = g.Wait()

	result.AnswerA = answerEcho(outcomeA)
	result.AnswerB = answerEcho(outcomeB)

	// Walkover evaluation: a side that failed to produce an answer
	// cannot win, and with nothing to compare the judge stays out.
	switch {
	case outcomeA.Failed() && outcomeB.Failed():
		result.Verdict = domain.ErrorVerdict(domain.ErrBothSidesFailed.Error())
		result.Reasoning = fmt.Sprintf("answer A: %s; answer B: %s", outcomeA.FailureText(), outcomeB.FailureText())
		return result
	case outcomeA.Failed():
		result.Verdict = domain.WinnerFor(domain.SideB)
		result.Reasoning = "answer B wins by walkover: " + outcomeA.FailureText()
		return result
	case outcomeB.Failed():
		result.Verdict = domain.WinnerFor(domain.SideA)
		result.Reasoning = "answer A wins by walkover: " + outcomeB.FailureText()
		return result
	}

	output := e.judge.JudgeOne(ctx, req.Question, outcomeA.Text, outcomeB.Text, req.JudgeModel)
	result.JudgeModel = output.Model
	if output.Err != nil {
		result.Verdict = domain.ErrorVerdict("judge invocation failed")
		result.Reasoning = output.Err.Error()
		return result
	}

	parsed := e.parser.Parse(output.Raw)
	result.Verdict = parsed.Verdict
	result.Reasoning = parsed.Reasoning
	return result
}

// CompareBatch runs up to MaxBatchSize comparisons under one shared
// deadline. It returns an error only for structural validation (batch
// size); individual failures become Error records so every input item
// has a result. Results preserve input order.
func (e *ComparisonEngine) CompareBatch(ctx context.Context, reqs []domain.ComparisonRequest) ([]domain.BatchResult, domain.BatchStats, error) {
	if len(reqs) < domain.MinBatchSize || len(reqs) > domain.MaxBatchSize {
		return nil, domain.BatchStats{}, fmt.Errorf("%w: got %d, want %d..%d",
			domain.ErrBatchSize, len(reqs), domain.MinBatchSize, domain.MaxBatchSize)
	}

	start := time.Now()
	normalized := make([]domain.ComparisonRequest, len(reqs))
	for i, req := range reqs {
		normalized[i] = req.Normalized()
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan []domain.BatchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("batch comparison panicked", "panic", r)
				results := make([]domain.BatchResult, len(normalized))
				for i, req := range normalized {
					results[i] = e.batchRecord(req,
						domain.ErrorVerdict(fmt.Sprintf("batch comparison panicked: %v", r)), "")
				}
				done <- results
			}
		}()
		done <- e.runBatch(ctx, normalized)
	}()

	var results []domain.BatchResult
	select {
	case results = <-done:
	case <-ctx.Done():
		// Total-batch timeout: every item gets a uniform timeout record.
		results = make([]domain.BatchResult, len(normalized))
		for i, req := range normalized {
			results[i] = e.batchRecord(req, domain.TimeoutVerdict(e.timeout),
				fmt.Sprintf("batch interrupted after %.2fs", time.Since(start).Seconds()))
		}
		e.logger.Warn("batch timed out", "timeout", e.timeout, "size", len(normalized))
	}

	elapsed := time.Since(start)
	seconds := elapsed.Seconds()
	for i := range results {
		results[i].ExecutionSeconds = seconds
	}

	stats := domain.ComputeBatchStats(results)
	e.record("compare_batch", domain.Verdict{}, elapsed)
	e.logger.Info("batch completed",
		"size", stats.Total,
		"successful", stats.Successful,
		"errors", stats.Errors,
		"best", stats.Best.WireString(),
		"elapsed", elapsed)
	return results, stats, nil
}

// runBatch fans the judge across all items and assembles records in
// input order.
func (e *ComparisonEngine) runBatch(ctx context.Context, reqs []domain.ComparisonRequest) []domain.BatchResult {
	outputs := e.judge.JudgeBatch(ctx, reqs, batchJudgeModel(reqs))

	results := make([]domain.BatchResult, len(reqs))
	for i, req := range reqs {
		output := outputs[i]
		record := e.batchRecord(req, domain.Verdict{}, "")
		record.JudgeModel = output.Model

		if output.Err != nil {
			record.Verdict = domain.ErrorVerdict("judge invocation failed")
			record.Reasoning = output.Err.Error()
		} else {
			parsed := e.parser.Parse(output.Raw)
			record.Verdict = parsed.Verdict
			record.Reasoning = parsed.Reasoning
		}
		results[i] = record
	}
	return results
}

// batchJudgeModel picks the judge for a batch. Items share one judge;
// the first explicit request wins.
func batchJudgeModel(reqs []domain.ComparisonRequest) string {
	for _, req := range reqs {
		if req.JudgeModel != "" {
			return req.JudgeModel
		}
	}
	return ""
}

func (e *ComparisonEngine) batchRecord(req domain.ComparisonRequest, verdict domain.Verdict, reasoning string) domain.BatchResult {
	return domain.BatchResult{
		ID: uuid.NewString(),
		ComparisonResult: domain.ComparisonResult{
			Question:   req.Question,
			AnswerA:    req.AnswerA,
			AnswerB:    req.AnswerB,
			ModelAName: req.ModelAName,
			ModelBName: req.ModelBName,
			JudgeModel: e.judge.ResolveModel(req.JudgeModel),
			Verdict:    verdict,
			Reasoning:  reasoning,
			CreatedAt:  time.Now().UTC(),
		},
	}
}

// validateInputs checks the comparison preconditions. The question is
// always required; a side's answer text is required only when it is
// supplied rather than generated.
func validateInputs(req domain.ComparisonRequest, sourceA, sourceB domain.AnswerSource) error {
	verr := domain.NewValidationError("comparison request")
	if req.Question == "" {
		verr.AddError("question cannot be empty")
	}
	if sourceA.Kind() == domain.AnswerSupplied && strings.TrimSpace(sourceA.Text()) == "" {
		verr.AddError("answer A cannot be empty")
	}
	if sourceB.Kind() == domain.AnswerSupplied && strings.TrimSpace(sourceB.Text()) == "" {
		verr.AddError("answer B cannot be empty")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// answerEcho returns the text echoed back for one side: the produced
// answer on success, the sentinel failure text otherwise.
func answerEcho(outcome AnswerOutcome) string {
	if outcome.Failed() {
		return outcome.FailureText()
	}
	return outcome.Text
}

func (e *ComparisonEngine) record(operation string, verdict domain.Verdict, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	labels := map[string]string{"operation": operation}
	if operation == "compare" {
		labels["verdict"] = verdictLabel(verdict)
	}
	e.metrics.RecordLatency("comparison", elapsed, labels)
	e.metrics.RecordCounter("comparisons_total", 1, labels)
}

func verdictLabel(v domain.Verdict) string {
	switch v.Kind {
	case domain.VerdictFirstWins:
		return "first_wins"
	case domain.VerdictSecondWins:
		return "second_wins"
	case domain.VerdictTie:
		return "tie"
	case domain.VerdictTimeout:
		return "timeout"
	default:
		return "error"
	}
}
