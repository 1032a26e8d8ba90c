package server

import (
	"time"

	"github.com/arbiterhq/arbiter/internal/domain"
)

// CompareRequest is the wire request for a single comparison of two
// pre-generated answers.
type CompareRequest struct {
	// Input is the question or context both answers respond to.
	Input string `json:"input" binding:"required"`

	// ResponseA and ResponseB are the pre-generated answers to compare.
	ResponseA string `json:"response_a" binding:"required"`
	ResponseB string `json:"response_b" binding:"required"`

	// ModelAName and ModelBName are optional display names for the
	// answers' sources. Reference only, never used for routing.
	ModelAName string `json:"model_a_name"`
	ModelBName string `json:"model_b_name"`

	// JudgeModel optionally selects the judge model; empty uses the
	// catalog default.
	JudgeModel string `json:"judge_model"`
}

func (r CompareRequest) toDomain() domain.ComparisonRequest {
	return domain.ComparisonRequest{
		Question:   r.Input,
		AnswerA:    r.ResponseA,
		AnswerB:    r.ResponseB,
		ModelAName: r.ModelAName,
		ModelBName: r.ModelBName,
		JudgeModel: r.JudgeModel,
	}
}

// ComparisonResponse is the wire result of one comparison. The verdict
// is rendered in the legacy vocabulary ("A", "B", "Empate",
// "ERRO - ...", "TIMEOUT - Excedeu <n>s") for client compatibility.
type ComparisonResponse struct {
	Input     string `json:"input"`
	ResponseA string `json:"response_a"`
	ResponseB string `json:"response_b"`

	BetterResponse string `json:"better_response"`
	JudgeReasoning string `json:"judge_reasoning,omitempty"`

	ModelAName     string    `json:"model_a_name,omitempty"`
	ModelBName     string    `json:"model_b_name,omitempty"`
	JudgeModelUsed string    `json:"judge_model_used"`
	Timestamp      time.Time `json:"timestamp"`
	ExecutionTime  float64   `json:"execution_time"`
}

func newComparisonResponse(result domain.ComparisonResult) ComparisonResponse {
	return ComparisonResponse{
		Input:          result.Question,
		ResponseA:      result.AnswerA,
		ResponseB:      result.AnswerB,
		BetterResponse: result.Verdict.WireString(),
		JudgeReasoning: result.Reasoning,
		ModelAName:     result.ModelAName,
		ModelBName:     result.ModelBName,
		JudgeModelUsed: result.JudgeModel,
		Timestamp:      result.CreatedAt,
		ExecutionTime:  result.ExecutionSeconds,
	}
}

// BatchCompareRequest wraps 2 to 5 comparisons.
type BatchCompareRequest struct {
	Comparisons []CompareRequest `json:"comparisons" binding:"required,min=2,max=5,dive"`
}

// BatchComparisonResult is one comparison inside a batch response.
type BatchComparisonResult struct {
	ID        string `json:"id"`
	Input     string `json:"input"`
	ResponseA string `json:"response_a"`
	ResponseB string `json:"response_b"`

	ModelAName     string `json:"model_a_name,omitempty"`
	ModelBName     string `json:"model_b_name,omitempty"`
	JudgeModelUsed string `json:"judge_model_used"`

	BetterResponse string `json:"better_response"`
	JudgeReasoning string `json:"judge_reasoning,omitempty"`
}

// BatchComparisonResponse is the wire result of a batch comparison,
// carrying every per-item result plus aggregate statistics.
type BatchComparisonResponse struct {
	Results          []BatchComparisonResult `json:"results"`
	TotalComparisons int                     `json:"total_comparisons"`
	Successful       int                     `json:"successful"`
	ExecutionTime    float64                 `json:"execution_time"`

	ModelAWins int    `json:"model_a_wins"`
	ModelBWins int    `json:"model_b_wins"`
	Ties       int    `json:"ties"`
	Errors     int    `json:"errors"`
	BestModel  string `json:"best_model"`
}

func newBatchComparisonResponse(results []domain.BatchResult, stats domain.BatchStats, executionTime float64) BatchComparisonResponse {
	items := make([]BatchComparisonResult, len(results))
	for i, result := range results {
		items[i] = BatchComparisonResult{
			ID:             result.ID,
			Input:          result.Question,
			ResponseA:      result.AnswerA,
			ResponseB:      result.AnswerB,
			ModelAName:     result.ModelAName,
			ModelBName:     result.ModelBName,
			JudgeModelUsed: result.JudgeModel,
			BetterResponse: result.Verdict.WireString(),
			JudgeReasoning: result.Reasoning,
		}
	}
	return BatchComparisonResponse{
		Results:          items,
		TotalComparisons: stats.Total,
		Successful:       stats.Successful,
		ExecutionTime:    executionTime,
		ModelAWins:       stats.FirstWins,
		ModelBWins:       stats.SecondWins,
		Ties:             stats.Ties,
		Errors:           stats.Errors,
		BestModel:        stats.Best.WireString(),
	}
}

// ErrorResponse is the wire shape for request-level failures.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
