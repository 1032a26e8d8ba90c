package domain

import (
	"strings"
	"time"
)

// AnswerSourceKind discriminates how an answer for one side of a
// comparison is obtained.
type AnswerSourceKind int

const (
	// AnswerSupplied means the caller provided the answer text; no model
	// call is made for this side.
	AnswerSupplied AnswerSourceKind = iota
	// AnswerGenerated means the answer must be generated by the model
	// identified by ModelID.
	AnswerGenerated
)

// AnswerSource describes where one side's answer comes from.
// It replaces the optional-field pattern where the mere presence of a
// pre-generated string silently changed control flow: the variant makes
// the skip-generation decision explicit and removes the ambiguity
// between an empty and an absent answer.
type AnswerSource struct {
	kind    AnswerSourceKind
	text    string
	modelID string
}

// SuppliedAnswer returns a source that passes the given text through
// verbatim without any model call.
func SuppliedAnswer(text string) AnswerSource {
	return AnswerSource{kind: AnswerSupplied, text: text}
}

// GeneratedAnswer returns a source that generates the answer using the
// given model identifier.
func GeneratedAnswer(modelID string) AnswerSource {
	return AnswerSource{kind: AnswerGenerated, modelID: modelID}
}

// Kind returns the source discriminant.
func (s AnswerSource) Kind() AnswerSourceKind { return s.kind }

// Text returns the supplied answer text. It is only meaningful when
// Kind is AnswerSupplied.
func (s AnswerSource) Text() string { return s.text }

// ModelID returns the generating model identifier. It is only
// meaningful when Kind is AnswerGenerated.
func (s AnswerSource) ModelID() string { return s.modelID }

// ComparisonRequest carries one comparison: the original question, the
// two candidate answers, and optional metadata. Instances are treated
// as immutable once validated.
type ComparisonRequest struct {
	// Question is the prompt or context both answers respond to.
	Question string

	// AnswerA and AnswerB are the candidate answers under comparison.
	AnswerA string
	AnswerB string

	// ModelAName and ModelBName are display names for the answers'
	// sources. They are pure metadata and never influence model selection.
	ModelAName string
	ModelBName string

	// JudgeModel optionally selects the judge; empty means the catalog
	// default.
	JudgeModel string
}

// Validate checks the request preconditions: question and both answers
// must be non-empty after trimming. It returns a *ValidationError
// listing every violated field.
func (r ComparisonRequest) Validate() error {
	verr := NewValidationError("comparison request")
	if strings.TrimSpace(r.Question) == "" {
		verr.AddError("question cannot be empty")
	}
	if strings.TrimSpace(r.AnswerA) == "" {
		verr.AddError("answer A cannot be empty")
	}
	if strings.TrimSpace(r.AnswerB) == "" {
		verr.AddError("answer B cannot be empty")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Normalized returns a copy of the request with the three text fields
// trimmed of surrounding whitespace.
func (r ComparisonRequest) Normalized() ComparisonRequest {
	r.Question = strings.TrimSpace(r.Question)
	r.AnswerA = strings.TrimSpace(r.AnswerA)
	r.AnswerB = strings.TrimSpace(r.AnswerB)
	return r
}

// ComparisonResult is the outcome of one comparison. It echoes the
// inputs so responses are self-describing, and is created exactly once
// per comparison; the core does not persist it.
type ComparisonResult struct {
	// Question, AnswerA and AnswerB echo the compared inputs.
	Question string `json:"question"`
	AnswerA  string `json:"answer_a"`
	AnswerB  string `json:"answer_b"`

	// ModelAName and ModelBName echo the optional source metadata.
	ModelAName string `json:"model_a_name,omitempty"`
	ModelBName string `json:"model_b_name,omitempty"`

	// Verdict is the classified outcome.
	Verdict Verdict `json:"-"`

	// Reasoning is the judge's explanation, when one could be extracted.
	Reasoning string `json:"reasoning,omitempty"`

	// JudgeModel is the concrete identifier of the model that issued the
	// verdict.
	JudgeModel string `json:"judge_model_used"`

	// ExecutionSeconds is the wall-clock duration of the comparison.
	ExecutionSeconds float64 `json:"execution_time"`

	// CreatedAt records when the result was assembled.
	CreatedAt time.Time `json:"timestamp"`
}
