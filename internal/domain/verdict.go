// Package domain defines the core types for the comparison service:
// requests, verdicts, results, and batch aggregation. It carries no
// dependencies on infrastructure and is shared by every other layer.
package domain

import (
	"fmt"
	"time"
)

// Side identifies one of the two answers in a comparison.
type Side int

const (
	// SideA is the first answer in a comparison.
	SideA Side = iota
	// SideB is the second answer in a comparison.
	SideB
)

// String returns the canonical single-letter label for the side.
func (s Side) String() string {
	if s == SideB {
		return "B"
	}
	return "A"
}

// VerdictKind enumerates the possible outcomes of a comparison.
// A verdict is always one of these kinds; raw judge output is never
// passed through unclassified.
type VerdictKind int

const (
	// VerdictFirstWins indicates answer A was judged better.
	VerdictFirstWins VerdictKind = iota
	// VerdictSecondWins indicates answer B was judged better.
	VerdictSecondWins
	// VerdictTie indicates the judge considered both answers equal.
	VerdictTie
	// VerdictError indicates the comparison failed; Detail carries the
	// diagnostic. A technical tie (both sides failed to produce an
	// answer) is a VerdictError, distinct from a judge-issued tie.
	VerdictError
	// VerdictTimeout indicates the comparison deadline expired before a
	// verdict could be reached.
	VerdictTimeout
)

// Verdict is the classified outcome of a comparison.
// Callers match on Kind rather than sniffing string prefixes; the legacy
// string vocabulary survives only in WireString for backward-compatible
// API output.
type Verdict struct {
	// Kind classifies the outcome.
	Kind VerdictKind

	// Detail carries diagnostic text for Error verdicts and is empty
	// otherwise.
	Detail string

	// TimeoutSeconds is the configured deadline that expired, for
	// Timeout verdicts.
	TimeoutSeconds float64
}

// FirstWins returns a verdict declaring answer A the winner.
func FirstWins() Verdict { return Verdict{Kind: VerdictFirstWins} }

// SecondWins returns a verdict declaring answer B the winner.
func SecondWins() Verdict { return Verdict{Kind: VerdictSecondWins} }

// TieVerdict returns a judge-issued tie.
func TieVerdict() Verdict { return Verdict{Kind: VerdictTie} }

// WinnerFor returns the winning verdict for the given side.
// It is used for walkover outcomes where one side failed.
func WinnerFor(side Side) Verdict {
	if side == SideB {
		return SecondWins()
	}
	return FirstWins()
}

// ErrorVerdict returns an error verdict with the given diagnostic detail.
func ErrorVerdict(detail string) Verdict {
	return Verdict{Kind: VerdictError, Detail: detail}
}

// TimeoutVerdict returns a timeout verdict for the given deadline.
func TimeoutVerdict(timeout time.Duration) Verdict {
	return Verdict{Kind: VerdictTimeout, TimeoutSeconds: timeout.Seconds()}
}

// IsSuccess reports whether the verdict represents a completed judgment
// (a win for either side or a judge-issued tie) rather than a failure.
func (v Verdict) IsSuccess() bool {
	switch v.Kind {
	case VerdictFirstWins, VerdictSecondWins, VerdictTie:
		return true
	default:
		return false
	}
}

// WireString renders the verdict in the legacy wire vocabulary used by
// the public API: "A", "B", "Empate", "ERRO - <detail>", or
// "TIMEOUT - Excedeu <n>s". New code should match on Kind instead.
func (v Verdict) WireString() string {
	switch v.Kind {
	case VerdictFirstWins:
		return "A"
	case VerdictSecondWins:
		return "B"
	case VerdictTie:
		return "Empate"
	case VerdictTimeout:
		return fmt.Sprintf("TIMEOUT - Excedeu %gs", v.TimeoutSeconds)
	default:
		if v.Detail == "" {
			return "ERRO - Falha na comparação"
		}
		return "ERRO - " + v.Detail
	}
}
