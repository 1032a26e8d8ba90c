package domain

// Batch size bounds enforced for batch comparisons. A single-item batch
// is rejected so callers use the single-comparison path instead.
const (
	MinBatchSize = 2
	MaxBatchSize = 5
)

// BestSide identifies which side won the most comparisons in a batch.
type BestSide int

const (
	// BestSideNone means no comparison on either side produced a win.
	BestSideNone BestSide = iota
	// BestSideFirst means answer A won the most comparisons.
	BestSideFirst
	// BestSideSecond means answer B won the most comparisons.
	BestSideSecond
	// BestSideTie means both sides won the same nonzero number of
	// comparisons.
	BestSideTie
)

// WireString renders the best side in the legacy wire vocabulary.
func (b BestSide) WireString() string {
	switch b {
	case BestSideFirst:
		return "A"
	case BestSideSecond:
		return "B"
	case BestSideTie:
		return "Empate"
	default:
		return "N/A"
	}
}

// BatchResult is a ComparisonResult executed as part of a batch,
// carrying a generated unique identifier.
type BatchResult struct {
	// ID uniquely identifies this comparison within the batch.
	ID string `json:"id"`

	ComparisonResult
}

// BatchStats aggregates the outcomes of a batch of comparisons.
// Invariant: Successful + Errors == Total.
type BatchStats struct {
	// Total is the number of comparisons in the batch.
	Total int `json:"total_comparisons"`

	// Successful counts comparisons that reached a judgment (win or
	// judge-issued tie).
	Successful int `json:"successful"`

	// FirstWins and SecondWins count wins per side.
	FirstWins  int `json:"model_a_wins"`
	SecondWins int `json:"model_b_wins"`

	// Ties counts judge-issued ties.
	Ties int `json:"ties"`

	// Errors counts failed comparisons, including timeouts.
	Errors int `json:"errors"`

	// Best is the side that won the most comparisons. It is only
	// well-defined when Successful > 0.
	Best BestSide `json:"-"`
}

// ComputeBatchStats derives aggregate statistics from a batch's results.
// Win-count ties with at least one win on either side resolve to
// BestSideTie; zero wins on both sides resolve to BestSideNone.
func ComputeBatchStats(results []BatchResult) BatchStats {
	stats := BatchStats{Total: len(results)}

	for _, res := range results {
		switch res.Verdict.Kind {
		case VerdictFirstWins:
			stats.FirstWins++
			stats.Successful++
		case VerdictSecondWins:
			stats.SecondWins++
			stats.Successful++
		case VerdictTie:
			stats.Ties++
			stats.Successful++
		default:
			stats.Errors++
		}
	}

	switch {
	case stats.FirstWins == 0 && stats.SecondWins == 0:
		stats.Best = BestSideNone
	case stats.FirstWins > stats.SecondWins:
		stats.Best = BestSideFirst
	case stats.SecondWins > stats.FirstWins:
		stats.Best = BestSideSecond
	default:
		stats.Best = BestSideTie
	}

	return stats
}
