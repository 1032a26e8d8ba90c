package application

import (
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/arbiterhq/arbiter/internal/domain"
)

// maxReasoningChars bounds the reasoning text extracted from
// unstructured judge output.
const maxReasoningChars = 500

// invalidJSONMarker is the phrase the upstream structured-output layer
// embeds before the offending raw text when JSON decoding fails.
const invalidJSONMarker = "Invalid json output:"

// ParsedVerdict is the parser's output: a classified verdict plus the
// judge's reasoning when one could be extracted.
type ParsedVerdict struct {
	Verdict   domain.Verdict
	Reasoning string
}

// parseStrategy is one tier of the parsing pipeline. Strategies are
// pure: they report whether they recognized the output and never
// mutate shared state.
type parseStrategy interface {
	parse(raw string) (ParsedVerdict, bool)
}

// ResponseParser interprets raw judge output into a verdict through an
// ordered strategy pipeline: structured preference first, then the
// malformed-JSON marker adapter, then labeled text patterns, then label
// dominance counting. The first strategy that recognizes the output
// wins; unrecognizable output yields an Error verdict with a truncated
// diagnostic. Parse is idempotent.
type ResponseParser struct {
	strategies []parseStrategy
}

// NewResponseParser creates the parser with the standard pipeline.
func NewResponseParser() *ResponseParser {
	text := textStrategy{}
	return &ResponseParser{
		strategies: []parseStrategy{
			structuredStrategy{},
			markerAdapter{marker: invalidJSONMarker, inner: firstOf{structuredStrategy{}, text}},
			text,
		},
	}
}

// Parse classifies raw judge output.
func (p *ResponseParser) Parse(raw string) ParsedVerdict {
	for _, strategy := range p.strategies {
		if parsed, ok := strategy.parse(raw); ok {
			return parsed
		}
	}
	return ParsedVerdict{
		Verdict: domain.ErrorVerdict("unrecognizable judge output: " + truncate(raw, maxReasoningChars)),
	}
}

// structuredStrategy handles judges that follow instructions: a JSON
// object with a numeric preference field. 1 means the first answer, 2
// the second, anything else a tie. Reasoning is read from either field
// casing.
type structuredStrategy struct{}

func (structuredStrategy) parse(raw string) (ParsedVerdict, bool) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return ParsedVerdict{}, false
	}

	pref, ok := payload["Preference"]
	if !ok {
		return ParsedVerdict{}, false
	}

	parsed := ParsedVerdict{Verdict: domain.TieVerdict()}
	if n, ok := pref.(float64); ok {
		switch n {
		case 1:
			parsed.Verdict = domain.FirstWins()
		case 2:
			parsed.Verdict = domain.SecondWins()
		}
	}

	if reasoning, ok := payload["Reasoning"].(string); ok && reasoning != "" {
		parsed.Reasoning = reasoning
	} else if reasoning, ok := payload["reasoning"].(string); ok {
		parsed.Reasoning = reasoning
	}
	return parsed, true
}

// firstOf chains strategies: the first one that recognizes the input
// wins.
type firstOf []parseStrategy

func (s firstOf) parse(raw string) (ParsedVerdict, bool) {
	for _, strategy := range s {
		if parsed, ok := strategy.parse(raw); ok {
			return parsed, ok
		}
	}
	return ParsedVerdict{}, false
}

// markerAdapter extracts the raw text embedded after a fixed marker
// phrase in an upstream error message and re-parses it with the inner
// strategy. The marker format is owned by the upstream library; keeping
// this tier isolated means a format change only touches this adapter.
type markerAdapter struct {
	marker string
	inner  parseStrategy
}

func (a markerAdapter) parse(raw string) (ParsedVerdict, bool) {
	_, embedded, found := strings.Cut(raw, a.marker)
	if !found {
		return ParsedVerdict{}, false
	}
	return a.inner.parse(strings.TrimSpace(embedded))
}

// Labeled verdict patterns, checked in order against folded text.
var verdictPatterns = []struct {
	re      *regexp.Regexp
	verdict func() domain.Verdict
}{
	{regexp.MustCompile(`\bwinner:\s*assistant\s+a\b`), domain.FirstWins},
	{regexp.MustCompile(`\bwinner:\s*assistant\s+b\b`), domain.SecondWins},
	{regexp.MustCompile(`\bassistant\s+a\s+is\s+better\b`), domain.FirstWins},
	{regexp.MustCompile(`\bassistant\s+b\s+is\s+better\b`), domain.SecondWins},
	{regexp.MustCompile(`\b(empate|tie)\b`), domain.TieVerdict},
}

// textStrategy handles natural-language judge output: labeled patterns
// first, then label-count dominance. Equal counts resolve to a tie, as
// judges that mention both sides evenly have not picked a winner.
type textStrategy struct{}

func (textStrategy) parse(raw string) (ParsedVerdict, bool) {
	if strings.TrimSpace(raw) == "" {
		return ParsedVerdict{}, false
	}

	folded := cases.Fold().String(raw)
	reasoning := truncate(raw, maxReasoningChars)

	for _, p := range verdictPatterns {
		if p.re.MatchString(folded) {
			return ParsedVerdict{Verdict: p.verdict(), Reasoning: reasoning}, true
		}
	}

	aCount := strings.Count(folded, "assistant a")
	bCount := strings.Count(folded, "assistant b")
	switch {
	case aCount > bCount:
		return ParsedVerdict{Verdict: domain.FirstWins(), Reasoning: reasoning}, true
	case bCount > aCount:
		return ParsedVerdict{Verdict: domain.SecondWins(), Reasoning: reasoning}, true
	default:
		return ParsedVerdict{Verdict: domain.TieVerdict(), Reasoning: reasoning}, true
	}
}

// stripCodeFence removes a surrounding Markdown code fence, with or
// without a language tag.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// truncate shortens text to limit runes, appending an ellipsis when
// anything was cut.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
