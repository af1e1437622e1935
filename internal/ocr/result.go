package ocr

import "math"

// Token is one recognized unit of text with the engine's confidence in it.
type Token struct {
	// Text is the recognized token content.
	Text string

	// Confidence is the engine's certainty, 0 to 100.
	Confidence float64
}

// Result is the output of one OCR invocation.
type Result struct {
	// Text is the full recognized text with surrounding whitespace trimmed.
	Text string

	// Tokens carries per-token confidence where the engine provides it.
	// May be empty even when Text is not.
	Tokens []Token
}

// AvgConfidence returns the averaged confidence of the result's tokens.
func (r *Result) AvgConfidence() float64 {
	return AverageConfidence(r.Tokens)
}

// AverageConfidence computes the mean confidence over tokens with a
// positive confidence value, rounded to two decimals. Tokens at or below
// zero are engine filler (separators, layout rows) and are excluded.
// Returns 0 when no token qualifies.
func AverageConfidence(tokens []Token) float64 {
	var sum float64
	var n int
	for _, tok := range tokens {
		if tok.Confidence > 0 {
			sum += tok.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*100) / 100
}

// Confidence quality levels used in operator-facing log lines.
const (
	ConfidenceExcellent = "excellent"
	ConfidenceGood      = "good"
	ConfidenceFair      = "fair"
	ConfidencePoor      = "poor"
)

// ConfidenceLevel classifies an averaged confidence score.
func ConfidenceLevel(avg float64) string {
	switch {
	case avg >= 90:
		return ConfidenceExcellent
	case avg >= 75:
		return ConfidenceGood
	case avg >= 60:
		return ConfidenceFair
	default:
		return ConfidencePoor
	}
}
