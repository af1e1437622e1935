package ocr

import "testing"

func TestAverageConfidence(t *testing.T) {
	cases := []struct {
		name   string
		tokens []Token
		want   float64
	}{
		{"no tokens", nil, 0},
		{"all non-positive", []Token{{"a", -1}, {"b", 0}}, 0},
		{"single", []Token{{"word", 88.4}}, 88.4},
		{"mixed filters non-positive", []Token{{"a", 90}, {"b", -1}, {"c", 80}}, 85},
		{"rounds to two decimals", []Token{{"a", 90.555}, {"b", 90.55}}, 90.55},
		{"thirds round", []Token{{"a", 100}, {"b", 100}, {"c", 50}}, 83.33},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := AverageConfidence(c.tokens); got != c.want {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestAverageConfidenceRange(t *testing.T) {
	tokens := []Token{{"a", 100}, {"b", 100}, {"c", 100}}
	if got := AverageConfidence(tokens); got > 100 {
		t.Errorf("average exceeds 100: %v", got)
	}
}

func TestResultAvgConfidence(t *testing.T) {
	r := &Result{Text: "hi", Tokens: []Token{{"hi", 70}}}
	if got := r.AvgConfidence(); got != 70 {
		t.Errorf("got %v, want 70", got)
	}
}

func TestConfidenceLevel(t *testing.T) {
	cases := []struct {
		avg  float64
		want string
	}{
		{95, ConfidenceExcellent},
		{90, ConfidenceExcellent},
		{89.99, ConfidenceGood},
		{75, ConfidenceGood},
		{74.5, ConfidenceFair},
		{60, ConfidenceFair},
		{59.99, ConfidencePoor},
		{0, ConfidencePoor},
	}
	for _, c := range cases {
		if got := ConfidenceLevel(c.avg); got != c.want {
			t.Errorf("ConfidenceLevel(%v): got %s, want %s", c.avg, got, c.want)
		}
	}
}
