package analysis

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/stat"
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// foldText applies NFKC normalization so homoglyph and width tricks do not
// skew the heuristics, then trims surrounding whitespace.
func foldText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// splitSentences returns trimmed sentences longer than five characters.
func splitSentences(s string) []string {
	parts := sentenceSplit.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) > 5 {
			out = append(out, p)
		}
	}
	return out
}

// wordLengths returns the length of each whitespace-separated token.
func wordLengths(s string) []float64 {
	fields := strings.Fields(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		out[i] = float64(len(f))
	}
	return out
}

// meanStd returns the mean and population standard deviation.
func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	if len(xs) == 1 {
		return xs[0], 0
	}
	return stat.Mean(xs, nil), stat.PopStdDev(xs, nil)
}

// uniqueWordRatio is distinct lowercase tokens over total tokens.
func uniqueWordRatio(s string) float64 {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		seen[f] = struct{}{}
	}
	return float64(len(seen)) / float64(len(fields))
}

// firstWord returns the lowercase first token of a sentence.
func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
