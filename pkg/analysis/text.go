package analysis

import (
	"fmt"
	"strings"

	"github.com/ecotrace/verity/pkg/patterns"
)

// The image analyzers double as text analyzers: when a request carries
// text, each slot runs a stylometric heuristic instead of its pixel
// heuristic, under the same ID and weight so fusion treats them alike.

// analyzeTextStyle backs the symmetry slot in text mode. It looks for the
// rhythm of machine prose: uniform sentence lengths, repeated sentence
// openers, stock phrases, and the absence of a personal voice.
func analyzeTextStyle(id string, baseWeight float64, content string) AnalyzerOutput {
	text := foldText(content)
	var raw float64
	var reasons []string
	var flags []string

	sentences := splitSentences(text)
	if len(sentences) >= 3 {
		lengths := make([]float64, len(sentences))
		for i, s := range sentences {
			lengths[i] = float64(len(strings.Fields(s)))
		}
		mean, std := meanStd(lengths)
		if std < 3 && mean > 10 {
			raw += 0.7
			reasons = append(reasons, "uniform_sentences")
			flags = append(flags, fmt.Sprintf("sentence length std %.1f over %d sentences", std, len(sentences)))
		}

		starters := make(map[string]int)
		for _, s := range sentences {
			if w := firstWord(s); w != "" {
				starters[w]++
			}
		}
		maxStarter := 0
		for _, c := range starters {
			if c > maxStarter {
				maxStarter = c
			}
		}
		if float64(maxStarter)/float64(len(sentences)) >= 0.4 {
			raw += 0.5
			reasons = append(reasons, "repetitive_starters")
		}
	}

	reg := patterns.Get()
	if reg.CountMatches(text, patterns.CategoryAIPhrase) >= 2 {
		raw += 0.8
		reasons = append(reasons, "ai_phrases")
	}
	if reg.MatchAny(text, patterns.CategoryFirstPerson) == nil && len(text) > 200 {
		raw += 0.4
		reasons = append(reasons, "no_personal_voice")
	}

	return scoredOutput(id, baseWeight, raw, reasons, flags, "natural_prose_style")
}

// analyzeTextDistribution backs the frequency slot in text mode: word
// length and paragraph length distributions that are too regular.
func analyzeTextDistribution(id string, baseWeight float64, content string) AnalyzerOutput {
	text := foldText(content)
	var raw float64
	var reasons []string
	var flags []string

	words := wordLengths(text)
	if len(words) > 20 {
		mean, std := meanStd(words)
		if mean > 4.5 && mean < 5.5 && std < 2.5 {
			raw += 0.5
			reasons = append(reasons, "uniform_word_length")
			flags = append(flags, fmt.Sprintf("word length mean %.2f std %.2f", mean, std))
		}
	}

	var paraLens []float64
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paraLens = append(paraLens, float64(len(strings.Fields(p))))
		}
	}
	if len(paraLens) >= 3 {
		_, std := meanStd(paraLens)
		if std < 10 {
			raw += 0.4
			reasons = append(reasons, "uniform_paragraphs")
		}
	}

	return scoredOutput(id, baseWeight, raw, reasons, flags, "natural_length_distribution")
}

// analyzeTextVocabulary backs the watermark slot in text mode: vocabulary
// richness and explicit machine attribution.
func analyzeTextVocabulary(id string, baseWeight float64, content string) AnalyzerOutput {
	text := foldText(content)
	var raw float64
	var reasons []string
	var flags []string

	if len(text) > 500 && uniqueWordRatio(text) < 0.4 {
		raw += 0.5
		reasons = append(reasons, "low_vocabulary")
	}
	reg := patterns.Get()
	if reg.MatchAny(text, patterns.CategoryAttribution) != nil {
		raw += 1.0
		reasons = append(reasons, "ai_attribution")
		for _, p := range reg.MatchAll(text, patterns.CategoryAttribution) {
			flags = append(flags, "attribution pattern "+p.Name)
		}
	}

	return scoredOutput(id, baseWeight, raw, reasons, flags, "no_attribution_markers")
}
