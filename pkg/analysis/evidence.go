package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// EvidenceCategory distinguishes where an evidence item came from.
type EvidenceCategory string

const (
	EvidenceModelAnalysis EvidenceCategory = "model_analysis"
	EvidenceStructural    EvidenceCategory = "structural"
	EvidenceBehavioral    EvidenceCategory = "behavioral"
)

// Severity ranks how strongly an evidence item supports the verdict.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// EvidenceItem is one human-readable entry in the evidence trail.
type EvidenceItem struct {
	Category    EvidenceCategory `json:"category"`
	Description string           `json:"description"`
	Severity    Severity         `json:"severity"`
}

var severityRank = map[Severity]int{
	SeverityHigh:   0,
	SeverityMedium: 1,
	SeverityLow:    2,
}

// SeverityFromConfidence maps an analyzer confidence to a severity level.
func SeverityFromConfidence(confidence float64) Severity {
	switch {
	case confidence >= 0.8:
		return SeverityHigh
	case confidence >= 0.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// AggregateEvidence merges the reasons and structural flags of all
// successful analyzers into one deduplicated, severity-ranked list.
// A reason seen from two analyzers counts once (case-insensitive match);
// failed analyzers contribute nothing. Sorting is stable, so ties keep
// insertion order.
func AggregateEvidence(outputs []AnalyzerOutput, contentType ContentType) []EvidenceItem {
	evidence := make([]EvidenceItem, 0, len(outputs)*2)
	seen := make(map[string]bool)

	for _, out := range outputs {
		if !out.Succeeded {
			continue
		}
		severity := SeverityFromConfidence(out.Confidence)

		for _, reason := range out.Reasons {
			key := strings.ToLower(strings.TrimSpace(reason))
			if seen[key] || len(reason) <= 5 {
				continue
			}
			seen[key] = true
			evidence = append(evidence, EvidenceItem{
				Category:    EvidenceModelAnalysis,
				Description: fmt.Sprintf("[%s] %s", out.AnalyzerID, reason),
				Severity:    severity,
			})
		}

		for _, flag := range out.StructuralFlags {
			key := strings.ToLower(strings.TrimSpace(flag))
			if seen[key] || len(flag) <= 3 {
				continue
			}
			seen[key] = true
			evidence = append(evidence, EvidenceItem{
				Category:    EvidenceStructural,
				Description: fmt.Sprintf("[%s] %s", out.AnalyzerID, flag),
				Severity:    severity,
			})
		}
	}

	sort.SliceStable(evidence, func(i, j int) bool {
		return severityRank[evidence[i].Severity] < severityRank[evidence[j].Severity]
	})

	return evidence
}
