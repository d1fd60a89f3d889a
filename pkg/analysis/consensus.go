package analysis

// Consensus engine: weighted scoring, agreement, and smart fallback.
//
// Tier design:
//   - The hosted vision model is the PRIMARY signal (highest weight when
//     it succeeds).
//   - The local trained classifier is the SECONDARY signal.
//   - Heuristic and forensic analyzers provide SUPPORTING evidence.
//   - Failed outputs are excluded from the consensus calculation.
//   - Agreement is measured only among the active (weighted) outputs.

import "gonum.org/v1/gonum/stat"

// AgreementLevel is the qualitative bucket derived from the variance of
// active analyzer scores.
type AgreementLevel string

const (
	AgreementHigh   AgreementLevel = "high"
	AgreementMedium AgreementLevel = "medium"
	AgreementLow    AgreementLevel = "low"
)

const (
	// fusionThreshold decides the final verdict on the fused likelihood.
	// This is a fixed design constant, not a per-analyzer tunable.
	fusionThreshold = 0.50

	varianceHigh   = 0.05
	varianceMedium = 0.15
)

// Tier membership by analyzer ID.
var (
	primaryAnalyzers = map[string]bool{
		AnalyzerVision: true,
	}
	secondaryAnalyzers = map[string]bool{
		AnalyzerClassifier: true,
	}
)

// ConsensusResult is the fused verdict over all analyzer outputs.
type ConsensusResult struct {
	FinalVerdict   Verdict          `json:"final_verdict"`
	Likelihood     float64          `json:"likelihood"`
	AgreementLevel AgreementLevel   `json:"agreement_level"`
	Outputs        []AnalyzerOutput `json:"analyzer_outputs"`
}

// Fuse combines analyzer outputs into one consensus result. The input
// slice is not mutated; annotated copies are returned on the result.
// Calling Fuse twice on the same input yields identical output.
func Fuse(outputs []AnalyzerOutput) ConsensusResult {
	annotated := make([]AnalyzerOutput, len(outputs))
	copy(annotated, outputs)

	// Normalization: confidence already is the synthetic likelihood by
	// contract, so normalization reduces to range verification. Failed
	// outputs display a zero score and carry no weight.
	var active []int
	for i := range annotated {
		if annotated[i].Succeeded {
			annotated[i].NormalizedScore = round4(clamp01(annotated[i].Confidence))
			active = append(active, i)
		} else {
			annotated[i].NormalizedScore = 0
		}
		annotated[i].FusedWeight = 0
	}

	if len(active) == 0 {
		// No evidence of synthesis is a defensible default, not a crash.
		return ConsensusResult{
			FinalVerdict:   VerdictAuthentic,
			Likelihood:     0,
			AgreementLevel: AgreementLow,
			Outputs:        annotated,
		}
	}

	// Classify the successful outputs into tiers.
	primary, secondary := -1, -1
	var supporting []int
	for _, i := range active {
		switch {
		case primary < 0 && primaryAnalyzers[annotated[i].AnalyzerID]:
			primary = i
		case secondary < 0 && secondaryAnalyzers[annotated[i].AnalyzerID]:
			secondary = i
		default:
			supporting = append(supporting, i)
		}
	}

	// Fixed weight table; the supporting share is split evenly.
	switch {
	case primary >= 0 && secondary >= 0:
		annotated[primary].FusedWeight = 0.40
		annotated[secondary].FusedWeight = 0.30
		assignShare(annotated, supporting, 0.30)
	case primary >= 0:
		annotated[primary].FusedWeight = 0.55
		assignShare(annotated, supporting, 0.45)
	case secondary >= 0:
		annotated[secondary].FusedWeight = 0.45
		assignShare(annotated, supporting, 0.55)
	default:
		assignShare(annotated, supporting, 1.00)
	}

	var weightedSum, totalWeight float64
	scores := make([]float64, 0, len(active))
	for _, i := range active {
		weightedSum += annotated[i].NormalizedScore * annotated[i].FusedWeight
		totalWeight += annotated[i].FusedWeight
		scores = append(scores, annotated[i].NormalizedScore)
	}
	if totalWeight == 0 {
		totalWeight = 1
	}
	likelihood := weightedSum / totalWeight

	verdict := VerdictAuthentic
	if likelihood >= fusionThreshold {
		verdict = VerdictSynthetic
	}

	return ConsensusResult{
		FinalVerdict:   verdict,
		Likelihood:     round4(likelihood),
		AgreementLevel: agreement(scores),
		Outputs:        annotated,
	}
}

func assignShare(outputs []AnalyzerOutput, idx []int, share float64) {
	if len(idx) == 0 {
		return
	}
	per := round4(share / float64(len(idx)))
	for _, i := range idx {
		outputs[i].FusedWeight = per
	}
}

// agreement buckets the population variance of the active scores.
// Fewer than two active analyzers cannot agree or disagree, so the
// level defaults to medium.
func agreement(scores []float64) AgreementLevel {
	if len(scores) < 2 {
		return AgreementMedium
	}
	mean := stat.Mean(scores, nil)
	var variance float64
	for _, s := range scores {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(scores))

	switch {
	case variance < varianceHigh:
		return AgreementHigh
	case variance < varianceMedium:
		return AgreementMedium
	default:
		return AgreementLow
	}
}
