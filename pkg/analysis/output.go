package analysis

// ContentType identifies what kind of content an analysis request carries.
type ContentType string

const (
	ContentImage ContentType = "image"
	ContentText  ContentType = "text"
)

// Valid reports whether the content type is one the pipeline supports.
func (ct ContentType) Valid() bool {
	return ct == ContentImage || ct == ContentText
}

// Verdict is the binary classification every analyzer must emit.
type Verdict string

const (
	VerdictSynthetic Verdict = "synthetic"
	VerdictAuthentic Verdict = "authentic"
)

// Stable analyzer identifiers. The consensus engine classifies outputs
// into weight tiers by these IDs, so they must not change between releases.
const (
	AnalyzerSymmetry   = "symmetry-texture"
	AnalyzerFrequency  = "frequency-edge"
	AnalyzerWatermark  = "watermark-metadata"
	AnalyzerELA        = "ela-forensics"
	AnalyzerStatistics = "statistical-forensics"
	AnalyzerClassifier = "trained-classifier"
	AnalyzerVision     = "vision-llm"
)

const (
	// scoreCeiling caps the additive raw score of every heuristic analyzer.
	scoreCeiling = 0.95

	// analyzerCutoff is the per-analyzer verdict threshold on the raw score.
	analyzerCutoff = 0.45

	// maxReasons bounds the explanation list on every output.
	maxReasons = 5
)

// AnalyzerOutput is the common record shape every detector produces.
// Confidence IS the synthetic likelihood (0 = authentic capture,
// 1 = generated) for every analyzer - there is no flip step anywhere.
type AnalyzerOutput struct {
	AnalyzerID      string   `json:"analyzer_id"`
	Verdict         Verdict  `json:"verdict"`
	Confidence      float64  `json:"confidence"`
	Reasons         []string `json:"reasons"`
	StructuralFlags []string `json:"structural_flags"`
	BaseWeight      float64  `json:"base_weight"`
	Succeeded       bool     `json:"succeeded"`

	// Annotated by the fusion engine. NormalizedScore is 0 for failed
	// outputs (display only); FusedWeight is 0 for excluded outputs.
	NormalizedScore float64 `json:"normalized_score"`
	FusedWeight     float64 `json:"fused_weight"`
}

// Request is one analysis request. Payload carries the decoded binary
// content (image bytes) when present; Content carries text, a URL, or
// the uploaded filename. Records are owned by a single request pipeline
// and never shared across requests.
type Request struct {
	Content     string
	ContentType ContentType
	Payload     []byte
}

// FailedOutput builds the record for an analyzer that could not complete.
// Failed outputs still explain why they failed; the fusion engine excludes
// them from weighting and displays their score as zero.
func FailedOutput(id string, baseWeight float64, reason string) AnalyzerOutput {
	return AnalyzerOutput{
		AnalyzerID:      id,
		Verdict:         VerdictAuthentic,
		Confidence:      0,
		Reasons:         []string{reason},
		StructuralFlags: []string{},
		BaseWeight:      baseWeight,
		Succeeded:       false,
	}
}

// ModelOutput builds the record for a trained or hosted model. Model
// scores are already calibrated likelihoods, so unlike the additive
// heuristics they pass through without a ceiling; the verdict splits at
// one half.
func ModelOutput(id string, baseWeight, score float64, reasons, flags []string) AnalyzerOutput {
	score = clamp01(score)
	verdict := VerdictAuthentic
	if score >= 0.5 {
		verdict = VerdictSynthetic
	}
	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	if reasons == nil {
		reasons = []string{}
	}
	if flags == nil {
		flags = []string{}
	}
	return AnalyzerOutput{
		AnalyzerID:      id,
		Verdict:         verdict,
		Confidence:      round3(score),
		Reasons:         reasons,
		StructuralFlags: flags,
		BaseWeight:      baseWeight,
		Succeeded:       true,
	}
}

// scoredOutput turns an accumulated raw score into a finished output:
// clamp to the ceiling, threshold the verdict, trim reasons.
func scoredOutput(id string, baseWeight, raw float64, reasons, flags []string, fallback string) AnalyzerOutput {
	confidence := raw
	if confidence > scoreCeiling {
		confidence = scoreCeiling
	}
	if confidence < 0 {
		confidence = 0
	}
	verdict := VerdictAuthentic
	if confidence >= analyzerCutoff {
		verdict = VerdictSynthetic
	}
	if len(reasons) == 0 {
		reasons = []string{fallback}
	}
	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	if flags == nil {
		flags = []string{}
	}
	return AnalyzerOutput{
		AnalyzerID:      id,
		Verdict:         verdict,
		Confidence:      round3(confidence),
		Reasons:         reasons,
		StructuralFlags: flags,
		BaseWeight:      baseWeight,
		Succeeded:       true,
	}
}

func round3(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}

func round4(v float64) float64 {
	return float64(int(v*10000+0.5)) / 10000
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
