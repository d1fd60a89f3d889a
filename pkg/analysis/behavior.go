package analysis

import (
	"bytes"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/ecotrace/verity/pkg/imaging"
	"github.com/ecotrace/verity/pkg/patterns"
)

// BehaviorReport is the auxiliary scoring layer that rides alongside the
// analyzer consensus: provenance and intent signals that do not belong to
// any single forensic slot.
type BehaviorReport struct {
	// BehavioralScore estimates how strongly the content behaves like
	// machine output (0..1).
	BehavioralScore float64 `json:"behavioral_score"`

	// ScamRiskScore estimates manipulation and fraud pressure in the
	// content (0..1), independent of whether it is synthetic.
	ScamRiskScore float64 `json:"scam_risk_score"`

	Flags []string `json:"flags"`
}

// ScoreBehavior computes the behavioral report for a request. It never
// fails; missing signals just score zero.
func ScoreBehavior(req *Request) BehaviorReport {
	if req.ContentType == ContentImage {
		return scoreImageBehavior(req.Payload)
	}
	return scoreTextBehavior(req.Content)
}

func scoreImageBehavior(payload []byte) BehaviorReport {
	var report BehaviorReport

	meta, err := exif.Decode(bytes.NewReader(payload))
	if err != nil {
		report.BehavioralScore += 0.2
		report.Flags = append(report.Flags, "no_capture_metadata")
	} else {
		hasCamera := false
		for _, field := range []exif.FieldName{exif.Make, exif.Model} {
			if tag, err := meta.Get(field); err == nil {
				if s, err := tag.StringVal(); err == nil && s != "" {
					hasCamera = true
				}
			}
		}
		if !hasCamera {
			report.BehavioralScore += 0.15
			report.Flags = append(report.Flags, "no_camera_identity")
		}
		if tag, err := meta.Get(exif.Software); err == nil {
			if software, err := tag.StringVal(); err == nil {
				if p := patterns.Get().MatchAny(software, patterns.CategoryGenerator); p != nil {
					report.BehavioralScore += 0.4
					report.Flags = append(report.Flags, "generator_software_tag:"+p.Name)
				}
			}
		}
	}

	if img, err := imaging.Decode(payload); err == nil {
		b := img.Bounds()
		if GetParams().IsGenerativeDimensions(b.Dx(), b.Dy()) {
			report.BehavioralScore += 0.1
			report.Flags = append(report.Flags, "generative_resolution")
		}
	}

	report.BehavioralScore = clamp01(report.BehavioralScore)
	return report
}

func scoreTextBehavior(content string) BehaviorReport {
	var report BehaviorReport
	text := foldText(content)
	reg := patterns.Get()

	phraseCount := reg.CountMatches(text, patterns.CategoryAIPhrase)
	if phraseCount > 0 {
		score := float64(phraseCount) * 0.1
		if score > 0.4 {
			score = 0.4
		}
		report.BehavioralScore += score
		report.Flags = append(report.Flags, "stock_phrases")
	}

	sentences := splitSentences(text)
	if len(sentences) >= 3 {
		lengths := make([]float64, len(sentences))
		for i, s := range sentences {
			lengths[i] = float64(len(strings.Fields(s)))
		}
		if _, std := meanStd(lengths); std*std < 5 {
			report.BehavioralScore += 0.15
			report.Flags = append(report.Flags, "metronomic_sentences")
		}
	}

	bullets := strings.Count(text, "\n- ") + strings.Count(text, "\n* ") + strings.Count(text, "\n• ")
	if bullets > 5 {
		report.BehavioralScore += 0.1
		report.Flags = append(report.Flags, "heavy_bulleting")
	}

	scamCount := reg.CountMatches(text, patterns.CategoryScam)
	if scamCount > 0 {
		report.ScamRiskScore = clamp01(float64(scamCount) * 0.2)
		report.Flags = append(report.Flags, "pressure_language")
	}

	report.BehavioralScore = clamp01(report.BehavioralScore)
	return report
}
