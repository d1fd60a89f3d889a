package analysis

import (
	"strings"
	"testing"
)

func containsReason(out AnalyzerOutput, reason string) bool {
	for _, r := range out.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

const machineProse = `It is important to note that renewable energy plays a vital role in modern infrastructure. Furthermore, the landscape of energy production continues to evolve rapidly. Moreover, comprehensive solutions must delve into the multifaceted nature of the problem. It is important to consider the broader implications for stakeholders everywhere.`

const humanProse = `I spilled coffee on the keyboard again this morning. My cat knocked the mug over, obviously. Took me twenty minutes to dry it out with a hair dryer, and the space bar still sticks. Anyway, the standup ran long because nobody read the ticket.`

func TestAnalyzeTextStyleFlagsMachineProse(t *testing.T) {
	out := analyzeTextStyle(AnalyzerSymmetry, 0.40, machineProse)

	if !out.Succeeded {
		t.Fatal("text style analysis should succeed")
	}
	if !containsReason(out, "ai_phrases") {
		t.Errorf("expected ai_phrases reason, got %v", out.Reasons)
	}
	if !containsReason(out, "no_personal_voice") {
		t.Errorf("expected no_personal_voice reason, got %v", out.Reasons)
	}
	if out.Verdict != VerdictSynthetic {
		t.Errorf("verdict = %s, want synthetic", out.Verdict)
	}
}

func TestAnalyzeTextStylePassesHumanProse(t *testing.T) {
	out := analyzeTextStyle(AnalyzerSymmetry, 0.40, humanProse)

	if out.Verdict != VerdictAuthentic {
		t.Errorf("verdict = %s for human prose, confidence %v, reasons %v",
			out.Verdict, out.Confidence, out.Reasons)
	}
	if containsReason(out, "no_personal_voice") {
		t.Error("first-person prose flagged as impersonal")
	}
}

func TestAnalyzeTextStyleRepetitiveStarters(t *testing.T) {
	text := strings.Repeat("The system processes incoming data efficiently and reliably for every user today. ", 5)
	out := analyzeTextStyle(AnalyzerSymmetry, 0.40, text)

	if !containsReason(out, "repetitive_starters") {
		t.Errorf("expected repetitive_starters, got %v", out.Reasons)
	}
	if !containsReason(out, "uniform_sentences") {
		t.Errorf("expected uniform_sentences, got %v", out.Reasons)
	}
}

func TestAnalyzeTextDistribution(t *testing.T) {
	// Short input scores zero but still succeeds.
	out := analyzeTextDistribution(AnalyzerFrequency, 0.35, "too short")
	if !out.Succeeded {
		t.Fatal("short input should still succeed")
	}
	if out.Confidence != 0 {
		t.Errorf("short input confidence = %v, want 0", out.Confidence)
	}
	if out.Verdict != VerdictAuthentic {
		t.Errorf("short input verdict = %s, want authentic", out.Verdict)
	}
}

func TestAnalyzeTextVocabulary(t *testing.T) {
	t.Run("attribution scores maximum", func(t *testing.T) {
		out := analyzeTextVocabulary(AnalyzerWatermark, 0.25, "This article was generated by AI for demonstration purposes.")
		if !containsReason(out, "ai_attribution") {
			t.Fatalf("expected ai_attribution, got %v", out.Reasons)
		}
		if out.Confidence != 0.95 {
			t.Errorf("confidence = %v, want ceiling 0.95", out.Confidence)
		}
		if out.Verdict != VerdictSynthetic {
			t.Errorf("verdict = %s, want synthetic", out.Verdict)
		}
	})

	t.Run("low vocabulary", func(t *testing.T) {
		text := strings.Repeat("the quick brown fox jumps over the lazy dog again ", 15)
		out := analyzeTextVocabulary(AnalyzerWatermark, 0.25, text)
		if !containsReason(out, "low_vocabulary") {
			t.Errorf("expected low_vocabulary, got %v", out.Reasons)
		}
	})

	t.Run("rich vocabulary passes", func(t *testing.T) {
		out := analyzeTextVocabulary(AnalyzerWatermark, 0.25, humanProse)
		if out.Confidence != 0 {
			t.Errorf("confidence = %v, want 0", out.Confidence)
		}
	})
}

func TestScoreBehaviorText(t *testing.T) {
	t.Run("scam pressure language", func(t *testing.T) {
		report := ScoreBehavior(&Request{
			ContentType: ContentText,
			Content:     "URGENT: Act now! You have won $5000. Click here and verify your account with your social security number.",
		})
		if report.ScamRiskScore < 0.6 {
			t.Errorf("scam risk = %v, want >= 0.6", report.ScamRiskScore)
		}
	})

	t.Run("plain text is quiet", func(t *testing.T) {
		report := ScoreBehavior(&Request{ContentType: ContentText, Content: humanProse})
		if report.ScamRiskScore != 0 {
			t.Errorf("scam risk = %v for plain prose, want 0", report.ScamRiskScore)
		}
	})

	t.Run("stock phrases raise behavioral score", func(t *testing.T) {
		report := ScoreBehavior(&Request{ContentType: ContentText, Content: machineProse})
		if report.BehavioralScore == 0 {
			t.Error("machine prose scored zero behavioral signal")
		}
	})
}

func TestScoreBehaviorImageWithoutMetadata(t *testing.T) {
	// Raw bytes with no EXIF segment.
	report := ScoreBehavior(&Request{ContentType: ContentImage, Payload: []byte("not a real image")})
	if report.BehavioralScore < 0.2 {
		t.Errorf("behavioral score = %v, want >= 0.2 for missing metadata", report.BehavioralScore)
	}
}

func TestFoldTextNormalizesCompatibilityForms(t *testing.T) {
	// Fullwidth letters fold to ASCII under NFKC.
	folded := foldText("ａｂｃ")
	if folded != "abc" {
		t.Errorf("foldText = %q, want %q", folded, "abc")
	}
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("First sentence here. Second one follows! Third, a question? ok")
	if len(sentences) != 3 {
		t.Fatalf("got %d sentences, want 3 (short trailing fragment dropped): %v", len(sentences), sentences)
	}
}

func TestUniqueWordRatio(t *testing.T) {
	if r := uniqueWordRatio("one two three four"); r != 1.0 {
		t.Errorf("all-distinct ratio = %v, want 1.0", r)
	}
	if r := uniqueWordRatio("same same same same"); r != 0.25 {
		t.Errorf("all-repeated ratio = %v, want 0.25", r)
	}
}
