package classifier

import (
	"context"
	"fmt"

	"github.com/ecotrace/verity/pkg/analysis"
)

// Adapter exposes the trained models to the pipeline as one analyzer: the
// CNN handles images, the ONNX text model handles text. Either backend can
// be absent; the adapter then reports a failed output and the consensus
// engine reweights without it.
type Adapter struct {
	cnn  *CNNClassifier
	text *TextClassifier
}

// NewAdapter wires the two backends. Both may be nil.
func NewAdapter(cnn *CNNClassifier, text *TextClassifier) *Adapter {
	return &Adapter{cnn: cnn, text: text}
}

func (a *Adapter) ID() string          { return analysis.AnalyzerClassifier }
func (a *Adapter) BaseWeight() float64 { return 0.45 }

func (a *Adapter) Analyze(ctx context.Context, req *analysis.Request) analysis.AnalyzerOutput {
	switch req.ContentType {
	case analysis.ContentImage:
		return a.analyzeImage(req.Payload)
	default:
		return a.analyzeText(ctx, req.Content)
	}
}

func (a *Adapter) analyzeImage(payload []byte) analysis.AnalyzerOutput {
	if a.cnn == nil || !a.cnn.Ready() {
		return analysis.FailedOutput(a.ID(), a.BaseWeight(), "classifier_unavailable")
	}
	score, err := a.cnn.SyntheticScore(payload)
	if err != nil {
		return analysis.FailedOutput(a.ID(), a.BaseWeight(), "classifier_inference_failed")
	}
	return a.modelOutput(score)
}

func (a *Adapter) analyzeText(ctx context.Context, content string) analysis.AnalyzerOutput {
	if a.text == nil || !a.text.Ready() {
		return analysis.FailedOutput(a.ID(), a.BaseWeight(), "classifier_unavailable")
	}
	score, err := a.text.SyntheticScore(ctx, content)
	if err != nil {
		return analysis.FailedOutput(a.ID(), a.BaseWeight(), "classifier_inference_failed")
	}
	return a.modelOutput(score)
}

func (a *Adapter) modelOutput(score float64) analysis.AnalyzerOutput {
	reason := "model_classifies_authentic"
	if score >= 0.5 {
		reason = "model_classifies_synthetic"
	}
	return analysis.ModelOutput(a.ID(), a.BaseWeight(), score,
		[]string{reason}, []string{fmt.Sprintf("model score %.4f", score)})
}
