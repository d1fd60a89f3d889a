package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Result is the complete record for one analysis request: the fused
// verdict, the per-analyzer breakdown, the evidence trail, and the
// behavioral report.
type Result struct {
	RequestID      string           `json:"request_id"`
	ContentType    ContentType      `json:"content_type"`
	FinalVerdict   Verdict          `json:"final_verdict"`
	Likelihood     float64          `json:"likelihood"`
	AgreementLevel AgreementLevel   `json:"agreement_level"`
	Outputs        []AnalyzerOutput `json:"analyzer_outputs"`
	Evidence       []EvidenceItem   `json:"evidence"`
	Behavior       BehaviorReport   `json:"behavior"`
	AnalyzedAt     time.Time        `json:"analyzed_at"`
	ElapsedMS      int64            `json:"elapsed_ms"`
}

// Pipeline ties the orchestrator, the consensus engine, the evidence
// aggregator and the behavioral scorer into one call.
type Pipeline struct {
	orch *Orchestrator
}

// NewPipeline wraps an orchestrator into a full analysis pipeline.
func NewPipeline(orch *Orchestrator) *Pipeline {
	return &Pipeline{orch: orch}
}

// Analyze runs the complete pipeline for one request.
func (p *Pipeline) Analyze(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	outputs, err := p.orch.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	consensus := Fuse(outputs)
	evidence := AggregateEvidence(consensus.Outputs, req.ContentType)
	behavior := ScoreBehavior(req)

	// Behavioral flags join the evidence trail under their own category.
	severity := SeverityLow
	if behavior.BehavioralScore > 0.3 {
		severity = SeverityMedium
	}
	for _, flag := range behavior.Flags {
		evidence = append(evidence, EvidenceItem{
			Category:    EvidenceBehavioral,
			Description: flag,
			Severity:    severity,
		})
	}

	return &Result{
		RequestID:      uuid.NewString(),
		ContentType:    req.ContentType,
		FinalVerdict:   consensus.FinalVerdict,
		Likelihood:     consensus.Likelihood,
		AgreementLevel: consensus.AgreementLevel,
		Outputs:        consensus.Outputs,
		Evidence:       evidence,
		Behavior:       behavior,
		AnalyzedAt:     start.UTC(),
		ElapsedMS:      time.Since(start).Milliseconds(),
	}, nil
}
