package analysis

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeAnalyzer is a configurable test double.
type fakeAnalyzer struct {
	id        string
	weight    float64
	score     float64
	delay     time.Duration
	panics    bool
	imageOnly bool
}

func (f *fakeAnalyzer) ID() string          { return f.id }
func (f *fakeAnalyzer) BaseWeight() float64 { return f.weight }

func (f *fakeAnalyzer) Analyze(ctx context.Context, req *Request) AnalyzerOutput {
	if f.panics {
		panic("analyzer exploded")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}
	return scoredOutput(f.id, f.weight, f.score, []string{"fake_signal"}, nil, "nothing")
}

type fakeImageAnalyzer struct{ fakeAnalyzer }

func (f *fakeImageAnalyzer) ImageOnly() {}

func TestOrchestratorPreservesRegistrationOrder(t *testing.T) {
	orch := NewOrchestrator(time.Second,
		&fakeAnalyzer{id: "a", weight: 0.3, score: 0.1},
		&fakeAnalyzer{id: "b", weight: 0.3, score: 0.2, delay: 50 * time.Millisecond},
		&fakeAnalyzer{id: "c", weight: 0.3, score: 0.3},
	)

	outputs, err := orch.Run(context.Background(), &Request{ContentType: ContentText, Content: "hello"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(outputs) != len(want) {
		t.Fatalf("got %d outputs, want %d", len(outputs), len(want))
	}
	for i, id := range want {
		if outputs[i].AnalyzerID != id {
			t.Errorf("outputs[%d] = %s, want %s", i, outputs[i].AnalyzerID, id)
		}
	}
}

func TestOrchestratorRejectsInvalidContentType(t *testing.T) {
	orch := NewOrchestrator(time.Second, &fakeAnalyzer{id: "a", weight: 0.3})

	_, err := orch.Run(context.Background(), &Request{ContentType: "video"})
	if !errors.Is(err, ErrInvalidContentType) {
		t.Errorf("err = %v, want ErrInvalidContentType", err)
	}
}

func TestOrchestratorSkipsImageOnlyForText(t *testing.T) {
	orch := NewOrchestrator(time.Second,
		&fakeAnalyzer{id: "both", weight: 0.3, score: 0.1},
		&fakeImageAnalyzer{fakeAnalyzer{id: "pixels", weight: 0.3, score: 0.9}},
	)

	outputs, err := orch.Run(context.Background(), &Request{ContentType: ContentText, Content: "hello"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outputs) != 1 || outputs[0].AnalyzerID != "both" {
		t.Fatalf("image-only analyzer not skipped for text: %+v", outputs)
	}

	outputs, err = orch.Run(context.Background(), &Request{ContentType: ContentImage, Payload: []byte("x")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("image request should run both analyzers, got %d", len(outputs))
	}
}

func TestOrchestratorConvertsPanicToFailure(t *testing.T) {
	orch := NewOrchestrator(time.Second,
		&fakeAnalyzer{id: "ok", weight: 0.3, score: 0.5},
		&fakeAnalyzer{id: "boom", weight: 0.3, panics: true},
	)

	outputs, err := orch.Run(context.Background(), &Request{ContentType: ContentText, Content: "hello"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outputs[0].Succeeded {
		t.Error("healthy analyzer marked failed")
	}
	if outputs[1].Succeeded {
		t.Error("panicking analyzer marked successful")
	}
	if len(outputs[1].Reasons) == 0 || outputs[1].Reasons[0] != "analyzer_panic" {
		t.Errorf("panic reason = %v", outputs[1].Reasons)
	}
}

func TestOrchestratorTimesOutSlowAnalyzer(t *testing.T) {
	orch := NewOrchestrator(50*time.Millisecond,
		&fakeAnalyzer{id: "fast", weight: 0.3, score: 0.5},
		&fakeAnalyzer{id: "slow", weight: 0.3, score: 0.5, delay: 5 * time.Second},
	)

	start := time.Now()
	outputs, err := orch.Run(context.Background(), &Request{ContentType: ContentText, Content: "hello"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("orchestrator waited %v for a slow analyzer", elapsed)
	}
	if outputs[1].Succeeded {
		t.Error("timed-out analyzer marked successful")
	}
	if outputs[1].Reasons[0] != "analyzer_timeout" {
		t.Errorf("timeout reason = %v", outputs[1].Reasons)
	}
}

func TestPipelineProducesCompleteResult(t *testing.T) {
	orch := NewOrchestrator(time.Second,
		&fakeAnalyzer{id: AnalyzerVision, weight: 0.55, score: 0.9},
		&fakeAnalyzer{id: AnalyzerSymmetry, weight: 0.40, score: 0.6},
	)
	pipeline := NewPipeline(orch)

	result, err := pipeline.Analyze(context.Background(), &Request{
		ContentType: ContentText,
		Content:     "It is important to note that this is a test. Furthermore, it continues.",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.RequestID == "" {
		t.Error("missing request ID")
	}
	if result.FinalVerdict != VerdictSynthetic {
		t.Errorf("verdict = %s, want synthetic", result.FinalVerdict)
	}
	if len(result.Outputs) != 2 {
		t.Errorf("got %d outputs, want 2", len(result.Outputs))
	}
	if len(result.Evidence) == 0 {
		t.Error("expected evidence items")
	}
	if result.AnalyzedAt.IsZero() {
		t.Error("missing analysis timestamp")
	}
}

func TestPipelineDistinctRequestIDs(t *testing.T) {
	orch := NewOrchestrator(time.Second, &fakeAnalyzer{id: "a", weight: 0.3, score: 0.1})
	pipeline := NewPipeline(orch)

	req := &Request{ContentType: ContentText, Content: "hello"}
	r1, err := pipeline.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := pipeline.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if r1.RequestID == r2.RequestID {
		t.Error("two analyses shared a request ID")
	}
}
