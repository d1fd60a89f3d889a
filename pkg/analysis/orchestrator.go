package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidContentType is returned for content types the pipeline does
// not support (anything but image and text).
var ErrInvalidContentType = errors.New("unsupported content type")

// Orchestrator fans an analysis request out to every registered analyzer
// concurrently and gathers their outputs in registration order. One slow
// or crashing analyzer never takes the request down; it is reported as a
// failed output and the rest of the ensemble proceeds.
type Orchestrator struct {
	analyzers []Analyzer
	timeout   time.Duration
}

// NewOrchestrator builds an orchestrator over the given analyzers.
// timeout bounds each individual analyzer run.
func NewOrchestrator(timeout time.Duration, analyzers ...Analyzer) *Orchestrator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Orchestrator{analyzers: analyzers, timeout: timeout}
}

// Analyzers returns the registered analyzers in registration order.
func (o *Orchestrator) Analyzers() []Analyzer { return o.analyzers }

// Run executes every applicable analyzer against the request. Image-only
// analyzers are skipped for text content. The returned slice preserves
// registration order regardless of completion order.
func (o *Orchestrator) Run(ctx context.Context, req *Request) ([]AnalyzerOutput, error) {
	if !req.ContentType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentType, req.ContentType)
	}

	selected := make([]Analyzer, 0, len(o.analyzers))
	for _, a := range o.analyzers {
		if req.ContentType == ContentText && isImageOnly(a) {
			continue
		}
		selected = append(selected, a)
	}

	outputs := make([]AnalyzerOutput, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range selected {
		g.Go(func() error {
			outputs[i] = o.runOne(gctx, a, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// runOne executes a single analyzer under its own deadline, converting
// panics and timeouts into failed outputs.
func (o *Orchestrator) runOne(ctx context.Context, a Analyzer, req *Request) AnalyzerOutput {
	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	done := make(chan AnalyzerOutput, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[WARN] Analyzer %s panicked: %v", a.ID(), r)
				done <- FailedOutput(a.ID(), a.BaseWeight(), "analyzer_panic")
			}
		}()
		done <- a.Analyze(runCtx, req)
	}()

	select {
	case out := <-done:
		return out
	case <-runCtx.Done():
		return FailedOutput(a.ID(), a.BaseWeight(), "analyzer_timeout")
	}
}
