package analysis

import "context"

// Analyzer is the single capability every detector implements, whether it
// is a local heuristic, the local trained classifier, or the hosted vision
// model. Analyze must never return an error for analyzer-internal failures;
// those are captured in the output with Succeeded=false.
type Analyzer interface {
	// ID returns the stable analyzer identifier.
	ID() string

	// BaseWeight returns the analyzer's nominal weight before the
	// consensus engine reassigns weights by tier.
	BaseWeight() float64

	// Analyze produces one output for the request. Implementations are
	// pure and deterministic for identical input bytes; the only shared
	// state is read-only model weights loaded once per process.
	Analyze(ctx context.Context, req *Request) AnalyzerOutput
}

// imageOnly marks analyzers that have no text-mode fallback and are
// skipped entirely for text requests, rather than reporting a failure.
type imageOnly interface {
	ImageOnly()
}

func isImageOnly(a Analyzer) bool {
	_, ok := a.(imageOnly)
	return ok
}
