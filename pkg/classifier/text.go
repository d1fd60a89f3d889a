package classifier

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

// TextConfig configures the ONNX text classifier.
type TextConfig struct {
	// ModelPath is the local path to the ONNX model directory. If empty
	// and ModelName is set, the model is downloaded on first use.
	ModelPath string

	// ModelName is the HuggingFace model name used for downloads.
	ModelName string

	// OnnxLibraryPath points at the directory holding libonnxruntime.
	// When empty the pure Go backend is used.
	OnnxLibraryPath string

	// Timeout bounds a single inference call.
	Timeout time.Duration
}

// TextClassifier runs a binary human/machine text model through hugot.
// It degrades gracefully: when no model or runtime is available it simply
// reports not ready and the adapter emits a failed output.
type TextClassifier struct {
	mu       sync.RWMutex
	config   TextConfig
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	ready    bool
}

// NewTextClassifierWithFallback builds the classifier, returning a
// not-ready instance instead of an error when initialization fails.
func NewTextClassifierWithFallback(cfg TextConfig) *TextClassifier {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	t := &TextClassifier{config: cfg}
	if err := t.initialize(); err != nil {
		log.Printf("[WARN] Text classifier initialization failed (graceful degradation): %v", err)
	}
	return t
}

// Ready reports whether the model is loaded and usable.
func (t *TextClassifier) Ready() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ready
}

// Close releases the inference session.
func (t *TextClassifier) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ready = false
	if t.session != nil {
		return t.session.Destroy()
	}
	return nil
}

func (t *TextClassifier) initialize() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.config.ModelPath == "" && t.config.ModelName == "" {
		return fmt.Errorf("no model path or name configured")
	}

	session, err := t.createSession()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	t.session = session

	modelPath, err := t.resolveModelPath()
	if err != nil {
		_ = t.session.Destroy()
		return fmt.Errorf("resolve model path: %w", err)
	}

	pipeline, err := hugot.NewPipeline(t.session, hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "synthetic-text-detector",
	})
	if err != nil {
		_ = t.session.Destroy()
		return fmt.Errorf("create pipeline: %w", err)
	}
	t.pipeline = pipeline
	t.ready = true
	log.Printf("Text classifier initialized (model: %s)", modelPath)
	return nil
}

func (t *TextClassifier) createSession() (*hugot.Session, error) {
	if t.config.OnnxLibraryPath != "" {
		session, err := hugot.NewORTSession(options.WithOnnxLibraryPath(t.config.OnnxLibraryPath))
		if err == nil {
			log.Printf("Text classifier using ONNX Runtime backend")
			return session, nil
		}
		log.Printf("ONNX Runtime unavailable, falling back to Go backend: %v", err)
	}
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("create Go session: %w", err)
	}
	return session, nil
}

func (t *TextClassifier) resolveModelPath() (string, error) {
	if t.config.ModelPath != "" {
		if _, err := os.Stat(t.config.ModelPath); err == nil {
			return t.config.ModelPath, nil
		}
	}
	if t.config.ModelName == "" {
		return "", fmt.Errorf("model path %s not found and no model name to download", t.config.ModelPath)
	}
	modelsDir := "./models"
	if err := os.MkdirAll(modelsDir, 0755); err != nil {
		return "", fmt.Errorf("create models directory: %w", err)
	}
	log.Printf("Downloading model %s...", t.config.ModelName)
	modelPath, err := hugot.DownloadModel(t.config.ModelName, modelsDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("download model: %w", err)
	}
	return modelPath, nil
}

// syntheticLabel maps model label conventions onto the synthetic class.
func syntheticLabel(label string) bool {
	switch label {
	case "Fake", "AI", "ai", "machine-generated", "generated", "LABEL_1":
		return true
	default:
		return false
	}
}

// SyntheticScore classifies text and returns the synthetic likelihood.
func (t *TextClassifier) SyntheticScore(ctx context.Context, text string) (float64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.ready || t.pipeline == nil {
		return 0, fmt.Errorf("text classifier not ready")
	}

	result, err := t.pipeline.RunPipeline([]string{text})
	if err != nil {
		return 0, fmt.Errorf("classification failed: %w", err)
	}
	if len(result.ClassificationOutputs) == 0 || len(result.ClassificationOutputs[0]) == 0 {
		return 0, fmt.Errorf("no classification output")
	}
	out := result.ClassificationOutputs[0][0]
	score := float64(out.Score)
	if !syntheticLabel(out.Label) {
		score = 1 - score
	}
	return score, nil
}
