// Package classifier hosts the locally trained secondary models: a small
// convolutional network for images and an ONNX text classifier, both
// exposed to the pipeline through one adapter.
package classifier

import (
	"encoding/json"
	"fmt"
	"os"
)

// ConvLayer is one convolution stage of the exported network. Kernels are
// indexed [out][in][ky][kx].
type ConvLayer struct {
	Kernels [][][][]float64 `json:"kernels"`
	Bias    []float64       `json:"bias"`
}

// DenseLayer is one fully connected stage. Weights are indexed [out][in].
type DenseLayer struct {
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// CNNWeights is the exported weight artifact for the image network:
// alternating conv+maxpool stages followed by dense stages, sigmoid on
// the final unit.
type CNNWeights struct {
	InputSize int          `json:"input_size"`
	Conv      []ConvLayer  `json:"conv"`
	Dense     []DenseLayer `json:"dense"`
}

// LoadCNNWeights reads and validates a weight artifact.
func LoadCNNWeights(path string) (*CNNWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	var w CNNWeights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse weights: %w", err)
	}
	if err := w.validate(); err != nil {
		return nil, fmt.Errorf("invalid weights %s: %w", path, err)
	}
	return &w, nil
}

func (w *CNNWeights) validate() error {
	if w.InputSize <= 0 {
		return fmt.Errorf("input_size must be positive, got %d", w.InputSize)
	}
	if len(w.Conv) == 0 || len(w.Dense) == 0 {
		return fmt.Errorf("need at least one conv and one dense layer")
	}
	for i, c := range w.Conv {
		if len(c.Kernels) == 0 || len(c.Kernels) != len(c.Bias) {
			return fmt.Errorf("conv layer %d: kernel/bias count mismatch", i)
		}
	}
	for i, d := range w.Dense {
		if len(d.Weights) == 0 || len(d.Weights) != len(d.Bias) {
			return fmt.Errorf("dense layer %d: weight/bias count mismatch", i)
		}
	}
	last := w.Dense[len(w.Dense)-1]
	if len(last.Weights) != 1 {
		return fmt.Errorf("final dense layer must have one unit, got %d", len(last.Weights))
	}
	return nil
}
