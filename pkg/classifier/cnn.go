package classifier

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/ecotrace/verity/pkg/imaging"
)

// CNNClassifier runs the exported convolutional network over images with a
// pure Go forward pass. The network is tiny (three conv stages and two
// dense stages over a 32x32 input), so inference is a few milliseconds
// without any runtime dependency.
type CNNClassifier struct {
	weightsPath string

	once    sync.Once
	weights *CNNWeights
	loadErr error
}

// NewCNNClassifier builds the classifier. Weights load lazily on first use
// so a missing artifact degrades the analyzer instead of failing startup.
func NewCNNClassifier(weightsPath string) *CNNClassifier {
	return &CNNClassifier{weightsPath: weightsPath}
}

// Ready reports whether the weight artifact loaded.
func (c *CNNClassifier) Ready() bool {
	return c.load() == nil
}

func (c *CNNClassifier) load() error {
	c.once.Do(func() {
		if c.weightsPath == "" {
			c.loadErr = fmt.Errorf("no weights path configured")
			return
		}
		c.weights, c.loadErr = LoadCNNWeights(c.weightsPath)
		if c.loadErr != nil {
			log.Printf("[WARN] CNN weights unavailable: %v", c.loadErr)
			return
		}
		log.Printf("CNN classifier loaded (%d conv, %d dense layers, input %dx%d)",
			len(c.weights.Conv), len(c.weights.Dense), c.weights.InputSize, c.weights.InputSize)
	})
	return c.loadErr
}

// SyntheticScore decodes the payload and returns the synthetic likelihood
// in [0,1]. The network's sigmoid output is the authentic probability, so
// the score is its complement.
func (c *CNNClassifier) SyntheticScore(payload []byte) (float64, error) {
	if err := c.load(); err != nil {
		return 0, err
	}
	img, err := imaging.Decode(payload)
	if err != nil {
		return 0, fmt.Errorf("decode image: %w", err)
	}

	size := c.weights.InputSize
	scaled := imaging.Resize(img, size, size)
	tensor := make([][][]float64, 3)
	for ch := 0; ch < 3; ch++ {
		m := imaging.ChannelMat(scaled, ch)
		plane := make([][]float64, size)
		for y := 0; y < size; y++ {
			row := make([]float64, size)
			for x := 0; x < size; x++ {
				row[x] = m.At(x, y) / 255.0
			}
			plane[y] = row
		}
		tensor[ch] = plane
	}

	authentic := c.forward(tensor)
	return 1 - authentic, nil
}

func (c *CNNClassifier) forward(input [][][]float64) float64 {
	act := input
	for _, layer := range c.weights.Conv {
		act = maxPool2(convolve(act, layer))
	}

	flat := flatten(act)
	for i, layer := range c.weights.Dense {
		out := make([]float64, len(layer.Weights))
		for o, row := range layer.Weights {
			sum := layer.Bias[o]
			n := len(row)
			if len(flat) < n {
				n = len(flat)
			}
			for k := 0; k < n; k++ {
				sum += row[k] * flat[k]
			}
			if i < len(c.weights.Dense)-1 {
				sum = relu(sum)
			}
			out[o] = sum
		}
		flat = out
	}
	return sigmoid(flat[0])
}

// convolve applies a valid-padding convolution with ReLU activation.
// Activations are indexed [channel][y][x].
func convolve(input [][][]float64, layer ConvLayer) [][][]float64 {
	inC := len(input)
	inH := len(input[0])
	inW := len(input[0][0])
	kH := len(layer.Kernels[0][0])
	kW := len(layer.Kernels[0][0][0])
	outH, outW := inH-kH+1, inW-kW+1
	if outH < 1 || outW < 1 {
		return input
	}

	out := make([][][]float64, len(layer.Kernels))
	for o, kernel := range layer.Kernels {
		plane := make([][]float64, outH)
		for y := 0; y < outH; y++ {
			row := make([]float64, outW)
			for x := 0; x < outW; x++ {
				sum := layer.Bias[o]
				for ch := 0; ch < inC && ch < len(kernel); ch++ {
					for ky := 0; ky < kH; ky++ {
						for kx := 0; kx < kW; kx++ {
							sum += kernel[ch][ky][kx] * input[ch][y+ky][x+kx]
						}
					}
				}
				row[x] = relu(sum)
			}
			plane[y] = row
		}
		out[o] = plane
	}
	return out
}

// maxPool2 halves spatial resolution with 2x2 max pooling.
func maxPool2(input [][][]float64) [][][]float64 {
	out := make([][][]float64, len(input))
	for ch, plane := range input {
		h, w := len(plane)/2, len(plane[0])/2
		if h < 1 || w < 1 {
			out[ch] = plane
			continue
		}
		pooled := make([][]float64, h)
		for y := 0; y < h; y++ {
			row := make([]float64, w)
			for x := 0; x < w; x++ {
				m := plane[2*y][2*x]
				if v := plane[2*y][2*x+1]; v > m {
					m = v
				}
				if v := plane[2*y+1][2*x]; v > m {
					m = v
				}
				if v := plane[2*y+1][2*x+1]; v > m {
					m = v
				}
				row[x] = m
			}
			pooled[y] = row
		}
		out[ch] = pooled
	}
	return out
}

func flatten(input [][][]float64) []float64 {
	var out []float64
	for _, plane := range input {
		for _, row := range plane {
			out = append(out, row...)
		}
	}
	return out
}

func relu(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
