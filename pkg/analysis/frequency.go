package analysis

import (
	"context"
	"fmt"

	"github.com/ecotrace/verity/pkg/imaging"
)

// FrequencyAnalyzer inspects the frequency spectrum, edge statistics and
// texture variation of images. Generative output tends to be spectrally
// soft: little high-frequency energy, few hard edges, evenly distributed
// micro-texture. In text mode it runs the length-distribution heuristic.
type FrequencyAnalyzer struct{}

func NewFrequencyAnalyzer() *FrequencyAnalyzer { return &FrequencyAnalyzer{} }

func (a *FrequencyAnalyzer) ID() string          { return AnalyzerFrequency }
func (a *FrequencyAnalyzer) BaseWeight() float64 { return 0.35 }

func (a *FrequencyAnalyzer) Analyze(ctx context.Context, req *Request) AnalyzerOutput {
	if req.ContentType == ContentText {
		return analyzeTextDistribution(a.ID(), a.BaseWeight(), req.Content)
	}

	img, err := imaging.Decode(req.Payload)
	if err != nil {
		return FailedOutput(a.ID(), a.BaseWeight(), "image_decode_failed")
	}
	gray := imaging.GrayMat(img)

	var raw float64
	var reasons []string
	var flags []string

	rings := imaging.RingEnergies(gray, GetParams().FrequencyRings)
	if len(rings) >= 6 {
		low := (rings[0] + rings[1] + rings[2]) / 3
		high := (rings[len(rings)-3] + rings[len(rings)-2] + rings[len(rings)-1]) / 3
		if low < 1 {
			low = 1
		}
		ratio := high / low
		flags = append(flags, fmt.Sprintf("high/low spectral ratio %.3f", ratio))
		switch {
		case ratio < 0.2:
			raw += 0.25
			reasons = append(reasons, "low_high_frequency")
		case ratio < 0.35:
			raw += 0.10
		}
	}

	density := imaging.EdgeDensity(gray, 100)
	switch {
	case density < 0.02:
		raw += 0.20
		reasons = append(reasons, "low_edge_density")
		flags = append(flags, fmt.Sprintf("edge density %.4f", density))
	case density > 0.25:
		raw += 0.15
		reasons = append(reasons, "excessive_edge_density")
	}

	if mean, cv, ok := textureGrid(gray); ok && cv < 0.3 && mean < 500 {
		raw += 0.25
		reasons = append(reasons, "uniform_texture")
		flags = append(flags, fmt.Sprintf("texture grid cv %.2f mean %.0f", cv, mean))
	}

	flatChannels := 0
	for ch := 0; ch < 3; ch++ {
		hist := imaging.Histogram256(imaging.ChannelMat(img, ch))
		if imaging.HistogramPeaks(hist) < 3 {
			raw += 0.05
			flatChannels++
		}
	}
	if flatChannels > 0 && raw > 0.3 {
		reasons = append(reasons, "smooth_histogram")
	}

	noise := imaging.NoiseResidual(gray).Mean()
	flags = append(flags, fmt.Sprintf("noise residual %.2f", noise))
	switch {
	case noise < 1.0:
		raw += 0.15
		reasons = append(reasons, "no_sensor_noise")
	case noise < 2.0:
		raw += 0.05
	}

	return scoredOutput(a.ID(), a.BaseWeight(), raw, reasons, flags, "natural_frequency_profile")
}

// textureGrid splits the image into a 4x4 grid and measures how evenly the
// Laplacian variance is spread across cells. Returns ok=false when the
// image is too small to grid.
func textureGrid(gray *imaging.Mat) (mean, cv float64, ok bool) {
	const grid = 4
	cw, ch := gray.W/grid, gray.H/grid
	if cw < 8 || ch < 8 {
		return 0, 0, false
	}
	cells := make([]float64, 0, grid*grid)
	for gy := 0; gy < grid; gy++ {
		for gx := 0; gx < grid; gx++ {
			cells = append(cells, imaging.LaplacianVar(gray.Region(gx*cw, gy*ch, cw, ch)))
		}
	}
	m, std := meanStd(cells)
	if m == 0 {
		return 0, 0, false
	}
	return m, std / m, true
}
