package analysis

import (
	"context"
	"fmt"

	"github.com/ecotrace/verity/pkg/imaging"
)

// ELAAnalyzer performs error level analysis: re-encode the image as JPEG
// and study the residual. Camera captures leave uneven, edge-correlated
// residuals; synthesis and heavy editing leave residuals that are too
// clean or too uniform. Image content only.
type ELAAnalyzer struct{}

func NewELAAnalyzer() *ELAAnalyzer { return &ELAAnalyzer{} }

func (a *ELAAnalyzer) ID() string          { return AnalyzerELA }
func (a *ELAAnalyzer) BaseWeight() float64 { return 0.30 }

// ImageOnly marks the analyzer as having no text-mode fallback.
func (a *ELAAnalyzer) ImageOnly() {}

func (a *ELAAnalyzer) Analyze(ctx context.Context, req *Request) AnalyzerOutput {
	img, err := imaging.Decode(req.Payload)
	if err != nil {
		return FailedOutput(a.ID(), a.BaseWeight(), "image_decode_failed")
	}
	encoded, err := imaging.EncodeJPEG(img, GetParams().ELAQuality)
	if err != nil {
		return FailedOutput(a.ID(), a.BaseWeight(), "jpeg_reencode_failed")
	}
	recompressed, err := imaging.Decode(encoded)
	if err != nil {
		return FailedOutput(a.ID(), a.BaseWeight(), "jpeg_reencode_failed")
	}

	ela := imaging.AbsDiff(imaging.GrayMat(img), imaging.GrayMat(recompressed))
	for i, v := range ela.Pix {
		v *= 15
		if v > 255 {
			v = 255
		}
		ela.Pix[i] = v
	}

	var raw float64
	var reasons []string
	var flags []string

	mean := ela.Mean()
	std := ela.Std()
	flags = append(flags, fmt.Sprintf("residual mean %.2f std %.2f", mean, std))

	if mean < 5 && std < 3 {
		raw += 0.35
		reasons = append(reasons, "ela_too_clean")
	}
	if mean > 0 && std/mean < 0.5 && mean < 15 {
		raw += 0.25
		reasons = append(reasons, "ela_uniform")
	}

	if blockStd, blockMean, ok := elaGrid(ela); ok && blockStd < 2 && blockMean < 20 {
		raw += 0.25
		reasons = append(reasons, "ela_grid_uniform")
		flags = append(flags, fmt.Sprintf("block mean spread %.2f", blockStd))
	}

	if ratio, ok := edgeResidualRatio(imaging.GrayMat(img), ela); ok && ratio < 1.2 {
		raw += 0.15
		reasons = append(reasons, "ela_edge_uniform")
		flags = append(flags, fmt.Sprintf("edge/flat residual ratio %.2f", ratio))
	}

	return scoredOutput(a.ID(), a.BaseWeight(), raw, reasons, flags, "natural_compression_residual")
}

// elaGrid splits the residual into a 4x4 grid and returns the spread and
// mean of the per-block means.
func elaGrid(ela *imaging.Mat) (blockStd, blockMean float64, ok bool) {
	const grid = 4
	cw, ch := ela.W/grid, ela.H/grid
	if cw < 4 || ch < 4 {
		return 0, 0, false
	}
	blocks := make([]float64, 0, grid*grid)
	for gy := 0; gy < grid; gy++ {
		for gx := 0; gx < grid; gx++ {
			blocks = append(blocks, ela.Region(gx*cw, gy*ch, cw, ch).Mean())
		}
	}
	mean, std := meanStd(blocks)
	return std, mean, true
}

// edgeResidualRatio compares the mean residual on edge pixels against flat
// pixels. Real compression hits edges harder.
func edgeResidualRatio(gray, ela *imaging.Mat) (float64, bool) {
	mask := imaging.EdgeMask(gray, 100)
	var edgeSum, flatSum float64
	var edgeN, flatN int
	n := len(ela.Pix)
	if len(mask) < n {
		n = len(mask)
	}
	for i := 0; i < n; i++ {
		if mask[i] {
			edgeSum += ela.Pix[i]
			edgeN++
		} else {
			flatSum += ela.Pix[i]
			flatN++
		}
	}
	if edgeN == 0 || flatN == 0 || flatSum == 0 {
		return 0, false
	}
	flatMean := flatSum / float64(flatN)
	if flatMean == 0 {
		return 0, false
	}
	return (edgeSum / float64(edgeN)) / flatMean, true
}
