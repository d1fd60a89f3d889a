package analysis

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/ecotrace/verity/pkg/imaging"
)

// WatermarkAnalyzer looks for generator watermarks, overlay strips, telltale
// output dimensions and missing capture metadata. In text mode it runs the
// vocabulary heuristic under the same slot.
type WatermarkAnalyzer struct{}

func NewWatermarkAnalyzer() *WatermarkAnalyzer { return &WatermarkAnalyzer{} }

func (a *WatermarkAnalyzer) ID() string          { return AnalyzerWatermark }
func (a *WatermarkAnalyzer) BaseWeight() float64 { return 0.25 }

func (a *WatermarkAnalyzer) Analyze(ctx context.Context, req *Request) AnalyzerOutput {
	if req.ContentType == ContentText {
		return analyzeTextVocabulary(a.ID(), a.BaseWeight(), req.Content)
	}

	img, err := imaging.Decode(req.Payload)
	if err != nil {
		return FailedOutput(a.ID(), a.BaseWeight(), "image_decode_failed")
	}
	gray := imaging.GrayMat(img)
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var raw float64
	var reasons []string
	var flags []string

	if corner, found := findWatermarkCorner(gray); found {
		raw += 0.6
		reasons = append(reasons, "watermark_detected")
		flags = append(flags, "high-contrast structure in "+corner+" corner")
	}

	if stripRatio, found := watermarkStrip(gray); found {
		raw += 0.5
		reasons = append(reasons, "watermark_strip")
		flags = append(flags, fmt.Sprintf("bottom strip variance ratio %.3f", stripRatio))
	}

	raw += a.scoreMetadata(req.Payload, &reasons, &flags)

	params := GetParams()
	if params.IsGenerativeDimensions(w, h) {
		raw += 0.25
		reasons = append(reasons, "ai_dimensions")
		flags = append(flags, fmt.Sprintf("output size %dx%d", w, h))
	} else if params.HasGenerativeSide(w, h) {
		raw += 0.10
	}

	if banding := zeroDiffRatio(gray); banding > 0.85 {
		raw += 0.3
		reasons = append(reasons, "color_banding")
		flags = append(flags, fmt.Sprintf("flat gradient ratio %.2f", banding))
	}

	return scoredOutput(a.ID(), a.BaseWeight(), raw, reasons, flags, "no_watermark_indicators")
}

func (a *WatermarkAnalyzer) scoreMetadata(payload []byte, reasons, flags *[]string) float64 {
	meta, err := exif.Decode(bytes.NewReader(payload))
	if err != nil {
		*reasons = append(*reasons, "no_exif")
		return 0.15
	}
	hasCamera := false
	for _, field := range []exif.FieldName{exif.Make, exif.Model, exif.Software} {
		if tag, err := meta.Get(field); err == nil {
			if s, err := tag.StringVal(); err == nil && s != "" {
				hasCamera = true
				*flags = append(*flags, fmt.Sprintf("exif %s=%s", field, s))
			}
		}
	}
	if !hasCamera {
		*reasons = append(*reasons, "no_camera_metadata")
		return 0.15
	}
	return 0
}

// findWatermarkCorner scans the four corners for a compact high-contrast
// region, the usual place generator logos land.
func findWatermarkCorner(gray *imaging.Mat) (string, bool) {
	size := min(gray.W, gray.H) / 8
	if size < 20 {
		size = 20
	}
	if size > gray.W || size > gray.H {
		return "", false
	}
	corners := []struct {
		name string
		rect image.Rectangle
	}{
		{"top-left", image.Rect(0, 0, size, size)},
		{"top-right", image.Rect(gray.W-size, 0, gray.W, size)},
		{"bottom-left", image.Rect(0, gray.H-size, size, gray.H)},
		{"bottom-right", image.Rect(gray.W-size, gray.H-size, gray.W, gray.H)},
	}
	for _, c := range corners {
		region := gray.Region(c.rect.Min.X, c.rect.Min.Y, c.rect.Dx(), c.rect.Dy())
		if imaging.EdgeDensity(region, 100) > 0.15 && region.Std() > 30 {
			return c.name, true
		}
	}
	return "", false
}

// watermarkStrip checks whether the bottom 8% of the image is dramatically
// flatter than the rest, the signature of a solid overlay bar.
func watermarkStrip(gray *imaging.Mat) (float64, bool) {
	stripH := gray.H * 8 / 100
	if stripH < 4 {
		return 0, false
	}
	strip := gray.Region(0, gray.H-stripH, gray.W, stripH)
	rest := gray.Region(0, 0, gray.W, gray.H-stripH)
	restVar := rest.Var()
	if restVar <= 100 {
		return 0, false
	}
	ratio := strip.Var() / restVar
	return ratio, ratio < 0.1
}

// zeroDiffRatio measures how often horizontally adjacent pixels are exactly
// equal. Heavy banding from low-entropy synthesis pushes this near 1.
func zeroDiffRatio(gray *imaging.Mat) float64 {
	if gray.W < 2 {
		return 0
	}
	zero, total := 0, 0
	for y := 0; y < gray.H; y++ {
		for x := 1; x < gray.W; x++ {
			if int(gray.At(x, y)) == int(gray.At(x-1, y)) {
				zero++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(zero) / float64(total)
}
