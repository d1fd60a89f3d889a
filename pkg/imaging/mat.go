// Package imaging provides the pixel-level plumbing shared by the image
// forensic analyzers: grayscale matrices, gradient and texture operators,
// frequency-domain helpers, and decode/encode utilities.
package imaging

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mat is a dense float64 grayscale matrix in row-major order.
type Mat struct {
	W, H int
	Pix  []float64
}

// NewMat allocates a zeroed w x h matrix.
func NewMat(w, h int) *Mat {
	return &Mat{W: w, H: h, Pix: make([]float64, w*h)}
}

func (m *Mat) At(x, y int) float64     { return m.Pix[y*m.W+x] }
func (m *Mat) Set(x, y int, v float64) { m.Pix[y*m.W+x] = v }

// Region returns a copy of the sub-rectangle clipped to the matrix bounds.
func (m *Mat) Region(x, y, w, h int) *Mat {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+w > m.W {
		w = m.W - x
	}
	if y+h > m.H {
		h = m.H - y
	}
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	out := NewMat(w, h)
	for yy := 0; yy < h; yy++ {
		copy(out.Pix[yy*w:(yy+1)*w], m.Pix[(y+yy)*m.W+x:(y+yy)*m.W+x+w])
	}
	return out
}

// FlipH returns a horizontally mirrored copy.
func (m *Mat) FlipH() *Mat {
	out := NewMat(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			out.Set(m.W-1-x, y, m.At(x, y))
		}
	}
	return out
}

// Mean returns the mean pixel value (0 for an empty matrix).
func (m *Mat) Mean() float64 {
	if len(m.Pix) == 0 {
		return 0
	}
	return stat.Mean(m.Pix, nil)
}

// Var returns the population variance of the pixel values.
func (m *Mat) Var() float64 {
	if len(m.Pix) < 2 {
		return 0
	}
	return stat.PopVariance(m.Pix, nil)
}

// Std returns the population standard deviation of the pixel values.
func (m *Mat) Std() float64 {
	return math.Sqrt(m.Var())
}

// Bytes flattens the matrix to clamped uint8 grayscale, the input format
// the cascade detector wants.
func (m *Mat) Bytes() []uint8 {
	out := make([]uint8, len(m.Pix))
	for i, v := range m.Pix {
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		out[i] = uint8(v)
	}
	return out
}

// GrayMat converts an image to a luma matrix with values in [0,255].
func GrayMat(img image.Image) *Mat {
	b := img.Bounds()
	m := NewMat(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma, 16-bit channels scaled to [0,255]
			lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bb)) / 257.0
			m.Set(x-b.Min.X, y-b.Min.Y, lum)
		}
	}
	return m
}

// AbsDiff returns |a-b| element-wise. Panics on shape mismatch would be a
// programmer error; mismatched inputs are clipped to the overlap instead.
func AbsDiff(a, b *Mat) *Mat {
	w, h := a.W, a.H
	if b.W < w {
		w = b.W
	}
	if b.H < h {
		h = b.H
	}
	out := NewMat(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(x, y, math.Abs(a.At(x, y)-b.At(x, y)))
		}
	}
	return out
}

// LaplacianVar is the variance of the 3x3 Laplacian response, a standard
// micro-texture measure (low values mean unnaturally smooth regions).
func LaplacianVar(m *Mat) float64 {
	if m.W < 3 || m.H < 3 {
		return 0
	}
	resp := make([]float64, 0, (m.W-2)*(m.H-2))
	for y := 1; y < m.H-1; y++ {
		for x := 1; x < m.W-1; x++ {
			v := m.At(x, y-1) + m.At(x-1, y) + m.At(x+1, y) + m.At(x, y+1) - 4*m.At(x, y)
			resp = append(resp, v)
		}
	}
	if len(resp) < 2 {
		return 0
	}
	return stat.PopVariance(resp, nil)
}

// SobelMag returns the gradient magnitude via 3x3 Sobel kernels. Border
// pixels are zero.
func SobelMag(m *Mat) *Mat {
	out := NewMat(m.W, m.H)
	if m.W < 3 || m.H < 3 {
		return out
	}
	for y := 1; y < m.H-1; y++ {
		for x := 1; x < m.W-1; x++ {
			gx := -m.At(x-1, y-1) + m.At(x+1, y-1) +
				-2*m.At(x-1, y) + 2*m.At(x+1, y) +
				-m.At(x-1, y+1) + m.At(x+1, y+1)
			gy := -m.At(x-1, y-1) - 2*m.At(x, y-1) - m.At(x+1, y-1) +
				m.At(x-1, y+1) + 2*m.At(x, y+1) + m.At(x+1, y+1)
			out.Set(x, y, math.Hypot(gx, gy))
		}
	}
	return out
}

// EdgeDensity is the fraction of pixels whose Sobel magnitude exceeds the
// threshold. The analyzers use this as a cheap Canny substitute.
func EdgeDensity(m *Mat, threshold float64) float64 {
	mag := SobelMag(m)
	count := 0
	for _, v := range mag.Pix {
		if v > threshold {
			count++
		}
	}
	if len(mag.Pix) == 0 {
		return 0
	}
	return float64(count) / float64(len(mag.Pix))
}

// EdgeMask returns a boolean mask of pixels whose gradient magnitude
// exceeds the threshold.
func EdgeMask(m *Mat, threshold float64) []bool {
	mag := SobelMag(m)
	mask := make([]bool, len(mag.Pix))
	for i, v := range mag.Pix {
		mask[i] = v > threshold
	}
	return mask
}

var gauss5 = [5]float64{1, 4, 6, 4, 1} // binomial approximation, sum 16

// GaussianBlur applies a separable 5x5 Gaussian. Borders are clamped.
func GaussianBlur(m *Mat) *Mat {
	tmp := NewMat(m.W, m.H)
	out := NewMat(m.W, m.H)
	clampX := func(x int) int {
		if x < 0 {
			return 0
		}
		if x >= m.W {
			return m.W - 1
		}
		return x
	}
	clampY := func(y int) int {
		if y < 0 {
			return 0
		}
		if y >= m.H {
			return m.H - 1
		}
		return y
	}
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			var sum float64
			for k := -2; k <= 2; k++ {
				sum += gauss5[k+2] * m.At(clampX(x+k), y)
			}
			tmp.Set(x, y, sum/16)
		}
	}
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			var sum float64
			for k := -2; k <= 2; k++ {
				sum += gauss5[k+2] * tmp.At(x, clampY(y+k))
			}
			out.Set(x, y, sum/16)
		}
	}
	return out
}

// NoiseResidual subtracts a Gaussian-blurred copy from the matrix,
// approximating the denoise-and-subtract sensor noise estimate.
func NoiseResidual(m *Mat) *Mat {
	return AbsDiff(m, GaussianBlur(m))
}
