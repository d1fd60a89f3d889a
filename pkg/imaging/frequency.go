package imaging

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// RingEnergies computes the 2D FFT log-magnitude spectrum and averages it
// over concentric frequency rings, low frequencies first. Generative models
// tend to under-produce energy in the outer rings.
func RingEnergies(m *Mat, rings int) []float64 {
	w, h := m.W, m.H
	out := make([]float64, rings)
	if w < 2 || h < 2 || rings < 1 {
		return out
	}

	freq := make([]complex128, w*h)
	rowFFT := fourier.NewCmplxFFT(w)
	row := make([]complex128, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			row[x] = complex(m.At(x, y), 0)
		}
		rowFFT.Coefficients(freq[y*w:(y+1)*w], row)
	}
	colFFT := fourier.NewCmplxFFT(h)
	col := make([]complex128, h)
	dst := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = freq[y*w+x]
		}
		colFFT.Coefficients(dst, col)
		for y := 0; y < h; y++ {
			freq[y*w+x] = dst[y]
		}
	}

	// Radial binning on the wrapped frequency grid; no fftshift needed.
	maxR := float64(min(w, h)) / 2
	sums := make([]float64, rings)
	counts := make([]int, rings)
	for y := 0; y < h; y++ {
		fy := y
		if h-y < fy {
			fy = h - y
		}
		for x := 0; x < w; x++ {
			fx := x
			if w-x < fx {
				fx = w - x
			}
			r := math.Hypot(float64(fx), float64(fy))
			ring := int(r / maxR * float64(rings))
			if ring >= rings {
				ring = rings - 1
			}
			mag := 20 * math.Log(cmplxAbs(freq[y*w+x])+1)
			sums[ring] += mag
			counts[ring]++
		}
	}
	for i := range out {
		if counts[i] > 0 {
			out[i] = sums[i] / float64(counts[i])
		}
	}
	return out
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// DCT8 computes the orthonormal 8x8 DCT-II of the block anchored at (x,y).
// Blocks that run past the matrix edge are zero-padded.
func DCT8(m *Mat, x, y int) [64]float64 {
	var block [64]float64
	for yy := 0; yy < 8; yy++ {
		for xx := 0; xx < 8; xx++ {
			if x+xx < m.W && y+yy < m.H {
				block[yy*8+xx] = m.At(x+xx, y+yy)
			}
		}
	}
	var out [64]float64
	for u := 0; u < 8; u++ {
		for v := 0; v < 8; v++ {
			var sum float64
			for yy := 0; yy < 8; yy++ {
				for xx := 0; xx < 8; xx++ {
					sum += block[yy*8+xx] *
						math.Cos((2*float64(xx)+1)*float64(v)*math.Pi/16) *
						math.Cos((2*float64(yy)+1)*float64(u)*math.Pi/16)
				}
			}
			au := math.Sqrt(2.0 / 8.0)
			if u == 0 {
				au = math.Sqrt(1.0 / 8.0)
			}
			av := math.Sqrt(2.0 / 8.0)
			if v == 0 {
				av = math.Sqrt(1.0 / 8.0)
			}
			out[u*8+v] = au * av * sum
		}
	}
	return out
}
