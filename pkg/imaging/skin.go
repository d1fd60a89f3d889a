package imaging

import "image"

// SkinMask marks pixels that fall inside a broad HSV skin-tone range.
// The range is deliberately loose; the analyzers only use aggregate
// statistics over it.
func SkinMask(img image.Image) ([]bool, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	mask := make([]bool, w*h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			hh, s, v := rgbToHSV(float64(r)/65535, float64(g)/65535, float64(bb)/65535)
			if hh <= 60 && s >= 20.0/255 && v >= 70.0/255 {
				mask[(y-b.Min.Y)*w+(x-b.Min.X)] = true
			}
		}
	}
	return mask, w, h
}

// MaskRatio returns the fraction of set pixels.
func MaskRatio(mask []bool) float64 {
	if len(mask) == 0 {
		return 0
	}
	count := 0
	for _, m := range mask {
		if m {
			count++
		}
	}
	return float64(count) / float64(len(mask))
}

// rgbToHSV converts [0,1] RGB to hue in degrees and [0,1] saturation/value.
func rgbToHSV(r, g, b float64) (float64, float64, float64) {
	maxC := r
	if g > maxC {
		maxC = g
	}
	if b > maxC {
		maxC = b
	}
	minC := r
	if g < minC {
		minC = g
	}
	if b < minC {
		minC = b
	}
	v := maxC
	delta := maxC - minC
	if maxC == 0 || delta == 0 {
		return 0, 0, v
	}
	s := delta / maxC
	var h float64
	switch maxC {
	case r:
		h = 60 * ((g - b) / delta)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// Blob is a connected component of a binary mask.
type Blob struct {
	Area       int
	MinX, MinY int
	MaxX, MaxY int
}

// Width and Height are the bounding box dimensions.
func (b Blob) Width() int  { return b.MaxX - b.MinX + 1 }
func (b Blob) Height() int { return b.MaxY - b.MinY + 1 }

// AspectRatio is the long side over the short side of the bounding box.
func (b Blob) AspectRatio() float64 {
	w, h := b.Width(), b.Height()
	if w == 0 || h == 0 {
		return 0
	}
	if w > h {
		return float64(w) / float64(h)
	}
	return float64(h) / float64(w)
}

// Solidity is the component area over its bounding box area.
func (b Blob) Solidity() float64 {
	box := b.Width() * b.Height()
	if box == 0 {
		return 0
	}
	return float64(b.Area) / float64(box)
}

// Blobs labels 4-connected components of a binary mask.
func Blobs(mask []bool, w, h int) []Blob {
	visited := make([]bool, len(mask))
	var blobs []Blob
	queue := make([]int, 0, 256)
	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		blob := Blob{MinX: w, MinY: h, MaxX: -1, MaxY: -1}
		queue = append(queue[:0], start)
		visited[start] = true
		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			x, y := idx%w, idx/w
			blob.Area++
			if x < blob.MinX {
				blob.MinX = x
			}
			if y < blob.MinY {
				blob.MinY = y
			}
			if x > blob.MaxX {
				blob.MaxX = x
			}
			if y > blob.MaxY {
				blob.MaxY = y
			}
			for _, n := range [4]int{idx - 1, idx + 1, idx - w, idx + w} {
				if n < 0 || n >= len(mask) {
					continue
				}
				nx := n % w
				if (n == idx-1 && nx == w-1) || (n == idx+1 && nx == 0) {
					continue
				}
				if mask[n] && !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		blobs = append(blobs, blob)
	}
	return blobs
}
