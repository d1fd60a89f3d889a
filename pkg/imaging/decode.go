package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Decode decodes JPEG, PNG or WebP payloads.
func Decode(payload []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	_ = format
	return img, nil
}

// EncodeJPEG re-encodes an image at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Resize scales an image to w x h with Catmull-Rom interpolation.
func Resize(img image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// ChannelMat extracts one RGB channel (0=r, 1=g, 2=b) scaled to [0,255].
func ChannelMat(img image.Image, channel int) *Mat {
	b := img.Bounds()
	m := NewMat(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			var v uint32
			switch channel {
			case 0:
				v = r
			case 1:
				v = g
			default:
				v = bb
			}
			m.Set(x-b.Min.X, y-b.Min.Y, float64(v)/257.0)
		}
	}
	return m
}

// Histogram256 buckets pixel values into 256 bins.
func Histogram256(m *Mat) [256]int {
	var hist [256]int
	for _, v := range m.Pix {
		idx := int(v)
		if idx < 0 {
			idx = 0
		}
		if idx > 255 {
			idx = 255
		}
		hist[idx]++
	}
	return hist
}

// HistogramPeaks counts local maxima in a 256-bin histogram that rise
// above 1% of the total mass.
func HistogramPeaks(hist [256]int) int {
	total := 0
	for _, c := range hist {
		total += c
	}
	if total == 0 {
		return 0
	}
	floor := float64(total) * 0.01
	peaks := 0
	for i := 1; i < 255; i++ {
		if float64(hist[i]) > floor && hist[i] > hist[i-1] && hist[i] >= hist[i+1] {
			peaks++
		}
	}
	return peaks
}
