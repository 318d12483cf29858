package imgproc

import (
	"image"
	"image/color"
	"math"
)

// Plane is a single-channel float image stored row-major.
type Plane struct {
	W, H int
	Pix  []float32
}

// NewPlane allocates a zeroed plane of the given size
func NewPlane(w, h int) *Plane {
	return &Plane{W: w, H: h, Pix: make([]float32, w*h)}
}

func (p *Plane) At(x, y int) float32 {
	return p.Pix[y*p.W+x]
}

func (p *Plane) Set(x, y int, v float32) {
	p.Pix[y*p.W+x] = v
}

// Max returns the largest value in the plane
func (p *Plane) Max() float32 {
	var m float32
	for i, v := range p.Pix {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// Gray converts an image to luminance (0.299R + 0.587G + 0.114B) rounded to
// the 8-bit range, the same weights OpenCV-style pipelines use.
func Gray(img image.Image) *Plane {
	b := img.Bounds()
	p := NewPlane(b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < p.H; y++ {
			row := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X)*4:]
			for x := 0; x < p.W; x++ {
				i := x * 4
				p.Pix[y*p.W+x] = luma(row[i], row[i+1], row[i+2])
			}
		}
	case *image.RGBA:
		for y := 0; y < p.H; y++ {
			row := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X)*4:]
			for x := 0; x < p.W; x++ {
				i := x * 4
				p.Pix[y*p.W+x] = luma(row[i], row[i+1], row[i+2])
			}
		}
	case *image.Gray:
		for y := 0; y < p.H; y++ {
			for x := 0; x < p.W; x++ {
				p.Pix[y*p.W+x] = float32(src.GrayAt(x+b.Min.X, y+b.Min.Y).Y)
			}
		}
	default:
		for y := 0; y < p.H; y++ {
			for x := 0; x < p.W; x++ {
				c := color.NRGBAModel.Convert(img.At(x+b.Min.X, y+b.Min.Y)).(color.NRGBA)
				p.Pix[y*p.W+x] = luma(c.R, c.G, c.B)
			}
		}
	}

	return p
}

func luma(r, g, b uint8) float32 {
	return float32(math.Round(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)))
}

// reflect101 maps an out-of-range index back into [0, n) mirroring around the
// edge pixel without repeating it (gfedcb|abcdefgh|gfedcba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}
