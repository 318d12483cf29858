package matcher

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/ivlev/cardvision/internal/imgproc"
	"github.com/ivlev/cardvision/internal/rectify"
)

const (
	corrWeight   = 0.5
	structWeight = 0.3
	histWeight   = 0.2

	eps = 1e-8
)

// features holds everything the combined score needs from one image, so a
// template is analysed once and compared against many cards.
type features struct {
	centered []float64 // gray pixels minus their mean
	norm     float64   // L2 norm of centered
	grad     []float64 // gradient magnitude scaled to [0,1] by its own max
	hist     []float64 // 256-bin histogram, normalized to sum 1 then mean-centred
	histNorm float64
}

// extract brings img to the canonical card size, converts it to grayscale,
// blurs it and precomputes the statistics.
func extract(img image.Image, blurSize int) *features {
	if b := img.Bounds(); b.Dx() != rectify.Width || b.Dy() != rectify.Height {
		resized := image.NewRGBA(image.Rect(0, 0, rectify.Width, rectify.Height))
		draw.BiLinear.Scale(resized, resized.Bounds(), img, b, draw.Src, nil)
		img = resized
	}

	gray := imgproc.Blur(imgproc.Gray(img), blurSize)
	n := len(gray.Pix)
	f := &features{
		centered: make([]float64, n),
		grad:     make([]float64, n),
		hist:     make([]float64, 256),
	}

	// intensity statistics
	var mean float64
	for _, v := range gray.Pix {
		mean += float64(v)
		f.hist[int(v)]++
	}
	mean /= float64(n)
	for i, v := range gray.Pix {
		c := float64(v) - mean
		f.centered[i] = c
		f.norm += c * c
	}
	f.norm = math.Sqrt(f.norm)

	// histogram: normalize, then centre around the (constant) bin mean
	for i := range f.hist {
		f.hist[i] /= float64(n) + eps
	}
	var hmean float64
	for _, v := range f.hist {
		hmean += v
	}
	hmean /= float64(len(f.hist))
	for i := range f.hist {
		f.hist[i] -= hmean
		f.histNorm += f.hist[i] * f.hist[i]
	}
	f.histNorm = math.Sqrt(f.histNorm)

	// gradient structure
	mag := imgproc.Magnitude(imgproc.Sobel(gray))
	peak := float64(mag.Max()) + eps
	for i, v := range mag.Pix {
		f.grad[i] = float64(v) / peak
	}

	return f
}

// score blends correlation, gradient structure and histogram similarity.
// Each component is floored at 0, so the result lies in [0,1].
func score(a, b *features) float64 {
	corr := 0.0
	if a.norm > eps && b.norm > eps {
		var dot float64
		for i, v := range a.centered {
			dot += v * b.centered[i]
		}
		corr = clamp01(dot / (a.norm * b.norm))
	}

	var diff float64
	for i, v := range a.grad {
		diff += math.Abs(v - b.grad[i])
	}
	structure := clamp01(1 - diff/float64(len(a.grad)))

	hist := 1.0
	if d := a.histNorm * b.histNorm; d > eps*eps {
		var dot float64
		for i, v := range a.hist {
			dot += v * b.hist[i]
		}
		hist = clamp01(dot / d)
	}

	return clamp01(corrWeight*corr + structWeight*structure + histWeight*hist)
}

// CombinedScore compares two card images directly. Both are brought to the
// canonical card size first.
func CombinedScore(a, b image.Image, blurSize int) float64 {
	return score(extract(a, blurSize), extract(b, blurSize))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
