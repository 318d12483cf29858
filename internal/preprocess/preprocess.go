package preprocess

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/ivlev/cardvision/internal/config"
)

// Normalize bounds img to the working resolution band while keeping its
// aspect ratio. Large images are shrunk with an area-averaging filter so thin
// card edges don't alias; small ones are enlarged bilinearly. When both
// bounds cannot hold (very elongated images) the maximum wins, so neither
// side ever exceeds MaxDimension. The result is always a fresh *image.NRGBA.
func Normalize(img image.Image, cfg config.PreprocessConfig) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return imaging.Clone(img)
	}

	var out *image.NRGBA

	maxDim := float64(cfg.MaxDimension)
	if w > cfg.MaxDimension || h > cfg.MaxDimension {
		scale := min(maxDim/float64(h), maxDim/float64(w))
		nw, nh := scaled(w, scale), scaled(h, scale)
		out = imaging.Resize(img, nw, nh, imaging.Box)
		w, h = nw, nh
	} else {
		out = imaging.Clone(img)
	}

	minDim := float64(cfg.MinDimension)
	if w < cfg.MinDimension || h < cfg.MinDimension {
		scale := max(minDim/float64(h), minDim/float64(w))
		scale = min(scale, maxDim/float64(h), maxDim/float64(w))
		if scale > 1 {
			nw, nh := scaled(w, scale), scaled(h, scale)
			up := image.NewNRGBA(image.Rect(0, 0, nw, nh))
			draw.BiLinear.Scale(up, up.Bounds(), out, out.Bounds(), draw.Src, nil)
			out = up
		}
	}

	return out
}

func scaled(side int, scale float64) int {
	// the epsilon keeps 300*(400/300) from truncating to 399
	n := int(float64(side)*scale + 1e-6)
	if n < 1 {
		n = 1
	}
	return n
}
