package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/ivlev/cardvision/internal/config"
)

func TestNormalize(t *testing.T) {
	band := config.Default().Preprocess

	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"inside band", 800, 600, 800, 600},
		{"too large", 3000, 2000, 1500, 1000},
		{"too tall", 1000, 4000, 375, 1500},
		{"too small", 200, 300, 400, 600},
		{"tiny square", 100, 100, 400, 400},
		{"narrow and small", 100, 600, 250, 1500},
		{"extreme wide", 6000, 4, 1500, 1},
		{"one pixel strip", 1500, 1, 1500, 1},
		{"one pixel column", 1, 20, 75, 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			out := Normalize(img, band)
			if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", out.Bounds().Dx(), out.Bounds().Dy(), tt.wantW, tt.wantH)
			}
			if out.Bounds().Dx() > band.MaxDimension || out.Bounds().Dy() > band.MaxDimension {
				t.Errorf("%v exceeds max dimension %d", out.Bounds(), band.MaxDimension)
			}
		})
	}
}

func TestNormalizeDoesNotAliasInput(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 500, 500))
	img.SetNRGBA(10, 10, color.NRGBA{R: 200, A: 255})

	out := Normalize(img, config.Default().Preprocess)
	out.SetNRGBA(10, 10, color.NRGBA{A: 255})

	if img.NRGBAAt(10, 10).R != 200 {
		t.Error("Normalize must not return the input buffer")
	}
}

func TestNormalizeKeepsFlatColor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3000, 1600))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 90, 140, 60, 255
	}

	out := Normalize(img, config.Default().Preprocess)
	c := out.NRGBAAt(out.Bounds().Dx()/2, out.Bounds().Dy()/2)
	if c.R != 90 || c.G != 140 || c.B != 60 {
		t.Errorf("area downscale changed a flat color: %+v", c)
	}
}
