package analyzer

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/ivlev/cardvision/internal/config"
)

// newTable returns a dark image with light rectangles drawn on it
func newTable(w, h int, cards ...image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 20, G: 60, B: 30, A: 255})
		}
	}
	for _, c := range cards {
		for y := c.Min.Y; y < c.Max.Y; y++ {
			for x := c.Min.X; x < c.Max.X; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: 235, G: 235, B: 235, A: 255})
			}
		}
	}
	return img
}

func TestContourSegmenter(t *testing.T) {
	cards := []image.Rectangle{
		image.Rect(60, 60, 260, 360),
		image.Rect(340, 440, 540, 740),
	}
	img := newTable(600, 800, cards...)

	seg := NewContourSegmenter(config.DefaultSegment())
	regions, err := seg.Segment(img)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}

	for i, r := range regions {
		t.Logf("Region %d: bounds=%v area=%.0f aspect=%.2f vertices=%d", i, r.Bounds, r.Area, r.Aspect, len(r.Polygon))

		if len(r.Polygon) != 4 {
			t.Errorf("region %d: expected 4 vertices, got %d", i, len(r.Polygon))
		}
		if r.Area < 55000 || r.Area > 66000 {
			t.Errorf("region %d: area %.0f far from 60000", i, r.Area)
		}
		if r.Aspect < 0.6 || r.Aspect > 0.72 {
			t.Errorf("region %d: aspect %.2f, want ~0.67", i, r.Aspect)
		}
	}
}

func TestSegmenterFilters(t *testing.T) {
	tests := []struct {
		name string
		card image.Rectangle
	}{
		{"too small", image.Rect(100, 100, 180, 200)}, // 8000 px²
		{"too wide", image.Rect(50, 300, 550, 380)},   // aspect 6.25
		{"too tall", image.Rect(250, 50, 320, 750)},   // aspect 0.1
	}

	seg := NewContourSegmenter(config.DefaultSegment())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions, err := seg.Segment(newTable(600, 800, tt.card))
			if err != nil {
				t.Fatalf("Segment failed: %v", err)
			}
			if len(regions) != 0 {
				t.Errorf("expected no regions, got %d (%v)", len(regions), regions[0].Bounds)
			}
		})
	}
}

func TestSegmenterIgnoresCardFace(t *testing.T) {
	card := image.Rect(150, 200, 400, 560)
	img := newTable(600, 800, card)

	// dark pips and a big inner frame must not produce extra regions
	for y := 240; y < 520; y++ {
		for x := 190; x < 360; x++ {
			if x < 195 || x > 355 || y < 245 || y > 515 || (x > 250 && x < 300 && y > 350 && y < 420) {
				img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
			}
		}
	}

	regions, err := NewContourSegmenter(config.DefaultSegment()).Segment(img)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected exactly the outer card, got %d regions", len(regions))
	}
	if !regions[0].Bounds.Overlaps(card) {
		t.Errorf("region %v does not cover card %v", regions[0].Bounds, card)
	}
}

func TestSegmenterEmptyTable(t *testing.T) {
	regions, err := NewContourSegmenter(config.DefaultSegment()).Segment(newTable(500, 500))
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("expected no regions on an empty table, got %d", len(regions))
	}
}

func TestSegmenterRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"contour", false},
		{"", false}, // default
		{"ml", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			seg, err := NewSegmenter(tt.variant, config.DefaultSegment())

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				} else if !strings.Contains(err.Error(), "unknown segmenter variant") {
					t.Errorf("Unexpected error: %v", err)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if seg == nil {
					t.Error("Expected segmenter, got nil")
				}
			}
		})
	}
}
