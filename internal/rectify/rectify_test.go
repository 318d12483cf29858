package rectify

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestOrderCorners(t *testing.T) {
	want := Quad{image.Pt(10, 20), image.Pt(110, 25), image.Pt(105, 170), image.Pt(8, 160)}

	perms := [][4]int{{0, 1, 2, 3}, {2, 0, 3, 1}, {3, 2, 1, 0}, {1, 3, 0, 2}}
	for _, perm := range perms {
		var in [4]image.Point
		for i, j := range perm {
			in[i] = want[j]
		}
		if got := OrderCorners(in); got != want {
			t.Errorf("perm %v: got %v, want %v", perm, got, want)
		}
	}
}

func TestOrderCornersIdempotent(t *testing.T) {
	quads := []Quad{
		{image.Pt(0, 0), image.Pt(199, 0), image.Pt(199, 299), image.Pt(0, 299)},
		{image.Pt(40, 10), image.Pt(230, 60), image.Pt(190, 330), image.Pt(5, 280)},
	}
	for _, q := range quads {
		once := OrderCorners(q)
		twice := OrderCorners(once)
		if once != twice {
			t.Errorf("ordering not idempotent: %v -> %v", once, twice)
		}
		if once != q {
			t.Errorf("already ordered quad reordered: %v -> %v", q, once)
		}
	}
}

func TestOrderCornersTies(t *testing.T) {
	// at exactly 45° the x+y and y-x keys tie pairwise
	top, right, bottom, left := image.Pt(435, 223), image.Pt(577, 365), image.Pt(365, 577), image.Pt(223, 435)
	cycle := []image.Point{top, right, bottom, left}

	perms := [][4]image.Point{
		{top, right, bottom, left},
		{left, bottom, right, top},
		{bottom, top, left, right},
		{right, left, top, bottom},
	}
	for _, in := range perms {
		q := OrderCorners(in)
		start := -1
		for i, p := range cycle {
			if p == q[0] {
				start = i
			}
		}
		if start < 0 {
			t.Fatalf("OrderCorners(%v) = %v, unknown corner", in, q)
		}
		for k := range q {
			if q[k] != cycle[(start+k)%4] {
				t.Errorf("OrderCorners(%v) = %v, not clockwise", in, q)
				break
			}
		}
	}
}

func TestCorners(t *testing.T) {
	t.Run("fallback to bounding rectangle", func(t *testing.T) {
		poly := []image.Point{{10, 10}, {60, 5}, {110, 10}, {110, 160}, {10, 160}}
		q, err := Corners(poly)
		if err != nil {
			t.Fatalf("Corners failed: %v", err)
		}
		want := Quad{image.Pt(10, 5), image.Pt(111, 5), image.Pt(111, 161), image.Pt(10, 161)}
		if q != want {
			t.Errorf("got %v, want %v", q, want)
		}
	})

	t.Run("too few points", func(t *testing.T) {
		_, err := Corners([]image.Point{{0, 0}, {10, 0}, {10, 10}})
		if !errors.Is(err, ErrInsufficientPoints) {
			t.Errorf("expected ErrInsufficientPoints, got %v", err)
		}
	})
}

// halves returns an image whose left half is red and right half is blue
func halves(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 220, A: 255}
			if x >= w/2 {
				c = color.NRGBA{B: 220, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestRectifyIdentity(t *testing.T) {
	src := halves(300, 400)
	// a 200×300 region starting at (50,50) maps one-to-one
	poly := []image.Point{{50, 50}, {249, 50}, {249, 349}, {50, 349}}

	card, err := Rectify(nil, src, poly)
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}
	if card.Bounds() != image.Rect(0, 0, Width, Height) {
		t.Fatalf("unexpected size %v", card.Bounds())
	}

	// source x=150 is the red/blue boundary, i.e. card x=100
	if c := card.RGBAAt(40, 150); c.R != 220 || c.B != 0 {
		t.Errorf("left side: got %+v", c)
	}
	if c := card.RGBAAt(160, 150); c.B != 220 || c.R != 0 {
		t.Errorf("right side: got %+v", c)
	}
}

func TestRectifyAlwaysCanonicalSize(t *testing.T) {
	src := halves(800, 800)
	rotated := func(deg float64, cx, cy, hw, hh float64) []image.Point {
		a := deg * math.Pi / 180
		var pts []image.Point
		for _, c := range [][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}} {
			x := cx + c[0]*math.Cos(a) - c[1]*math.Sin(a)
			y := cy + c[0]*math.Sin(a) + c[1]*math.Cos(a)
			pts = append(pts, image.Pt(int(math.Round(x)), int(math.Round(y))))
		}
		return pts
	}

	tests := []struct {
		name string
		poly []image.Point
	}{
		{"upright", rotated(0, 400, 400, 100, 150)},
		{"rotated 15", rotated(15, 400, 400, 100, 150)},
		{"rotated -20", rotated(-20, 300, 500, 80, 120)},
		{"rotated 45", rotated(45, 400, 400, 100, 150)},
		{"rotated -45", rotated(-45, 400, 400, 100, 150)},
		{"diamond", []image.Point{{200, 100}, {300, 200}, {200, 300}, {100, 200}}},
		{"landscape", rotated(5, 400, 300, 160, 90)},
		{"trapezoid", []image.Point{{300, 200}, {500, 200}, {560, 520}, {240, 520}}},
		{"partly outside", []image.Point{{700, 600}, {900, 600}, {900, 900}, {700, 900}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := Rectify(nil, src, tt.poly)
			if err != nil {
				t.Fatalf("Rectify failed: %v", err)
			}
			if card.Bounds().Dx() != Width || card.Bounds().Dy() != Height {
				t.Errorf("got %v", card.Bounds())
			}
		})
	}
}

func TestRectifyReusesBuffer(t *testing.T) {
	src := halves(300, 400)
	buf := image.NewRGBA(image.Rect(0, 0, Width, Height))
	card, err := Rectify(buf, src, []image.Point{{50, 50}, {249, 50}, {249, 349}, {50, 349}})
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}
	if card != buf {
		t.Error("given buffer was not reused")
	}
}

func TestRectifyDegenerate(t *testing.T) {
	src := halves(400, 400)

	tests := []struct {
		name string
		poly []image.Point
	}{
		{"collinear", []image.Point{{10, 10}, {50, 10}, {100, 10}, {150, 10}}},
		{"repeated", []image.Point{{10, 10}, {10, 10}, {100, 100}, {10, 100}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rectify(nil, src, tt.poly)
			if !errors.Is(err, ErrDegenerateProjection) {
				t.Errorf("expected ErrDegenerateProjection, got %v", err)
			}
		})
	}
}
