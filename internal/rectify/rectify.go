// Package rectify maps a card quadrilateral onto a fixed upright rectangle.
package rectify

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/ivlev/cardvision/internal/analyzer"
)

const (
	Width  = 200
	Height = 300
)

var (
	ErrInsufficientPoints   = errors.New("region has fewer than 4 usable points")
	ErrDegenerateProjection = errors.New("degenerate perspective projection")
)

// Quad holds corners in top-left, top-right, bottom-right, bottom-left order
type Quad [4]image.Point

// OrderCorners picks corners from exactly four points: top-left has the
// smallest x+y, bottom-right the largest, top-right the smallest y-x and
// bottom-left the largest. Ties go to the earliest point. When a tie makes
// one point win two corners (a card rotated by exactly 45°), the points are
// instead taken clockwise around their centroid, starting at top-left.
func OrderCorners(pts [4]image.Point) Quad {
	var tl, tr, br, bl int
	for i, p := range pts {
		if p.X+p.Y < pts[tl].X+pts[tl].Y {
			tl = i
		}
		if p.X+p.Y > pts[br].X+pts[br].Y {
			br = i
		}
		if p.Y-p.X < pts[tr].Y-pts[tr].X {
			tr = i
		}
		if p.Y-p.X > pts[bl].Y-pts[bl].X {
			bl = i
		}
	}
	if tl != tr && tl != br && tl != bl && tr != br && tr != bl && br != bl {
		return Quad{pts[tl], pts[tr], pts[br], pts[bl]}
	}
	return clockwiseFrom(pts, tl)
}

// clockwiseFrom orders pts by angle around their centroid (y grows
// downwards, so increasing angle is clockwise) and rotates the result to
// start at pts[first].
func clockwiseFrom(pts [4]image.Point, first int) Quad {
	var cx, cy float64
	for _, p := range pts {
		cx += float64(p.X) / 4
		cy += float64(p.Y) / 4
	}
	angle := func(i int) float64 {
		return math.Atan2(float64(pts[i].Y)-cy, float64(pts[i].X)-cx)
	}

	idx := []int{0, 1, 2, 3}
	sort.SliceStable(idx, func(a, b int) bool { return angle(idx[a]) < angle(idx[b]) })

	start := 0
	for k, i := range idx {
		if i == first {
			start = k
		}
	}
	var q Quad
	for k := range q {
		q[k] = pts[idx[(start+k)%4]]
	}
	return q
}

// Corners chooses the four source corners for a polygon. Polygons with more
// than four vertices use their bounding rectangle instead, trading rotation
// fidelity for robustness.
func Corners(polygon []image.Point) (Quad, error) {
	switch {
	case len(polygon) < 4:
		return Quad{}, fmt.Errorf("%w: got %d", ErrInsufficientPoints, len(polygon))
	case len(polygon) == 4:
		return OrderCorners([4]image.Point(polygon)), nil
	default:
		b := analyzer.BoundingRect(polygon)
		return Quad{b.Min, image.Pt(b.Max.X, b.Min.Y), b.Max, image.Pt(b.Min.X, b.Max.Y)}, nil
	}
}

// Rectify warps the region of src outlined by polygon into a Width×Height
// card. dst is reused when given (its contents are overwritten); nil allocates
// a new buffer.
func Rectify(dst *image.RGBA, src image.Image, polygon []image.Point) (*image.RGBA, error) {
	q, err := Corners(polygon)
	if err != nil {
		return nil, err
	}
	if dst == nil {
		dst = image.NewRGBA(image.Rect(0, 0, Width, Height))
	}
	if err := Warp(dst, src, q); err != nil {
		return nil, err
	}
	return dst, nil
}

// Warp fills dst (which must be Width×Height) with the perspective projection
// of quad q in src. Pixels that map outside src are black.
func Warp(dst *image.RGBA, src image.Image, q Quad) error {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if q[i] == q[j] {
				return fmt.Errorf("%w: repeated corner %v", ErrDegenerateProjection, q[i])
			}
		}
	}
	if quadArea(q) < 1 {
		return fmt.Errorf("%w: zero-area quad %v", ErrDegenerateProjection, q)
	}

	target := Quad{image.Pt(0, 0), image.Pt(Width-1, 0), image.Pt(Width-1, Height-1), image.Pt(0, Height-1)}
	// solve the inverse map directly: destination pixel -> source point
	h, err := homography(target, q)
	if err != nil {
		return err
	}

	s := newSampler(src)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			fx, fy := float64(x), float64(y)
			w := h[6]*fx + h[7]*fy + 1
			if math.Abs(w) < 1e-12 {
				dst.SetRGBA(x, y, color.RGBA{A: 255})
				continue
			}
			sx := (h[0]*fx + h[1]*fy + h[2]) / w
			sy := (h[3]*fx + h[4]*fy + h[5]) / w
			dst.SetRGBA(x, y, s.bilinear(sx, sy))
		}
	}
	return nil
}

// homography returns the 8 coefficients mapping from[i] onto to[i].
func homography(from, to Quad) ([8]float64, error) {
	var a [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := float64(from[i].X), float64(from[i].Y)
		u, v := float64(to[i].X), float64(to[i].Y)
		a[2*i] = [9]float64{x, y, 1, 0, 0, 0, -u * x, -u * y, u}
		a[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -v * x, -v * y, v}
	}

	// Gaussian elimination with partial pivoting
	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-10 {
			return [8]float64{}, fmt.Errorf("%w: singular system", ErrDegenerateProjection)
		}
		a[col], a[pivot] = a[pivot], a[col]

		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			f := a[r][col] / a[col][col]
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	var h [8]float64
	for i := range h {
		h[i] = a[i][8] / a[i][i]
	}

	det := h[0]*(h[4]-h[5]*h[7]) - h[1]*(h[3]-h[5]*h[6]) + h[2]*(h[3]*h[7]-h[4]*h[6])
	if math.Abs(det) < 1e-9 {
		return [8]float64{}, fmt.Errorf("%w: singular homography", ErrDegenerateProjection)
	}
	return h, nil
}

func quadArea(q Quad) float64 {
	return analyzer.ContourArea(q[:])
}

type sampler struct {
	img    image.Image
	rgba   *image.RGBA
	nrgba  *image.NRGBA
	bounds image.Rectangle
}

func newSampler(img image.Image) *sampler {
	s := &sampler{img: img, bounds: img.Bounds()}
	switch t := img.(type) {
	case *image.RGBA:
		s.rgba = t
	case *image.NRGBA:
		s.nrgba = t
	}
	return s
}

func (s *sampler) at(x, y int) (r, g, b float64, ok bool) {
	if !(image.Point{X: x, Y: y}).In(s.bounds) {
		return 0, 0, 0, false
	}
	switch {
	case s.nrgba != nil:
		c := s.nrgba.NRGBAAt(x, y)
		return float64(c.R), float64(c.G), float64(c.B), true
	case s.rgba != nil:
		c := s.rgba.RGBAAt(x, y)
		return float64(c.R), float64(c.G), float64(c.B), true
	default:
		c := color.NRGBAModel.Convert(s.img.At(x, y)).(color.NRGBA)
		return float64(c.R), float64(c.G), float64(c.B), true
	}
}

// bilinear samples at a fractional position; neighbours outside the image count as black
func (s *sampler) bilinear(fx, fy float64) color.RGBA {
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	ax, ay := fx-float64(x0), fy-float64(y0)

	var r, g, b float64
	for _, n := range [4]struct {
		dx, dy int
		w      float64
	}{
		{0, 0, (1 - ax) * (1 - ay)},
		{1, 0, ax * (1 - ay)},
		{0, 1, (1 - ax) * ay},
		{1, 1, ax * ay},
	} {
		if n.w == 0 {
			continue
		}
		pr, pg, pb, ok := s.at(x0+n.dx, y0+n.dy)
		if !ok {
			continue
		}
		r += n.w * pr
		g += n.w * pg
		b += n.w * pb
	}
	return color.RGBA{R: round8(r), G: round8(g), B: round8(b), A: 255}
}

func round8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
