package analyzer

import (
	"image"
	"math"
)

// ContourArea returns the absolute shoelace area of a closed polygon
func ContourArea(pts []image.Point) float64 {
	return math.Abs(signedArea(pts))
}

func signedArea(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var s float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		s += float64(p.X*q.Y - q.X*p.Y)
	}
	return s / 2
}

// ArcLength returns the perimeter of a closed polygon
func ArcLength(pts []image.Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var l float64
	for i, p := range pts {
		l += dist(p, pts[(i+1)%len(pts)])
	}
	return l
}

// BoundingRect returns the smallest rectangle covering every point. Max is
// exclusive, so a single pixel has width and height 1.
func BoundingRect(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}

// Centroid returns the area-weighted centre of a polygon, falling back to the
// bounding-box centre when the polygon has no area.
func Centroid(pts []image.Point) (cx, cy float64) {
	m00 := signedArea(pts)
	if m00 == 0 {
		b := BoundingRect(pts)
		return float64(b.Min.X + b.Dx()/2), float64(b.Min.Y + b.Dy()/2)
	}

	var m10, m01 float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		cross := float64(p.X*q.Y - q.X*p.Y)
		m10 += float64(p.X+q.X) * cross
		m01 += float64(p.Y+q.Y) * cross
	}
	return m10 / (6 * m00), m01 / (6 * m00)
}

// ApproxPolygon simplifies a closed contour with Douglas-Peucker. The contour
// is split at the point farthest from its first point and each half is
// simplified as an open chain.
func ApproxPolygon(pts []image.Point, epsilon float64) []image.Point {
	n := len(pts)
	if n < 3 {
		return append([]image.Point(nil), pts...)
	}

	far, best := 0, -1.0
	for i, p := range pts {
		if d := dist(pts[0], p); d > best {
			far, best = i, d
		}
	}
	if far == 0 {
		return []image.Point{pts[0]}
	}

	first := simplify(pts[:far+1], epsilon)
	second := simplify(append(append([]image.Point(nil), pts[far:]...), pts[0]), epsilon)

	out := make([]image.Point, 0, len(first)+len(second)-2)
	out = append(out, first[:len(first)-1]...)
	out = append(out, second[:len(second)-1]...)
	return out
}

// simplify is open-chain Douglas-Peucker; both endpoints are always kept
func simplify(pts []image.Point, epsilon float64) []image.Point {
	n := len(pts)
	if n < 3 {
		return append([]image.Point(nil), pts...)
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	type span struct{ a, b int }
	stack := []span{{0, n - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx, maxD := -1, epsilon
		for i := s.a + 1; i < s.b; i++ {
			if d := lineDist(pts[i], pts[s.a], pts[s.b]); d > maxD {
				idx, maxD = i, d
			}
		}
		if idx >= 0 {
			keep[idx] = true
			stack = append(stack, span{s.a, idx}, span{idx, s.b})
		}
	}

	out := make([]image.Point, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

func dist(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// lineDist is the distance from p to the line through a and b
func lineDist(p, a, b image.Point) float64 {
	l := dist(a, b)
	if l == 0 {
		return dist(p, a)
	}
	cross := float64((b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X))
	return math.Abs(cross) / l
}
