package analyzer

import (
	"image"

	"github.com/ivlev/cardvision/internal/config"
	"github.com/ivlev/cardvision/internal/imgproc"
)

// ContourSegmenter finds card outlines with Canny edges and external contours
type ContourSegmenter struct {
	cfg config.SegmentConfig
}

// NewContourSegmenter creates a segmenter with the given thresholds
func NewContourSegmenter(cfg config.SegmentConfig) *ContourSegmenter {
	return &ContourSegmenter{cfg: cfg}
}

// Segment returns every contour that looks like a card: a polygon with at
// least four vertices, enough area and a card-like bounding box. No ordering
// is imposed.
func (s *ContourSegmenter) Segment(img image.Image) ([]Region, error) {
	// Step 1: grayscale + blur
	gray := imgproc.Blur(imgproc.Gray(img), s.cfg.BlurSize)

	// Step 2: edges, optionally dilated to close one-pixel gaps at corners
	edges := canny(gray, s.cfg.CannyLow, s.cfg.CannyHigh)
	if s.cfg.EdgeDilate > 0 {
		edges = dilate(edges, s.cfg.EdgeDilate)
	}

	// Step 3: outermost contours only
	contours := findExternalContours(edges)

	// Step 4: approximate and filter
	offset := img.Bounds().Min
	regions := []Region{}
	for _, cnt := range contours {
		if r, ok := s.accept(cnt); ok {
			if offset != (image.Point{}) {
				r = r.translate(offset)
			}
			regions = append(regions, r)
		}
	}

	return regions, nil
}

func (s *ContourSegmenter) accept(cnt []image.Point) (Region, bool) {
	area := ContourArea(cnt)
	if area <= s.cfg.MinArea {
		return Region{}, false
	}

	poly := ApproxPolygon(cnt, s.cfg.ApproxEpsilon*ArcLength(cnt))
	if len(poly) < 4 {
		return Region{}, false
	}

	bounds := BoundingRect(cnt)
	if bounds.Dy() == 0 {
		return Region{}, false
	}
	aspect := float64(bounds.Dx()) / float64(bounds.Dy())
	if aspect < s.cfg.MinAspect || aspect > s.cfg.MaxAspect {
		return Region{}, false
	}

	return Region{
		Polygon: poly,
		Area:    area,
		Aspect:  aspect,
		Bounds:  bounds,
	}, true
}

func (r Region) translate(d image.Point) Region {
	poly := make([]image.Point, len(r.Polygon))
	for i, p := range r.Polygon {
		poly[i] = p.Add(d)
	}
	r.Polygon = poly
	r.Bounds = r.Bounds.Add(d)
	return r
}
