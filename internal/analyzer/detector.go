package analyzer

import "image"

// Region is a card-shaped contour that passed segmentation
type Region struct {
	Polygon []image.Point   // approximated polygon, at least 4 vertices
	Area    float64         // contour area in normalized-resolution pixels
	Aspect  float64         // bounding-box width / height
	Bounds  image.Rectangle // bounding box of the contour
}

// Segmenter is the interface for card region extraction strategies
type Segmenter interface {
	Segment(img image.Image) ([]Region, error)
}
