package analyzer

import (
	"fmt"

	"github.com/ivlev/cardvision/internal/config"
)

// NewSegmenter creates a segmenter based on the specified variant
func NewSegmenter(variant string, cfg config.SegmentConfig) (Segmenter, error) {
	switch variant {
	case "contour", "":
		return NewContourSegmenter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown segmenter variant: %s", variant)
	}
}
