package matcher

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyGallery is returned when no template images are supplied.
var ErrEmptyGallery = errors.New("template gallery is empty")

// RankInfo describes one rank of the gallery for diagnostics.
type RankInfo struct {
	Name     string `json:"name" yaml:"name"`
	Variants int    `json:"variants" yaml:"variants"`
	Size     [2]int `json:"size" yaml:"size"` // width, height of the first variant as loaded
}

type rankTemplates struct {
	label    string
	size     image.Point
	variants []*features
}

// Gallery is the immutable, prepared set of reference templates. It is built
// once at startup and shared read-only by every request.
type Gallery struct {
	ranks    []rankTemplates // sorted by label
	blurSize int
}

// NewGallery prepares every template variant. Preparation runs in parallel;
// each variant writes only its own slot.
func NewGallery(templates map[string][]image.Image, blurSize int) (*Gallery, error) {
	labels := make([]string, 0, len(templates))
	for label, imgs := range templates {
		if len(imgs) > 0 {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return nil, ErrEmptyGallery
	}
	sort.Strings(labels)

	g := &Gallery{
		ranks:    make([]rankTemplates, len(labels)),
		blurSize: blurSize,
	}

	var eg errgroup.Group
	for i, label := range labels {
		imgs := templates[label]
		g.ranks[i] = rankTemplates{
			label:    label,
			size:     imgs[0].Bounds().Size(),
			variants: make([]*features, len(imgs)),
		}
		for j, img := range imgs {
			if img == nil || img.Bounds().Empty() {
				return nil, fmt.Errorf("template %q variant %d is empty", label, j)
			}
			slot := &g.ranks[i].variants[j]
			eg.Go(func() error {
				*slot = extract(img, blurSize)
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return g, nil
}

// Labels returns the rank labels in iteration order.
func (g *Gallery) Labels() []string {
	out := make([]string, len(g.ranks))
	for i, r := range g.ranks {
		out[i] = r.label
	}
	return out
}

// Ranks describes every rank and how many variants it holds.
func (g *Gallery) Ranks() []RankInfo {
	out := make([]RankInfo, len(g.ranks))
	for i, r := range g.ranks {
		out[i] = RankInfo{Name: r.label, Variants: len(r.variants), Size: [2]int{r.size.X, r.size.Y}}
	}
	return out
}

// Len is the total number of prepared variants.
func (g *Gallery) Len() int {
	n := 0
	for _, r := range g.ranks {
		n += len(r.variants)
	}
	return n
}
