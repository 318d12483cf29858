package matcher

import (
	"errors"
	"fmt"
	"image"
)

// MinConfidence is the score a card must exceed to be recognized.
const MinConfidence = 0.3

// ErrNoMatch means no rank scored above MinConfidence.
var ErrNoMatch = errors.New("no template matched")

// MatchResult is the best rank found for one card. Rank and Score are set
// even when the card is unresolved, for logging.
type MatchResult struct {
	Rank     string
	Score    float64
	Resolved bool
}

// Matcher identifies rectified cards against a Gallery.
type Matcher struct {
	gallery *Gallery
}

func New(g *Gallery) *Matcher {
	return &Matcher{gallery: g}
}

// Match scores the card against every variant of every rank. A rank's score is
// the best of its variants; the first rank with the highest score wins.
func (m *Matcher) Match(card image.Image) (MatchResult, error) {
	scores := m.rankScores(extract(card, m.gallery.blurSize))

	res := MatchResult{Score: -1}
	for i, s := range scores {
		if s > res.Score {
			res.Rank, res.Score = m.gallery.ranks[i].label, s
		}
	}

	if res.Score > MinConfidence {
		res.Resolved = true
		return res, nil
	}
	return res, fmt.Errorf("%w: best %q at %.3f", ErrNoMatch, res.Rank, res.Score)
}

// Scores returns the best score of every rank for a card.
func (m *Matcher) Scores(card image.Image) map[string]float64 {
	scores := m.rankScores(extract(card, m.gallery.blurSize))
	out := make(map[string]float64, len(scores))
	for i, s := range scores {
		out[m.gallery.ranks[i].label] = s
	}
	return out
}

func (m *Matcher) rankScores(f *features) []float64 {
	out := make([]float64, len(m.gallery.ranks))
	for i, r := range m.gallery.ranks {
		for _, v := range r.variants {
			out[i] = max(out[i], score(f, v))
		}
	}
	return out
}
