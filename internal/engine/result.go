package engine

import (
	"encoding/json"
	"time"

	"github.com/ivlev/cardvision/internal/analyzer"
	"github.com/ivlev/cardvision/internal/classifier"
	"github.com/ivlev/cardvision/internal/score"
)

// Status is the fate of a single card region.
type Status int

const (
	Pending Status = iota
	Resolved
	RectifyFailed
	Unresolved
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case RectifyFailed:
		return "rectify_failed"
	case Unresolved:
		return "unresolved"
	default:
		return "pending"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CardOutcome records what happened to one region. Rank and Score hold the
// best candidate even for unresolved cards.
type CardOutcome struct {
	Hand   classifier.HandID
	Index  int // position in the hand, left to right
	Region analyzer.Region
	Status Status
	Rank   string
	Score  float64
	Err    error
}

// HandResult is the public view of one hand.
type HandResult struct {
	Cards []string `json:"cards" yaml:"cards"`
	Score int      `json:"score" yaml:"score"`
}

// Result is the outcome of one analysis. It marshals to JSON as just the hand
// map, e.g. {"dealer":{"cards":["Ace"],"score":11},"player1":{...}}.
type Result struct {
	Players int
	Hands   map[classifier.HandID]HandResult
	Cards   []CardOutcome
	Regions int
	Elapsed time.Duration
}

func newResult(players int, cards []CardOutcome) *Result {
	res := &Result{
		Players: players,
		Hands:   make(map[classifier.HandID]HandResult),
		Cards:   cards,
	}
	for _, id := range classifier.HandIDs(players) {
		labels := []string{}
		for _, c := range cards {
			if c.Hand == id && c.Status == Resolved {
				labels = append(labels, c.Rank)
			}
		}
		res.Hands[id] = HandResult{Cards: labels, Score: score.Score(labels)}
	}
	return res
}

// Resolved counts the cards that were identified.
func (r *Result) Resolved() int {
	n := 0
	for _, c := range r.Cards {
		if c.Status == Resolved {
			n++
		}
	}
	return n
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Hands)
}
