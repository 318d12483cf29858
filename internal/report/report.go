// Package report persists analysis results for later inspection.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/cardvision/internal/classifier"
	"github.com/ivlev/cardvision/internal/engine"
)

const Version = "1.0"

// Report is a serializable record of one analysis
type Report struct {
	Version string                                  `yaml:"version" json:"version"`
	Source  string                                  `yaml:"source" json:"source"`
	Players int                                     `yaml:"players" json:"players"`
	Created time.Time                               `yaml:"created" json:"created"`
	Elapsed string                                  `yaml:"elapsed" json:"elapsed"`
	Hands   map[classifier.HandID]engine.HandResult `yaml:"hands" json:"hands"`
	Cards   []Card                                  `yaml:"cards" json:"cards"`
}

// Card describes one detected region and what became of it
type Card struct {
	Hand   classifier.HandID `yaml:"hand" json:"hand"`
	Index  int               `yaml:"index" json:"index"`
	Status string            `yaml:"status" json:"status"`
	Rank   string            `yaml:"rank,omitempty" json:"rank,omitempty"`
	Score  float64           `yaml:"score" json:"score"`
	Bounds [4]int            `yaml:"bounds,flow" json:"bounds"` // x0, y0, x1, y1
	Error  string            `yaml:"error,omitempty" json:"error,omitempty"`
}

// FromResult builds a report from an analysis result
func FromResult(src string, res *engine.Result) *Report {
	r := &Report{
		Version: Version,
		Source:  src,
		Players: res.Players,
		Created: time.Now().UTC().Truncate(time.Second),
		Elapsed: res.Elapsed.Round(time.Millisecond).String(),
		Hands:   res.Hands,
		Cards:   make([]Card, 0, len(res.Cards)),
	}
	for _, c := range res.Cards {
		b := c.Region.Bounds
		card := Card{
			Hand:   c.Hand,
			Index:  c.Index,
			Status: c.Status.String(),
			Rank:   c.Rank,
			Score:  c.Score,
			Bounds: [4]int{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y},
		}
		if c.Err != nil {
			card.Error = c.Err.Error()
		}
		r.Cards = append(r.Cards, card)
	}
	return r
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// WriteReport writes a report as JSON when path ends in .json, YAML otherwise
func WriteReport(r *Report, path string) error {
	var data []byte
	var err error
	if isJSON(path) {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = yaml.Marshal(r)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadReport reads a report written by WriteReport
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Report
	if isJSON(path) {
		err = json.Unmarshal(data, &r)
	} else {
		err = yaml.Unmarshal(data, &r)
	}
	if err != nil {
		return nil, err
	}

	return &r, nil
}
