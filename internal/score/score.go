// Package score turns recognized rank labels into blackjack hand totals.
package score

import (
	"log"
	"strconv"
	"strings"
)

// Kind tells how a label was understood.
type Kind int

const (
	Unknown Kind = iota
	Known
	Numeric
)

func (k Kind) String() string {
	switch k {
	case Known:
		return "known"
	case Numeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Rank is the interpretation of a single card label.
type Rank struct {
	Kind  Kind
	Label string
	Value int
	Soft  bool // an ace, counted 11 until the hand would bust
}

var faces = map[string]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9,
	"10": 10, "jack": 10, "queen": 10, "king": 10,
	"ace": 11,
}

// ParseRank interprets a label case-insensitively. Anything that is neither a
// face name nor an integer between 2 and 10 is Unknown and worth nothing.
func ParseRank(label string) Rank {
	key := strings.ToLower(strings.TrimSpace(label))
	if v, ok := faces[key]; ok {
		return Rank{Kind: Known, Label: label, Value: v, Soft: key == "ace"}
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 2 && n <= 10 {
		return Rank{Kind: Numeric, Label: label, Value: n}
	}
	return Rank{Kind: Unknown, Label: label}
}

// HandScore is the evaluated total of a hand.
type HandScore struct {
	Total    int
	SoftAces int // aces still counted as 11
}

// Bust reports whether the total exceeds 21.
func (h HandScore) Bust() bool { return h.Total > 21 }

// Evaluate totals a hand. Every ace starts at 11 and drops to 1, one at a
// time, while the total is over 21.
func Evaluate(labels []string) HandScore {
	var hs HandScore
	for _, l := range labels {
		r := ParseRank(l)
		switch {
		case r.Kind == Unknown:
			log.Printf("[!] Unrecognized rank label %q counts as 0", l)
		case r.Soft:
			hs.SoftAces++
		}
		hs.Total += r.Value
	}

	for hs.Total > 21 && hs.SoftAces > 0 {
		hs.Total -= 10
		hs.SoftAces--
	}
	return hs
}

// Score returns just the total of Evaluate.
func Score(labels []string) int {
	return Evaluate(labels).Total
}
