// Package classifier assigns card regions to the dealer and player hands.
package classifier

import (
	"fmt"
	"image"
	"sort"

	"github.com/ivlev/cardvision/internal/analyzer"
)

type HandID string

const (
	Dealer  HandID = "dealer"
	Player1 HandID = "player1"
	Player2 HandID = "player2"
)

// HandIDs returns the hands reported for a given player count, in output order
func HandIDs(players int) []HandID {
	if players == 2 {
		return []HandID{Dealer, Player1, Player2}
	}
	return []HandID{Dealer, Player1}
}

// Hands holds the regions of each hand in left-to-right reading order
type Hands map[HandID][]analyzer.Region

// Classify partitions regions by centroid: the top half of the table belongs
// to the dealer, the bottom half to the players. With two players the right
// half of the bottom goes to player1 and the left half to player2. Every
// region lands in exactly one hand.
func Classify(regions []analyzer.Region, bounds image.Rectangle, players int) (Hands, error) {
	if players != 1 && players != 2 {
		return nil, fmt.Errorf("players must be 1 or 2, got %d", players)
	}

	midX := float64(bounds.Min.X) + float64(bounds.Dx())/2
	midY := float64(bounds.Min.Y) + float64(bounds.Dy())/2

	hands := Hands{}
	for _, id := range HandIDs(players) {
		hands[id] = []analyzer.Region{}
	}

	for _, r := range regions {
		cx, cy := analyzer.Centroid(r.Polygon)
		switch {
		case cy < midY:
			hands[Dealer] = append(hands[Dealer], r)
		case players == 1 || cx >= midX:
			hands[Player1] = append(hands[Player1], r)
		default:
			hands[Player2] = append(hands[Player2], r)
		}
	}

	for id := range hands {
		sortLeftToRight(hands[id])
	}
	return hands, nil
}

// sortLeftToRight orders regions by the leftmost x of their polygon
func sortLeftToRight(regions []analyzer.Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		return leftmostX(regions[i]) < leftmostX(regions[j])
	})
}

func leftmostX(r analyzer.Region) int {
	if len(r.Polygon) == 0 {
		return r.Bounds.Min.X
	}
	x := r.Polygon[0].X
	for _, p := range r.Polygon[1:] {
		x = min(x, p.X)
	}
	return x
}
