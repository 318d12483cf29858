package classifier

import (
	"image"
	"testing"

	"github.com/ivlev/cardvision/internal/analyzer"
)

func region(x, y, w, h int) analyzer.Region {
	poly := []image.Point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	return analyzer.Region{Polygon: poly, Bounds: analyzer.BoundingRect(poly)}
}

var table = image.Rect(0, 0, 1000, 800)

func TestClassifyOnePlayer(t *testing.T) {
	regions := []analyzer.Region{
		region(600, 50, 100, 150),  // dealer, right
		region(100, 500, 100, 150), // player
		region(200, 60, 100, 150),  // dealer, left
		region(700, 520, 100, 150), // player
	}

	hands, err := Classify(regions, table, 1)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if len(hands) != 2 {
		t.Errorf("expected dealer and player1 only, got %d hands", len(hands))
	}
	if got := len(hands[Dealer]); got != 2 {
		t.Fatalf("dealer: expected 2 regions, got %d", got)
	}
	if hands[Dealer][0].Bounds.Min.X != 200 || hands[Dealer][1].Bounds.Min.X != 600 {
		t.Errorf("dealer not ordered left to right: %v, %v", hands[Dealer][0].Bounds, hands[Dealer][1].Bounds)
	}
	if got := len(hands[Player1]); got != 2 {
		t.Fatalf("player1: expected 2 regions, got %d", got)
	}
	if hands[Player1][0].Bounds.Min.X != 100 {
		t.Errorf("player1 not ordered left to right")
	}
}

func TestClassifyTwoPlayers(t *testing.T) {
	regions := []analyzer.Region{
		region(100, 500, 100, 150), // left -> player2
		region(600, 500, 100, 150), // right -> player1
		region(800, 520, 100, 150), // right -> player1
		region(300, 450, 100, 150), // left -> player2
		region(450, 100, 100, 150), // dealer
	}

	hands, err := Classify(regions, table, 2)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	want := map[HandID][]int{
		Dealer:  {450},
		Player1: {600, 800},
		Player2: {100, 300},
	}
	for id, xs := range want {
		got := hands[id]
		if len(got) != len(xs) {
			t.Fatalf("%s: expected %d regions, got %d", id, len(xs), len(got))
		}
		for i, x := range xs {
			if got[i].Bounds.Min.X != x {
				t.Errorf("%s[%d]: got x=%d, want %d", id, i, got[i].Bounds.Min.X, x)
			}
		}
	}
}

func TestClassifyExhaustive(t *testing.T) {
	var regions []analyzer.Region
	for i := 0; i < 12; i++ {
		regions = append(regions, region((i*83)%900, (i*157)%650, 90, 140))
	}

	for _, players := range []int{1, 2} {
		hands, err := Classify(regions, table, players)
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}

		seen := map[image.Rectangle]int{}
		total := 0
		for _, rs := range hands {
			for _, r := range rs {
				seen[r.Bounds]++
				total++
			}
		}
		if total != len(regions) {
			t.Errorf("players=%d: %d regions in, %d out", players, len(regions), total)
		}
		for b, n := range seen {
			if n != 1 {
				t.Errorf("players=%d: region %v assigned %d times", players, b, n)
			}
		}
	}
}

func TestClassifyEmpty(t *testing.T) {
	hands, err := Classify(nil, table, 2)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	for _, id := range HandIDs(2) {
		rs, ok := hands[id]
		if !ok || rs == nil || len(rs) != 0 {
			t.Errorf("%s: expected present and empty, got %v (present=%v)", id, rs, ok)
		}
	}
}

func TestClassifyRejectsPlayerCount(t *testing.T) {
	for _, players := range []int{0, 3, -1} {
		if _, err := Classify(nil, table, players); err == nil {
			t.Errorf("players=%d: expected error", players)
		}
	}
}
