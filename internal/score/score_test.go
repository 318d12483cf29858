package score

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   int
	}{
		{"empty", nil, 0},
		{"single ace", []string{"Ace"}, 11},
		{"two aces", []string{"Ace", "Ace"}, 12},
		{"blackjack", []string{"Ace", "King"}, 21},
		{"three aces and eight", []string{"Ace", "Ace", "Ace", "8"}, 21},
		{"bust not capped", []string{"King", "Queen", "2"}, 22},
		{"ace drops to one", []string{"Ace", "9", "5"}, 15},
		{"faces", []string{"Jack", "10", "Queen"}, 30},
		{"pips", []string{"2", "3", "4", "5"}, 14},
		{"case insensitive", []string{"ace", "KING"}, 21},
		{"unknown counts zero", []string{"Joker", "7"}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.labels); got != tt.want {
				t.Errorf("Score(%v) = %d, want %d", tt.labels, got, tt.want)
			}
		})
	}
}

func TestScoreOrderIndependent(t *testing.T) {
	hands := [][]string{
		{"Ace", "6", "Ace", "King"},
		{"King", "Ace", "6", "Ace"},
		{"6", "Ace", "King", "Ace"},
	}
	want := Score(hands[0])
	for _, h := range hands[1:] {
		if got := Score(h); got != want {
			t.Errorf("Score(%v) = %d, want %d", h, got, want)
		}
	}
}

func TestParseRank(t *testing.T) {
	tests := []struct {
		label string
		kind  Kind
		value int
		soft  bool
	}{
		{"Ace", Known, 11, true},
		{"king", Known, 10, false},
		{"10", Known, 10, false},
		{"7", Known, 7, false},
		{"07", Numeric, 7, false},
		{"1", Unknown, 0, false},
		{"11", Unknown, 0, false},
		{"Joker", Unknown, 0, false},
		{"", Unknown, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			r := ParseRank(tt.label)
			if r.Kind != tt.kind || r.Value != tt.value || r.Soft != tt.soft {
				t.Errorf("ParseRank(%q) = %+v", tt.label, r)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	hs := Evaluate([]string{"Ace", "5", "Wild"})
	if hs.Total != 16 || hs.SoftAces != 1 {
		t.Errorf("got %+v, want soft 16", hs)
	}

	hs = Evaluate([]string{"Ace", "Ace", "King"})
	if hs.Total != 12 || hs.SoftAces != 0 || hs.Bust() {
		t.Errorf("got %+v, want hard 12", hs)
	}
	if !Evaluate([]string{"King", "Queen", "Jack"}).Bust() {
		t.Error("30 should bust")
	}
}
