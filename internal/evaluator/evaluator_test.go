package evaluator

import (
	"testing"

	"github.com/lox/holdem-rooms/internal/deck"
)

// canonicalHands holds one seven-card hand per category, weakest first.
var canonicalHands = []struct {
	name     string
	cards    string
	category Category
}{
	{"High Card", "AsKhQd9s7c5h3h", HighCard},
	{"One Pair", "AsAhKdQs9c7h5h", OnePair},
	{"Two Pair", "AsAhKdKs9c7h5h", TwoPair},
	{"Three of a Kind", "AsAhAdKs9c7h5h", ThreeOfAKind},
	{"Straight", "AsKhQdJcTs9h8h", Straight},
	{"Flush", "AsKsQs8s6s4h3h", Flush},
	{"Full House", "AsAhAdKsKh2h3h", FullHouse},
	{"Four of a Kind", "AsAhAdAcKs2h3h", FourOfAKind},
	{"Straight Flush", "9s8s7s6s5s4h3h", StraightFlush},
}

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()
	for _, tt := range canonicalHands {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			score := Evaluate(deck.MustParseCards(tt.cards))
			if score.Category() != tt.category {
				t.Errorf("expected %s, got %s (%d)", tt.category, score.Category(), score)
			}
		})
	}
}

func TestEvaluateMonotonicAcrossCategories(t *testing.T) {
	t.Parallel()
	var prev Score
	for i, tt := range canonicalHands {
		score := Evaluate(deck.MustParseCards(tt.cards))
		if i > 0 && score <= prev {
			t.Errorf("%s (%d) should beat previous category (%d)", tt.name, score, prev)
		}
		prev = score
	}
}

func TestHighCardBandKeyedOffAce(t *testing.T) {
	t.Parallel()
	score := Evaluate(deck.MustParseCards("2h7d9cJsAh3s5d"))
	if score.Category() != HighCard {
		t.Fatalf("expected high card, got %s", score.Category())
	}
	if score != newScore(HighCard, int(deck.Ace)) {
		t.Errorf("expected score %d, got %d", newScore(HighCard, int(deck.Ace)), score)
	}
	if score >= newScore(OnePair, int(deck.Two)) {
		t.Error("high card must score below the lowest pair")
	}
}

func TestEvaluateTiebreaks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		better string
		worse  string
	}{
		{"higher pair", "KsKh9d7c2s", "QsQh9d7c2s"},
		{"higher top pair in two pair", "AsAh3d3c9s", "KsKhQdQc9s"},
		{"higher second pair", "AsAhKdKc2s", "AsAhQdQc2s"},
		{"higher trips", "9s9h9d2c3s", "8s8h8dAcKs"},
		{"higher straight", "6s5h4d3c2s", "5s4h3d2cAs"},
		{"broadway over king high straight", "AsKhQdJcTs", "KsQhJdTc9s"},
		{"higher flush", "AsJs8s6s2s", "KsQsJs9s7s"},
		{"higher full house trips", "3s3h3d2c2s", "2s2h2dAcAs"},
		{"higher quads", "5s5h5d5c2s", "4s4h4d4cAs"},
		{"higher straight flush", "7h6h5h4h3h", "6h5h4h3h2h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := Evaluate(deck.MustParseCards(tt.better))
			w := Evaluate(deck.MustParseCards(tt.worse))
			if b.Compare(w) != 1 {
				t.Errorf("%s (%s) should beat %s (%s)", tt.better, b, tt.worse, w)
			}
		})
	}
}

func TestKickersNotDistinguished(t *testing.T) {
	t.Parallel()
	a := Evaluate(deck.MustParseCards("AsAhKd7c2s"))
	b := Evaluate(deck.MustParseCards("AdAcQh7s2h"))
	if a.Compare(b) != 0 {
		t.Errorf("pairs of aces with different kickers should tie: %d vs %d", a, b)
	}
}

func TestWheel(t *testing.T) {
	t.Parallel()
	score := Evaluate(deck.MustParseCards("As2h3d4c5sKhQd"))
	if score.Category() != Straight {
		t.Fatalf("expected straight, got %s", score.Category())
	}
	if score.Tiebreak() != int(deck.Five) {
		t.Errorf("wheel should be five high, got %d", score.Tiebreak())
	}

	sf := Evaluate(deck.MustParseCards("Ah2h3h4h5h9c9d"))
	if sf.Category() != StraightFlush || sf.Tiebreak() != int(deck.Five) {
		t.Errorf("expected five-high straight flush, got %s", sf)
	}
}

func TestFlushAndOffsuitStraightIsNotStraightFlush(t *testing.T) {
	t.Parallel()
	// Hearts flush plus a 5-9 straight that needs the 8 of clubs.
	score := Evaluate(deck.MustParseCards("5h6h7h9hKh8c2d"))
	if score.Category() != Flush {
		t.Errorf("expected flush, got %s", score.Category())
	}
	if score.Tiebreak() != int(deck.King) {
		t.Errorf("flush tiebreak should be the king, got %d", score.Tiebreak())
	}
}

func TestTwoTripsMakeFullHouse(t *testing.T) {
	t.Parallel()
	score := Evaluate(deck.MustParseCards("KsKhKd4c4s4hQd"))
	if score.Category() != FullHouse || score.Tiebreak() != int(deck.King) {
		t.Errorf("expected kings full, got %s", score)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	t.Parallel()
	if score := Evaluate(nil); score != 0 {
		t.Errorf("empty hand should score 0, got %d", score)
	}
}

func TestSixCardHand(t *testing.T) {
	t.Parallel()
	score := Evaluate(deck.MustParseCards("QsQhQd3c3s8h"))
	if score.Category() != FullHouse {
		t.Errorf("expected full house, got %s", score.Category())
	}
}

func TestScoreString(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"AsAhKdKs9c7h5h": "Two Pair, Aces and Kings",
		"AsKsQsJsTs2h3d": "Royal Flush",
		"6s6h6d2c2s9h8d": "Full House, Sixes full",
		"2h7d9cJsAh3s5d": "High Card, Ace",
	}
	for cards, want := range tests {
		if got := Evaluate(deck.MustParseCards(cards)).String(); got != want {
			t.Errorf("%s: expected %q, got %q", cards, want, got)
		}
	}
}
