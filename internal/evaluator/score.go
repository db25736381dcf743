package evaluator

import (
	"fmt"

	"github.com/lox/holdem-rooms/internal/deck"
)

// Category is the class of a five-card poker hand, ordered weakest first.
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns the string representation of a hand category
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// categoryBand separates categories in a Score.
const categoryBand = 10_000_000_000

// Score is a totally ordered hand strength. Higher is stronger.
//
// The layout is category*10^10 + tiebreak, where tiebreak is the primary rank
// of the category (two pair encodes top*100 + second). Kickers are not
// encoded, so two hands that differ only in kickers compare equal.
type Score int64

func newScore(c Category, tiebreak int) Score {
	return Score(int64(c)*categoryBand + int64(tiebreak))
}

// Category returns the hand class encoded in the score
func (s Score) Category() Category {
	return Category(int64(s) / categoryBand)
}

// Tiebreak returns the rank information below the category band
func (s Score) Tiebreak() int {
	return int(int64(s) % categoryBand)
}

// Compare returns -1 if s is weaker, 0 if equal, 1 if s is stronger
func (s Score) Compare(other Score) int {
	switch {
	case s > other:
		return 1
	case s < other:
		return -1
	default:
		return 0
	}
}

// String describes the hand, e.g. "Two Pair, Kings and Fours"
func (s Score) String() string {
	if s == 0 {
		return "No Hand"
	}
	tb := s.Tiebreak()
	switch s.Category() {
	case HighCard:
		return fmt.Sprintf("High Card, %s", deck.Rank(tb).Name())
	case OnePair:
		return fmt.Sprintf("Pair of %s", plural(deck.Rank(tb)))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", plural(deck.Rank(tb/100)), plural(deck.Rank(tb%100)))
	case ThreeOfAKind:
		return fmt.Sprintf("Three %s", plural(deck.Rank(tb)))
	case Straight:
		return fmt.Sprintf("Straight, %s high", deck.Rank(tb).Name())
	case Flush:
		return fmt.Sprintf("Flush, %s high", deck.Rank(tb).Name())
	case FullHouse:
		return fmt.Sprintf("Full House, %s full", plural(deck.Rank(tb)))
	case FourOfAKind:
		return fmt.Sprintf("Four %s", plural(deck.Rank(tb)))
	case StraightFlush:
		if deck.Rank(tb) == deck.Ace {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", deck.Rank(tb).Name())
	default:
		return "Unknown"
	}
}

func plural(r deck.Rank) string {
	if r == deck.Six {
		return "Sixes"
	}
	return r.Name() + "s"
}
