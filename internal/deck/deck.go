package deck

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Size is the number of cards in a standard deck
const Size = 52

// ErrExhausted is returned when more cards are requested than remain.
var ErrExhausted = errors.New("deck: exhausted")

// Deck is an ordered pile of cards; index 0 is the top.
type Deck []Card

// New returns the 52 cards in suit-major order, unshuffled.
func New() Deck {
	d := make(Deck, 0, Size)
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			d = append(d, NewCard(suit, rank))
		}
	}
	return d
}

// NewShuffled returns a full deck shuffled with rng.
func NewShuffled(rng *rand.Rand) Deck {
	d := New()
	d.Shuffle(rng)
	return d
}

// Shuffle randomizes the order of the remaining cards using Fisher-Yates
func (d Deck) Shuffle(rng *rand.Rand) {
	for i := len(d) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d[i], d[j] = d[j], d[i]
	}
}

// Deal removes n cards from the top of the deck. Nothing is removed when
// fewer than n cards remain.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || n > len(*d) {
		return nil, fmt.Errorf("%w: want %d cards, %d remaining", ErrExhausted, n, len(*d))
	}
	cards := make([]Card, n)
	copy(cards, (*d)[:n])
	*d = (*d)[n:]
	return cards, nil
}

// Remaining returns the number of cards left in the deck
func (d Deck) Remaining() int {
	return len(d)
}

// Stacked builds a deck whose top cards are exactly top, in order, followed
// by every other card of a standard deck. It is meant for deterministic tests
// and replay; duplicates or invalid cards are an error.
func Stacked(top ...Card) (Deck, error) {
	seen := make(map[Card]bool, Size)
	d := make(Deck, 0, Size)
	for _, c := range top {
		if !c.Valid() {
			return nil, fmt.Errorf("deck: invalid card %v", c)
		}
		if seen[c] {
			return nil, fmt.Errorf("deck: duplicate card %s", c)
		}
		seen[c] = true
		d = append(d, c)
	}
	for _, c := range New() {
		if !seen[c] {
			d = append(d, c)
		}
	}
	return d, nil
}
