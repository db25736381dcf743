package evaluator

import (
	"testing"

	ph "github.com/paulhankin/poker"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-rooms/internal/deck"
)

// toReference converts a card to the reference library's encoding, where
// the ace is rank 1.
func toReference(t *testing.T, c deck.Card) ph.Card {
	t.Helper()
	var s ph.Suit
	switch c.Suit {
	case deck.Clubs:
		s = ph.Club
	case deck.Diamonds:
		s = ph.Diamond
	case deck.Hearts:
		s = ph.Heart
	case deck.Spades:
		s = ph.Spade
	}
	r := ph.Rank(c.Rank)
	if c.Rank == deck.Ace {
		r = ph.Rank(1)
	}
	card, err := ph.MakeCard(s, r)
	require.NoError(t, err)
	return card
}

func referenceEval7(t *testing.T, cards []deck.Card) int16 {
	t.Helper()
	require.Len(t, cards, 7)
	var hand [7]ph.Card
	for i, c := range cards {
		hand[i] = toReference(t, c)
	}
	return ph.Eval7(&hand)
}

// TestCategoryOrderMatchesReference checks that our category ordering agrees
// with an independent full evaluator on hands from distinct categories.
func TestCategoryOrderMatchesReference(t *testing.T) {
	t.Parallel()
	for i := 1; i < len(canonicalHands); i++ {
		lo := deck.MustParseCards(canonicalHands[i-1].cards)
		hi := deck.MustParseCards(canonicalHands[i].cards)

		require.Greater(t, Evaluate(hi), Evaluate(lo), "%s vs %s", canonicalHands[i].name, canonicalHands[i-1].name)
		require.Greater(t, referenceEval7(t, hi), referenceEval7(t, lo),
			"reference disagrees on %s vs %s", canonicalHands[i].name, canonicalHands[i-1].name)
	}
}
