// Package evaluator scores poker hands.
//
// Evaluate accepts the five to seven cards a player can use (hole cards plus
// board) and returns a Score whose ordering matches hand strength by
// category and primary rank.
package evaluator

import "github.com/lox/holdem-rooms/internal/deck"

// Evaluate returns the strength of the best hand that can be made from cards.
// An empty slice scores 0, the floor of the scale. Cards with an unknown suit
// or rank are ignored.
func Evaluate(cards []deck.Card) Score {
	if len(cards) == 0 {
		return 0
	}

	var rankCounts [deck.Ace + 1]int
	var suitCounts [len(deck.Suits)]int
	var present [deck.Ace + 1]bool
	for _, c := range cards {
		if !c.Valid() {
			continue
		}
		rankCounts[c.Rank]++
		suitCounts[c.Suit]++
		present[c.Rank] = true
	}

	flushSuit := deck.Suit(-1)
	for s, n := range suitCounts {
		if n >= 5 {
			flushSuit = deck.Suit(s)
		}
	}

	var flushHigh deck.Rank
	if flushSuit >= 0 {
		var suited [deck.Ace + 1]bool
		for _, c := range cards {
			if c.Valid() && c.Suit == flushSuit {
				suited[c.Rank] = true
				flushHigh = max(flushHigh, c.Rank)
			}
		}
		if high, ok := straightHigh(suited); ok {
			return newScore(StraightFlush, int(high))
		}
	}

	// Group ranks highest first.
	var quads deck.Rank
	var trips, pairs []deck.Rank
	var top deck.Rank
	for r := deck.Ace; r >= deck.Two; r-- {
		switch n := rankCounts[r]; {
		case n >= 4:
			if quads == 0 {
				quads = r
			}
		case n == 3:
			trips = append(trips, r)
		case n == 2:
			pairs = append(pairs, r)
		}
		if rankCounts[r] > 0 && top == 0 {
			top = r
		}
	}

	switch {
	case quads != 0:
		return newScore(FourOfAKind, int(quads))
	case len(trips) > 0 && (len(trips) > 1 || len(pairs) > 0):
		return newScore(FullHouse, int(trips[0]))
	case flushSuit >= 0:
		return newScore(Flush, int(flushHigh))
	}

	if high, ok := straightHigh(present); ok {
		return newScore(Straight, int(high))
	}

	switch {
	case len(trips) > 0:
		return newScore(ThreeOfAKind, int(trips[0]))
	case len(pairs) >= 2:
		return newScore(TwoPair, int(pairs[0])*100+int(pairs[1]))
	case len(pairs) == 1:
		return newScore(OnePair, int(pairs[0]))
	default:
		return newScore(HighCard, int(top))
	}
}

// straightHigh finds the highest five-rank run. The wheel (A-2-3-4-5)
// counts as a five-high straight.
func straightHigh(present [deck.Ace + 1]bool) (deck.Rank, bool) {
	for high := deck.Ace; high >= deck.Six; high-- {
		run := true
		for r := high; r > high-5; r-- {
			if !present[r] {
				run = false
				break
			}
		}
		if run {
			return high, true
		}
	}
	if present[deck.Ace] && present[deck.Two] && present[deck.Three] && present[deck.Four] && present[deck.Five] {
		return deck.Five, true
	}
	return 0, false
}
