package phh

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/holdem-rooms/internal/deck"
	"github.com/lox/holdem-rooms/internal/game"
)

// Variant is the PHH code for no-limit Texas Hold'em
const Variant = "NT"

// streets splits a five card board into flop, turn and river deals
var streets = [][2]int{{0, 3}, {3, 4}, {4, 5}}

// FromState builds the history of a finished hand. Seats whose hole cards
// are hidden (as in a redacted view) are dealt as "????".
func FromState(s *game.GameState, table string, at time.Time) (*HandHistory, error) {
	if s == nil {
		return nil, fmt.Errorf("phh: state is nil")
	}
	if !s.IsComplete() {
		return nil, fmt.Errorf("phh: hand %s is still in %s", s.HandID, s.Phase)
	}

	n := len(s.Players)
	at = at.UTC()
	hand := &HandHistory{
		Variant:           Variant,
		Table:             table,
		SeatCount:         n,
		Seats:             make([]int, n),
		Antes:             make([]int, n),
		BlindsOrStraddles: make([]int, n),
		MinBet:            1,
		StartingStacks:    make([]int, n),
		FinishingStacks:   make([]int, n),
		Winnings:          make([]int, n),
		Players:           make([]string, n),
		HandID:            s.HandID,
		Time:              at.Format("15:04:05"),
		TimeZone:          "UTC",
		Day:               at.Day(),
		Month:             int(at.Month()),
		Year:              at.Year(),
	}

	awarded := 0
	for i, p := range s.Players {
		hand.Seats[i] = i + 1
		hand.Players[i] = p.Name
		hand.StartingStacks[i] = p.StartingChips
		hand.FinishingStacks[i] = p.Chips
		hand.Winnings[i] = p.Won
		hand.Actions = append(hand.Actions, fmt.Sprintf("d dh p%d %s", i+1, holeCards(p.HoleCards)))
		awarded += p.Won
	}

	dealt := 0
	phase := game.Preflop
	for _, entry := range s.Log {
		for phase < entry.Phase && dealt < len(streets) {
			hand.Actions = append(hand.Actions, boardDeal(s.CommunityCards, dealt))
			dealt++
			phase++
		}
		hand.Actions = append(hand.Actions, FormatAction(entry.Seat, entry.Action, entry.BetTo))
	}
	for ; dealt < len(streets) && streets[dealt][1] <= len(s.CommunityCards); dealt++ {
		hand.Actions = append(hand.Actions, boardDeal(s.CommunityCards, dealt))
	}

	if s.WentToShowdown() {
		for i, p := range s.Players {
			if p.InHand() {
				hand.Actions = append(hand.Actions, fmt.Sprintf("p%d sm %s", i+1, holeCards(p.HoleCards)))
			}
		}
	}

	if lost := totalContributed(s) - awarded; lost > 0 {
		hand.Metadata = map[string]int{"unawarded_chips": lost}
	}

	return hand, nil
}

func boardDeal(board []deck.Card, street int) string {
	lo, hi := streets[street][0], streets[street][1]
	if hi > len(board) {
		return "# d db missing"
	}
	return "d db " + strings.Join(cardStrings(board[lo:hi]), "")
}

func holeCards(cards []deck.Card) string {
	if cards == nil {
		return "????"
	}
	return strings.Join(cardStrings(cards), "")
}

func cardStrings(cards []deck.Card) []string {
	if len(cards) == 0 {
		return nil
	}
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func totalContributed(s *game.GameState) int {
	total := 0
	for _, entry := range s.Log {
		total += entry.Paid
	}
	return total
}
