package game

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lox/holdem-rooms/internal/deck"
)

// NoSeat marks an absent seat index, e.g. no aggressor on the street.
const NoSeat = -1

// DefaultChips is the stack given to players the chip lookup does not know.
const DefaultChips = 1000

// LogEntry records one action taken during the hand
type LogEntry struct {
	Seat      int        `json:"seat"`
	Player    string     `json:"player"`
	Phase     Phase      `json:"phase"`
	Action    ActionKind `json:"action"`
	Paid      int        `json:"paid"`   // Chips moved into the pot by this action
	BetTo     int        `json:"bet_to"` // Player's street bet after the action
	Automated bool       `json:"automated"`
}

// GameState is the complete state of one hand
type GameState struct {
	HandID         string        `json:"hand_id"`
	Phase          Phase         `json:"phase"`
	Pot            int           `json:"pot"`
	CurrentBet     int           `json:"current_bet"` // Table-high bet on this street
	TurnIndex      int           `json:"turn_index"`
	LastAggressor  int           `json:"last_aggressor_index"`
	ActedCount     int           `json:"acted_count"` // Actions since the street began
	CommunityCards []deck.Card   `json:"community_cards"`
	Players        []PlayerState `json:"players"`
	Deck           deck.Deck     `json:"deck"`
	Winner         string        `json:"winner"` // Comma-joined winner names once settled
	Log            []LogEntry    `json:"log"`
}

// Clone returns a deep copy of the state
func (s *GameState) Clone() *GameState {
	c := *s
	c.CommunityCards = slices.Clone(s.CommunityCards)
	c.Deck = slices.Clone(s.Deck)
	c.Log = slices.Clone(s.Log)
	if s.Players != nil {
		c.Players = make([]PlayerState, len(s.Players))
		for i, p := range s.Players {
			c.Players[i] = p.clone()
		}
	}
	return &c
}

// IsComplete returns true once the hand has been settled
func (s *GameState) IsComplete() bool {
	return s.Phase == Showdown
}

// CurrentPlayer returns the seat to act, or nil when nobody is to act
func (s *GameState) CurrentPlayer() *PlayerState {
	if s.IsComplete() || s.TurnIndex < 0 || s.TurnIndex >= len(s.Players) {
		return nil
	}
	return &s.Players[s.TurnIndex]
}

// Player looks a seat up by name
func (s *GameState) Player(name string) (*PlayerState, int) {
	for i := range s.Players {
		if s.Players[i].Name == name {
			return &s.Players[i], i
		}
	}
	return nil, NoSeat
}

// ActivePlayers returns the number of players who have not folded
func (s *GameState) ActivePlayers() int {
	n := 0
	for i := range s.Players {
		if s.Players[i].InHand() {
			n++
		}
	}
	return n
}

// TotalChips returns pot plus every stack. Street bets are already in the pot.
func (s *GameState) TotalChips() int {
	total := s.Pot
	for _, p := range s.Players {
		total += p.Chips
	}
	return total
}

// WinnerNames splits Winner into names
func (s *GameState) WinnerNames() []string {
	if s.Winner == "" {
		return nil
	}
	return strings.Split(s.Winner, ",")
}

// WentToShowdown returns true if the hand was settled by comparing hands
// rather than by everyone else folding.
func (s *GameState) WentToShowdown() bool {
	return s.IsComplete() && s.ActivePlayers() > 1
}

// nextInHand returns the first non-folded seat at or after from, wrapping.
func (s *GameState) nextInHand(from int) int {
	n := len(s.Players)
	for i := 0; i < n; i++ {
		idx := (from + i) % n
		if s.Players[idx].InHand() {
			return idx
		}
	}
	return NoSeat
}

// Validate checks the structural invariants of a state: board size for the
// phase, seat to act, bets against the table bet, and that deck, board and
// hole cards together form exactly one standard deck.
func (s *GameState) Validate() error {
	var errs []error

	if s.Phase < Preflop || s.Phase > Showdown {
		errs = append(errs, fmt.Errorf("invalid phase %d", int(s.Phase)))
	}
	if s.Pot < 0 || s.CurrentBet < 0 || s.ActedCount < 0 {
		errs = append(errs, fmt.Errorf("negative pot %d, bet %d or acted count %d", s.Pot, s.CurrentBet, s.ActedCount))
	}

	board := len(s.CommunityCards)
	if s.IsComplete() {
		if board != 0 && board != 3 && board != 4 && board != 5 {
			errs = append(errs, fmt.Errorf("showdown with %d community cards", board))
		}
		if s.Winner == "" {
			errs = append(errs, errors.New("settled hand without a winner"))
		}
	} else {
		if board != s.Phase.BoardSize() {
			errs = append(errs, fmt.Errorf("%s with %d community cards", s.Phase, board))
		}
		if p := s.CurrentPlayer(); p == nil {
			errs = append(errs, fmt.Errorf("turn index %d out of range", s.TurnIndex))
		} else if p.IsFolded {
			errs = append(errs, fmt.Errorf("turn index %d points at folded seat %s", s.TurnIndex, p.Name))
		}
	}

	names := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		if names[p.Name] {
			errs = append(errs, fmt.Errorf("duplicate player %q", p.Name))
		}
		names[p.Name] = true
		if p.Chips < 0 || p.CurrentBet < 0 {
			errs = append(errs, fmt.Errorf("%s has negative chips or bet", p.Name))
		}
		if !s.IsComplete() && p.CurrentBet > s.CurrentBet {
			errs = append(errs, fmt.Errorf("%s bet %d exceeds table bet %d", p.Name, p.CurrentBet, s.CurrentBet))
		}
		if p.CurrentBet > p.StartingChips {
			errs = append(errs, fmt.Errorf("%s bet %d exceeds starting stack %d", p.Name, p.CurrentBet, p.StartingChips))
		}
		if len(p.HoleCards) != 2 {
			errs = append(errs, fmt.Errorf("%s holds %d hole cards", p.Name, len(p.HoleCards)))
		}
	}

	seen := make(map[deck.Card]bool, deck.Size)
	count := func(cards []deck.Card) {
		for _, c := range cards {
			if !c.Valid() {
				errs = append(errs, fmt.Errorf("invalid card %v", c))
				continue
			}
			if seen[c] {
				errs = append(errs, fmt.Errorf("card %s appears twice", c))
			}
			seen[c] = true
		}
	}
	count(s.Deck)
	count(s.CommunityCards)
	for _, p := range s.Players {
		count(p.HoleCards)
	}
	if len(seen) != deck.Size {
		errs = append(errs, fmt.Errorf("%d distinct cards accounted for, want %d", len(seen), deck.Size))
	}

	return errors.Join(errs...)
}
