package game

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/holdem-rooms/internal/deck"
	"github.com/lox/holdem-rooms/internal/evaluator"
)

// Engine applies the rules of a hand to GameState values.
// It holds no hand state and is safe for concurrent use.
type Engine struct {
	logger *log.Logger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{logger: logger.WithPrefix("game")}
}

// StartHand deals a new hand to names, seated in the order given.
func (e *Engine) StartHand(rng *rand.Rand, names []string, opts ...HandOption) (*GameState, error) {
	cfg := defaultHandConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(names) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidHandSetup, len(names))
	}

	d := cfg.deck
	switch {
	case d != nil:
		d = append(deck.Deck(nil), d...)
	case rng != nil:
		d = deck.NewShuffled(rng)
	default:
		return nil, fmt.Errorf("%w: no rng or deck supplied", ErrInvalidHandSetup)
	}

	s := &GameState{
		HandID:         cfg.handID,
		Phase:          Preflop,
		LastAggressor:  NoSeat,
		CommunityCards: make([]deck.Card, 0, 5),
		Players:        make([]PlayerState, 0, len(names)),
		Log:            []LogEntry{},
	}

	seen := make(map[string]bool, len(names))
	eligible := 0
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: empty player name", ErrInvalidHandSetup)
		}
		if strings.Contains(name, ",") {
			return nil, fmt.Errorf("%w: player name %q contains a comma", ErrInvalidHandSetup, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate player %q", ErrInvalidHandSetup, name)
		}
		seen[name] = true

		chips, ok := cfg.chips(name)
		if !ok {
			chips = DefaultChips
		}
		if chips < 0 {
			return nil, fmt.Errorf("%w: %s has negative chips %d", ErrInvalidHandSetup, name, chips)
		}

		hole, err := d.Deal(2)
		if err != nil {
			return nil, fmt.Errorf("%w: dealing to %s: %v", ErrDeckExhausted, name, err)
		}

		p := PlayerState{
			Name:          name,
			Chips:         chips,
			StartingChips: chips,
			HoleCards:     hole,
			IsOut:         chips == 0,
			IsAutomated:   cfg.automated(name),
		}
		// Seats without chips are dealt in so the deck stays whole, but never act
		p.IsFolded = p.IsOut
		if !p.IsOut {
			eligible++
		}
		s.Players = append(s.Players, p)
	}

	if eligible < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players with chips, got %d", ErrInvalidHandSetup, eligible)
	}

	s.Deck = d
	s.TurnIndex = s.nextInHand(0)

	e.logger.Debug("Hand started", "hand", s.HandID, "players", len(s.Players), "first", s.Players[s.TurnIndex].Name)

	if err := e.advanceAutomaticTurns(s); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyAction applies actor's action to a copy of s and returns the copy.
// s is never modified; on error the caller keeps the prior state.
func (e *Engine) ApplyAction(s *GameState, actor string, action Action) (*GameState, error) {
	if s.IsComplete() {
		return nil, ErrHandOver
	}
	current := s.CurrentPlayer()
	if current == nil {
		return nil, fmt.Errorf("game: no seat to act at index %d", s.TurnIndex)
	}
	if current.Name != actor {
		return nil, fmt.Errorf("%w: %s to act, not %s", ErrNotYourTurn, current.Name, actor)
	}
	if current.IsFolded {
		return nil, fmt.Errorf("game: seat %d (%s) to act has folded", s.TurnIndex, current.Name)
	}

	next := s.Clone()
	if err := e.apply(next, action, false); err != nil {
		return nil, err
	}
	if err := e.advanceAutomaticTurns(next); err != nil {
		return nil, err
	}
	return next, nil
}

// apply validates and performs the action of the seat at TurnIndex, then
// runs turn and street bookkeeping. Validation happens before any change.
func (e *Engine) apply(s *GameState, action Action, automated bool) error {
	seat := s.TurnIndex
	p := &s.Players[seat]
	paid := 0

	switch action.Kind {
	case KindFold:
		p.IsFolded = true

	case KindCheck:
		if p.CurrentBet < s.CurrentBet {
			return fmt.Errorf("%w: %s owes %d", ErrIllegalCheck, p.Name, p.Owed(s.CurrentBet))
		}

	case KindCall:
		diff := p.Owed(s.CurrentBet)
		if diff > p.Chips {
			return fmt.Errorf("%w: %s needs %d to call, has %d", ErrInsufficientChips, p.Name, diff, p.Chips)
		}
		p.Chips -= diff
		p.CurrentBet += diff
		s.Pot += diff
		paid = diff

	case KindRaise:
		diff := action.Amount - p.CurrentBet
		switch {
		case diff <= 0:
			return fmt.Errorf("%w: %s already has %d in, cannot raise to %d", ErrInvalidRaise, p.Name, p.CurrentBet, action.Amount)
		case diff > p.Chips:
			return fmt.Errorf("%w: raise to %d costs %d, %s has %d", ErrInvalidRaise, action.Amount, diff, p.Name, p.Chips)
		case action.Amount <= s.CurrentBet:
			return fmt.Errorf("%w: raise to %d does not exceed the bet of %d", ErrInvalidRaise, action.Amount, s.CurrentBet)
		}
		p.Chips -= diff
		p.CurrentBet = action.Amount
		s.CurrentBet = action.Amount
		s.Pot += diff
		s.LastAggressor = seat
		paid = diff

	default:
		return fmt.Errorf("%w: %d", ErrUnknownAction, int(action.Kind))
	}

	s.ActedCount++
	s.Log = append(s.Log, LogEntry{
		Seat:      seat,
		Player:    p.Name,
		Phase:     s.Phase,
		Action:    action.Kind,
		Paid:      paid,
		BetTo:     p.CurrentBet,
		Automated: automated,
	})
	e.logger.Debug("Action applied",
		"hand", s.HandID,
		"phase", s.Phase,
		"player", p.Name,
		"action", action,
		"pot", s.Pot,
		"automated", automated)

	return e.afterAction(s)
}

func (e *Engine) afterAction(s *GameState) error {
	if s.ActivePlayers() == 1 {
		e.awardEarlyWin(s)
		return nil
	}

	s.TurnIndex = s.nextInHand(s.TurnIndex + 1)

	if !s.streetClosed() {
		return nil
	}
	return e.closeStreet(s)
}

// streetClosed reports whether every live bet matches and at least as many
// actions have been taken as there are live players.
func (s *GameState) streetClosed() bool {
	live := 0
	for _, p := range s.Players {
		if !p.InHand() {
			continue
		}
		if p.CurrentBet != s.CurrentBet {
			return false
		}
		live++
	}
	return s.ActedCount >= live
}

func (e *Engine) closeStreet(s *GameState) error {
	for i := range s.Players {
		s.Players[i].CurrentBet = 0
	}
	s.CurrentBet = 0
	s.ActedCount = 0
	s.LastAggressor = NoSeat
	s.TurnIndex = s.nextInHand(0)

	var n int
	switch s.Phase {
	case Preflop:
		n = 3
	case Flop, Turn:
		n = 1
	case River:
		e.showdown(s)
		return nil
	default:
		return fmt.Errorf("game: cannot close street in phase %s", s.Phase)
	}

	cards, err := s.Deck.Deal(n)
	if err != nil {
		return fmt.Errorf("%w: dealing %s: %v", ErrDeckExhausted, s.Phase+1, err)
	}
	s.CommunityCards = append(s.CommunityCards, cards...)
	s.Phase++

	e.logger.Debug("Street closed",
		"hand", s.HandID,
		"phase", s.Phase,
		"board", deck.FormatCards(s.CommunityCards),
		"pot", s.Pot)
	return nil
}

func (e *Engine) showdown(s *GameState) {
	best := evaluator.Score(-1)
	var winners []int
	hand := make([]deck.Card, 0, 7)

	for i, p := range s.Players {
		if !p.InHand() {
			continue
		}
		hand = append(hand[:0], p.HoleCards...)
		hand = append(hand, s.CommunityCards...)
		score := evaluator.Evaluate(hand)

		e.logger.Debug("Showdown hand", "hand", s.HandID, "player", p.Name, "score", score)

		switch {
		case score > best:
			best = score
			winners = append(winners[:0], i)
		case score == best:
			winners = append(winners, i)
		}
	}

	share := s.Pot / len(winners)
	names := make([]string, len(winners))
	for i, seat := range winners {
		s.Players[seat].Chips += share
		s.Players[seat].Won = share
		names[i] = s.Players[seat].Name
	}
	if lost := s.Pot - share*len(winners); lost > 0 {
		e.logger.Debug("Split pot remainder not awarded", "hand", s.HandID, "chips", lost)
	}

	s.Winner = strings.Join(names, ",")
	s.Pot = 0
	s.Phase = Showdown

	e.logger.Info("Hand settled at showdown", "hand", s.HandID, "winner", s.Winner, "with", best, "share", share)
}

func (e *Engine) awardEarlyWin(s *GameState) {
	seat := s.nextInHand(0)
	w := &s.Players[seat]
	w.Chips += s.Pot
	w.Won = s.Pot

	e.logger.Info("Hand won uncontested", "hand", s.HandID, "winner", w.Name, "pot", s.Pot)

	s.Winner = w.Name
	s.TurnIndex = seat
	s.Pot = 0
	s.Phase = Showdown
}

// advanceAutomaticTurns plays automated seats until a human seat is to act
// or the hand is over.
func (e *Engine) advanceAutomaticTurns(s *GameState) error {
	for !s.IsComplete() {
		p := s.CurrentPlayer()
		if p == nil || !p.IsAutomated {
			return nil
		}
		if err := e.apply(s, automatedDecision(p, s.CurrentBet), true); err != nil {
			return fmt.Errorf("automated seat %s: %w", p.Name, err)
		}
	}
	return nil
}

// automatedDecision checks when nothing is owed, calls when the stack covers
// it and folds otherwise.
func automatedDecision(p *PlayerState, tableBet int) Action {
	owed := p.Owed(tableBet)
	switch {
	case owed == 0:
		return Check()
	case owed <= p.Chips:
		return Call()
	default:
		return Fold()
	}
}

// IsEngineError reports whether err is one of the engine's rule violations.
func IsEngineError(err error) bool {
	for _, target := range []error{
		ErrInvalidHandSetup, ErrNotYourTurn, ErrInsufficientChips, ErrInvalidRaise,
		ErrIllegalCheck, ErrDeckExhausted, ErrHandOver, ErrUnknownAction,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
