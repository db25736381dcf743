package game

import (
	"io"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/holdem-rooms/internal/deck"
)

func newTestEngine() *Engine {
	return NewEngine(log.NewWithOptions(io.Discard, log.Options{}))
}

func isBot(name string) bool {
	return strings.HasPrefix(name, "bot-")
}

// stackedHand starts a hand dealt from cards, top first
func stackedHand(t *testing.T, e *Engine, names []string, cards string, opts ...HandOption) *GameState {
	t.Helper()
	d, err := deck.Stacked(deck.MustParseCards(cards)...)
	if err != nil {
		t.Fatalf("stacking deck: %v", err)
	}
	s, err := e.StartHand(nil, names, append([]HandOption{WithDeck(d)}, opts...)...)
	if err != nil {
		t.Fatalf("StartHand: %v", err)
	}
	return s
}

// mustAct applies an action that is expected to succeed
func mustAct(t *testing.T, e *Engine, s *GameState, actor string, a Action) *GameState {
	t.Helper()
	next, err := e.ApplyAction(s, actor, a)
	if err != nil {
		t.Fatalf("%s %s: %v", actor, a, err)
	}
	return next
}

// randomLegalAction picks uniformly among the legal actions for the seat to act
func randomLegalAction(rng *rand.Rand, s *GameState) Action {
	p := s.CurrentPlayer()
	owed := p.Owed(s.CurrentBet)

	options := []Action{Fold()}
	if owed == 0 {
		options = append(options, Check(), Check())
	} else if owed <= p.Chips {
		options = append(options, Call(), Call())
	}
	if ceiling := p.CurrentBet + p.Chips; ceiling > s.CurrentBet {
		span := min(ceiling-s.CurrentBet, 200)
		options = append(options, RaiseTo(s.CurrentBet+1+rng.IntN(span)))
	}
	return options[rng.IntN(len(options))]
}
