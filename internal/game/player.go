package game

import (
	"slices"

	"github.com/lox/holdem-rooms/internal/deck"
)

// PlayerState is one seat in a hand
type PlayerState struct {
	Name          string      `json:"name"`
	Chips         int         `json:"chips"`
	StartingChips int         `json:"starting_chips"`
	HoleCards     []deck.Card `json:"hole_cards"`
	CurrentBet    int         `json:"current_bet"` // Bet on the current street
	Won           int         `json:"won"`         // Chips awarded at settlement
	IsFolded      bool        `json:"is_folded"`
	IsOut         bool        `json:"is_out"` // No chips at hand start
	IsAutomated   bool        `json:"is_automated"`
}

// InHand returns true if the player has not folded
func (p *PlayerState) InHand() bool {
	return !p.IsFolded
}

// Owed returns the chips needed to match the table bet
func (p *PlayerState) Owed(tableBet int) int {
	return max(tableBet-p.CurrentBet, 0)
}

// Net returns the change in chips since the hand started
func (p *PlayerState) Net() int {
	return p.Chips - p.StartingChips
}

func (p PlayerState) clone() PlayerState {
	p.HoleCards = slices.Clone(p.HoleCards)
	return p
}
