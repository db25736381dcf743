package game

import "fmt"

// Visibility controls which hole cards View reveals
type Visibility int

const (
	// VisibilityOwner reveals the viewer's own cards, plus every live hand
	// once the hand has gone to showdown.
	VisibilityOwner Visibility = iota
	// VisibilityAll reveals every seat's cards.
	VisibilityAll
)

func (v Visibility) String() string {
	switch v {
	case VisibilityOwner:
		return "owner"
	case VisibilityAll:
		return "all"
	default:
		return fmt.Sprintf("visibility(%d)", int(v))
	}
}

// View returns a copy of the state as seen by viewer. Hidden hole cards are
// nil and the remaining deck is always dropped.
func (s *GameState) View(viewer string, visibility Visibility) *GameState {
	v := s.Clone()
	v.Deck = nil

	if visibility == VisibilityAll {
		return v
	}

	showdown := v.WentToShowdown()
	for i := range v.Players {
		p := &v.Players[i]
		if p.Name == viewer || (showdown && p.InHand()) {
			continue
		}
		p.HoleCards = nil
	}
	return v
}
