package game

import "github.com/lox/holdem-rooms/internal/deck"

// HandOption configures StartHand
type HandOption func(*handConfig)

type handConfig struct {
	chips     func(name string) (int, bool)
	automated func(name string) bool
	deck      deck.Deck
	handID    string
}

func defaultHandConfig() handConfig {
	return handConfig{
		chips:     func(string) (int, bool) { return 0, false },
		automated: func(string) bool { return false },
	}
}

// WithChipLookup sets where starting stacks come from. Names the lookup
// does not know start with DefaultChips.
func WithChipLookup(lookup func(name string) (int, bool)) HandOption {
	return func(c *handConfig) {
		if lookup != nil {
			c.chips = lookup
		}
	}
}

// WithChips is a convenience for a fixed name to stack map
func WithChips(chips map[string]int) HandOption {
	return WithChipLookup(func(name string) (int, bool) {
		n, ok := chips[name]
		return n, ok
	})
}

// WithAutomated marks the seats played by the automated policy
func WithAutomated(isAutomated func(name string) bool) HandOption {
	return func(c *handConfig) {
		if isAutomated != nil {
			c.automated = isAutomated
		}
	}
}

// WithDeck deals from d instead of a freshly shuffled deck.
// The RNG passed to StartHand is not used.
func WithDeck(d deck.Deck) HandOption {
	return func(c *handConfig) {
		c.deck = d
	}
}

// WithHandID sets the hand identifier recorded in the state
func WithHandID(id string) HandOption {
	return func(c *handConfig) {
		c.handID = id
	}
}
