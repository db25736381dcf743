package game

import (
	"fmt"
	"strings"
)

// Phase is the betting street of a hand
type Phase int

const (
	Preflop Phase = iota
	Flop
	Turn
	River
	Showdown
)

var phaseNames = [...]string{"preflop", "flop", "turn", "river", "showdown"}

func (p Phase) String() string {
	if p < Preflop || p > Showdown {
		return "unknown"
	}
	return phaseNames[p]
}

// BoardSize returns how many community cards are out during the phase.
// Showdown has none of its own; it keeps whatever board was dealt.
func (p Phase) BoardSize() int {
	switch p {
	case Flop:
		return 3
	case Turn:
		return 4
	case River:
		return 5
	default:
		return 0
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	if p < Preflop || p > Showdown {
		return nil, fmt.Errorf("game: invalid phase %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

// UnmarshalText decodes a phase name; unknown names are an error.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase parses a phase name such as "flop"
func ParsePhase(name string) (Phase, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("game: unknown phase %q", name)
}

// ActionKind is one of the four player actions
type ActionKind int

const (
	KindFold ActionKind = iota
	KindCheck
	KindCall
	KindRaise
)

var actionNames = [...]string{"fold", "check", "call", "raise"}

func (k ActionKind) String() string {
	if k < KindFold || k > KindRaise {
		return "unknown"
	}
	return actionNames[k]
}

// MarshalText encodes the action kind by name.
func (k ActionKind) MarshalText() ([]byte, error) {
	if k < KindFold || k > KindRaise {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, int(k))
	}
	return []byte(actionNames[k]), nil
}

// UnmarshalText decodes an action kind name.
func (k *ActionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseActionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseActionKind parses "fold", "check", "call" or "raise"
func ParseActionKind(name string) (ActionKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range actionNames {
		if n == name {
			return ActionKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// Action is a player decision. Amount is only meaningful for Raise, where it
// is the total bet the player raises to on the current street.
type Action struct {
	Kind   ActionKind
	Amount int
}

// RaiseTo builds a raise to a total street bet of amount
func RaiseTo(amount int) Action {
	return Action{Kind: KindRaise, Amount: amount}
}

// ParseAction builds an Action from a name and an optional amount.
func ParseAction(name string, amount int) (Action, error) {
	kind, err := ParseActionKind(name)
	if err != nil {
		return Action{}, err
	}
	if kind != KindRaise {
		amount = 0
	}
	return Action{Kind: kind, Amount: amount}, nil
}

func (a Action) String() string {
	if a.Kind == KindRaise {
		return fmt.Sprintf("raise %d", a.Amount)
	}
	return a.Kind.String()
}

// Fold gives up the hand
func Fold() Action { return Action{Kind: KindFold} }

// Check passes when nothing is owed
func Check() Action { return Action{Kind: KindCheck} }

// Call matches the table bet
func Call() Action { return Action{Kind: KindCall} }
