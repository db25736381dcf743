package game

import "errors"

var (
	// ErrInvalidHandSetup is returned by StartHand for fewer than two
	// players with chips, duplicate or empty names, or negative stacks.
	ErrInvalidHandSetup = errors.New("game: invalid hand setup")

	// ErrNotYourTurn is returned when the acting player is not the seat to act.
	ErrNotYourTurn = errors.New("game: not your turn")

	// ErrInsufficientChips is returned when a call costs more than the stack.
	ErrInsufficientChips = errors.New("game: insufficient chips")

	// ErrInvalidRaise is returned for raises that do not increase the bet or
	// cannot be afforded.
	ErrInvalidRaise = errors.New("game: invalid raise")

	// ErrIllegalCheck is returned when a player checks while owing chips.
	ErrIllegalCheck = errors.New("game: illegal check")

	// ErrDeckExhausted is returned when a deal needs more cards than remain.
	ErrDeckExhausted = errors.New("game: deck exhausted")

	// ErrHandOver is returned for actions on a finished hand.
	ErrHandOver = errors.New("game: hand is over")

	// ErrUnknownAction is returned for an action kind outside the closed set.
	ErrUnknownAction = errors.New("game: unknown action")
)
