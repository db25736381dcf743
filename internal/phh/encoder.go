package phh

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lox/holdem-rooms/internal/game"
)

// Encode writes the hand history to the provided writer in PHH TOML format.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("phh: hand history is nil")
	}

	enc := toml.NewEncoder(w)
	// Use tabs for arrays to match human expectations
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(hand *HandHistory) ([]byte, error) {
	var buf strings.Builder
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// FormatAction converts an engine action to a PHH action string. betTo is
// the player's street bet after the action, which is what PHH records for
// a completion, bet or raise.
func FormatAction(seat int, kind game.ActionKind, betTo int) string {
	player := fmt.Sprintf("p%d", seat+1)
	switch kind {
	case game.KindFold:
		return fmt.Sprintf("%s f", player)
	case game.KindCheck, game.KindCall:
		return fmt.Sprintf("%s cc", player)
	case game.KindRaise:
		return fmt.Sprintf("%s cbr %d", player, betTo)
	default:
		return fmt.Sprintf("# %s %s %d", player, kind, betTo)
	}
}
