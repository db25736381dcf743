// Package display renders hand states for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/holdem-rooms/internal/deck"
	"github.com/lox/holdem-rooms/internal/evaluator"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/muesli/termenv"
)

// Renderer formats states for one output
type Renderer struct {
	styles styles
}

// New creates a renderer for w. With color false all styling is dropped.
func New(w io.Writer, color bool) *Renderer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{styles: newStyles(r)}
}

// Card renders a single card with its suit symbol
func (r *Renderer) Card(c deck.Card) string {
	if c.Suit.IsRed() {
		return r.styles.RedCard.Render(c.Pretty())
	}
	return r.styles.BlackCard.Render(c.Pretty())
}

// Cards renders cards separated by spaces; nil renders as two hidden cards.
func (r *Renderer) Cards(cards []deck.Card) string {
	if cards == nil {
		return r.styles.Hidden.Render("?? ??")
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = r.Card(c)
	}
	return strings.Join(parts, " ")
}

// State renders the table: header, board, one line per seat and, for a
// settled hand, the result. s is normally a View for the person reading.
func (r *Renderer) State(s *game.GameState) string {
	var b strings.Builder

	header := fmt.Sprintf("%s  pot %d", strings.ToUpper(s.Phase.String()), s.Pot)
	if s.CurrentBet > 0 {
		header += fmt.Sprintf("  bet %d", s.CurrentBet)
	}
	if s.HandID != "" {
		header += "  hand " + s.HandID
	}
	b.WriteString(r.styles.Header.Render(header))
	b.WriteString("\n")

	board := "-"
	if len(s.CommunityCards) > 0 {
		board = r.Cards(s.CommunityCards)
	}
	fmt.Fprintf(&b, "%s %s\n", r.styles.Board.Render("Board:"), board)

	width := 0
	for _, p := range s.Players {
		width = max(width, lipgloss.Width(p.Name))
	}

	current := s.CurrentPlayer()
	for i := range s.Players {
		p := &s.Players[i]
		marker := "  "
		if current != nil && current.Name == p.Name {
			marker = r.styles.ToAct.Render("> ")
		}

		name := fmt.Sprintf("%-*s", width, p.Name)
		if p.InHand() {
			name = r.styles.Player.Render(name)
		} else {
			name = r.styles.Folded.Render(name)
		}

		line := fmt.Sprintf("%s%s %6d  %s", marker, name, p.Chips, r.Cards(p.HoleCards))
		if p.CurrentBet > 0 {
			line += fmt.Sprintf("  bet %d", p.CurrentBet)
		}
		var tags []string
		if p.IsAutomated {
			tags = append(tags, "bot")
		}
		switch {
		case p.IsOut:
			tags = append(tags, "out")
		case p.IsFolded:
			tags = append(tags, "folded")
		}
		if s.IsComplete() && p.Won > 0 {
			tags = append(tags, fmt.Sprintf("won %d", p.Won))
		}
		if s.WentToShowdown() && p.InHand() && p.HoleCards != nil {
			tags = append(tags, HandName(p.HoleCards, s.CommunityCards))
		}
		if len(tags) > 0 {
			line += "  " + r.styles.Info.Render("("+strings.Join(tags, ", ")+")")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if s.IsComplete() {
		b.WriteString(r.styles.Winner.Render("Winner: " + strings.Join(s.WinnerNames(), ", ")))
		b.WriteString("\n")
	}
	return b.String()
}

// Prompt describes what the player to act may do
func (r *Renderer) Prompt(s *game.GameState) string {
	p := s.CurrentPlayer()
	if p == nil {
		return ""
	}
	owed := p.Owed(s.CurrentBet)
	options := []string{"fold"}
	if owed == 0 {
		options = append(options, "check")
	} else if owed <= p.Chips {
		options = append(options, fmt.Sprintf("call %d", owed))
	}
	if p.CurrentBet+p.Chips > s.CurrentBet {
		options = append(options, fmt.Sprintf("raise %d-%d", s.CurrentBet+1, p.CurrentBet+p.Chips))
	}
	return r.styles.ToAct.Render(fmt.Sprintf("%s to act: %s", p.Name, strings.Join(options, " | ")))
}

// HandName describes the best hand made from hole and board cards
func HandName(hole, board []deck.Card) string {
	cards := make([]deck.Card, 0, len(hole)+len(board))
	cards = append(cards, hole...)
	cards = append(cards, board...)
	return evaluator.Evaluate(cards).String()
}
