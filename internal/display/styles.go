package display

import "github.com/charmbracelet/lipgloss"

// styles holds the styles for one renderer
type styles struct {
	Header    lipgloss.Style
	Board     lipgloss.Style
	RedCard   lipgloss.Style
	BlackCard lipgloss.Style
	Hidden    lipgloss.Style
	Player    lipgloss.Style
	ToAct     lipgloss.Style
	Folded    lipgloss.Style
	Winner    lipgloss.Style
	Info      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		Header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1),
		Board: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		RedCard: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		BlackCard: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true),
		Hidden: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		Player: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")),
		ToAct: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		Folded: r.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Strikethrough(true),
		Winner: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		Info: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
	}
}
