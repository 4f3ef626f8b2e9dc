package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/rv/pkg/tree"
)

// Theme holds the colors and base styles of the comparison view.
// Styles are created through Renderer so tests can render without a TTY.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor

	Changed   lipgloss.AdaptiveColor // Nodes whose content differs
	Unmatched lipgloss.AdaptiveColor // Nodes without a positional counterpart
	Error     lipgloss.AdaptiveColor // Stack-trace checkpoints and status errors

	Base     lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style
	Focused  lipgloss.Style
}

// DefaultTheme returns the standard palette bound to renderer
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#7D6B00", Dark: "#F1FA8C"},
		Highlight: lipgloss.AdaptiveColor{Light: "#006B8F", Dark: "#8BE9FD"},
		Muted:     lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#4A4A4A", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#C0C0C0", Dark: "#44475A"},

		Changed:   lipgloss.AdaptiveColor{Light: "#B35900", Dark: "#FFB86C"},
		Unmatched: lipgloss.AdaptiveColor{Light: "#1F7A1F", Dark: "#50FA7B"},
		Error:     lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF5555"},
	}

	t.Base = r.NewStyle().Foreground(t.Subtext)
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#E4DDFB", Dark: "#44475A"}).
		Bold(true)
	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)
	t.Focused = t.Panel.BorderForeground(t.Primary)
	return t
}

// DiffColor returns the color for a diff marker. ok is false for nodes
// that compared equal.
func (t Theme) DiffColor(state tree.DiffState) (color lipgloss.AdaptiveColor, ok bool) {
	switch state {
	case tree.DiffChanged:
		return t.Changed, true
	case tree.DiffUnmatched:
		return t.Unmatched, true
	}
	return lipgloss.AdaptiveColor{}, false
}
