package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

const helpLegend = `Both trees are compared position by position.
≠  content differs from the node at the same position
+  no node at this position on the other side

With sync on, selecting a node selects the node with the
same name path in the other tree.`

// RenderHelp renders the key reference modal
func RenderHelp(keys keyMap, theme Theme, width int) string {
	r := theme.Renderer

	modalWidth := 72
	if modalWidth > width-4 {
		modalWidth = width - 4
	}
	if modalWidth < 20 {
		modalWidth = 20
	}

	h := help.New()
	h.ShowAll = true
	h.Width = modalWidth - 6
	h.Styles.FullKey = r.NewStyle().Foreground(theme.Highlight)
	h.Styles.FullDesc = r.NewStyle().Foreground(theme.Subtext)
	h.Styles.FullSeparator = r.NewStyle().Foreground(theme.Border)

	titleStyle := r.NewStyle().Bold(true).Foreground(theme.Primary)
	contentStyle := r.NewStyle().Foreground(theme.Subtext)
	footerStyle := r.NewStyle().Foreground(theme.Muted).Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quick Reference"))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", modalWidth-6)))
	b.WriteString("\n\n")
	b.WriteString(h.FullHelpView(keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(contentStyle.Render(helpLegend))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("Esc or ? to close"))

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(1, 2).
		Width(modalWidth)

	return modalStyle.Render(b.String())
}
