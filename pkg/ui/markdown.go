package ui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// MarkdownRenderer wraps a glamour renderer and recreates it when the
// width changes
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	style    string // glamour standard style, empty for auto detection
}

// NewMarkdownRenderer creates a renderer wrapping at width. An empty style
// lets glamour detect the terminal background.
func NewMarkdownRenderer(width int, style string) *MarkdownRenderer {
	mr := &MarkdownRenderer{width: width, style: style}
	mr.renderer = mr.build()
	return mr
}

// StyleForTheme picks the glamour style matching the theme's background
func StyleForTheme(t Theme) string {
	if t.Renderer == nil {
		return ""
	}
	if t.Renderer.HasDarkBackground() {
		return styles.DarkStyle
	}
	return styles.LightStyle
}

func (mr *MarkdownRenderer) build() *glamour.TermRenderer {
	styleOpt := glamour.WithAutoStyle()
	if mr.style != "" {
		styleOpt = glamour.WithStandardStyle(mr.style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(mr.width))
	if err != nil {
		return nil
	}
	return r
}

// SetWidth updates the wrap width. Non-positive and unchanged widths are
// ignored.
func (mr *MarkdownRenderer) SetWidth(width int) {
	if width <= 0 || width == mr.width {
		return
	}
	mr.width = width
	mr.renderer = mr.build()
}

// Render converts markdown to styled terminal output. Without a renderer
// the markdown is returned unchanged.
func (mr *MarkdownRenderer) Render(markdown string) (string, error) {
	if mr.renderer == nil {
		return markdown, nil
	}
	return mr.renderer.Render(markdown)
}
