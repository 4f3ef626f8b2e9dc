package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/vanderheijden86/rv/pkg/compare"
	"github.com/vanderheijden86/rv/pkg/export"
	"github.com/vanderheijden86/rv/pkg/tree"
)

const (
	defaultWrapWidth = 80
	noWrapWidth      = 1024 // Lines longer than this still wrap with word_wrap off
)

// DetailPane shows the content of the selected pair side by side in
// markdown, rendered through glamour into a scrollable viewport
type DetailPane struct {
	viewport viewport.Model
	md       *MarkdownRenderer
	pair     compare.Pair
	decode   bool
	wordWrap bool
}

// NewDetailPane creates a detail pane. style is a glamour standard style
// name, empty for auto detection.
func NewDetailPane(style string, decode, wordWrap bool) *DetailPane {
	d := &DetailPane{
		viewport: viewport.New(0, 0),
		decode:   decode,
		wordWrap: wordWrap,
	}
	d.md = NewMarkdownRenderer(defaultWrapWidth, style)
	return d
}

// SetPair shows p. It is the controller's pair handler.
func (d *DetailPane) SetPair(p compare.Pair) {
	d.pair = p
	d.refresh()
	d.viewport.GotoTop()
}

// Pair returns the pair on display
func (d *DetailPane) Pair() compare.Pair {
	return d.pair
}

// SetDecode toggles Base64 decoding of messages
func (d *DetailPane) SetDecode(decode bool) {
	d.decode = decode
	d.refresh()
}

// SetSize resizes the viewport and rewraps the content
func (d *DetailPane) SetSize(width, height int) {
	d.viewport.Width = width
	d.viewport.Height = height
	if d.wordWrap {
		d.md.SetWidth(width)
	} else {
		d.md.SetWidth(noWrapWidth)
	}
	d.refresh()
}

// ScrollDown scrolls half a page down
func (d *DetailPane) ScrollDown() {
	d.viewport.HalfPageDown()
}

// ScrollUp scrolls half a page up
func (d *DetailPane) ScrollUp() {
	d.viewport.HalfPageUp()
}

// View renders the visible part of the content
func (d *DetailPane) View() string {
	return d.viewport.View()
}

func (d *DetailPane) refresh() {
	rendered, err := d.md.Render(d.Markdown())
	if err != nil {
		d.viewport.SetContent(fmt.Sprintf("Error rendering markdown: %v", err))
		return
	}
	d.viewport.SetContent(rendered)
}

// Markdown returns the unrendered description of the current pair
func (d *DetailPane) Markdown() string {
	l, r := d.pair.Left, d.pair.Right
	if l == nil && r == nil {
		return "_Nothing selected_\n"
	}

	var sb strings.Builder
	title := l
	if title == nil {
		title = r
	}
	sb.WriteString("## " + title.Name() + "\n\n")
	sb.WriteString("`" + strings.Join(export.RootFirstPath(title), " / ") + "`")
	if title.Different() {
		sb.WriteString(" · **" + title.Diff.String() + "**")
	}
	sb.WriteString("\n\n")

	sb.WriteString("| | Left | Right |\n|---|---|---|\n")
	for _, row := range [][3]string{
		{"Type", nodeType(l), nodeType(r)},
		{"Level", nodeLevel(l), nodeLevel(r)},
		{"Index", nodeIndex(l), nodeIndex(r)},
		{"Encoding", nodeEncoding(l), nodeEncoding(r)},
	} {
		sb.WriteString("| " + row[0] + " | " + row[1] + " | " + row[2] + " |\n")
	}
	sb.WriteString("\n")

	d.writeSide(&sb, "Left", l)
	d.writeSide(&sb, "Right", r)
	return sb.String()
}

func (d *DetailPane) writeSide(sb *strings.Builder, side string, n *tree.Node) {
	sb.WriteString("### " + side)
	if n == nil {
		sb.WriteString("\n\n_No selection_\n\n")
		return
	}

	text, null := d.Content(n)
	if n.Checkpoint != nil && n.Checkpoint.ShowConverted {
		sb.WriteString(" (decoded from Base64)")
	}
	sb.WriteString("\n\n")
	switch {
	case null:
		sb.WriteString("_null_\n\n")
	case text == "":
		sb.WriteString("_empty_\n\n")
	default:
		sb.WriteString(export.Fence(text))
	}
}

// Content returns what is shown for n: the report XML or the checkpoint
// message, decoded when Base64 decoding is on. null is true for a missing
// message.
func (d *DetailPane) Content(n *tree.Node) (text string, null bool) {
	if n == nil {
		return "", true
	}
	if n.Checkpoint != nil {
		if n.Checkpoint.Message == nil {
			return "", true
		}
		return n.Checkpoint.DisplayMessage(d.decode), false
	}
	content, ok := n.Content()
	return content, !ok
}

func nodeType(n *tree.Node) string {
	switch {
	case n == nil:
		return ""
	case n.Checkpoint == nil:
		return "report"
	}
	return n.Checkpoint.Type.String()
}

func nodeLevel(n *tree.Node) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(n.Level)
}

func nodeIndex(n *tree.Node) string {
	switch {
	case n == nil:
		return ""
	case n.Checkpoint == nil:
		return n.Report.StorageID
	}
	return strconv.Itoa(n.Checkpoint.Index)
}

func nodeEncoding(n *tree.Node) string {
	if n == nil || n.Checkpoint == nil {
		return ""
	}
	return n.Checkpoint.Encoding
}
