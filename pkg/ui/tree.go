// tree.go - One side of the comparison: a collapsible checkpoint tree
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/rv/pkg/model"
	"github.com/vanderheijden86/rv/pkg/tree"
)

// TreePane renders a report tree and tracks the cursor over its visible
// nodes. It implements compare.Widget so the controller can reveal and
// select counterparts.
type TreePane struct {
	root           *tree.Node
	flatList       []*tree.Node // Visible nodes in pre-order
	cursor         int          // Selection index in flatList
	viewportOffset int          // Index of first visible node
	theme          Theme
	width          int
	height         int
}

// NewTreePane creates an empty pane
func NewTreePane(theme Theme) *TreePane {
	return &TreePane{theme: theme}
}

// SetRoot replaces the displayed tree and moves the cursor to its root
func (t *TreePane) SetRoot(root *tree.Node) {
	t.root = root
	t.cursor = 0
	t.viewportOffset = 0
	t.rebuildFlatList()
}

// Root returns the displayed tree
func (t *TreePane) Root() *tree.Node {
	return t.root
}

// SetSize updates the available dimensions
func (t *TreePane) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// ExpandNode expands n and refreshes the visible list
func (t *TreePane) ExpandNode(n *tree.Node) {
	if n == nil {
		return
	}
	t.adopt(n)
	n.Expanded = true
	t.rebuildFlatList()
}

// SelectNode moves the cursor to n, expanding collapsed ancestors first
func (t *TreePane) SelectNode(n *tree.Node) {
	if n == nil {
		return
	}
	t.adopt(n)
	for _, a := range tree.Ancestors(n) {
		a.Expanded = true
	}
	t.rebuildFlatList()
	if i := t.indexOf(n); i >= 0 {
		t.cursor = i
	}
	t.ensureCursorVisible()
}

// adopt switches to the tree n belongs to. The controller installs new
// trees on reload by selecting their roots.
func (t *TreePane) adopt(n *tree.Node) {
	top := n
	for top.Parent != nil {
		top = top.Parent
	}
	if top != t.root {
		t.SetRoot(top)
	}
}

// View renders the visible window of the tree
func (t *TreePane) View() string {
	if t.root == nil || len(t.flatList) == 0 {
		return t.theme.Renderer.NewStyle().Foreground(t.theme.Muted).Render("No report loaded.")
	}

	start, end := t.visibleRange()
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := t.renderNode(t.flatList[i])
		if i == t.cursor {
			line = t.theme.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderNode renders a single node with tree characters and diff styling
func (t *TreePane) renderNode(node *tree.Node) string {
	r := t.theme.Renderer
	var sb strings.Builder

	prefix := t.buildTreePrefix(node)
	sb.WriteString(prefix)

	sb.WriteString(r.NewStyle().Foreground(t.theme.Secondary).Render(t.getExpandIndicator(node)))
	sb.WriteString(" ")

	glyph, glyphColor := t.nodeGlyph(node)
	sb.WriteString(r.NewStyle().Foreground(glyphColor).Render(glyph))
	sb.WriteString(" ")

	marker := diffMarker(node.Diff)
	maxLabel := t.width - lipgloss.Width(prefix) - 4 - runewidth.StringWidth(marker)
	if maxLabel < 8 {
		maxLabel = 8
	}
	label := runewidth.Truncate(node.Label, maxLabel, "…")

	labelStyle := r.NewStyle()
	if color, ok := t.theme.DiffColor(node.Diff); ok {
		labelStyle = labelStyle.Foreground(color)
	}
	sb.WriteString(labelStyle.Render(label + marker))

	return sb.String()
}

// buildTreePrefix builds the indentation and branch characters for a node
func (t *TreePane) buildTreePrefix(node *tree.Node) string {
	if node.Parent == nil {
		return ""
	}

	ancestors := tree.Ancestors(node)
	var parts []string
	// Ancestors run parent-first; the root itself draws no column
	for i := len(ancestors) - 2; i >= 0; i-- {
		if hasSiblingsBelow(ancestors[i]) {
			parts = append(parts, "│   ")
		} else {
			parts = append(parts, "    ")
		}
	}
	if hasSiblingsBelow(node) {
		parts = append(parts, "├── ")
	} else {
		parts = append(parts, "└── ")
	}

	return t.theme.Renderer.NewStyle().Foreground(t.theme.Muted).Render(strings.Join(parts, ""))
}

func hasSiblingsBelow(node *tree.Node) bool {
	if node.Parent == nil {
		return false
	}
	siblings := node.Parent.Items
	return len(siblings) > 0 && siblings[len(siblings)-1] != node
}

// getExpandIndicator returns the expand/collapse indicator for a node
func (t *TreePane) getExpandIndicator(node *tree.Node) string {
	if len(node.Items) == 0 {
		return "•"
	}
	if node.Expanded {
		return "▾"
	}
	return "▸"
}

// nodeGlyph returns the type symbol for a node and its color
func (t *TreePane) nodeGlyph(node *tree.Node) (string, lipgloss.AdaptiveColor) {
	if node.Checkpoint == nil {
		return "▣", t.theme.Primary
	}
	color := t.theme.Highlight
	if strings.Contains(node.Icon, "-error") {
		color = t.theme.Error
	}
	switch node.Checkpoint.Type {
	case model.TypeStartpoint:
		return "▶", color
	case model.TypeEndpoint:
		return "■", color
	case model.TypeAbortpoint:
		return "✖", t.theme.Error
	case model.TypeInputpoint:
		return "→", color
	case model.TypeOutputpoint:
		return "←", color
	case model.TypeInfopoint:
		return "◆", color
	case model.TypeThreadStartpointError:
		return "▷", t.theme.Error
	case model.TypeThreadStartpoint:
		return "▷", color
	case model.TypeThreadEndpoint:
		return "□", color
	}
	return "?", t.theme.Muted
}

func diffMarker(state tree.DiffState) string {
	switch state {
	case tree.DiffChanged:
		return " ≠"
	case tree.DiffUnmatched:
		return " +"
	}
	return ""
}

// SelectedNode returns the node under the cursor, or nil for an empty pane
func (t *TreePane) SelectedNode() *tree.Node {
	if t.cursor >= 0 && t.cursor < len(t.flatList) {
		return t.flatList[t.cursor]
	}
	return nil
}

// MoveDown moves the cursor down in the flat list
func (t *TreePane) MoveDown() {
	if t.cursor < len(t.flatList)-1 {
		t.cursor++
	}
	t.ensureCursorVisible()
}

// MoveUp moves the cursor up in the flat list
func (t *TreePane) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
	}
	t.ensureCursorVisible()
}

// ToggleExpand expands or collapses the selected node
func (t *TreePane) ToggleExpand() {
	node := t.SelectedNode()
	if node != nil && len(node.Items) > 0 {
		node.Expanded = !node.Expanded
		t.rebuildFlatList()
	}
}

// ExpandAll expands every node in the tree
func (t *TreePane) ExpandAll() {
	setExpandedRecursive(t.root, true)
	t.rebuildFlatList()
}

// CollapseAll collapses every node below the root. The selection moves to
// the nearest visible ancestor.
func (t *TreePane) CollapseAll() {
	setExpandedRecursive(t.root, false)
	if t.root != nil {
		t.root.Expanded = true
	}
	t.rebuildFlatList()
}

// JumpToTop moves the cursor to the root
func (t *TreePane) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves the cursor to the last visible node
func (t *TreePane) JumpToBottom() {
	if len(t.flatList) > 0 {
		t.cursor = len(t.flatList) - 1
	}
	t.ensureCursorVisible()
}

// JumpToParent moves the cursor to the parent of the selected node
func (t *TreePane) JumpToParent() {
	node := t.SelectedNode()
	if node == nil || node.Parent == nil {
		return
	}
	if i := t.indexOf(node.Parent); i >= 0 {
		t.cursor = i
	}
	t.ensureCursorVisible()
}

// ExpandOrMoveToChild handles the → / l key:
//   - collapsed node with children: expand it
//   - expanded node: move to its first child
//   - leaf: do nothing
func (t *TreePane) ExpandOrMoveToChild() {
	node := t.SelectedNode()
	if node == nil || len(node.Items) == 0 {
		return
	}
	if !node.Expanded {
		node.Expanded = true
		t.rebuildFlatList()
		return
	}
	if i := t.indexOf(node.Items[0]); i >= 0 {
		t.cursor = i
	}
	t.ensureCursorVisible()
}

// CollapseOrJumpToParent handles the ← / h key:
//   - expanded node with children: collapse it
//   - otherwise: jump to the parent
func (t *TreePane) CollapseOrJumpToParent() {
	node := t.SelectedNode()
	if node == nil {
		return
	}
	if len(node.Items) > 0 && node.Expanded {
		node.Expanded = false
		t.rebuildFlatList()
		return
	}
	t.JumpToParent()
}

// PageDown moves the cursor down by half a viewport
func (t *TreePane) PageDown() {
	t.cursor = min(t.cursor+t.pageSize(), len(t.flatList)-1)
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// PageUp moves the cursor up by half a viewport
func (t *TreePane) PageUp() {
	t.cursor = max(t.cursor-t.pageSize(), 0)
	t.ensureCursorVisible()
}

func (t *TreePane) pageSize() int {
	if size := t.height / 2; size >= 1 {
		return size
	}
	return 5
}

// NextDifference selects the next marked node in pre-order after the
// selection, revealing it if it is collapsed away. It returns false when
// there is none.
func (t *TreePane) NextDifference() bool {
	current := t.SelectedNode()
	if current == nil {
		return false
	}
	for _, n := range tree.Differences(t.root) {
		if n.Index > current.Index {
			t.SelectNode(n)
			return true
		}
	}
	return false
}

// PrevDifference is NextDifference in reverse
func (t *TreePane) PrevDifference() bool {
	current := t.SelectedNode()
	if current == nil {
		return false
	}
	diffs := tree.Differences(t.root)
	for i := len(diffs) - 1; i >= 0; i-- {
		if diffs[i].Index < current.Index {
			t.SelectNode(diffs[i])
			return true
		}
	}
	return false
}

// visibleRange returns the half-open range of flatList indices to render
func (t *TreePane) visibleRange() (start, end int) {
	if len(t.flatList) == 0 {
		return 0, 0
	}
	visible := t.visibleCount()
	start = t.viewportOffset
	end = start + visible
	if end > len(t.flatList) {
		end = len(t.flatList)
		start = max(end-visible, 0)
	}
	return start, end
}

func (t *TreePane) visibleCount() int {
	if t.height > 0 {
		return t.height
	}
	return 20
}

// ensureCursorVisible scrolls so the cursor is inside the window
func (t *TreePane) ensureCursorVisible() {
	visible := t.visibleCount()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+visible {
		t.viewportOffset = t.cursor - visible + 1
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

func (t *TreePane) indexOf(n *tree.Node) int {
	for i, candidate := range t.flatList {
		if candidate == n {
			return i
		}
	}
	return -1
}

func setExpandedRecursive(node *tree.Node, expanded bool) {
	tree.Walk(node, func(n *tree.Node) bool {
		n.Expanded = expanded
		return true
	})
}

// rebuildFlatList recomputes the visible nodes and keeps the cursor on the
// selected node, or on its nearest visible ancestor if it was hidden
func (t *TreePane) rebuildFlatList() {
	selected := t.SelectedNode()

	t.flatList = t.flatList[:0]
	t.appendVisible(t.root)

	t.cursor = 0
	for n := selected; n != nil; n = n.Parent {
		if i := t.indexOf(n); i >= 0 {
			t.cursor = i
			break
		}
	}
	t.ensureCursorVisible()
}

// appendVisible adds a node and its visible descendants to flatList
func (t *TreePane) appendVisible(node *tree.Node) {
	if node == nil {
		return
	}
	t.flatList = append(t.flatList, node)
	if node.Expanded {
		for _, child := range node.Items {
			t.appendVisible(child)
		}
	}
}

// NodeCount returns the number of visible nodes
func (t *TreePane) NodeCount() int {
	return len(t.flatList)
}
