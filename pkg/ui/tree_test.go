package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/rv/pkg/model"
	"github.com/vanderheijden86/rv/pkg/tree"
)

func newTestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(nil))
}

func cp(name string, level int, msg string) model.Checkpoint {
	return model.Checkpoint{Name: name, Level: level, Type: model.TypeInfopoint, Message: model.StringPtr(msg)}
}

func report(name string, cps ...model.Checkpoint) *model.Report {
	return &model.Report{Name: name, StorageID: "1", XML: "<r/>", Checkpoints: cps}
}

// sampleTree:
//
//	flow
//	├── login
//	│   ├── form
//	│   │   └── submit
//	│   └── check
//	└── logout
func sampleTree(t *testing.T, opts ...tree.BuildOption) *tree.Node {
	t.Helper()
	root, err := tree.Build(report("flow",
		cp("login", 0, "ok"),
		cp("form", 1, "a"),
		cp("submit", 2, "x"),
		cp("check", 1, ""),
		cp("logout", 0, "ok"),
	), opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return root
}

func newPane(t *testing.T, root *tree.Node) *TreePane {
	t.Helper()
	p := NewTreePane(newTestTheme())
	p.SetSize(80, 20)
	p.SetRoot(root)
	return p
}

func selectedName(p *TreePane) string {
	return p.SelectedNode().Name()
}

func TestTreePaneEmpty(t *testing.T) {
	p := NewTreePane(newTestTheme())
	if p.SelectedNode() != nil {
		t.Error("empty pane should have no selection")
	}
	if !strings.Contains(p.View(), "No report loaded") {
		t.Errorf("unexpected empty view %q", p.View())
	}
	p.MoveDown()
	p.ToggleExpand()
	p.CollapseOrJumpToParent()
	if p.NextDifference() {
		t.Error("NextDifference on an empty pane")
	}
}

func TestTreePaneNavigation(t *testing.T) {
	p := newPane(t, sampleTree(t))

	if p.NodeCount() != 6 {
		t.Fatalf("expected 6 visible nodes, got %d", p.NodeCount())
	}
	if selectedName(p) != "flow" {
		t.Fatalf("expected cursor on the root, got %q", selectedName(p))
	}

	steps := []struct {
		move func()
		want string
	}{
		{p.MoveDown, "login"},
		{p.MoveDown, "form"},
		{p.MoveUp, "login"},
		{p.JumpToBottom, "logout"},
		{p.MoveDown, "logout"},
		{p.JumpToTop, "flow"},
		{p.MoveUp, "flow"},
	}
	for i, step := range steps {
		step.move()
		if got := selectedName(p); got != step.want {
			t.Fatalf("step %d: cursor on %q, want %q", i, got, step.want)
		}
	}
}

func TestTreePaneExpandCollapse(t *testing.T) {
	p := newPane(t, sampleTree(t))
	p.MoveDown() // login

	p.CollapseOrJumpToParent()
	if p.NodeCount() != 3 {
		t.Fatalf("collapsing login should hide 3 nodes, have %d visible", p.NodeCount())
	}
	if selectedName(p) != "login" {
		t.Errorf("cursor moved on collapse: %q", selectedName(p))
	}

	p.CollapseOrJumpToParent()
	if selectedName(p) != "flow" {
		t.Errorf("second h should jump to the parent, got %q", selectedName(p))
	}

	p.MoveDown()
	p.ExpandOrMoveToChild()
	if p.NodeCount() != 6 {
		t.Errorf("l on a collapsed node should expand it")
	}
	p.ExpandOrMoveToChild()
	if selectedName(p) != "form" {
		t.Errorf("l on an expanded node should move to the first child, got %q", selectedName(p))
	}

	p.ToggleExpand()
	if p.NodeCount() != 5 {
		t.Errorf("toggle should collapse form, have %d visible", p.NodeCount())
	}
	p.ToggleExpand()
	if p.NodeCount() != 6 {
		t.Errorf("toggle should expand form again, have %d visible", p.NodeCount())
	}
}

func TestTreePaneCollapseAllKeepsAncestorSelected(t *testing.T) {
	p := newPane(t, sampleTree(t))
	p.SelectNode(p.Root().Items[0].Items[0].Items[0]) // submit

	p.CollapseAll()
	if p.NodeCount() != 3 {
		t.Fatalf("expected root and its children visible, got %d", p.NodeCount())
	}
	if selectedName(p) != "login" {
		t.Errorf("selection should fall back to the visible ancestor, got %q", selectedName(p))
	}

	p.ExpandAll()
	if p.NodeCount() != 6 {
		t.Errorf("ExpandAll should show every node, got %d", p.NodeCount())
	}
}

func TestTreePaneSelectNodeRevealsCollapsed(t *testing.T) {
	p := newPane(t, sampleTree(t, tree.WithCollapsed()))
	if p.NodeCount() != 3 {
		t.Fatalf("collapsed build should show root and top-level nodes, got %d", p.NodeCount())
	}

	submit := p.Root().Items[0].Items[0].Items[0]
	p.SelectNode(submit)
	if p.SelectedNode() != submit {
		t.Fatalf("SelectNode did not move the cursor")
	}
	// flow, login, form, submit, check, logout
	if p.NodeCount() != 6 {
		t.Errorf("ancestors of submit should be expanded, %d visible", p.NodeCount())
	}
}

func TestTreePaneAdoptsNewTree(t *testing.T) {
	p := newPane(t, sampleTree(t))
	other := sampleTree(t)

	p.SelectNode(other.Items[1])
	if p.Root() != other {
		t.Fatal("pane should switch to the tree of the selected node")
	}
	if p.SelectedNode() != other.Items[1] {
		t.Errorf("expected logout of the new tree selected")
	}

	third := sampleTree(t)
	p.ExpandNode(third)
	if p.Root() != third {
		t.Errorf("ExpandNode should also switch trees")
	}
}

func TestTreePaneDifferences(t *testing.T) {
	left := sampleTree(t)
	right, err := tree.Build(report("flow",
		cp("login", 0, "ok"),
		cp("form", 1, "b"),
		cp("submit", 2, "x"),
		cp("check", 1, ""),
		cp("logout", 0, "bye"),
	))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tree.Diff(left, right)

	p := newPane(t, left)
	left.Items[0].Expanded = false
	p.SetRoot(left)

	if !p.NextDifference() || selectedName(p) != "form" {
		t.Fatalf("expected form as first difference, got %q", selectedName(p))
	}
	if !left.Items[0].Expanded {
		t.Errorf("jumping to a difference should reveal it")
	}
	if !p.NextDifference() || selectedName(p) != "logout" {
		t.Fatalf("expected logout as second difference, got %q", selectedName(p))
	}
	if p.NextDifference() {
		t.Errorf("there is no third difference")
	}
	if !p.PrevDifference() || selectedName(p) != "form" {
		t.Errorf("expected to go back to form, got %q", selectedName(p))
	}
	if p.PrevDifference() {
		t.Errorf("there is nothing before form")
	}
}

func TestTreePaneRender(t *testing.T) {
	root := sampleTree(t)
	root.Items[0].Items[0].Diff = tree.DiffChanged
	root.Items[1].Diff = tree.DiffUnmatched
	p := newPane(t, root)

	lines := strings.Split(p.View(), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), p.View())
	}

	wantPrefixes := []string{
		"▾ ▣ flow",
		"├── ▾ ◆ login",
		"│   ├── ▾ ◆ form ≠",
		"│   │   └── • ◆ submit",
		"│   └── • ◆ check",
		"└── • ◆ logout +",
	}
	for i, want := range wantPrefixes {
		if got := strings.TrimSpace(lines[i]); got != want {
			t.Errorf("line %d = %q, want %q", i, got, want)
		}
	}
}

func TestTreePaneTruncatesLabels(t *testing.T) {
	root, err := tree.Build(report("r", cp(strings.Repeat("long", 20), 0, "")))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := NewTreePane(newTestTheme())
	p.SetSize(30, 10)
	p.SetRoot(root)

	lines := strings.Split(p.View(), "\n")
	if !strings.HasSuffix(strings.TrimSpace(lines[1]), "…") {
		t.Errorf("expected truncated label, got %q", lines[1])
	}
	if w := lipgloss.Width(lines[1]); w > 30 {
		t.Errorf("line is %d cells wide, limit 30", w)
	}
}

func TestTreePaneScrollsWithCursor(t *testing.T) {
	cps := make([]model.Checkpoint, 30)
	for i := range cps {
		cps[i] = cp("step", 0, "")
	}
	root, err := tree.Build(report("r", cps...))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := NewTreePane(newTestTheme())
	p.SetSize(40, 5)
	p.SetRoot(root)

	p.JumpToBottom()
	start, end := p.visibleRange()
	if end != 31 || start != 26 {
		t.Errorf("visible range = [%d,%d), want [26,31)", start, end)
	}
	if got := len(strings.Split(p.View(), "\n")); got != 5 {
		t.Errorf("rendered %d lines, want 5", got)
	}

	p.PageUp()
	if p.cursor != 28 {
		t.Errorf("page up by half the height should land on 28, got %d", p.cursor)
	}
	p.JumpToTop()
	if start, _ := p.visibleRange(); start != 0 {
		t.Errorf("window should scroll back to the top, start %d", start)
	}
	p.PageDown()
	if p.cursor != 2 {
		t.Errorf("page down should land on 2, got %d", p.cursor)
	}
}
