package tree

import (
	"testing"

	"github.com/vanderheijden86/rv/pkg/model"
)

func markedNames(root *Node) []string {
	var names []string
	for _, n := range Differences(root) {
		names = append(names, n.Name())
	}
	return names
}

func TestDiffIdenticalReports(t *testing.T) {
	cps := []model.Checkpoint{cp("A", 0, "a"), cp("B", 1, "b"), cp("C", 1, "c"), cp("D", 0, "d")}
	left := mustBuild(t, "r", cps...)
	right := mustBuild(t, "r", cps...)

	s := Diff(left, right)
	if !s.Identical() {
		t.Errorf("expected identical summary, got %+v", s)
	}
	if s.Compared != 5 {
		t.Errorf("expected 5 compared pairs, got %d", s.Compared)
	}
	if n := len(Differences(left)) + len(Differences(right)); n != 0 {
		t.Errorf("expected no marked nodes, got %d", n)
	}
}

// TestDiffOneChangedMessage changes the checkpoint at pre-order index 3
func TestDiffOneChangedMessage(t *testing.T) {
	left := mustBuild(t, "r", cp("A", 0, "a"), cp("B", 1, "b"), cp("C", 1, "c"), cp("D", 0, "d"))
	right := mustBuild(t, "r", cp("A", 0, "a"), cp("B", 1, "b"), cp("C", 1, "CHANGED"), cp("D", 0, "d"))

	s := Diff(left, right)
	if s.Changed != 1 || s.LeftUnmatched != 0 || s.RightUnmatched != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}

	for _, root := range []*Node{left, right} {
		marked := Differences(root)
		if len(marked) != 1 {
			t.Fatalf("expected exactly one marked node, got %v", markedNames(root))
		}
		if marked[0].Index != 3 || marked[0].Diff != DiffChanged {
			t.Errorf("expected index 3 changed, got index %d (%s)", marked[0].Index, marked[0].Diff)
		}
	}
}

// TestDiffDivergentShape marks the extra trailing sibling only
func TestDiffDivergentShape(t *testing.T) {
	left := mustBuild(t, "r", cp("A", 0, ""), cp("B", 1, ""))
	right := mustBuild(t, "r", cp("A", 0, ""), cp("B", 1, ""), cp("C", 1, ""))

	s := Diff(left, right)
	if s.RightUnmatched != 1 || s.LeftUnmatched != 0 || s.Changed != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if got := markedNames(right); !equalStrings(got, []string{"C"}) {
		t.Errorf("right marked = %v, want [C]", got)
	}
	if got := markedNames(left); len(got) != 0 {
		t.Errorf("left marked = %v, want none", got)
	}
	if right.Items[0].Items[1].Diff != DiffUnmatched {
		t.Errorf("expected C to be unmatched, got %s", right.Items[0].Items[1].Diff)
	}
}

// TestDiffTailMarking uses 3 vs 5 children at the same position
func TestDiffTailMarking(t *testing.T) {
	left := mustBuild(t, "r", cp("P", 0, ""), cp("1", 1, ""), cp("2", 1, ""), cp("3", 1, ""))
	right := mustBuild(t, "r",
		cp("P", 0, ""), cp("1", 1, ""), cp("2", 1, ""), cp("3", 1, ""),
		cp("4", 1, ""), cp("5", 1, ""), cp("5a", 2, "child of an extra node"),
	)

	s := Diff(left, right)
	if got := markedNames(right); !equalStrings(got, []string{"4", "5", "5a"}) {
		t.Errorf("right marked = %v, want [4 5 5a]", got)
	}
	if s.RightUnmatched != 3 {
		t.Errorf("expected 3 unmatched right nodes, got %d", s.RightUnmatched)
	}
}

// TestDiffLongerLeft ensures tails are marked on whichever side is longer
func TestDiffLongerLeft(t *testing.T) {
	left := mustBuild(t, "r", cp("A", 0, ""), cp("B", 0, ""))
	right := mustBuild(t, "r", cp("A", 0, ""))

	s := Diff(left, right)
	if s.LeftUnmatched != 1 || s.RightUnmatched != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if got := markedNames(left); !equalStrings(got, []string{"B"}) {
		t.Errorf("left marked = %v, want [B]", got)
	}
}

// TestDiffIsPositional shows that an insertion shifts later pairs
func TestDiffIsPositional(t *testing.T) {
	left := mustBuild(t, "r", cp("A", 0, "a"), cp("B", 0, "b"))
	right := mustBuild(t, "r", cp("X", 0, "x"), cp("A", 0, "a"), cp("B", 0, "b"))

	Diff(left, right)
	if got := markedNames(right); !equalStrings(got, []string{"X", "A", "B"}) {
		t.Errorf("right marked = %v, want [X A B]", got)
	}
	if right.Items[2].Diff != DiffUnmatched || right.Items[0].Diff != DiffChanged {
		t.Errorf("unexpected states %s / %s", right.Items[0].Diff, right.Items[2].Diff)
	}
}

func TestDiffReportXML(t *testing.T) {
	lr := newReport("r")
	lr.XML = "<report a='1'/>"
	rr := newReport("r")
	rr.XML = "<report a='2'/>"

	left, _ := Build(lr)
	right, _ := Build(rr)

	s := Diff(left, right)
	if s.Changed != 1 || !left.Different() || !right.Different() {
		t.Errorf("expected both roots changed, summary %+v", s)
	}
}

func TestDiffEmptyReports(t *testing.T) {
	left := mustBuild(t, "r")
	right := mustBuild(t, "r")
	if s := Diff(left, right); !s.Identical() || s.Compared != 1 {
		t.Errorf("expected only the roots compared, got %+v", s)
	}
}

func TestDiffNullVersusEmptyMessage(t *testing.T) {
	left := mustBuild(t, "r", model.Checkpoint{Name: "A", Level: 0})
	right := mustBuild(t, "r", cp("A", 0, ""))

	if s := Diff(left, right); s.Changed != 1 {
		t.Errorf("expected null and empty messages to differ, got %+v", s)
	}
}

func TestDiffNilSide(t *testing.T) {
	left := mustBuild(t, "r", cp("A", 0, ""))
	s := Diff(left, nil)
	if s.LeftUnmatched != 2 || s.Compared != 0 {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestClearDiff(t *testing.T) {
	left := mustBuild(t, "r", cp("A", 0, "1"))
	right := mustBuild(t, "r", cp("A", 0, "2"))
	Diff(left, right)

	ClearDiff(left)
	if len(Differences(left)) != 0 {
		t.Error("expected markers to be cleared")
	}
	if len(Differences(right)) != 1 {
		t.Error("ClearDiff must only touch its own tree")
	}
}
