package tree

import (
	"slices"
	"testing"

	"github.com/vanderheijden86/rv/pkg/model"
	"pgregory.net/rapid"
)

// checkpointsGen draws well-formed checkpoint lists: the first level is 0 and
// each following level is between 0 and previous+1. Names and messages come
// from small alphabets so duplicates and equal content are common.
func checkpointsGen() *rapid.Generator[[]model.Checkpoint] {
	return rapid.Custom(func(t *rapid.T) []model.Checkpoint {
		n := rapid.IntRange(0, 25).Draw(t, "count")
		cps := make([]model.Checkpoint, n)
		prev := -1
		for i := range cps {
			level := rapid.IntRange(0, prev+1).Draw(t, "level")
			cps[i] = model.Checkpoint{
				Name:  rapid.SampledFrom([]string{"a", "b", "c"}).Draw(t, "name"),
				Level: level,
				Type:  model.CheckpointType(rapid.IntRange(1, 9).Draw(t, "type")),
				Index: i,
			}
			if rapid.Bool().Draw(t, "hasMessage") {
				cps[i].Message = model.StringPtr(rapid.SampledFrom([]string{"", "x", "y"}).Draw(t, "message"))
			}
			prev = level
		}
		return cps
	})
}

func TestPropertyBuildPreservesOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		report := newReport("r", checkpointsGen().Draw(rt, "checkpoints")...)
		root, err := Build(report)
		if err != nil {
			rt.Fatalf("Build: %v", err)
		}

		flat := Flatten(root)
		if len(flat) != len(report.Checkpoints)+1 {
			rt.Fatalf("tree has %d nodes, want %d", len(flat), len(report.Checkpoints)+1)
		}
		if flat[0] != root {
			rt.Fatalf("pre-order does not start at the root")
		}
		for i, n := range flat[1:] {
			if n.Checkpoint != &report.Checkpoints[i] {
				rt.Fatalf("pre-order position %d holds %q, want checkpoint %d", i+1, n.Name(), i)
			}
		}
	})
}

func TestPropertyChildLevelIsParentPlusOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		root, err := Build(newReport("r", checkpointsGen().Draw(rt, "checkpoints")...))
		if err != nil {
			rt.Fatalf("Build: %v", err)
		}
		Walk(root, func(n *Node) bool {
			if n.Parent != nil && n.Level != n.Parent.Level+1 {
				rt.Fatalf("node %d at level %d under parent at level %d", n.Index, n.Level, n.Parent.Level)
			}
			return true
		})
	})
}

// TestPropertyPathRoundTrip resolves every node of one tree in a
// structurally identical copy.
func TestPropertyPathRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		report := newReport("r", checkpointsGen().Draw(rt, "checkpoints")...)
		left, err := Build(report)
		if err != nil {
			rt.Fatalf("Build: %v", err)
		}
		clone := report.Clone()
		right, err := Build(&clone)
		if err != nil {
			rt.Fatalf("Build: %v", err)
		}

		Walk(left, func(n *Node) bool {
			path := FullPath(n)
			m := MatchFullPath(right, path)
			if m == nil {
				rt.Fatalf("no match for %v", path)
			}
			if !slices.Equal(FullPath(m), path) {
				rt.Fatalf("match has path %v, want %v", FullPath(m), path)
			}
			if c := Counterpart(right, n); c == nil || c.Index != n.Index {
				rt.Fatalf("counterpart of node %d is not the node at the same index", n.Index)
			}
			return true
		})
	})
}

// TestPropertyDiffSymmetric compares two independent trees and checks that
// aligned pairs carry the same marker on both sides.
func TestPropertyDiffSymmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		left, err := Build(newReport("r", checkpointsGen().Draw(rt, "left")...))
		if err != nil {
			rt.Fatalf("Build: %v", err)
		}
		right, err := Build(newReport("r", checkpointsGen().Draw(rt, "right")...))
		if err != nil {
			rt.Fatalf("Build: %v", err)
		}

		s := Diff(left, right)
		pairs := 0
		var lockstep func(l, r *Node)
		lockstep = func(l, r *Node) {
			pairs++
			if l.Diff != r.Diff {
				rt.Fatalf("pair %d/%d marked %s vs %s", l.Index, r.Index, l.Diff, r.Diff)
			}
			if (l.Diff == DiffChanged) != contentDiffers(l, r) {
				rt.Fatalf("pair %d/%d: marker %s disagrees with content", l.Index, r.Index, l.Diff)
			}
			shortest := min(len(l.Items), len(r.Items))
			for i := 0; i < shortest; i++ {
				lockstep(l.Items[i], r.Items[i])
			}
		}
		lockstep(left, right)

		if pairs != s.Compared {
			rt.Fatalf("walked %d pairs, summary says %d", pairs, s.Compared)
		}
		if got := pairs + s.LeftUnmatched; got != Count(left) {
			rt.Fatalf("left: %d paired + unmatched, tree has %d", got, Count(left))
		}
		if got := pairs + s.RightUnmatched; got != Count(right) {
			rt.Fatalf("right: %d paired + unmatched, tree has %d", got, Count(right))
		}
	})
}

func TestPropertyDiffIdenticalClones(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		report := newReport("r", checkpointsGen().Draw(rt, "checkpoints")...)
		clone := report.Clone()
		left, _ := Build(report)
		right, _ := Build(&clone)

		if s := Diff(left, right); !s.Identical() {
			rt.Fatalf("clones differ: %+v", s)
		}
	})
}
