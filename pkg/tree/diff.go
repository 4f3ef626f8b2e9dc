package tree

// Summary counts what a Diff pass marked
type Summary struct {
	Compared       int `json:"compared"`        // Positionally aligned pairs compared
	Changed        int `json:"changed"`         // Pairs whose content differs
	LeftUnmatched  int `json:"left_unmatched"`  // Left nodes with no counterpart position
	RightUnmatched int `json:"right_unmatched"` // Right nodes with no counterpart position
}

// Identical returns true if the diff marked nothing
func (s Summary) Identical() bool {
	return s.Changed == 0 && s.LeftUnmatched == 0 && s.RightUnmatched == 0
}

// Diff walks left and right in lock-step by sibling position and marks
// differing nodes in place.
//
// Aligned pairs with unequal content are both marked DiffChanged. Children
// beyond the shorter side's length have no counterpart: they and their
// subtrees are marked DiffUnmatched. Matching is by position, not by name,
// so an inserted step shifts every later sibling out of alignment.
func Diff(left, right *Node) Summary {
	var s Summary
	if left == nil || right == nil {
		markUnmatched(left, &s.LeftUnmatched)
		markUnmatched(right, &s.RightUnmatched)
		return s
	}
	diffPair(left, right, &s)
	return s
}

func diffPair(left, right *Node, s *Summary) {
	s.Compared++
	if contentDiffers(left, right) {
		left.Diff = DiffChanged
		right.Diff = DiffChanged
		s.Changed++
	}

	shortest := min(len(left.Items), len(right.Items))
	for i := shortest; i < len(left.Items); i++ {
		markUnmatched(left.Items[i], &s.LeftUnmatched)
	}
	for i := shortest; i < len(right.Items); i++ {
		markUnmatched(right.Items[i], &s.RightUnmatched)
	}

	for i := 0; i < shortest; i++ {
		diffPair(left.Items[i], right.Items[i], s)
	}
}

// contentDiffers compares report XML for report nodes and checkpoint
// messages otherwise. A null message differs from an empty one.
func contentDiffers(left, right *Node) bool {
	if left.IsReport() != right.IsReport() {
		return true
	}
	lc, lok := left.Content()
	rc, rok := right.Content()
	return lok != rok || lc != rc
}

// markUnmatched marks n and its descendants, none of which have a counterpart
func markUnmatched(n *Node, count *int) {
	Walk(n, func(d *Node) bool {
		d.Diff = DiffUnmatched
		*count++
		return true
	})
}

// ClearDiff resets every marker in the tree
func ClearDiff(root *Node) {
	Walk(root, func(n *Node) bool {
		n.Diff = DiffNone
		return true
	})
}

// Differences returns the marked nodes of a tree in pre-order
func Differences(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node) bool {
		if n.Different() {
			out = append(out, n)
		}
		return true
	})
	return out
}
