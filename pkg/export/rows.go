// Package export renders a two-report comparison for use outside the TUI:
// Markdown for humans and JSON for scripts.
package export

import (
	"time"

	"github.com/vanderheijden86/rv/pkg/tree"
)

// now is replaced in tests
var now = time.Now

// Comparison is a diffed pair of trees
type Comparison struct {
	Left    *tree.Node
	Right   *tree.Node
	Summary tree.Summary
}

// Row is one line of the side-by-side view. Aligned nodes share a row;
// nodes without a counterpart position have a nil partner.
type Row struct {
	Depth int
	Left  *tree.Node
	Right *tree.Node
	State tree.DiffState
}

// Rows lays out both trees side by side in the positional order used by
// tree.Diff.
func Rows(left, right *tree.Node) []Row {
	var rows []Row
	var pair func(l, r *tree.Node, depth int)
	pair = func(l, r *tree.Node, depth int) {
		rows = append(rows, Row{Depth: depth, Left: l, Right: r, State: rowState(l, r)})

		var lItems, rItems []*tree.Node
		if l != nil {
			lItems = l.Items
		}
		if r != nil {
			rItems = r.Items
		}
		for i := 0; i < max(len(lItems), len(rItems)); i++ {
			var lc, rc *tree.Node
			if i < len(lItems) {
				lc = lItems[i]
			}
			if i < len(rItems) {
				rc = rItems[i]
			}
			pair(lc, rc, depth+1)
		}
	}
	if left != nil || right != nil {
		pair(left, right, 0)
	}
	return rows
}

func rowState(l, r *tree.Node) tree.DiffState {
	switch {
	case l == nil || r == nil:
		return tree.DiffUnmatched
	case l.Different() || r.Different():
		return max(l.Diff, r.Diff)
	}
	return tree.DiffNone
}
