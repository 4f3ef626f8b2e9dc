// Package tree rebuilds checkpoint trees from a report's flat, leveled
// checkpoint list and compares two such trees.
//
// The package is pure: no I/O, no goroutines. Trees are built once per
// report load and only their Expanded and Diff fields change afterwards.
package tree

import "github.com/vanderheijden86/rv/pkg/model"

// RootLevel is the level of the synthetic report root
const RootLevel = -1

// DiffState records how a node compared against its positional counterpart
type DiffState int

const (
	DiffNone      DiffState = iota // Equal to its counterpart (or not diffed)
	DiffChanged                    // Counterpart exists but content differs
	DiffUnmatched                  // No counterpart at this position
)

// String returns a short name for the state
func (d DiffState) String() string {
	switch d {
	case DiffChanged:
		return "changed"
	case DiffUnmatched:
		return "unmatched"
	default:
		return "none"
	}
}

// Node is one element of a built report tree.
// Exactly one of Report and Checkpoint is set.
type Node struct {
	Label string // Display string, optionally prefixed with an id
	Icon  string // Presentation-only icon name, see IconName
	Level int    // RootLevel for the report, checkpoint level otherwise
	ID    int    // Unique within a tree, assigned in build order
	Index int    // Pre-order position (root = 0)

	Report     *model.Report     // Shared with the loaded report
	Checkpoint *model.Checkpoint // Shared with the loaded report

	Items    []*Node // Children in encounter order
	Parent   *Node   // Back-reference for navigation, nil for the root
	Expanded bool    // Initial expand state for the rendering side
	Diff     DiffState
}

// Name returns the underlying report or checkpoint name (never the label)
func (n *Node) Name() string {
	switch {
	case n == nil:
		return ""
	case n.Checkpoint != nil:
		return n.Checkpoint.Name
	case n.Report != nil:
		return n.Report.Name
	}
	return ""
}

// IsReport returns true if the node wraps the report itself
func (n *Node) IsReport() bool {
	return n.Report != nil
}

// IsRoot returns true if the node has no parent
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// Different returns true if the node was marked by Diff
func (n *Node) Different() bool {
	return n.Diff != DiffNone
}

// Content returns the field that Diff compares: the raw XML for report
// nodes and the message for checkpoint nodes. ok is false for a null message.
func (n *Node) Content() (content string, ok bool) {
	if n.Checkpoint != nil {
		if n.Checkpoint.Message == nil {
			return "", false
		}
		return *n.Checkpoint.Message, true
	}
	if n.Report != nil {
		return n.Report.XML, true
	}
	return "", false
}

// Walk visits root and its descendants in pre-order.
// Returning false from fn stops the walk.
func Walk(root *Node, fn func(*Node) bool) {
	walk(root, fn)
}

func walk(n *Node, fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Items {
		if !walk(child, fn) {
			return false
		}
	}
	return true
}

// Flatten returns every node of the tree in pre-order
func Flatten(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Count returns the number of nodes in the tree
func Count(root *Node) int {
	count := 0
	Walk(root, func(*Node) bool {
		count++
		return true
	})
	return count
}

// Ancestors returns the ancestors of n from its parent up to the root
func Ancestors(n *Node) []*Node {
	var out []*Node
	for p := n.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// Depth returns the number of ancestors of n (0 for the root)
func Depth(n *Node) int {
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

// Route returns the sibling positions leading from the root to n
func Route(n *Node) []int {
	var route []int
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		route = append(route, siblingIndex(cur))
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}

func siblingIndex(n *Node) int {
	for i, sibling := range n.Parent.Items {
		if sibling == n {
			return i
		}
	}
	return -1
}
