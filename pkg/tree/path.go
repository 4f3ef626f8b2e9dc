package tree

import "slices"

// FullPath returns the name-path of n, deepest first:
// [n, parent, grandparent, ..., root]. The root's name is included.
func FullPath(n *Node) []string {
	var path []string
	for cur := n; cur != nil; cur = cur.Parent {
		path = append(path, cur.Name())
	}
	return path
}

// MatchFullPath finds the first node of the tree under root, in pre-order
// scan order, whose own FullPath equals path. Matching is by name only, so
// root may belong to a different tree than the one path came from.
// An empty path matches root. Returns nil when there is no counterpart.
func MatchFullPath(root *Node, path []string) *Node {
	if root == nil {
		return nil
	}
	if len(path) == 0 {
		return root
	}

	var found *Node
	Walk(root, func(n *Node) bool {
		if matchesPath(n, path) {
			found = n
			return false
		}
		return true
	})
	return found
}

// MatchAll returns every node under root whose FullPath equals path,
// in pre-order scan order.
func MatchAll(root *Node, path []string) []*Node {
	if root == nil {
		return nil
	}
	if len(path) == 0 {
		return []*Node{root}
	}

	var out []*Node
	Walk(root, func(n *Node) bool {
		if matchesPath(n, path) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// matchesPath verifies candidate against path, deepest name first.
// The candidate's ancestor chain must end exactly where the path ends.
func matchesPath(candidate *Node, path []string) bool {
	cur := candidate
	for _, name := range path {
		if cur == nil || cur.Name() != name {
			return false
		}
		cur = cur.Parent
	}
	return cur == nil
}

// Counterpart finds the node in the tree under otherRoot that corresponds
// to n. When several nodes share n's name-path (duplicate sibling names),
// the one reached by the same sibling positions wins; otherwise the first
// in scan order. Returns nil when no node has n's name-path.
func Counterpart(otherRoot, n *Node) *Node {
	if otherRoot == nil || n == nil {
		return nil
	}

	matches := MatchAll(otherRoot, FullPath(n))
	switch len(matches) {
	case 0:
		return nil
	case 1:
		return matches[0]
	}

	route := Route(n)
	for _, m := range matches {
		if slices.Equal(Route(m), route) {
			return m
		}
	}
	return matches[0]
}
