// Package compare keeps the selection of two report trees in step.
//
// A Controller owns a left and a right tree, diffs them once on
// construction and then reacts to selection events from either side. With
// sync enabled, selecting a node on one side resolves its counterpart on
// the other side by name-path, expands the counterpart's ancestors and
// selects it. Every selection emits the current Pair.
package compare

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/vanderheijden86/rv/pkg/model"
	"github.com/vanderheijden86/rv/pkg/tree"
)

// ErrNilTree is returned when a controller is created without both roots
var ErrNilTree = errors.New("compare: nil tree root")

// Side identifies one of the two compared trees
type Side int

const (
	Left Side = iota
	Right
)

// Other returns the opposite side
func (s Side) Other() Side {
	if s == Left {
		return Right
	}
	return Left
}

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Pair is the current comparison: the selected node on each side
type Pair struct {
	Left  *tree.Node
	Right *tree.Node
}

// Node returns the pair member for side
func (p Pair) Node(side Side) *tree.Node {
	if side == Left {
		return p.Left
	}
	return p.Right
}

// Widget is the rendering side of the selection protocol. The controller
// calls back into it to force-expand ancestors and force-select a
// counterpart.
type Widget interface {
	ExpandNode(n *tree.Node)
	SelectNode(n *tree.Node)
}

// Option configures a Controller
type Option func(*Controller)

// WithSync sets the initial cross-tree synchronization state (default on)
func WithSync(enabled bool) Option {
	return func(c *Controller) {
		c.sync = enabled
	}
}

// WithPairHandler registers a callback invoked with every emitted pair
func WithPairHandler(fn func(Pair)) Option {
	return func(c *Controller) {
		c.onPair = fn
	}
}

// WithWidgets attaches the rendering widgets for both sides.
// Either may be nil.
func WithWidgets(left, right Widget) Option {
	return func(c *Controller) {
		c.widgets = [2]Widget{left, right}
	}
}

// WithBuildOptions passes options to tree.Build for reports given to New
// and Reload
func WithBuildOptions(opts ...tree.BuildOption) Option {
	return func(c *Controller) {
		c.buildOpts = append(c.buildOpts, opts...)
	}
}

// WithLogger routes counterpart misses and reload notes to logger
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller synchronizes selection between two trees.
// It is not safe for concurrent use; callers drive it from one event loop.
type Controller struct {
	roots    [2]*tree.Node
	selected [2]*tree.Node
	widgets  [2]Widget
	summary  tree.Summary

	sync      bool
	onPair    func(Pair)
	buildOpts []tree.BuildOption
	logger    *log.Logger
}

// New builds trees for both reports, diffs them, selects both roots and
// emits the initial pair.
func New(left, right *model.Report, opts ...Option) (*Controller, error) {
	c := newController(opts)
	leftRoot, rightRoot, err := c.build(left, right)
	if err != nil {
		return nil, err
	}
	c.reset(leftRoot, rightRoot)
	c.emit()
	return c, nil
}

// NewFromTrees is New for trees that were already built. Existing diff
// markers are cleared before the trees are diffed.
func NewFromTrees(left, right *tree.Node, opts ...Option) (*Controller, error) {
	if left == nil || right == nil {
		return nil, ErrNilTree
	}
	c := newController(opts)
	c.reset(left, right)
	c.emit()
	return c, nil
}

func newController(opts []Option) *Controller {
	c := &Controller{
		sync:   true,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) build(left, right *model.Report) (*tree.Node, *tree.Node, error) {
	leftRoot, err := tree.Build(left, c.buildOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("build left tree: %w", err)
	}
	rightRoot, err := tree.Build(right, c.buildOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("build right tree: %w", err)
	}
	return leftRoot, rightRoot, nil
}

// reset installs a fresh pair of trees, diffs them and selects both roots.
// Callers emit the resulting pair.
func (c *Controller) reset(left, right *tree.Node) {
	tree.ClearDiff(left)
	tree.ClearDiff(right)
	c.summary = tree.Diff(left, right)
	c.roots = [2]*tree.Node{left, right}
	c.selected = c.roots

	for side, w := range c.widgets {
		if w != nil {
			w.SelectNode(c.roots[side])
		}
	}
}

// Reload replaces both trees with freshly built ones. On a build error the
// current trees are kept and the error is returned. Otherwise each previous
// selection is carried over to the node with the same name-path when one
// exists, and the pair is emitted once.
func (c *Controller) Reload(left, right *model.Report) error {
	leftRoot, rightRoot, err := c.build(left, right)
	if err != nil {
		return err
	}

	previous := c.selected
	c.reset(leftRoot, rightRoot)

	for side := range previous {
		n := tree.Counterpart(c.roots[side], previous[side])
		if n == nil || n == c.roots[side] {
			continue
		}
		c.reveal(Side(side), n)
	}
	c.emit()
	c.logger.Printf("reloaded trees: %d changed, %d/%d unmatched",
		c.summary.Changed, c.summary.LeftUnmatched, c.summary.RightUnmatched)
	return nil
}

// Select handles a selection event from side. With sync enabled the
// counterpart of n in the other tree is revealed and selected; when no
// counterpart exists the other side keeps its selection. The resulting
// pair is emitted and returned.
func (c *Controller) Select(side Side, n *tree.Node) Pair {
	if n == nil {
		return c.Pair()
	}
	c.selected[side] = n

	if c.sync {
		other := side.Other()
		if match := tree.Counterpart(c.roots[other], n); match != nil {
			c.reveal(other, match)
		} else {
			c.logger.Printf("no %s counterpart for %v", other, tree.FullPath(n))
		}
	}

	c.emit()
	return c.Pair()
}

// reveal expands every ancestor of n, root first, and selects n on side
func (c *Controller) reveal(side Side, n *tree.Node) {
	w := c.widgets[side]
	ancestors := tree.Ancestors(n)
	for i := len(ancestors) - 1; i >= 0; i-- {
		a := ancestors[i]
		a.Expanded = true
		if w != nil {
			w.ExpandNode(a)
		}
	}
	c.selected[side] = n
	if w != nil {
		w.SelectNode(n)
	}
}

func (c *Controller) emit() {
	if c.onPair != nil {
		c.onPair(c.Pair())
	}
}

// SetSync enables or disables cross-tree synchronization
func (c *Controller) SetSync(enabled bool) {
	c.sync = enabled
}

// Sync reports whether cross-tree synchronization is enabled
func (c *Controller) Sync() bool {
	return c.sync
}

// Selected returns the selected node on side
func (c *Controller) Selected(side Side) *tree.Node {
	return c.selected[side]
}

// Pair returns the current selection on both sides
func (c *Controller) Pair() Pair {
	return Pair{Left: c.selected[Left], Right: c.selected[Right]}
}

// Root returns the root of the tree on side
func (c *Controller) Root(side Side) *tree.Node {
	return c.roots[side]
}

// Summary returns the result of the last diff pass
func (c *Controller) Summary() tree.Summary {
	return c.summary
}
