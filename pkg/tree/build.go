package tree

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/vanderheijden86/rv/pkg/model"
)

// ErrNilReport is returned when Build is called without a report
var ErrNilReport = errors.New("nil report")

// ErrMalformedHierarchy is wrapped by every MalformedHierarchyError
var ErrMalformedHierarchy = errors.New("malformed checkpoint hierarchy")

// MalformedHierarchyError describes a checkpoint whose level cannot be
// placed in the tree: a negative level, or a jump of more than one level
// below the previous checkpoint.
type MalformedHierarchyError struct {
	Index         int    // Position in the report's checkpoint list
	Name          string // Checkpoint name
	Level         int    // Declared level
	PreviousLevel int    // Level of the checkpoint before it (-1 for the report)
}

func (e *MalformedHierarchyError) Error() string {
	if e.Level < 0 {
		return fmt.Sprintf("checkpoint %d (%q): negative level %d", e.Index, e.Name, e.Level)
	}
	return fmt.Sprintf("checkpoint %d (%q): level %d follows level %d", e.Index, e.Name, e.Level, e.PreviousLevel)
}

func (e *MalformedHierarchyError) Unwrap() error {
	return ErrMalformedHierarchy
}

// LabelOptions control the optional id prefixes on node labels
type LabelOptions struct {
	ShowStorageID       bool // Prefix the root label with "[storageId] "
	ShowCheckpointIndex bool // Prefix checkpoint labels with "index. "
}

// BuildOption configures Build
type BuildOption func(*builder)

// WithLabelOptions sets label prefixes
func WithLabelOptions(opts LabelOptions) BuildOption {
	return func(b *builder) {
		b.labels = opts
	}
}

// WithCollapsed builds every node collapsed except the root
func WithCollapsed() BuildOption {
	return func(b *builder) {
		b.collapsed = true
	}
}

type builder struct {
	labels    LabelOptions
	collapsed bool
	nextID    int
}

// Build converts a report into a rooted tree.
//
// Checkpoints are placed using only the previously placed node and the
// ancestors' levels:
//   - deeper than previous: child of previous
//   - same level: sibling of previous
//   - shallower: child of the nearest ancestor of previous at level-1
//
// The walk is linear in the number of checkpoints. Level jumps of more
// than one are rejected with a *MalformedHierarchyError.
func Build(report *model.Report, opts ...BuildOption) (*Node, error) {
	if report == nil {
		return nil, ErrNilReport
	}

	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	root := b.newNode(RootLevel)
	root.Report = report
	root.Label = b.rootLabel(report)
	root.Expanded = true

	previous := root
	for i := range report.Checkpoints {
		cp := &report.Checkpoints[i]

		node := b.newNode(cp.Level)
		node.Checkpoint = cp
		node.Label = b.checkpointLabel(cp)
		node.Icon = IconName(cp.Type, cp.Encoding, cp.Level%2 == 0)
		node.Expanded = !b.collapsed

		parent, err := findParent(previous, node)
		if err != nil {
			var mh *MalformedHierarchyError
			if errors.As(err, &mh) {
				mh.Index = i
				mh.Name = cp.Name
			}
			return nil, err
		}
		addChild(parent, node)
		previous = node
	}

	return root, nil
}

func (b *builder) newNode(level int) *Node {
	n := &Node{
		Level: level,
		ID:    b.nextID,
		Index: b.nextID,
	}
	b.nextID++
	return n
}

func (b *builder) rootLabel(r *model.Report) string {
	if b.labels.ShowStorageID {
		return "[" + r.StorageID + "] " + r.Name
	}
	return r.Name
}

func (b *builder) checkpointLabel(cp *model.Checkpoint) string {
	if b.labels.ShowCheckpointIndex {
		return strconv.Itoa(cp.Index) + ". " + cp.Name
	}
	return cp.Name
}

// findParent resolves the parent of node given the previously placed node
func findParent(previous, node *Node) (*Node, error) {
	if node.Level < 0 {
		return nil, &MalformedHierarchyError{Level: node.Level, PreviousLevel: previous.Level}
	}

	switch {
	case node.Level > previous.Level:
		if node.Level != previous.Level+1 {
			return nil, &MalformedHierarchyError{Level: node.Level, PreviousLevel: previous.Level}
		}
		return previous, nil

	case node.Level == previous.Level:
		return previous.Parent, nil

	default:
		// Every placed node satisfies level == parent.level+1, so the
		// ancestor at node.Level-1 exists and the walk ends at the root.
		candidate := previous.Parent
		for candidate.Level != node.Level-1 {
			candidate = candidate.Parent
		}
		return candidate, nil
	}
}

func addChild(parent, node *Node) {
	node.Parent = parent
	parent.Items = append(parent.Items, node)
}
