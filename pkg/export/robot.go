package export

import (
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/rv/pkg/tree"
)

// RobotDiff is the machine-readable comparison printed by --robot-diff
type RobotDiff struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Left        ReportInfo   `json:"left"`
	Right       ReportInfo   `json:"right"`
	Summary     tree.Summary `json:"summary"`
	Identical   bool         `json:"identical"`
	Differences []Difference `json:"differences"`
}

// ReportInfo identifies one side of the comparison
type ReportInfo struct {
	Name        string `json:"name"`
	StorageID   string `json:"storage_id,omitempty"`
	Checkpoints int    `json:"checkpoints"`
}

// Difference is one marked row. Paths are root first.
type Difference struct {
	State        string   `json:"state"`
	LeftPath     []string `json:"left_path,omitempty"`
	RightPath    []string `json:"right_path,omitempty"`
	LeftMessage  *string  `json:"left_message"`
	RightMessage *string  `json:"right_message"`
}

// BuildRobotDiff converts a comparison into its JSON shape
func BuildRobotDiff(c Comparison) RobotDiff {
	out := RobotDiff{
		GeneratedAt: now().UTC(),
		Left:        reportInfo(c.Left),
		Right:       reportInfo(c.Right),
		Summary:     c.Summary,
		Identical:   c.Summary.Identical(),
		Differences: []Difference{},
	}
	for _, row := range Rows(c.Left, c.Right) {
		if row.State == tree.DiffNone {
			continue
		}
		out.Differences = append(out.Differences, Difference{
			State:        row.State.String(),
			LeftPath:     RootFirstPath(row.Left),
			RightPath:    RootFirstPath(row.Right),
			LeftMessage:  contentPtr(row.Left),
			RightMessage: contentPtr(row.Right),
		})
	}
	return out
}

// WriteRobotDiff writes the comparison as indented JSON
func WriteRobotDiff(w io.Writer, c Comparison) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildRobotDiff(c))
}

func reportInfo(root *tree.Node) ReportInfo {
	if root == nil {
		return ReportInfo{}
	}
	info := ReportInfo{Name: root.Name(), Checkpoints: tree.Count(root) - 1}
	if root.Report != nil {
		info.StorageID = root.Report.StorageID
	}
	return info
}

// RootFirstPath returns the names from the root down to n
func RootFirstPath(n *tree.Node) []string {
	if n == nil {
		return nil
	}
	path := tree.FullPath(n)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func contentPtr(n *tree.Node) *string {
	if n == nil {
		return nil
	}
	content, ok := n.Content()
	if !ok {
		return nil
	}
	return &content
}
