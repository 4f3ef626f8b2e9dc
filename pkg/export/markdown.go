package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/rv/pkg/tree"
)

// GenerateMarkdown creates a markdown report of a comparison
func GenerateMarkdown(c Comparison, title string) (string, error) {
	if c.Left == nil || c.Right == nil {
		return "", fmt.Errorf("comparison needs both trees")
	}

	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now().Format(time.RFC1123)))
	sb.WriteString(fmt.Sprintf("Comparing **%s** with **%s**\n\n", reportLabel(c.Left), reportLabel(c.Right)))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Compared**: %d\n", c.Summary.Compared))
	sb.WriteString(fmt.Sprintf("- **Changed**: %d\n", c.Summary.Changed))
	sb.WriteString(fmt.Sprintf("- **Only left**: %d\n", c.Summary.LeftUnmatched))
	sb.WriteString(fmt.Sprintf("- **Only right**: %d\n\n", c.Summary.RightUnmatched))
	if c.Summary.Identical() {
		sb.WriteString("The reports are identical.\n\n")
		return sb.String(), nil
	}

	// Side-by-side tree
	rows := Rows(c.Left, c.Right)
	sb.WriteString("## Trees\n\n")
	sb.WriteString("| # | Left | Right | State |\n")
	sb.WriteString("|---|---|---|---|\n")
	for i, row := range rows {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n",
			i, rowCell(row.Left, row.Depth), rowCell(row.Right, row.Depth), stateCell(row.State)))
	}
	sb.WriteString("\n---\n\n")

	// Differences
	sb.WriteString("## Differences\n\n")
	for _, row := range rows {
		if row.State == tree.DiffNone {
			continue
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n", rowTitle(row)))
		writeContent(&sb, "Left", row.Left)
		writeContent(&sb, "Right", row.Right)
	}

	return sb.String(), nil
}

// SaveMarkdownToFile writes the generated markdown to a file
func SaveMarkdownToFile(c Comparison, title, filename string) error {
	content, err := GenerateMarkdown(c, title)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	return os.WriteFile(filename, []byte(content), 0644)
}

func reportLabel(root *tree.Node) string {
	if root.Report != nil && root.Report.StorageID != "" {
		return fmt.Sprintf("%s (%s)", root.Name(), root.Report.StorageID)
	}
	return root.Name()
}

func rowCell(n *tree.Node, depth int) string {
	if n == nil {
		return ""
	}
	return strings.Repeat("&nbsp;&nbsp;", depth) + escapeCell(n.Name())
}

func stateCell(s tree.DiffState) string {
	switch s {
	case tree.DiffChanged:
		return "**changed**"
	case tree.DiffUnmatched:
		return "**unmatched**"
	}
	return ""
}

func rowTitle(row Row) string {
	n := row.Left
	if n == nil {
		n = row.Right
	}
	return escapeCell(strings.Join(RootFirstPath(n), " / ")) + " (" + row.State.String() + ")"
}

func writeContent(sb *strings.Builder, side string, n *tree.Node) {
	if n == nil {
		sb.WriteString(fmt.Sprintf("**%s**: _no counterpart_\n\n", side))
		return
	}
	content, ok := n.Content()
	switch {
	case !ok:
		sb.WriteString(fmt.Sprintf("**%s**: _null_\n\n", side))
	case content == "":
		sb.WriteString(fmt.Sprintf("**%s**: _empty_\n\n", side))
	default:
		sb.WriteString(fmt.Sprintf("**%s**:\n\n", side))
		sb.WriteString(Fence(content))
	}
}

// Fence wraps s in a markdown code fence longer than any backtick run inside it
func Fence(s string) string {
	ticks := "```"
	for strings.Contains(s, ticks) {
		ticks += "`"
	}
	return ticks + "\n" + strings.TrimRight(s, "\n") + "\n" + ticks + "\n\n"
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
