// Package ui is the terminal front end: two report trees side by side with
// a detail panel below showing the content of the selected pair.
package ui

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/rv/pkg/compare"
	"github.com/vanderheijden86/rv/pkg/config"
	"github.com/vanderheijden86/rv/pkg/loader"
	"github.com/vanderheijden86/rv/pkg/model"
	"github.com/vanderheijden86/rv/pkg/tree"
	"github.com/vanderheijden86/rv/pkg/watcher"
)

// writeClipboard is replaced in tests
var writeClipboard = clipboard.WriteAll

// ReportsChangedMsg is sent when a watched report file changed on disk
type ReportsChangedMsg struct {
	Paths []string
}

// ReportsLoadedMsg carries freshly loaded reports, or the error that
// prevented loading them
type ReportsLoadedMsg struct {
	Left  *model.Report
	Right *model.Report
	Err   error
}

// WaitForChange blocks until the watcher reports a change
func WaitForChange(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return ReportsChangedMsg{Paths: change.Paths}
	}
}

// ReloadCmd loads both reports again
func ReloadCmd(leftPath, rightPath string) tea.Cmd {
	return func() tea.Msg {
		left, right, err := loader.LoadPair(context.Background(), leftPath, rightPath)
		return ReportsLoadedMsg{Left: left, Right: right, Err: err}
	}
}

// Options configures NewModel
type Options struct {
	Config        config.Config
	LeftPath      string // Reloaded on watcher changes
	RightPath     string
	Watcher       *watcher.Watcher // Optional
	Theme         *Theme           // Defaults to DefaultTheme(lipgloss.DefaultRenderer())
	MarkdownStyle string           // glamour standard style, defaults to the theme's background
	Logger        *log.Logger      // Receives sync misses and reload notes, defaults to log.Default()
}

// Model is the Bubble Tea model of the comparison view
type Model struct {
	ctrl   *compare.Controller
	panes  [2]*TreePane
	detail *DetailPane
	keys   keyMap
	help   help.Model
	theme  Theme

	focus    compare.Side
	decode   bool
	showHelp bool
	ready    bool
	width    int
	height   int

	paths   [2]string
	watcher *watcher.Watcher

	// reloading is set while a ReloadCmd is in flight; changes seen
	// meanwhile set reloadDirty and trigger one more reload when it lands
	reloading   bool
	reloadDirty bool

	status        string
	statusIsError bool
}

// NewModel builds both trees, diffs them and selects both roots
func NewModel(left, right *model.Report, opts Options) (Model, error) {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	style := opts.MarkdownStyle
	if style == "" {
		style = StyleForTheme(theme)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	m := Model{
		panes:   [2]*TreePane{NewTreePane(theme), NewTreePane(theme)},
		detail:  NewDetailPane(style, opts.Config.DecodeBase64, opts.Config.Detail.WordWrap),
		keys:    defaultKeyMap(),
		help:    help.New(),
		theme:   theme,
		focus:   compare.Left,
		decode:  opts.Config.DecodeBase64,
		paths:   [2]string{opts.LeftPath, opts.RightPath},
		watcher: opts.Watcher,
	}
	m.help.Styles.ShortKey = theme.Renderer.NewStyle().Foreground(theme.Highlight)
	m.help.Styles.ShortDesc = theme.Renderer.NewStyle().Foreground(theme.Muted)

	ctrl, err := compare.New(left, right,
		compare.WithSync(opts.Config.Sync),
		compare.WithWidgets(m.panes[compare.Left], m.panes[compare.Right]),
		compare.WithPairHandler(m.detail.SetPair),
		compare.WithBuildOptions(tree.WithLabelOptions(opts.Config.LabelOptions())),
		compare.WithLogger(logger),
	)
	if err != nil {
		return Model{}, err
	}
	m.ctrl = ctrl
	return m, nil
}

// Init starts listening for file changes when a watcher is attached
func (m Model) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return WaitForChange(m.watcher)
}

// Update handles key presses, resizes and report reloads
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case ReportsChangedMsg:
		var cmds []tea.Cmd
		if m.reloading {
			m.reloadDirty = true
		} else {
			m.reloading = true
			m.setStatus("reloading "+baseNames(msg.Paths), false)
			cmds = append(cmds, ReloadCmd(m.paths[compare.Left], m.paths[compare.Right]))
		}
		if m.watcher != nil {
			cmds = append(cmds, WaitForChange(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case ReportsLoadedMsg:
		m.reloading = false
		if m.reloadDirty {
			// The files changed again while loading; this result is stale
			m.reloadDirty = false
			m.reloading = true
			return m, ReloadCmd(m.paths[compare.Left], m.paths[compare.Right])
		}
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("reload failed: %v", msg.Err), true)
			return m, nil
		}
		if err := m.ctrl.Reload(msg.Left, msg.Right); err != nil {
			m.setStatus(fmt.Sprintf("reload failed: %v", err), true)
			return m, nil
		}
		m.setStatus("reloaded: "+summaryText(m.ctrl.Summary()), false)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Close) {
			m.showHelp = false
		}
		return m, nil
	}

	pane := m.panes[m.focus]
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.SwitchFocus):
		m.focus = m.focus.Other()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		pane.MoveUp()
	case key.Matches(msg, m.keys.Down):
		pane.MoveDown()
	case key.Matches(msg, m.keys.Collapse):
		pane.CollapseOrJumpToParent()
	case key.Matches(msg, m.keys.Expand):
		pane.ExpandOrMoveToChild()
	case key.Matches(msg, m.keys.Toggle):
		pane.ToggleExpand()
	case key.Matches(msg, m.keys.ExpandAll):
		pane.ExpandAll()
	case key.Matches(msg, m.keys.CollapseAll):
		pane.CollapseAll()
	case key.Matches(msg, m.keys.Top):
		pane.JumpToTop()
	case key.Matches(msg, m.keys.Bottom):
		pane.JumpToBottom()
	case key.Matches(msg, m.keys.PageUp):
		pane.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		pane.PageDown()
	case key.Matches(msg, m.keys.NextDiff):
		if !pane.NextDifference() {
			m.setStatus("no further differences", false)
		}
	case key.Matches(msg, m.keys.PrevDiff):
		if !pane.PrevDifference() {
			m.setStatus("no earlier differences", false)
		}
	case key.Matches(msg, m.keys.ToggleSync):
		m.ctrl.SetSync(!m.ctrl.Sync())
		if m.ctrl.Sync() {
			m.setStatus("sync on", false)
			m.ctrl.Select(m.focus, pane.SelectedNode())
		} else {
			m.setStatus("sync off", false)
		}
		return m, nil
	case key.Matches(msg, m.keys.ToggleDecode):
		m.decode = !m.decode
		m.detail.SetDecode(m.decode)
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		m.copySelection()
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.detail.ScrollDown()
		return m, nil
	case key.Matches(msg, m.keys.ScrollUp):
		m.detail.ScrollUp()
		return m, nil
	}

	m.syncSelection()
	return m, nil
}

// syncSelection reports a cursor move in the focused pane to the controller
func (m *Model) syncSelection() {
	n := m.panes[m.focus].SelectedNode()
	if n != nil && n != m.ctrl.Selected(m.focus) {
		m.ctrl.Select(m.focus, n)
	}
}

func (m *Model) copySelection() {
	n := m.ctrl.Selected(m.focus)
	text, null := m.detail.Content(n)
	if null {
		m.setStatus("nothing to copy", false)
		return
	}
	if err := writeClipboard(text); err != nil {
		m.setStatus(fmt.Sprintf("copy failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("copied %s message of %q", m.focus, n.Name()), false)
}

func (m *Model) setStatus(s string, isError bool) {
	m.status = s
	m.statusIsError = isError
}

// layout distributes the window between the trees and the detail panel
func (m *Model) layout() {
	available := m.height - 2 // header and footer
	treeOuter := max(available*3/5, 5)
	detailOuter := max(available-treeOuter, 3)

	paneWidth := m.width / 2
	for _, p := range m.panes {
		// Border on both sides, plus a title line inside
		p.SetSize(paneWidth-2, treeOuter-3)
	}
	m.detail.SetSize(m.width-2, detailOuter-2)
	m.help.Width = m.width
}

// View renders the comparison
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			RenderHelp(m.keys, m.theme, m.width))
	}

	paneWidth := m.width / 2
	panes := make([]string, 0, 2)
	for _, side := range []compare.Side{compare.Left, compare.Right} {
		panes = append(panes, m.renderPane(side, paneWidth))
	}
	trees := lipgloss.JoinHorizontal(lipgloss.Top, panes...)
	detail := m.theme.Panel.Width(m.width - 2).Render(m.detail.View())

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), trees, detail, m.renderFooter())
}

func (m Model) renderPane(side compare.Side, width int) string {
	r := m.theme.Renderer
	style := m.theme.Panel
	titleStyle := r.NewStyle().Foreground(m.theme.Muted)
	if side == m.focus {
		style = m.theme.Focused
		titleStyle = r.NewStyle().Foreground(m.theme.Primary).Bold(true)
	}

	title := titleStyle.Render(strings.ToUpper(side.String()[:1]) + side.String()[1:])
	if p := m.paths[side]; p != "" {
		title += r.NewStyle().Foreground(m.theme.Muted).Render("  " + filepath.Base(p))
	}
	return style.Width(width - 2).Render(title + "\n" + m.panes[side].View())
}

func (m Model) renderHeader() string {
	r := m.theme.Renderer
	brand := r.NewStyle().Bold(true).Foreground(m.theme.Primary).Padding(0, 1).Render("rv")

	flag := func(name string, on bool) string {
		state := "off"
		color := m.theme.Muted
		if on {
			state = "on"
			color = m.theme.Highlight
		}
		return r.NewStyle().Foreground(color).Render(name + ":" + state)
	}

	s := m.ctrl.Summary()
	summaryColor := m.theme.Unmatched
	if !s.Identical() {
		summaryColor = m.theme.Changed
	}
	summary := r.NewStyle().Foreground(summaryColor).Render(summaryText(s))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		brand, " ", flag("sync", m.ctrl.Sync()), "  ", flag("base64", m.decode), "  ", summary)
}

func (m Model) renderFooter() string {
	keys := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.status == "" {
		return keys
	}
	color := m.theme.Subtext
	if m.statusIsError {
		color = m.theme.Error
	}
	status := m.theme.Renderer.NewStyle().Foreground(color).Render(m.status)

	gap := m.width - lipgloss.Width(keys) - lipgloss.Width(status) - 1
	if gap < 1 {
		return status
	}
	return keys + strings.Repeat(" ", gap) + status
}

func summaryText(s tree.Summary) string {
	if s.Identical() {
		return "identical"
	}
	return fmt.Sprintf("%d changed, %d only left, %d only right", s.Changed, s.LeftUnmatched, s.RightUnmatched)
}

func baseNames(paths []string) string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return strings.Join(names, ", ")
}

// Focus returns the side receiving navigation keys
func (m Model) Focus() compare.Side {
	return m.focus
}

// Controller returns the selection controller
func (m Model) Controller() *compare.Controller {
	return m.ctrl
}

// Pane returns the tree pane of side
func (m Model) Pane(side compare.Side) *TreePane {
	return m.panes[side]
}

// Detail returns the detail pane
func (m Model) Detail() *DetailPane {
	return m.detail
}

// Status returns the status line message
func (m Model) Status() string {
	return m.status
}

// ShowingHelp reports whether the help overlay is open
func (m Model) ShowingHelp() bool {
	return m.showHelp
}

// Decoding reports whether Base64 messages are decoded
func (m Model) Decoding() bool {
	return m.decode
}
