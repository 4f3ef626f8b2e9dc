package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/rv/pkg/compare"
	"github.com/vanderheijden86/rv/pkg/config"
	"github.com/vanderheijden86/rv/pkg/export"
	"github.com/vanderheijden86/rv/pkg/loader"
	"github.com/vanderheijden86/rv/pkg/model"
	"github.com/vanderheijden86/rv/pkg/tree"
	"github.com/vanderheijden86/rv/pkg/ui"
	"github.com/vanderheijden86/rv/pkg/version"
	"github.com/vanderheijden86/rv/pkg/watcher"
)

const debugLogFile = "rv-debug.log"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	help       bool
	version    bool
	robotDiff  bool
	exportFile string
	noSync     bool
	noWatch    bool
	decode     bool
	configFile string
	debug      bool
}

func parseFlags(args []string, stderr io.Writer) (*flag.FlagSet, options, error) {
	var o options
	fs := flag.NewFlagSet("rv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.BoolVar(&o.version, "version", false, "Show version")
	fs.BoolVar(&o.robotDiff, "robot-diff", false, "Output the comparison as JSON and exit")
	fs.StringVar(&o.exportFile, "export-md", "", "Export the comparison to a Markdown file (e.g., diff.md)")
	fs.BoolVar(&o.noSync, "no-sync", false, "Start with selection sync between the trees disabled")
	fs.BoolVar(&o.noWatch, "no-watch", false, "Do not reload when the report files change")
	fs.BoolVar(&o.decode, "decode", false, "Decode Base64 messages in the detail panel")
	fs.StringVar(&o.configFile, "config", "", "Read settings from this YAML file")
	fs.BoolVar(&o.debug, "debug", false, "Write a debug log to "+debugLogFile+" (also RV_DEBUG=1)")
	err := fs.Parse(args)
	return fs, o, err
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: rv [options] LEFT RIGHT")
	fmt.Fprintln(w, "\nCompare two test-execution reports (.json or JUnit .xml) side by side.")
	fmt.Fprintln(w)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func run(args []string, stdout, stderr io.Writer) int {
	fs, opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.help {
		usage(stdout, fs)
		return 0
	}
	if opts.version {
		fmt.Fprintf(stdout, "rv %s\n", version.Version)
		return 0
	}
	if fs.NArg() != 2 {
		fmt.Fprintf(stderr, "Error: expected two report files, got %d\n\n", fs.NArg())
		usage(stderr, fs)
		return 2
	}
	leftPath, rightPath := fs.Arg(0), fs.Arg(1)

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	applyFlags(&cfg, opts)

	left, right, err := loader.LoadPair(context.Background(), leftPath, rightPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading reports: %v\n", err)
		return 1
	}

	if opts.robotDiff || opts.exportFile != "" || !isTerminal(stdout) {
		return runBatch(opts, cfg, left, right, stdout, stderr)
	}
	return runTUI(opts, cfg, left, right, leftPath, rightPath, stderr)
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.noSync {
		cfg.Sync = false
	}
	if opts.noWatch {
		cfg.Watch = false
	}
	if opts.decode {
		cfg.DecodeBase64 = true
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// runBatch handles the non-interactive outputs: robot JSON, Markdown export
// and the plain summary used when stdout is not a terminal
func runBatch(opts options, cfg config.Config, left, right *model.Report, stdout, stderr io.Writer) int {
	ctrl, err := compare.New(left, right, compare.WithBuildOptions(tree.WithLabelOptions(cfg.LabelOptions())))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	c := export.Comparison{
		Left:    ctrl.Root(compare.Left),
		Right:   ctrl.Root(compare.Right),
		Summary: ctrl.Summary(),
	}

	if opts.robotDiff {
		if err := export.WriteRobotDiff(stdout, c); err != nil {
			fmt.Fprintf(stderr, "Error encoding diff: %v\n", err)
			return 1
		}
		return 0
	}

	if opts.exportFile != "" {
		title := fmt.Sprintf("Comparison: %s vs %s", left.Name, right.Name)
		if err := export.SaveMarkdownToFile(c, title, opts.exportFile); err != nil {
			fmt.Fprintf(stderr, "Error exporting: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Exported comparison to %s\n", opts.exportFile)
		return 0
	}

	printSummary(stdout, c)
	return 0
}

// printSummary writes a plain-text account of the comparison
func printSummary(w io.Writer, c export.Comparison) {
	fmt.Fprintf(w, "left:  %s (%d nodes)\n", c.Left.Label, tree.Count(c.Left))
	fmt.Fprintf(w, "right: %s (%d nodes)\n", c.Right.Label, tree.Count(c.Right))

	s := c.Summary
	if s.Identical() {
		fmt.Fprintf(w, "compared %d pairs: identical\n", s.Compared)
		return
	}
	fmt.Fprintf(w, "compared %d pairs: %d changed, %d only left, %d only right\n",
		s.Compared, s.Changed, s.LeftUnmatched, s.RightUnmatched)

	for _, row := range export.Rows(c.Left, c.Right) {
		if row.State == tree.DiffNone {
			continue
		}
		n := row.Left
		if n == nil {
			n = row.Right
		}
		fmt.Fprintf(w, "  %-9s %s\n", row.State, strings.Join(export.RootFirstPath(n), " / "))
	}
}

func runTUI(opts options, cfg config.Config, left, right *model.Report, leftPath, rightPath string, stderr io.Writer) int {
	if opts.debug || os.Getenv("RV_DEBUG") != "" {
		f, err := tea.LogToFile(debugLogFile, "rv")
		if err != nil {
			fmt.Fprintf(stderr, "Error opening debug log: %v\n", err)
			return 1
		}
		defer f.Close()
	} else {
		// The TUI owns the terminal
		log.SetOutput(io.Discard)
	}

	var w *watcher.Watcher
	if cfg.Watch {
		var err error
		w, err = watcher.New([]string{leftPath, rightPath})
		if err != nil {
			fmt.Fprintf(stderr, "Warning: file watching disabled: %v\n", err)
			w = nil
		} else {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if err := w.Start(ctx); err != nil {
				fmt.Fprintf(stderr, "Warning: file watching disabled: %v\n", err)
				w.Close()
				w = nil
			} else {
				defer w.Close()
			}
		}
	}

	m, err := ui.NewModel(left, right, ui.Options{
		Config:    cfg,
		LeftPath:  absPath(leftPath),
		RightPath: absPath(rightPath),
		Watcher:   w,
		Logger:    log.Default(),
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(stderr, "Error running rv: %v\n", err)
		return 1
	}
	return 0
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
