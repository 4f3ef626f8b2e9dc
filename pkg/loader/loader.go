// Package loader reads test-execution reports from disk.
//
// Two input formats are supported, chosen by file extension:
//   - .json: a serialized model.Report
//   - .xml:  JUnit XML, converted to a report (see ParseJUnit)
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/rv/pkg/model"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor XML
var ErrUnsupportedFormat = errors.New("unsupported report format")

// LoadReport reads and parses the report at path
func LoadReport(path string) (*model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	var report *model.Report
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		report, err = ParseReport(data)
	case ".xml":
		report, err = ParseJUnit(reportName(path), data)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return report, nil
}

// LoadPair loads the left and right reports concurrently
func LoadPair(ctx context.Context, leftPath, rightPath string) (left, right *model.Report, err error) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := loadWithContext(ctx, leftPath)
		left = r
		return err
	})
	g.Go(func() error {
		r, err := loadWithContext(ctx, rightPath)
		right = r
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func loadWithContext(ctx context.Context, path string) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadReport(path)
}

// ParseReport decodes a JSON report. Checkpoints given as a nested
// "checkpoints" hierarchy are flattened into the leveled list the tree
// builder expects.
func ParseReport(data []byte) (*model.Report, error) {
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	report.Checkpoints = flattenNested(report.Checkpoints)
	if err := report.Validate(); err != nil {
		return nil, err
	}
	return &report, nil
}

// flattenNested expands nested checkpoints in pre-order. Top-level entries
// keep their declared level; a nested child is placed one level below its
// parent. Already flat lists are returned as is.
func flattenNested(cps []model.Checkpoint) []model.Checkpoint {
	nested := false
	for i := range cps {
		if len(cps[i].Checkpoints) > 0 {
			nested = true
			break
		}
	}
	if !nested {
		return cps
	}

	var out []model.Checkpoint
	var visit func(list []model.Checkpoint, parentLevel int, declared bool)
	visit = func(list []model.Checkpoint, parentLevel int, declared bool) {
		for _, cp := range list {
			children := cp.Checkpoints
			cp.Checkpoints = nil
			if !declared {
				cp.Level = parentLevel + 1
			}
			out = append(out, cp)
			visit(children, cp.Level, false)
		}
	}
	visit(cps, -1, true)
	return out
}

func reportName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
