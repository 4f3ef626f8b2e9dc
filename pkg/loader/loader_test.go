package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/rv/pkg/model"
	"github.com/vanderheijden86/rv/pkg/tree"
)

const sampleJSON = `{
  "name": "Checkout",
  "storageId": "42",
  "xml": "<report/>",
  "checkpoints": [
    {"name": "open", "level": 0, "type": 1, "message": "start", "index": 1},
    {"name": "pay", "level": 1, "type": 6, "message": null, "index": 2},
    {"name": "close", "level": 0, "type": 2, "message": "", "index": 3}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadReportJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "left.json", sampleJSON)

	report, err := LoadReport(path)
	if err != nil {
		t.Fatalf("LoadReport: %v", err)
	}
	if report.Name != "Checkout" || report.StorageID != "42" || report.XML != "<report/>" {
		t.Errorf("unexpected report header %+v", report)
	}
	if len(report.Checkpoints) != 3 {
		t.Fatalf("expected 3 checkpoints, got %d", len(report.Checkpoints))
	}
	if report.Checkpoints[1].Message != nil {
		t.Errorf("null message should stay nil")
	}
	if m := report.Checkpoints[2].Message; m == nil || *m != "" {
		t.Errorf("empty message should be a non-nil empty string")
	}
	if report.Checkpoints[0].Type != model.TypeStartpoint {
		t.Errorf("type = %v, want startpoint", report.Checkpoints[0].Type)
	}
}

func TestParseReportFlattensNested(t *testing.T) {
	data := []byte(`{"name": "n", "checkpoints": [
		{"name": "a", "checkpoints": [
			{"name": "b", "checkpoints": [{"name": "c"}]},
			{"name": "d"}
		]},
		{"name": "e"}
	]}`)

	report, err := ParseReport(data)
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}

	var got []string
	for _, cp := range report.Checkpoints {
		got = append(got, fmt.Sprintf("%s:%d", cp.Name, cp.Level))
		if len(cp.Checkpoints) != 0 {
			t.Errorf("%s still has nested checkpoints", cp.Name)
		}
	}
	if strings.Join(got, " ") != "a:0 b:1 c:2 d:1 e:0" {
		t.Errorf("flattened = %v", got)
	}
}

func TestParseReportMixedKeepsDeclaredLevels(t *testing.T) {
	data := []byte(`{"name": "n", "checkpoints": [
		{"name": "a", "level": 0},
		{"name": "b", "level": 1, "checkpoints": [{"name": "c"}]},
		{"name": "d", "level": 1}
	]}`)

	report, err := ParseReport(data)
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}

	var got []string
	for _, cp := range report.Checkpoints {
		got = append(got, fmt.Sprintf("%s:%d", cp.Name, cp.Level))
	}
	if strings.Join(got, " ") != "a:0 b:1 c:2 d:1" {
		t.Errorf("flattened = %v", got)
	}

	root, err := tree.Build(report)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(root.Items) != 1 || len(root.Items[0].Items) != 2 {
		t.Errorf("declared levels should nest b and d under a, root has %d children", len(root.Items))
	}
}

func TestParseReportInvalid(t *testing.T) {
	if _, err := ParseReport([]byte(`{"name": `)); err == nil {
		t.Error("expected a decode error")
	}
	if _, err := ParseReport([]byte(`{"name": ""}`)); err == nil {
		t.Error("expected a validation error for an unnamed report")
	}
}

func TestLoadReportErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadReport(writeFile(t, dir, "report.txt", "x"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	missing := filepath.Join(dir, "missing.json")
	_, err = LoadReport(missing)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), missing) {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestLoadPair(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.json", sampleJSON)
	right := writeFile(t, dir, "right.json", strings.Replace(sampleJSON, `"start"`, `"restart"`, 1))

	l, r, err := LoadPair(context.Background(), left, right)
	if err != nil {
		t.Fatalf("LoadPair: %v", err)
	}
	if l.Checkpoints[0].MessageText() != "start" || r.Checkpoints[0].MessageText() != "restart" {
		t.Errorf("reports loaded into the wrong sides")
	}

	if _, _, err := LoadPair(context.Background(), left, filepath.Join(dir, "nope.json")); err == nil {
		t.Error("expected an error when one side is missing")
	}
}

func TestLoadPairCanceled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "left.json", sampleJSON)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := LoadPair(ctx, path, path); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestLoadedReportBuilds checks the loaded shape is accepted by the tree builder
func TestLoadedReportBuilds(t *testing.T) {
	report, err := ParseReport([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	root, err := tree.Build(report)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tree.Count(root) != 4 {
		t.Errorf("expected 4 nodes, got %d", tree.Count(root))
	}
}
