package loader

import (
	"fmt"
	"strings"

	"github.com/joshdk/go-junit"

	"github.com/vanderheijden86/rv/pkg/model"
)

// ParseJUnit converts JUnit XML into a report named name.
//
// Every suite becomes a checkpoint one level below its enclosing suite
// (top-level suites at level 0) and every test case a checkpoint one level
// below its suite. A test's message is its failure or error text, falling
// back to captured stdout; passing tests without output carry no message.
// The raw XML is kept on the report so two reports can be compared at the
// root.
func ParseJUnit(name string, data []byte) (*model.Report, error) {
	suites, err := junit.Ingest(data)
	if err != nil {
		return nil, fmt.Errorf("parse junit: %w", err)
	}

	report := &model.Report{
		Name: name,
		XML:  string(data),
	}
	for _, suite := range suites {
		appendSuite(report, suite, 0)
	}
	for i := range report.Checkpoints {
		report.Checkpoints[i].Index = i + 1
	}
	return report, nil
}

func appendSuite(report *model.Report, suite junit.Suite, level int) {
	cp := model.Checkpoint{
		Name:  suiteName(suite),
		Level: level,
		Type:  model.TypeStartpoint,
	}
	if summary := suiteSummary(suite.Totals); summary != "" {
		cp.Message = model.StringPtr(summary)
	}
	report.Checkpoints = append(report.Checkpoints, cp)

	for _, nested := range suite.Suites {
		appendSuite(report, nested, level+1)
	}
	for _, test := range suite.Tests {
		report.Checkpoints = append(report.Checkpoints, testCheckpoint(test, level+1))
	}
}

func testCheckpoint(test junit.Test, level int) model.Checkpoint {
	cp := model.Checkpoint{
		Name:  test.Name,
		Level: level,
		Type:  model.TypeInfopoint,
	}

	switch test.Status {
	case junit.StatusFailed, junit.StatusError:
		cp.Type = model.TypeAbortpoint
		if test.Error != nil {
			cp.Message = model.StringPtr(test.Error.Error())
			if jerr, ok := test.Error.(junit.Error); ok && strings.TrimSpace(jerr.Body) != "" {
				cp.Encoding = model.EncodingThrowable
			}
		}
	case junit.StatusSkipped:
		cp.Message = model.StringPtr("skipped: " + test.Message)
	}

	if cp.Message == nil && test.SystemOut != "" {
		cp.Message = model.StringPtr(test.SystemOut)
	}
	return cp
}

func suiteName(s junit.Suite) string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Package != "":
		return s.Package
	}
	return "suite"
}

func suiteSummary(t junit.Totals) string {
	if t.Tests == 0 {
		return ""
	}
	return fmt.Sprintf("%d tests: %d passed, %d failed, %d errors, %d skipped",
		t.Tests, t.Passed, t.Failed, t.Error, t.Skipped)
}
