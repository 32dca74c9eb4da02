// Package evidence persists gate reports as audit artifacts.
package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sitegate/sitegate/internal/domain"
)

// Writer is a file-based implementation of domain.EvidenceWriter.
type Writer struct{}

// New creates a new evidence writer.
func New() *Writer {
	return &Writer{}
}

// FileNames returns the JSON, raw and actionable-only file names for a run.
func FileNames(g domain.Gate, runID string) (jsonName, rawName, actionableName string) {
	base := fmt.Sprintf("%s-%s", g, SafeRunID(runID))
	return base + ".json", base + ".txt", base + "-actionable.txt"
}

// SafeRunID replaces characters that are not safe in file names.
func SafeRunID(runID string) string {
	if runID == "" {
		return "local"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, runID)
}

// Write stores the report under dir, creating it as needed, and returns
// the written paths in JSON, raw, actionable order.
func (w *Writer) Write(report *domain.ScanReport, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating evidence dir: %w", err)
	}

	jsonName, rawName, actionableName := FileNames(report.Gate, report.RunID)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{jsonName, append(data, '\n')},
		{rawName, []byte(RenderText(report, report.AllHits()))},
		{actionableName, []byte(RenderText(report, report.ActionableItems))},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		p := filepath.Join(dir, f.name)
		if err := os.WriteFile(p, f.data, 0644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// RenderText renders hits as one line each under a short run header.
func RenderText(report *domain.ScanReport, hits []domain.Hit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# gate=%s run=%s mode=%s verdict=%s\n", report.Gate, report.RunID, report.Mode, report.Verdict)
	fmt.Fprintf(&b, "# files=%d hits=%d actionable=%d waived=%d\n",
		report.Summary.FilesScanned, report.Summary.TotalHits, report.Summary.Actionable, report.Summary.Waived)
	for _, h := range hits {
		fmt.Fprintf(&b, "%s:%d: [%s] %s", h.File, h.Line, h.RuleID, h.Snippet)
		if h.Waived {
			fmt.Fprintf(&b, " (waived %s at line %d)", h.ReasonCode, h.WaiverLine)
		}
		if h.Suggestion != "" {
			fmt.Fprintf(&b, " (%s)", h.Suggestion)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
