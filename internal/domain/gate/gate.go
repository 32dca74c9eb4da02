// Package gate implements the scan, classify and verdict steps shared by
// every governance gate variant.
package gate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sitegate/sitegate/internal/domain"
	"github.com/sitegate/sitegate/internal/domain/rules"
	"github.com/sitegate/sitegate/internal/domain/waiver"
)

const (
	maxSnippetLen = 160

	// ExitStrictFailure is the exit status of a failed strict run.
	ExitStrictFailure = 1
	// ExitLinksFound is the exit status of a failed strict urls run.
	ExitLinksFound = 2
)

// ScanLines matches every rule against every line of one file. Each line
// yields at most one hit per rule; waivers are resolved before returning.
func ScanLines(file string, lines []string, rs []*rules.Compiled, w *waiver.Resolver) []domain.Hit {
	var hits []domain.Hit
	for idx, line := range lines {
		for _, r := range rs {
			m, ok := r.FirstMatch(line)
			if !ok {
				continue
			}
			hit := domain.Hit{
				RuleID:      r.ID,
				Severity:    r.Severity,
				Description: r.Description,
				File:        file,
				Line:        idx + 1,
				Match:       m,
				Snippet:     snippet(line),
			}
			hits = append(hits, applyWaiver(hit, lines, idx, w))
		}
	}
	return hits
}

// applyWaiver marks hit as waived when an annotation covers lines[idx].
func applyWaiver(hit domain.Hit, lines []string, idx int, w *waiver.Resolver) domain.Hit {
	a, ok := w.Find(lines, idx)
	if !ok {
		return hit
	}
	hit.Waived = true
	hit.WaiverLine = a.Line
	hit.WaiverReason = a.Reason
	hit.ReasonCode = a.Code
	return hit
}

func snippet(line string) string {
	s := strings.TrimSpace(line)
	if len(s) <= maxSnippetLen {
		return s
	}
	cut := maxSnippetLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// BuildReport partitions hits into actionable and waived items, counts them
// and computes the verdict for mode.
func BuildReport(g domain.Gate, mode domain.Mode, hits []domain.Hit, filesScanned int) *domain.ScanReport {
	sorted := make([]domain.Hit, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.Match < b.Match
	})

	report := &domain.ScanReport{
		Gate:            g,
		Mode:            mode,
		WaiverBreakdown: make(map[string]int),
		SeverityCounts:  make(map[string]int),
		ActionableItems: []domain.Hit{},
		WaivedItems:     []domain.Hit{},
	}

	for _, h := range sorted {
		if h.Severity != "" {
			report.SeverityCounts[h.Severity]++
		}
		if h.Waived {
			report.WaivedItems = append(report.WaivedItems, h)
			report.WaiverBreakdown[h.ReasonCode]++
			continue
		}
		report.ActionableItems = append(report.ActionableItems, h)
	}

	report.Summary = domain.Summary{
		FilesScanned: filesScanned,
		TotalHits:    len(sorted),
		Actionable:   len(report.ActionableItems),
		Waived:       len(report.WaivedItems),
	}
	report.Verdict = ComputeVerdict(report.Summary.Actionable, mode)
	return report
}

// ComputeVerdict returns PASS with no actionable hits, otherwise FAIL in
// strict mode and WARN in shadow mode.
func ComputeVerdict(actionable int, mode domain.Mode) domain.Verdict {
	switch {
	case actionable == 0:
		return domain.VerdictPass
	case mode == domain.ModeStrict:
		return domain.VerdictFail
	default:
		return domain.VerdictWarn
	}
}

// ExitCode maps a verdict to a process exit status. Shadow runs always exit 0.
func ExitCode(g domain.Gate, mode domain.Mode, v domain.Verdict) int {
	if mode != domain.ModeStrict || v != domain.VerdictFail {
		return 0
	}
	if g == domain.GateURLs {
		return ExitLinksFound
	}
	return ExitStrictFailure
}
