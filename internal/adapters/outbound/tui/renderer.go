package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sitegate/sitegate/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	verdictColors = map[domain.Verdict]lipgloss.Color{
		domain.VerdictPass: success,
		domain.VerdictWarn: warning,
		domain.VerdictFail: danger,
	}

	dimStyle           = lipgloss.NewStyle().Foreground(dim)
	faintStyle         = lipgloss.NewStyle().Foreground(faint)
	passStyle          = lipgloss.NewStyle().Foreground(success)
	failStyle          = lipgloss.NewStyle().Foreground(danger)
	warnStyle          = lipgloss.NewStyle().Foreground(warning)
	infoStyle          = lipgloss.NewStyle().Foreground(info)
	fileStyle          = lipgloss.NewStyle().Foreground(dim)
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine      = faintStyle.Render(strings.Repeat("─", 64))
)

var gateTitles = map[domain.Gate]string{
	domain.GateTerms: "Terminology Gate",
	domain.GateRefs:  "Reference Keys Gate",
	domain.GateURLs:  "Hardcoded URLs Gate",
}

func verdictStyle(v domain.Verdict) lipgloss.Style {
	c, ok := verdictColors[v]
	if !ok {
		c = fg
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

// RenderGateReport renders a gate report. Waived hits are listed only when
// verbose is set.
func RenderGateReport(report *domain.ScanReport, verbose bool) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("sitegate")
	subtitle := dimStyle.Render(gateTitles[report.Gate] + "  ·  " + string(report.Mode))
	verdict := verdictStyle(report.Verdict).Render(string(report.Verdict))
	counts := fmt.Sprintf("%d files  ·  %d hits  ·  %d actionable  ·  %d waived",
		report.Summary.FilesScanned, report.Summary.TotalHits, report.Summary.Actionable, report.Summary.Waived)
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + verdict + "\n" + dimStyle.Render(counts)))
	b.WriteString("\n\n")

	// ── Actionable ──
	if len(report.ActionableItems) > 0 {
		fmt.Fprintf(&b, "  %s %s\n\n", sectionHeaderStyle.Render("Actionable"),
			dimStyle.Render(fmt.Sprintf("(%d)", len(report.ActionableItems))))
		marker := warnStyle.Render("●")
		if report.Mode == domain.ModeStrict {
			marker = failStyle.Render("●")
		}
		for _, h := range report.ActionableItems {
			renderHit(&b, marker, h)
		}
	} else {
		b.WriteString("  " + passStyle.Render("No actionable hits.") + "\n")
	}

	// ── Waivers ──
	if len(report.WaiverBreakdown) > 0 {
		b.WriteString("\n  " + separatorLine + "\n\n")
		fmt.Fprintf(&b, "  %s\n", sectionHeaderStyle.Render("Waivers by reason"))
		reasons := make([]string, 0, len(report.WaiverBreakdown))
		for r := range report.WaiverBreakdown {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(&b, "    %-22s %s\n", r, infoStyle.Render(fmt.Sprintf("%d", report.WaiverBreakdown[r])))
		}
	}

	if verbose && len(report.WaivedItems) > 0 {
		fmt.Fprintf(&b, "\n  %s %s\n\n", sectionHeaderStyle.Render("Waived"),
			dimStyle.Render(fmt.Sprintf("(%d)", len(report.WaivedItems))))
		for _, h := range report.WaivedItems {
			renderHit(&b, faintStyle.Render("○"), h)
		}
	}

	// ── Footer ──
	if len(report.EvidenceFiles) > 0 {
		b.WriteString("\n")
		for _, f := range report.EvidenceFiles {
			b.WriteString("  " + hintStyle.Render("evidence: "+f) + "\n")
		}
	}
	if report.Mode == domain.ModeShadow && report.Summary.Actionable > 0 {
		b.WriteString("\n  " + hintStyle.Render("Shadow mode: findings are reported but do not fail the build.") + "\n")
	}
	return b.String()
}

func renderHit(b *strings.Builder, marker string, h domain.Hit) {
	loc := fileStyle.Render(fmt.Sprintf("%s:%d", h.File, h.Line))
	fmt.Fprintf(b, "    %s %s  %s\n", marker, loc, titleStyle.Render(h.RuleID))
	if h.Snippet != "" {
		fmt.Fprintf(b, "      %s\n", dimStyle.Render(h.Snippet))
	}
	if h.Waived {
		reason := h.ReasonCode
		if h.WaiverReason != "" && h.WaiverReason != h.ReasonCode {
			reason += " (" + h.WaiverReason + ")"
		}
		fmt.Fprintf(b, "      %s\n", faintStyle.Render("waived: "+reason))
	} else if h.Suggestion != "" {
		fmt.Fprintf(b, "      %s\n", hintStyle.Render(h.Suggestion))
	} else if h.Description != "" {
		fmt.Fprintf(b, "      %s\n", hintStyle.Render(h.Description))
	}
}
