package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sitegate/sitegate/internal/domain"
)

var tierColors = []lipgloss.Color{success, lipgloss.Color("#A3E635"), warning, lipgloss.Color("#FB923C")}

func tierStyle(tier int) lipgloss.Style {
	c := dim
	if tier >= 0 && tier < len(tierColors) {
		c = tierColors[tier]
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

// RenderSearchResults renders ranked results, one block per result.
func RenderSearchResults(query string, results []domain.RankedResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s\n\n", sectionHeaderStyle.Render("Search"), dimStyle.Render(fmt.Sprintf("%q  (%d)", query, len(results))))

	if len(results) == 0 {
		b.WriteString("  " + dimStyle.Render("No results.") + "\n")
		return b.String()
	}

	for i, r := range results {
		title := r.Title
		if title == "" {
			title = r.Route
		}
		score := "-"
		if r.Score != nil {
			score = fmt.Sprintf("%.2f", *r.Score)
		}
		fmt.Fprintf(&b, "  %s %s  %s\n", dimStyle.Render(fmt.Sprintf("%2d.", i+1)),
			titleStyle.Render(title), tierStyle(r.Tier).Render(fmt.Sprintf("T%d", r.Tier)))
		fmt.Fprintf(&b, "      %s  %s\n", fileStyle.Render(r.Route), faintStyle.Render("score "+score))
		if r.Excerpt != "" {
			fmt.Fprintf(&b, "      %s\n", hintStyle.Render(r.Excerpt))
		}
	}
	return b.String()
}

// RenderRoute renders the normalised route and tier of one URL.
func RenderRoute(url, route string, tier int) string {
	return fmt.Sprintf("  %s  %s\n  %s %s\n", dimStyle.Render(url), faintStyle.Render("→"),
		titleStyle.Render(route), tierStyle(tier).Render(fmt.Sprintf("tier %d", tier)))
}

// RenderHistory renders run history entries, oldest first.
func RenderHistory(entries []domain.RunEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s\n\n", sectionHeaderStyle.Render("Run history"), dimStyle.Render(fmt.Sprintf("(%d)", len(entries))))
	if len(entries) == 0 {
		b.WriteString("  " + dimStyle.Render("No runs recorded.") + "\n")
		return b.String()
	}
	for _, e := range entries {
		commit := e.CommitHash
		if len(commit) > 7 {
			commit = commit[:7]
		}
		fmt.Fprintf(&b, "  %s  %-5s  %-6s  %s  %s  %s\n",
			dimStyle.Render(e.Timestamp.UTC().Format(time.RFC3339)),
			e.Gate, e.Mode,
			verdictStyle(e.Verdict).Render(fmt.Sprintf("%-4s", e.Verdict)),
			fmt.Sprintf("%3d actionable %3d waived", e.Actionable, e.Waived),
			faintStyle.Render(commit))
	}
	return b.String()
}
