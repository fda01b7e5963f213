// Package tui renders validation reports for the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/portlint/portlint/internal/domain"
)

var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(fg)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	passStyle   = lipgloss.NewStyle().Bold(true).Foreground(success)
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(danger)
	warnStyle   = lipgloss.NewStyle().Foreground(warning)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)
)

// RenderReport renders a ValidationReport as a styled TUI string. The
// diagnostics keep their run order: they read top to bottom as a remediation
// script.
func RenderReport(report *domain.ValidationReport) string {
	var b strings.Builder

	title := headerStyle.Render("portlint") + "  " + titleStyle.Render(report.Package)
	if report.Triplet != "" {
		title += "  " + dimStyle.Render(report.Triplet)
	}
	header := title + "\n" + dimStyle.Render("post-build validation")
	if report.CommitHash != "" {
		header += "\n" + dimStyle.Render("ports @ "+shortHash(report.CommitHash))
	}
	b.WriteString(boxStyle.Render(header))
	b.WriteString("\n\n")

	for _, diag := range report.Diagnostics {
		b.WriteString(warnStyle.Render(diag))
		b.WriteString("\n")
	}
	if len(report.Diagnostics) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(renderSummary(report))
	b.WriteString("\n")

	return b.String()
}

func renderSummary(report *domain.ValidationReport) string {
	if report.ErrorCount == 0 {
		return passStyle.Render(fmt.Sprintf("✓ all %d checks passed", report.ChecksRun))
	}
	summary := failStyle.Render(fmt.Sprintf("✗ Found %d error(s) across %d checks.", report.ErrorCount, report.ChecksRun))
	if report.RecipeFile != "" {
		summary += "\n" + dimStyle.Render("Please correct the portfile: "+report.RecipeFile)
	}
	return summary
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
