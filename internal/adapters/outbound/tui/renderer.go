package tui

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/camelcase"
	"github.com/policyguard/policyguard/internal/domain"
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

	gradeColors = map[string]lipgloss.Color{
		"A+": success,
		"A":  success,
		"B":  lipgloss.Color("#A3E635"), // lime
		"C":  warning,
		"D":  lipgloss.Color("#FB923C"), // orange
		"F":  danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	highTagStyle  = lipgloss.NewStyle().Foreground(danger).Bold(true)
	medTagStyle   = lipgloss.NewStyle().Foreground(warning).Bold(true)
	lowTagStyle   = lipgloss.NewStyle().Foreground(info)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderSummary formats the outcome of one run: the score box, the counts
// and the violations grouped by severity.
func RenderSummary(summary domain.Summary, violations []domain.Violation) string {
	var b strings.Builder

	grade := summary.Grade()
	title := headerStyle.Render("policyguard")
	subtitle := dimStyle.Render("Compliance Score")
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(grade)).
		Render(fmt.Sprintf("%d / 100", summary.ComplianceScore))
	gradeStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(grade)).
		Render(grade)

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + gradeStyled))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(padRight("Rules", 20)), coloredCount(summary.TotalRules, false))
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(padRight("Records", 20)), coloredCount(summary.TotalRecords, false))
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(padRight("Violations", 20)), coloredCount(summary.ViolationsFound, true))

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")
	b.WriteString(RenderViolations(violations))
	return b.String()
}

// RenderViolations lists violations, most severe first.
func RenderViolations(violations []domain.Violation) string {
	if len(violations) == 0 {
		return "  " + passStyle.Render("No violations found.") + "\n"
	}

	sorted := make([]domain.Violation, len(violations))
	copy(sorted, violations)
	sortBySeverity(sorted)

	var b strings.Builder
	high, medium, low := countSeverities(sorted)
	b.WriteString("  ")
	b.WriteString(titleStyle.Render("Violations"))
	b.WriteString("  ")
	if high > 0 {
		b.WriteString(highTagStyle.Render(fmt.Sprintf("%d high", high)) + "  ")
	}
	if medium > 0 {
		b.WriteString(medTagStyle.Render(fmt.Sprintf("%d medium", medium)) + "  ")
	}
	if low > 0 {
		b.WriteString(lowTagStyle.Render(fmt.Sprintf("%d low", low)))
	}
	b.WriteString("\n\n")

	for _, v := range sorted {
		renderViolation(&b, v)
	}
	return b.String()
}

func renderViolation(b *strings.Builder, v domain.Violation) {
	rule := v.RuleDescription
	if rule == "" {
		rule = HumanizeRuleID(v.RuleID)
	}
	fmt.Fprintf(b, "    %s %s %s\n",
		severityTag(v.Severity),
		labelStyle.Render("record "+v.RecordID),
		dimStyle.Render(rule),
	)
	if v.Reason != "" {
		fmt.Fprintf(b, "          %s\n", dimStyle.Render(v.Reason))
	}
	if v.Remediation != "" {
		fmt.Fprintf(b, "          %s %s\n", faintStyle.Render("fix:"), dimStyle.Render(v.Remediation))
	}
}

func severityTag(s domain.Severity) string {
	switch s {
	case domain.SeverityHigh:
		return highTagStyle.Render("high")
	case domain.SeverityLow:
		return lowTagStyle.Render("low ")
	default:
		return medTagStyle.Render("med ")
	}
}

func countSeverities(violations []domain.Violation) (high, medium, low int) {
	for _, v := range violations {
		switch v.Severity {
		case domain.SeverityHigh:
			high++
		case domain.SeverityLow:
			low++
		default:
			medium++
		}
	}
	return
}

func sortBySeverity(violations []domain.Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Severity.Rank() < violations[j].Severity.Rank()
	})
}

// HumanizeRuleID splits identifiers such as "minWorkingDays" or
// "max_overtime_hours" into words. IDs without lowercase letters are
// returned unchanged.
func HumanizeRuleID(id string) string {
	if !strings.ContainsFunc(id, unicode.IsLower) {
		return id
	}
	var words []string
	for _, part := range strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' || r == ' ' }) {
		for _, w := range camelcase.Split(part) {
			if strings.TrimSpace(w) != "" {
				words = append(words, strings.ToLower(w))
			}
		}
	}
	return strings.Join(words, " ")
}

// RenderHistory formats past runs, newest first, marking each row with the
// change in violations against the run before it.
func RenderHistory(entries []domain.HistoryEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No scan history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Scan History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		score := domain.ComplianceScore(e.ViolationsFound)
		if e.ComplianceScore != nil {
			score = *e.ComplianceScore
		}
		scoreStyled := lipgloss.NewStyle().
			Foreground(scoreColor(score)).
			Render(fmt.Sprintf("%d/100", score))

		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(e.Timestamp.Format("2006-01-02 15:04")),
			scoreStyled,
			fmt.Sprintf("%d violations", e.ViolationsFound),
			faintStyle.Render(e.DatasetFilename),
		)

		if i+1 < len(entries) {
			diff := e.ViolationsFound - entries[i+1].ViolationsFound
			if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			} else if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			}
		}

		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderTrend formats the comparison of the two newest runs. ok is false
// when there is not enough history.
func RenderTrend(trend domain.Trend, ok bool) string {
	if !ok {
		return "  " + dimStyle.Render("Not enough history to compute a trend.") + "\n"
	}
	var styled string
	switch trend.Direction {
	case domain.DirectionUp:
		styled = failStyle.Render(fmt.Sprintf("↑ %s by %d", trend.Label(), trend.Magnitude))
	case domain.DirectionDown:
		styled = passStyle.Render(fmt.Sprintf("↓ %s by %d", trend.Label(), trend.Magnitude))
	default:
		styled = dimStyle.Render("→ " + trend.Label())
	}
	return fmt.Sprintf("  %s %s\n", labelStyle.Render("Violations"), styled)
}

func coloredCount(n int, badWhenPositive bool) string {
	style := dimStyle
	if badWhenPositive {
		style = passStyle
		if n > 0 {
			style = failStyle
		}
	}
	return style.Render(fmt.Sprintf("%d", n))
}

func scoreColor(score int) lipgloss.Color {
	switch {
	case score >= 80:
		return success
	case score >= 60:
		return lipgloss.Color("#A3E635") // lime
	case score >= 40:
		return warning
	default:
		return danger
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func gradeColor(grade string) lipgloss.Color {
	if c, ok := gradeColors[grade]; ok {
		return c
	}
	return fg
}
