package tui_test

import (
	"strings"
	"testing"
	"time"

	"github.com/policyguard/policyguard/internal/adapters/outbound/tui"
	"github.com/policyguard/policyguard/internal/domain"
	"github.com/stretchr/testify/assert"
)

func sampleViolations() []domain.Violation {
	return []domain.Violation{
		{RecordID: "E-3", RuleID: "maxOvertimeHours", Reason: "overtime 62 > 40", Severity: domain.SeverityLow},
		{RecordID: "E-1", RuleID: "R1", RuleDescription: "Minimum working days", Reason: "working_days 14 < 20", Severity: domain.SeverityHigh, Remediation: "Schedule additional shifts"},
		{RecordID: "E-2", RuleID: "R2", Reason: "missing manager", Severity: domain.SeverityMedium},
	}
}

func TestRenderSummary_ContainsScoreAndCounts(t *testing.T) {
	vs := sampleViolations()
	output := tui.RenderSummary(domain.BuildSummary(4, 50, vs), vs)

	assert.Contains(t, output, "85 / 100")
	assert.Contains(t, output, "A")
	assert.Contains(t, output, "Rules")
	assert.Contains(t, output, "50")
	assert.Contains(t, output, "Schedule additional shifts")
}

func TestRenderViolations_SortedBySeverity(t *testing.T) {
	output := tui.RenderViolations(sampleViolations())

	high := strings.Index(output, "record E-1")
	med := strings.Index(output, "record E-2")
	low := strings.Index(output, "record E-3")
	assert.True(t, high >= 0 && high < med && med < low, "expected high, medium, low order:\n%s", output)
	assert.Contains(t, output, "1 high")
	assert.Contains(t, output, "1 medium")
	assert.Contains(t, output, "1 low")
}

func TestRenderViolations_DoesNotReorderInput(t *testing.T) {
	vs := sampleViolations()
	tui.RenderViolations(vs)
	assert.Equal(t, "E-3", vs[0].RecordID)
}

func TestRenderViolations_Empty(t *testing.T) {
	assert.Contains(t, tui.RenderViolations(nil), "No violations found.")
}

func TestHumanizeRuleID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"maxOvertimeHours", "max overtime hours"},
		{"min_working_days", "min working days"},
		{"SalesTarget", "sales target"},
		{"R12", "R12"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tui.HumanizeRuleID(tt.in), tt.in)
	}
}

func TestRenderHistory_ShowsDiffAgainstOlderRun(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	score := 70
	entries := []domain.HistoryEntry{
		{ID: "c", Timestamp: base.Add(48 * time.Hour), ViolationsFound: 6, ComplianceScore: &score, DatasetFilename: "march.csv"},
		{ID: "b", Timestamp: base.Add(24 * time.Hour), ViolationsFound: 2},
		{ID: "a", Timestamp: base, ViolationsFound: 5},
	}

	output := tui.RenderHistory(entries)
	assert.Contains(t, output, "Scan History")
	assert.Contains(t, output, "2026-03-03 09:00")
	assert.Contains(t, output, "70/100")
	assert.Contains(t, output, "90/100")
	assert.Contains(t, output, "march.csv")
	assert.Contains(t, output, "↑4")
	assert.Contains(t, output, "↓3")
}

func TestRenderHistory_Empty(t *testing.T) {
	assert.Contains(t, tui.RenderHistory(nil), "No scan history found.")
}

func TestRenderTrend(t *testing.T) {
	assert.Contains(t, tui.RenderTrend(domain.Trend{Direction: domain.DirectionUp, Magnitude: 3}, true), "Increased by 3")
	assert.Contains(t, tui.RenderTrend(domain.Trend{Direction: domain.DirectionDown, Magnitude: 2}, true), "Decreased by 2")
	assert.Contains(t, tui.RenderTrend(domain.Trend{Direction: domain.DirectionFlat}, true), "Unchanged")
	assert.Contains(t, tui.RenderTrend(domain.Trend{}, false), "Not enough history")
}
