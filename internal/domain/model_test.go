package domain_test

import (
	"testing"
	"time"

	"github.com/policyguard/policyguard/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComplianceScore(t *testing.T) {
	tests := []struct {
		violations int
		score      int
	}{
		{0, 100}, {1, 95}, {4, 80}, {19, 5}, {20, 0}, {30, 0}, {1000, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.score, domain.ComplianceScore(tt.violations), "violations %d", tt.violations)
	}
}

func TestComplianceScore_NonIncreasing(t *testing.T) {
	prev := domain.ComplianceScore(0)
	for v := 1; v <= 50; v++ {
		cur := domain.ComplianceScore(v)
		assert.LessOrEqual(t, cur, prev, "violations %d", v)
		assert.GreaterOrEqual(t, cur, 0)
		prev = cur
	}
}

func TestBuildSummary_NoViolations(t *testing.T) {
	s := domain.BuildSummary(3, 500, nil)
	assert.Equal(t, domain.Summary{ComplianceScore: 100, TotalRecords: 500, TotalRules: 3, ViolationsFound: 0}, s)
}

func TestBuildSummary_WithViolations(t *testing.T) {
	violations := make([]domain.Violation, 4)
	s := domain.BuildSummary(10, 200, violations)
	assert.Equal(t, domain.Summary{ComplianceScore: 80, TotalRecords: 200, TotalRules: 10, ViolationsFound: 4}, s)
}

func TestBuildSummary_ClampsNegativeCounts(t *testing.T) {
	s := domain.BuildSummary(-1, -7, nil)
	assert.Equal(t, 0, s.TotalRules)
	assert.Equal(t, 0, s.TotalRecords)
}

func TestSummary_Grade(t *testing.T) {
	tests := []struct {
		score int
		grade string
	}{
		{95, "A+"}, {85, "A"}, {75, "B"}, {65, "C"}, {55, "D"}, {45, "F"}, {0, "F"}, {100, "A+"},
	}
	for _, tt := range tests {
		s := domain.Summary{ComplianceScore: tt.score}
		assert.Equal(t, tt.grade, s.Grade(), "score %d", tt.score)
	}
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, domain.SeverityHigh, domain.ParseSeverity("High"))
	assert.Equal(t, domain.SeverityHigh, domain.ParseSeverity(" high "))
	assert.Equal(t, domain.SeverityLow, domain.ParseSeverity("LOW"))
	assert.Equal(t, domain.SeverityMedium, domain.ParseSeverity("Medium"))
	assert.Equal(t, domain.SeverityMedium, domain.ParseSeverity(""))
	assert.Equal(t, domain.SeverityMedium, domain.ParseSeverity("whatever"))
}

func TestSeverity_Rank(t *testing.T) {
	assert.Less(t, domain.SeverityHigh.Rank(), domain.SeverityMedium.Rank())
	assert.Less(t, domain.SeverityMedium.Rank(), domain.SeverityLow.Rank())
}

func TestSortViolations_NewestFirstUntimedLast(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time { ts := t0.Add(d); return &ts }

	vs := []domain.Violation{
		{RecordID: "untimed-1"},
		{RecordID: "old", Timestamp: at(0)},
		{RecordID: "new", Timestamp: at(2 * time.Hour)},
		{RecordID: "untimed-2"},
		{RecordID: "mid", Timestamp: at(time.Hour)},
	}
	domain.SortViolations(vs)

	got := make([]string, len(vs))
	for i, v := range vs {
		got[i] = v.RecordID
	}
	assert.Equal(t, []string{"new", "mid", "old", "untimed-1", "untimed-2"}, got)
}
