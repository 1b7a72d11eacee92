package domain

import (
	"sort"
	"strings"
	"time"
)

// Summary is the scorecard produced by one successful analysis run.
type Summary struct {
	ComplianceScore int `json:"compliance_score"`
	TotalRecords    int `json:"total_records"`
	TotalRules      int `json:"total_rules"`
	ViolationsFound int `json:"violations_found"`
}

func (s Summary) Grade() string { return GradeFor(s.ComplianceScore) }

// ViolationPenalty is the number of compliance points each violation costs.
const ViolationPenalty = 5

// ComplianceScore maps a violation count to a score in [0,100].
func ComplianceScore(violations int) int {
	if violations < 0 {
		violations = 0
	}
	return max(0, 100-ViolationPenalty*violations)
}

// BuildSummary derives a Summary from the rule count, the imported record
// count and the violations returned by evaluation.
func BuildSummary(totalRules, totalRecords int, violations []Violation) Summary {
	return Summary{
		ComplianceScore: ComplianceScore(len(violations)),
		TotalRecords:    max(0, totalRecords),
		TotalRules:      max(0, totalRules),
		ViolationsFound: len(violations),
	}
}

func GradeFor(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

// Severity classifies a violation. High outranks Medium outranks Low.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// ParseSeverity normalizes a server-provided severity. Unknown or empty
// values fall back to Medium.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "critical":
		return SeverityHigh
	case "low":
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// Rank orders severities for sorting; lower ranks sort first.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityLow:
		return 2
	default:
		return 1
	}
}

// Violation is one rule breach by one record.
type Violation struct {
	RecordID        string     `json:"record_id"`
	RuleID          string     `json:"rule_id"`
	RuleDescription string     `json:"rule_description,omitempty"`
	Reason          string     `json:"reason"`
	Severity        Severity   `json:"severity"`
	Remediation     string     `json:"remediation,omitempty"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

// SortViolations orders violations most recent first. Violations without a
// timestamp go last; ties keep their received order.
func SortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i].Timestamp, violations[j].Timestamp
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
}

// HistoryEntry is an immutable record of one past run as reported by the
// history service.
type HistoryEntry struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	PolicyFilename  string    `json:"policy_filename,omitempty"`
	DatasetFilename string    `json:"dataset_filename,omitempty"`
	TotalRecords    int       `json:"total_records"`
	ViolationsFound int       `json:"violations_found"`
	ComplianceScore *int      `json:"compliance_score,omitempty"`
}

// RunRecord is the locally kept account of the last successful run.
type RunRecord struct {
	RunID           string      `json:"run_id"`
	CompletedAt     time.Time   `json:"completed_at"`
	PolicyPath      string      `json:"policy_path"`
	DatasetPath     string      `json:"dataset_path"`
	PolicyFilename  string      `json:"policy_filename"`
	DatasetFilename string      `json:"dataset_filename"`
	Revision        string      `json:"revision,omitempty"`
	Summary         Summary     `json:"summary"`
	Violations      []Violation `json:"violations"`
}
