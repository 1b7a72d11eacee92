package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/policyguard/policyguard/internal/domain"
)

type policyResponse struct {
	ID    flexID            `json:"id"`
	Rules []json.RawMessage `json:"rules"`
}

func (p policyResponse) toDomain() *domain.PolicyUpload {
	return &domain.PolicyUpload{PolicyID: string(p.ID), Rules: len(p.Rules)}
}

// datasetResponse accepts both names the ingestion service has used for the
// imported record count.
type datasetResponse struct {
	ImportedCount     *int `json:"imported_count"`
	RecordsImported   *int `json:"records_imported"`
	DuplicatesSkipped int  `json:"duplicates_skipped"`
}

func (d datasetResponse) toDomain() *domain.DatasetUpload {
	out := &domain.DatasetUpload{DuplicatesSkipped: d.DuplicatesSkipped}
	switch {
	case d.ImportedCount != nil:
		out.RecordsImported = *d.ImportedCount
	case d.RecordsImported != nil:
		out.RecordsImported = *d.RecordsImported
	}
	if out.RecordsImported < 0 {
		out.RecordsImported = 0
	}
	return out
}

type violationDTO struct {
	RecordID        flexID   `json:"record_id"`
	EmployeeID      flexID   `json:"employee_id"`
	RuleID          flexID   `json:"rule_id"`
	RuleDescription string   `json:"rule_description"`
	Reason          string   `json:"reason"`
	Description     string   `json:"description"`
	Severity        string   `json:"severity"`
	Remediation     string   `json:"remediation"`
	Timestamp       flexTime `json:"timestamp"`
}

func (v violationDTO) toDomain() domain.Violation {
	out := domain.Violation{
		RecordID:        string(v.RecordID),
		RuleID:          string(v.RuleID),
		RuleDescription: v.RuleDescription,
		Reason:          v.Reason,
		Severity:        domain.ParseSeverity(v.Severity),
		Remediation:     v.Remediation,
	}
	if out.RecordID == "" {
		out.RecordID = string(v.EmployeeID)
	}
	if out.Reason == "" {
		out.Reason = v.Description
	}
	if !v.Timestamp.IsZero() {
		ts := v.Timestamp.Time
		out.Timestamp = &ts
	}
	return out
}

type historyDTO struct {
	ReportID        flexID   `json:"report_id"`
	ID              flexID   `json:"id"`
	CreatedAt       flexTime `json:"created_at"`
	Timestamp       flexTime `json:"timestamp"`
	PolicyFilename  string   `json:"policy_filename"`
	DatasetFilename string   `json:"dataset_filename"`
	EmployeeCount   *int     `json:"employee_count"`
	TotalRecords    *int     `json:"total_records"`
	ViolationsFound int      `json:"violations_found"`
	ComplianceScore *int     `json:"compliance_score"`
}

func (h historyDTO) toDomain() domain.HistoryEntry {
	out := domain.HistoryEntry{
		ID:              string(h.ReportID),
		Timestamp:       h.CreatedAt.Time,
		PolicyFilename:  h.PolicyFilename,
		DatasetFilename: h.DatasetFilename,
		ViolationsFound: h.ViolationsFound,
		ComplianceScore: h.ComplianceScore,
	}
	if out.ID == "" {
		out.ID = string(h.ID)
	}
	if out.Timestamp.IsZero() {
		out.Timestamp = h.Timestamp.Time
	}
	switch {
	case h.EmployeeCount != nil:
		out.TotalRecords = *h.EmployeeCount
	case h.TotalRecords != nil:
		out.TotalRecords = *h.TotalRecords
	}
	return out
}

// decodeHistory accepts either a bare array or an object wrapping the array
// under "reports".
func decodeHistory(data []byte) ([]historyDTO, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var list []historyDTO
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var wrapped struct {
		Reports []historyDTO `json:"reports"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Reports, nil
}

// flexID decodes identifiers sent either as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("identifier must be a string or number: %w", err)
		}
		*f = flexID(n.String())
	}
	return nil
}

// timeLayouts covers RFC 3339 plus the zone-less forms Python servers emit.
// Zone-less values are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

type flexTime struct {
	time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		f.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			f.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
