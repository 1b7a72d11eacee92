package domain

import (
	"context"
	"time"
)

// PolicyUpload is what the policy-parsing service reports for an uploaded
// document.
type PolicyUpload struct {
	PolicyID string `json:"policy_id,omitempty"`
	Rules    int    `json:"rules"`
}

// DatasetUpload is what the ingestion service reports for an uploaded
// dataset.
type DatasetUpload struct {
	RecordsImported   int `json:"records_imported"`
	DuplicatesSkipped int `json:"duplicates_skipped,omitempty"`
}

// ComplianceBackend is the remote rule engine driven by one analysis run.
// Each call blocks until the server's response has been fully received.
type ComplianceBackend interface {
	Reset(ctx context.Context) error
	UploadPolicy(ctx context.Context, policy Candidate) (*PolicyUpload, error)
	UploadDataset(ctx context.Context, dataset Candidate) (*DatasetUpload, error)
	TriggerEvaluation(ctx context.Context) ([]Violation, error)
}

// HistorySource lists past runs in whatever order the server keeps them.
type HistorySource interface {
	ListHistory(ctx context.Context) ([]HistoryEntry, error)
}

// ViolationSource lists every violation the service has recorded. A
// non-empty recordID restricts the list to that record.
type ViolationSource interface {
	ListViolations(ctx context.Context, recordID string) ([]Violation, error)
}

// HistorySnapshot persists the last successfully fetched history list.
type HistorySnapshot interface {
	Load() ([]HistoryEntry, error)
	Save(entries []HistoryEntry) error
}

// RunStore persists the last successful run. Load returns (nil, nil) when
// nothing has been recorded.
type RunStore interface {
	Load() (*RunRecord, error)
	Save(record *RunRecord) error
	Invalidate() error
}

// CandidateLoader reads a local file into a Candidate, declaring its media
// type.
type CandidateLoader interface {
	Load(path string) (Candidate, error)
}

// ConfigLoader reads client configuration from path. An empty path means
// the default location.
type ConfigLoader interface {
	Load(path string) (ClientConfig, error)
}

// RevisionReader reports the VCS revision of the repository holding path.
type RevisionReader interface {
	Revision(path string) (string, error)
}

// ScanMetrics receives observations from the analysis pipeline.
type ScanMetrics interface {
	ObserveStep(step Step, d time.Duration, err error)
	ObserveRun(outcome string)
	RunStarted()
	RunFinished()
	GateRejected()
}

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
