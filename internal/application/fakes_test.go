package application_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/policyguard/policyguard/internal/domain"
)

// fakeBackend records every call and answers from canned responses.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	resetErr   error
	policyErr  error
	datasetErr error
	evalErr    error

	rules      int
	records    int
	violations []domain.Violation

	// block, if set, is waited on inside Reset.
	block chan struct{}
	// started is closed when Reset is entered.
	started chan struct{}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Reset(ctx context.Context) error {
	f.record("reset")
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.resetErr
}

func (f *fakeBackend) UploadPolicy(ctx context.Context, policy domain.Candidate) (*domain.PolicyUpload, error) {
	f.record("upload_policy:" + policy.Name)
	if f.policyErr != nil {
		return nil, f.policyErr
	}
	return &domain.PolicyUpload{Rules: f.rules}, nil
}

func (f *fakeBackend) UploadDataset(ctx context.Context, dataset domain.Candidate) (*domain.DatasetUpload, error) {
	f.record("upload_dataset:" + dataset.Name)
	if f.datasetErr != nil {
		return nil, f.datasetErr
	}
	return &domain.DatasetUpload{RecordsImported: f.records}, nil
}

func (f *fakeBackend) TriggerEvaluation(ctx context.Context) ([]domain.Violation, error) {
	f.record("trigger")
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	return f.violations, nil
}

// fakeHistory is a HistorySource returning canned entries or an error.
type fakeHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	err     error
	calls   int
}

func (f *fakeHistory) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.HistoryEntry(nil), f.entries...), nil
}

func (f *fakeHistory) set(entries []domain.HistoryEntry, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries, f.err = entries, err
}

func (f *fakeHistory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memSnapshot is an in-memory HistorySnapshot.
type memSnapshot struct {
	entries []domain.HistoryEntry
	saves   int
}

func (m *memSnapshot) Load() ([]domain.HistoryEntry, error) {
	return append([]domain.HistoryEntry(nil), m.entries...), nil
}

func (m *memSnapshot) Save(entries []domain.HistoryEntry) error {
	m.saves++
	m.entries = append([]domain.HistoryEntry(nil), entries...)
	return nil
}

// memRunStore is an in-memory RunStore.
type memRunStore struct {
	rec *domain.RunRecord
	err error
}

func (m *memRunStore) Load() (*domain.RunRecord, error) { return m.rec, m.err }
func (m *memRunStore) Save(r *domain.RunRecord) error   { m.rec = r; return m.err }
func (m *memRunStore) Invalidate() error                { m.rec = nil; return nil }

// fileLoader loads candidates from disk, typing them by extension.
type fileLoader struct{}

func (fileLoader) Load(path string) (domain.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Candidate{}, err
	}
	mt := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		mt = "application/pdf"
	case ".csv":
		mt = "text/csv"
	case ".txt":
		mt = "text/plain"
	}
	return domain.Candidate{Name: filepath.Base(path), MediaType: mt, Path: path, Payload: data}, nil
}

func mustRequest(policyName, datasetName string) domain.RunRequest {
	req, err := domain.NewRunRequest(
		domain.Candidate{Name: policyName, MediaType: "application/pdf", Payload: []byte("%PDF-1.4")},
		domain.Candidate{Name: datasetName, MediaType: "text/csv", Payload: []byte("Employee_ID\nE1\n")},
	)
	if err != nil {
		panic(fmt.Sprintf("building request: %v", err))
	}
	return req
}

func violations(n int) []domain.Violation {
	out := make([]domain.Violation, n)
	for i := range out {
		out[i] = domain.Violation{
			RecordID: fmt.Sprintf("E%03d", i),
			RuleID:   "R1",
			Reason:   "working_days < 20",
			Severity: domain.SeverityMedium,
		}
	}
	return out
}
