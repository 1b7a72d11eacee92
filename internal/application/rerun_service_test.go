package application_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/policyguard/policyguard/internal/application"
	"github.com/policyguard/policyguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInputs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	policy := filepath.Join(dir, "handbook.pdf")
	dataset := filepath.Join(dir, "employees.csv")
	require.NoError(t, os.WriteFile(policy, []byte("%PDF-1.4 policy"), 0644))
	require.NoError(t, os.WriteFile(dataset, []byte("Employee_ID,Name\nE1,Ann\n"), 0644))
	return policy, dataset
}

func TestPrepareRequest(t *testing.T) {
	policy, dataset := writeInputs(t)

	req, err := application.PrepareRequest(fileLoader{}, policy, dataset)
	require.NoError(t, err)
	assert.Equal(t, "handbook.pdf", req.Policy().Name)
	assert.Equal(t, policy, req.Policy().Path)
	assert.Equal(t, "employees.csv", req.Dataset().Name)
}

func TestPrepareRequest_RejectsWrongType(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0644))
	_, dataset := writeInputs(t)

	_, err := application.PrepareRequest(fileLoader{}, notes, dataset)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "only PDF files accepted")
}

func TestPrepareRequest_MissingFile(t *testing.T) {
	_, err := application.PrepareRequest(fileLoader{}, "/does/not/exist.pdf", "/nope.csv")
	assert.ErrorContains(t, err, "loading policy")
}

func TestPrepareRequest_MissingSlot(t *testing.T) {
	policy, _ := writeInputs(t)
	_, err := application.PrepareRequest(fileLoader{}, policy, "")
	assert.ErrorIs(t, err, domain.ErrMissingDataset)
}

func TestRerunService_NoPreviousRun(t *testing.T) {
	backend := &fakeBackend{}
	svc := application.NewRerunService(&memRunStore{}, fileLoader{}, newScan(backend, &fakeHistory{}))

	_, err := svc.Rerun(context.Background())
	assert.ErrorIs(t, err, application.ErrNoPreviousRun)
	assert.Empty(t, backend.Calls())
}

func TestRerunService_RepeatsFullPipeline(t *testing.T) {
	policy, dataset := writeInputs(t)
	runs := &memRunStore{}
	backend := &fakeBackend{rules: 4, records: 10}
	scan := newScan(backend, &fakeHistory{}, application.WithRunStore(runs))

	req, err := application.PrepareRequest(fileLoader{}, policy, dataset)
	require.NoError(t, err)
	first, err := scan.RunAnalysis(context.Background(), req)
	require.NoError(t, err)

	svc := application.NewRerunService(runs, fileLoader{}, scan)
	second, err := svc.Rerun(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Summary, second.Summary)
	assert.NotEqual(t, first.RunID, second.RunID)
	calls := backend.Calls()
	require.Len(t, calls, 8)
	assert.Equal(t, "reset", calls[4])
	assert.Equal(t, "upload_policy:handbook.pdf", calls[5])
}

func TestRerunService_InputsRemovedFromDisk(t *testing.T) {
	runs := &memRunStore{rec: &domain.RunRecord{PolicyPath: "/gone/p.pdf", DatasetPath: "/gone/d.csv"}}
	svc := application.NewRerunService(runs, fileLoader{}, newScan(&fakeBackend{}, &fakeHistory{}))

	_, err := svc.Rerun(context.Background())
	assert.ErrorContains(t, err, "loading policy")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, runs.rec, "a record whose inputs are gone is dropped")

	_, err = svc.Rerun(context.Background())
	assert.ErrorIs(t, err, application.ErrNoPreviousRun)
}

func TestRerunService_InvalidInputKeepsRecord(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0644))
	_, dataset := writeInputs(t)
	rec := &domain.RunRecord{PolicyPath: notes, DatasetPath: dataset}
	runs := &memRunStore{rec: rec}
	svc := application.NewRerunService(runs, fileLoader{}, newScan(&fakeBackend{}, &fakeHistory{}))

	_, err := svc.Rerun(context.Background())
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Same(t, rec, runs.rec)
}
