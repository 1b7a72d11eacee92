package application

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/policyguard/policyguard/internal/domain"
)

// ErrNoPreviousRun is returned by Rerun when no successful run was recorded.
var ErrNoPreviousRun = errors.New("no previous run recorded; run `policyguard scan` first")

// PrepareRequest loads both files and validates them into a RunRequest.
func PrepareRequest(loader domain.CandidateLoader, policyPath, datasetPath string) (domain.RunRequest, error) {
	b := domain.NewRunRequestBuilder()

	if policyPath != "" {
		policy, err := loader.Load(policyPath)
		if err != nil {
			return domain.RunRequest{}, fmt.Errorf("loading policy: %w", err)
		}
		if err := b.SetPolicy(policy); err != nil {
			return domain.RunRequest{}, err
		}
	}

	if datasetPath != "" {
		dataset, err := loader.Load(datasetPath)
		if err != nil {
			return domain.RunRequest{}, fmt.Errorf("loading dataset: %w", err)
		}
		if err := b.SetDataset(dataset); err != nil {
			return domain.RunRequest{}, err
		}
	}

	return b.Build()
}

// RerunService repeats the last successful run with the same input files.
// The files are read again from disk and the full pipeline, isolation
// included, is executed; nothing is reused from the earlier run.
type RerunService struct {
	runs     domain.RunStore
	loader   domain.CandidateLoader
	analyzer Analyzer
}

func NewRerunService(runs domain.RunStore, loader domain.CandidateLoader, analyzer Analyzer) *RerunService {
	return &RerunService{runs: runs, loader: loader, analyzer: analyzer}
}

func (s *RerunService) Rerun(ctx context.Context) (*RunResult, error) {
	last, err := s.runs.Load()
	if err != nil {
		return nil, fmt.Errorf("loading last run: %w", err)
	}
	if last == nil || last.PolicyPath == "" || last.DatasetPath == "" {
		return nil, ErrNoPreviousRun
	}

	req, err := PrepareRequest(s.loader, last.PolicyPath, last.DatasetPath)
	if errors.Is(err, os.ErrNotExist) {
		// The recorded inputs are gone; the record can never be rerun.
		if ierr := s.runs.Invalidate(); ierr != nil {
			return nil, errors.Join(err, fmt.Errorf("invalidating last run: %w", ierr))
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return s.analyzer.RunAnalysis(ctx, req)
}
