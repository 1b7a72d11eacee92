package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/policyguard/policyguard/internal/domain"
)

// HistoryRefresher is notified after every successful run so new runs show
// up immediately.
type HistoryRefresher interface {
	Refresh(ctx context.Context) ([]domain.HistoryEntry, error)
}

// RunResult is the output of one successful analysis run.
type RunResult struct {
	RunID      string             `json:"run_id"`
	Summary    domain.Summary     `json:"summary"`
	Violations []domain.Violation `json:"violations"`
	// HistoryErr is set when the post-run history refresh failed. The run
	// itself still succeeded.
	HistoryErr error `json:"-"`
}

// ScanService orchestrates one analysis run:
// isolate → upload policy → upload dataset → evaluate → aggregate.
// It keeps no memory of earlier runs.
type ScanService struct {
	backend  domain.ComplianceBackend
	history  HistoryRefresher
	runs     domain.RunStore
	revision domain.RevisionReader
	metrics  domain.ScanMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// ScanOption configures optional collaborators of a ScanService.
type ScanOption func(*ScanService)

func WithRunStore(store domain.RunStore) ScanOption {
	return func(s *ScanService) { s.runs = store }
}

func WithRevisionReader(r domain.RevisionReader) ScanOption {
	return func(s *ScanService) { s.revision = r }
}

func WithMetrics(m domain.ScanMetrics) ScanOption {
	return func(s *ScanService) { s.metrics = m }
}

func WithLogger(l *slog.Logger) ScanOption {
	return func(s *ScanService) { s.logger = l }
}

func NewScanService(backend domain.ComplianceBackend, history HistoryRefresher, opts ...ScanOption) *ScanService {
	s := &ScanService{
		backend: backend,
		history: history,
		metrics: nopMetrics{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "scan")
	return s
}

// RunAnalysis executes the full pipeline for req. Steps run strictly in
// order and the first failure ends the run with an *domain.OrchestrationError;
// nothing from earlier steps is returned. ctx is only honoured up to the
// isolate step. Once isolation has been requested the run goes to
// completion or failure. A request that was not produced by
// RunRequestBuilder.Build is refused before any server call.
func (s *ScanService) RunAnalysis(ctx context.Context, req domain.RunRequest) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.Valid() {
		return nil, domain.ErrMissingPolicy
	}

	runID := uuid.NewString()
	log := s.logger.With("run_id", runID)
	runCtx := domain.WithRunID(context.WithoutCancel(ctx), runID)

	policy, dataset := req.Policy(), req.Dataset()
	log.Info("analysis started", "policy", policy.Name, "dataset", dataset.Name)

	s.metrics.RunStarted()
	defer s.metrics.RunFinished()

	// 1. Isolate
	if err := s.step(log, domain.StepIsolate, func() error {
		return s.backend.Reset(runCtx)
	}); err != nil {
		return nil, s.fail(log, err)
	}

	// 2. Upload policy
	var rules *domain.PolicyUpload
	if err := s.step(log, domain.StepUploadPolicy, func() (err error) {
		rules, err = s.backend.UploadPolicy(runCtx, policy)
		return err
	}); err != nil {
		return nil, s.fail(log, err)
	}

	// 3. Upload dataset
	var records *domain.DatasetUpload
	if err := s.step(log, domain.StepUploadDataset, func() (err error) {
		records, err = s.backend.UploadDataset(runCtx, dataset)
		return err
	}); err != nil {
		return nil, s.fail(log, err)
	}

	// 4. Trigger evaluation
	var violations []domain.Violation
	if err := s.step(log, domain.StepEvaluate, func() (err error) {
		violations, err = s.backend.TriggerEvaluation(runCtx)
		return err
	}); err != nil {
		return nil, s.fail(log, err)
	}

	// 5. Aggregate
	totalRules, totalRecords := 0, 0
	if rules != nil {
		totalRules = rules.Rules
	}
	if records != nil {
		totalRecords = records.RecordsImported
	}
	if violations == nil {
		violations = []domain.Violation{}
	}
	summary := domain.BuildSummary(totalRules, totalRecords, violations)

	s.metrics.ObserveRun(domain.OutcomeSuccess)
	log.Info("analysis completed",
		"compliance_score", summary.ComplianceScore,
		"violations_found", summary.ViolationsFound,
		"total_rules", summary.TotalRules,
		"total_records", summary.TotalRecords,
	)

	result := &RunResult{RunID: runID, Summary: summary, Violations: violations}
	s.record(log, result, policy, dataset)

	if s.history != nil {
		if _, err := s.history.Refresh(runCtx); err != nil {
			log.Warn("history refresh after run failed", "error", err)
			result.HistoryErr = err
		}
	}

	return result, nil
}

// step runs one pipeline stage, timing it and converting its failure into
// an OrchestrationError for that stage.
func (s *ScanService) step(log *slog.Logger, step domain.Step, fn func() error) error {
	start := s.now()
	err := fn()
	elapsed := s.now().Sub(start)
	s.metrics.ObserveStep(step, elapsed, err)

	if err != nil {
		return stepError(step, err)
	}
	log.Debug("step completed", "step", step, "duration", elapsed)
	return nil
}

func (s *ScanService) fail(log *slog.Logger, err error) error {
	s.metrics.ObserveRun(domain.OutcomeFailure)
	log.Error("analysis failed", "error", err)
	return err
}

// record persists the run locally. Failures are logged and otherwise ignored.
func (s *ScanService) record(log *slog.Logger, result *RunResult, policy, dataset domain.Candidate) {
	if s.runs == nil {
		return
	}

	rec := &domain.RunRecord{
		RunID:           result.RunID,
		CompletedAt:     s.now().UTC(),
		PolicyPath:      policy.Path,
		DatasetPath:     dataset.Path,
		PolicyFilename:  policy.Name,
		DatasetFilename: dataset.Name,
		Summary:         result.Summary,
		Violations:      result.Violations,
	}
	if s.revision != nil && dataset.Path != "" {
		if rev, err := s.revision.Revision(dataset.Path); err == nil {
			rec.Revision = rev
		}
	}

	if err := s.runs.Save(rec); err != nil {
		log.Warn("saving run record failed", "error", err)
	}
}

func stepError(step domain.Step, err error) error {
	oe := &domain.OrchestrationError{Step: step, Err: err}
	var se *domain.StatusError
	if errors.As(err, &se) {
		oe.Status = se.Status
		oe.Detail = se.Body
	}
	return oe
}

type nopMetrics struct{}

func (nopMetrics) ObserveStep(domain.Step, time.Duration, error) {}
func (nopMetrics) ObserveRun(string)                             {}
func (nopMetrics) RunStarted()                                   {}
func (nopMetrics) RunFinished()                                  {}
func (nopMetrics) GateRejected()                                 {}
