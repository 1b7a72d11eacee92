package application

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/policyguard/policyguard/internal/domain"
)

// Analyzer runs one analysis. *ScanService satisfies it.
type Analyzer interface {
	RunAnalysis(ctx context.Context, req domain.RunRequest) (*RunResult, error)
}

// RunGate admits at most one analysis at a time. A submission made while
// another run is in flight is rejected with domain.ErrRunInFlight; it is
// neither queued nor allowed to cancel the running one.
type RunGate struct {
	analyzer Analyzer
	sem      *semaphore.Weighted
	metrics  domain.ScanMetrics
}

func NewRunGate(analyzer Analyzer, metrics domain.ScanMetrics) *RunGate {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &RunGate{
		analyzer: analyzer,
		sem:      semaphore.NewWeighted(1),
		metrics:  metrics,
	}
}

// Submit runs req if no other run is in flight.
func (g *RunGate) Submit(ctx context.Context, req domain.RunRequest) (*RunResult, error) {
	if !g.sem.TryAcquire(1) {
		g.metrics.GateRejected()
		return nil, domain.ErrRunInFlight
	}
	defer g.sem.Release(1)

	return g.analyzer.RunAnalysis(ctx, req)
}

// RunAnalysis lets a RunGate stand in wherever an Analyzer is expected.
func (g *RunGate) RunAnalysis(ctx context.Context, req domain.RunRequest) (*RunResult, error) {
	return g.Submit(ctx, req)
}

// Busy reports whether a run currently holds the gate.
func (g *RunGate) Busy() bool {
	if g.sem.TryAcquire(1) {
		g.sem.Release(1)
		return false
	}
	return true
}
