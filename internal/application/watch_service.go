package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/policyguard/policyguard/internal/domain"
)

// ChangeWatcher blocks until ctx is done, calling onChange (debounced) when
// one of paths is written.
type ChangeWatcher interface {
	Watch(ctx context.Context, paths []string, onChange func(path string)) error
}

// Scheduler runs jobs on a cron-style schedule.
type Scheduler interface {
	Schedule(spec string, job func()) error
	Start()
	Stop()
}

// Submitter admits analysis runs. *RunGate satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req domain.RunRequest) (*RunResult, error)
}

// WatchOptions configures one watch session.
type WatchOptions struct {
	PolicyPath      string
	DatasetPath     string
	HistorySchedule string
	RunOnStart      bool
	// OnResult, if set, receives every finished or rejected run. It may be
	// called from several goroutines at once.
	OnResult func(*RunResult, error)
	// OnHistory, if set, receives the held history after each scheduled
	// refresh, with the refresh error if any.
	OnHistory func([]domain.HistoryEntry, error)
}

// WatchService re-runs the analysis whenever an input file changes and
// refreshes history on a schedule. Runs are submitted through a Submitter,
// so a change that arrives while a run is in flight is rejected, not queued.
type WatchService struct {
	loader    domain.CandidateLoader
	submitter Submitter
	history   *HistoryService
	watcher   ChangeWatcher
	scheduler Scheduler
	logger    *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewWatchService(
	loader domain.CandidateLoader,
	submitter Submitter,
	history *HistoryService,
	watcher ChangeWatcher,
	scheduler Scheduler,
	logger *slog.Logger,
) *WatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WatchService{
		loader:    loader,
		submitter: submitter,
		history:   history,
		watcher:   watcher,
		scheduler: scheduler,
		logger:    logger.With("component", "watch"),
	}
}

// Run blocks until ctx is cancelled and every run it started has finished.
func (s *WatchService) Run(ctx context.Context, opts WatchOptions) error {
	s.mu.Lock()
	s.closed = false
	s.mu.Unlock()

	if opts.HistorySchedule != "" && s.scheduler != nil && s.history != nil {
		if err := s.scheduler.Schedule(opts.HistorySchedule, func() { s.refreshHistory(ctx, opts) }); err != nil {
			return err
		}
		s.scheduler.Start()
		defer s.scheduler.Stop()
	}

	if opts.RunOnStart {
		s.trigger(ctx, opts, "startup")
	}

	err := s.watcher.Watch(ctx, []string{opts.PolicyPath, opts.DatasetPath}, func(path string) {
		s.trigger(ctx, opts, path)
	})

	// No trigger may add to wg once Wait has started.
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
	return err
}

// trigger starts a run in the background. Submission goes through the gate,
// which rejects it if a run is already in flight.
func (s *WatchService) trigger(ctx context.Context, opts WatchOptions, cause string) {
	if ctx.Err() != nil {
		return
	}
	req, err := PrepareRequest(s.loader, opts.PolicyPath, opts.DatasetPath)
	if err != nil {
		s.logger.Warn("inputs not runnable", "cause", cause, "error", err)
		s.report(opts, nil, err)
		return
	}

	s.mu.Lock()
	if s.closed || ctx.Err() != nil {
		s.mu.Unlock()
		s.logger.Debug("change ignored, watch stopping", "cause", cause)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		res, err := s.submitter.Submit(ctx, req)
		if errors.Is(err, domain.ErrRunInFlight) {
			s.logger.Info("change ignored, run already in flight", "cause", cause)
		}
		s.report(opts, res, err)
	}()
}

func (s *WatchService) refreshHistory(ctx context.Context, opts WatchOptions) {
	entries, err := s.history.Refresh(ctx)
	if trend, ok := domain.ComputeTrend(entries); ok {
		s.logger.Info("history refreshed",
			"entries", len(entries),
			"trend", trend.Direction,
			"magnitude", trend.Magnitude,
		)
	}
	if opts.OnHistory != nil {
		opts.OnHistory(entries, err)
	}
}

func (s *WatchService) report(opts WatchOptions, res *RunResult, err error) {
	if opts.OnResult != nil {
		opts.OnResult(res, err)
	}
}
