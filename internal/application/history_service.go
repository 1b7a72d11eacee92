package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/policyguard/policyguard/internal/domain"
)

// HistoryService is the client-side view of past runs. It holds the last
// successfully fetched list, sorted newest first.
type HistoryService struct {
	source   domain.HistorySource
	snapshot domain.HistorySnapshot
	logger   *slog.Logger

	mu      sync.RWMutex
	entries []domain.HistoryEntry
}

// NewHistoryService creates a HistoryService. snapshot may be nil.
func NewHistoryService(source domain.HistorySource, snapshot domain.HistorySnapshot, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryService{
		source:   source,
		snapshot: snapshot,
		logger:   logger.With("component", "history"),
	}
}

// Prime seeds the held list from the snapshot, if one was saved earlier.
func (h *HistoryService) Prime() error {
	if h.snapshot == nil {
		return nil
	}
	entries, err := h.snapshot.Load()
	if err != nil {
		return err
	}
	domain.SortHistory(entries)

	h.mu.Lock()
	h.entries = entries
	h.mu.Unlock()
	return nil
}

// Refresh fetches the run list and replaces the held one. On failure the
// held list is kept and returned alongside a *domain.HistoryFetchError.
func (h *HistoryService) Refresh(ctx context.Context) ([]domain.HistoryEntry, error) {
	fetched, err := h.source.ListHistory(ctx)
	if err != nil {
		h.logger.Warn("history fetch failed", "error", err)
		return h.Entries(), &domain.HistoryFetchError{Err: err}
	}

	entries := make([]domain.HistoryEntry, len(fetched))
	copy(entries, fetched)
	domain.SortHistory(entries)

	h.mu.Lock()
	h.entries = entries
	h.mu.Unlock()

	if h.snapshot != nil {
		if err := h.snapshot.Save(entries); err != nil {
			h.logger.Warn("saving history snapshot failed", "error", err)
		}
	}

	h.logger.Debug("history refreshed", "entries", len(entries))
	return h.Entries(), nil
}

// Entries returns a copy of the held list, newest first.
func (h *HistoryService) Entries() []domain.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Trend compares the two newest held entries.
func (h *HistoryService) Trend() (domain.Trend, bool) {
	return domain.ComputeTrend(h.Entries())
}
