package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/policyguard/policyguard/internal/domain"
)

// ViolationService lists the violations the service has recorded across
// all runs.
type ViolationService struct {
	source domain.ViolationSource
	logger *slog.Logger
}

func NewViolationService(source domain.ViolationSource, logger *slog.Logger) *ViolationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViolationService{source: source, logger: logger.With("component", "violations")}
}

// List returns every recorded violation newest first, restricted to
// recordID when it is non-empty.
func (s *ViolationService) List(ctx context.Context, recordID string) ([]domain.Violation, error) {
	recordID = strings.TrimSpace(recordID)
	violations, err := s.source.ListViolations(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("listing violations: %w", err)
	}
	domain.SortViolations(violations)
	if violations == nil {
		violations = []domain.Violation{}
	}
	s.logger.Debug("violations listed", "record_id", recordID, "count", len(violations))
	return violations, nil
}
