package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/policyguard/policyguard/internal/domain"
)

func TestHistoryLine(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []domain.HistoryEntry{
		{ID: "b", Timestamp: base.Add(time.Hour), ViolationsFound: 4},
		{ID: "a", Timestamp: base, ViolationsFound: 1},
	}

	line, ok := historyLine(entries, false)
	assert.True(t, ok)
	assert.Equal(t, "history: 2 scans, violations Increased", line)

	line, _ = historyLine(entries, true)
	assert.Equal(t, "history: 2 scans, violations Increased (scan in progress)", line)

	_, ok = historyLine(entries[:1], true)
	assert.False(t, ok)
}
