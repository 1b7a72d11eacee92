package domain

import "sort"

// SortHistory orders entries most recent first. Entries with equal
// timestamps keep the order they were received in.
func SortHistory(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

// Direction is the sign of the change in violation count between the two
// newest runs.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Trend compares the two most recent history entries.
type Trend struct {
	Direction Direction `json:"direction"`
	Magnitude int       `json:"magnitude"`
}

func (t Trend) Label() string {
	switch t.Direction {
	case DirectionUp:
		return "Increased"
	case DirectionDown:
		return "Decreased"
	default:
		return "Unchanged"
	}
}

// ComputeTrend classifies history[0] against history[1]. It reports false
// when fewer than two entries exist. history must already be sorted newest
// first.
func ComputeTrend(history []HistoryEntry) (Trend, bool) {
	if len(history) < 2 {
		return Trend{}, false
	}
	diff := history[0].ViolationsFound - history[1].ViolationsFound
	switch {
	case diff > 0:
		return Trend{Direction: DirectionUp, Magnitude: diff}, true
	case diff < 0:
		return Trend{Direction: DirectionDown, Magnitude: -diff}, true
	default:
		return Trend{Direction: DirectionFlat}, true
	}
}
