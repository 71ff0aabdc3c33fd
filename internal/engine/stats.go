package engine

import (
	"time"

	"fixity/internal/model"
)

// Stats summarizes one reconciliation run.
type Stats struct {
	RunID     string
	Started   time.Time
	Elapsed   time.Duration
	FilesSeen int64
	BytesRead int64
	Counts    map[model.EventKind]int64
}

func newStats(runID string) *Stats {
	return &Stats{
		RunID:   runID,
		Started: time.Now(),
		Counts:  make(map[model.EventKind]int64),
	}
}

func (s *Stats) record(ev model.Event) {
	s.Counts[ev.Kind]++
}

// Count returns the number of events of a kind.
func (s *Stats) Count(kind model.EventKind) int64 {
	return s.Counts[kind]
}

// Anomalies returns how many events required operator attention.
func (s *Stats) Anomalies() int64 {
	var n int64
	for kind, count := range s.Counts {
		if (model.Event{Kind: kind}).Anomaly() {
			n += count
		}
	}
	return n
}
