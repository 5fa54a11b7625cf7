package metrics

import (
	"sync"
	"time"
)

// RunStats accumulates counters for one pipeline run. The orchestrator logs
// a snapshot in the run summary; there is no long-lived metrics surface in
// a batch job.
type RunStats struct {
	mu sync.Mutex

	ItemsFetched  int64
	ItemsSkipSeen int64
	ItemsEnriched int64
	ItemsKept     int64
	SourcesOK     int64
	SourcesFailed int64
	StartedAt     time.Time
}

func NewRunStats() *RunStats {
	return &RunStats{StartedAt: time.Now()}
}

func (s *RunStats) AddFetched(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ItemsFetched += int64(n)
}

func (s *RunStats) IncrSkipSeen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ItemsSkipSeen++
}

func (s *RunStats) IncrEnriched() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ItemsEnriched++
}

func (s *RunStats) IncrKept() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ItemsKept++
}

func (s *RunStats) SourceDone(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.SourcesOK++
	} else {
		s.SourcesFailed++
	}
}

// Snapshot returns the counters as log fields.
func (s *RunStats) Snapshot() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []any{
		"fetched", s.ItemsFetched,
		"skipped_seen", s.ItemsSkipSeen,
		"enriched", s.ItemsEnriched,
		"kept", s.ItemsKept,
		"sources_ok", s.SourcesOK,
		"sources_failed", s.SourcesFailed,
		"elapsed", time.Since(s.StartedAt).Round(time.Millisecond).String(),
	}
}
