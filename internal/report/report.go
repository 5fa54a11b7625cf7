package report

import (
	"time"

	"github.com/queensdev/devnews/internal/record"
)

// InWindow selects the records whose date falls inside the trailing window
// [now-w, now]. Records without a parseable date are excluded: a windowed
// partition must never silently contain undated rows. The same rule applies
// to every window the pipeline computes.
func InWindow(pool []record.Record, w time.Duration, now time.Time) []record.Record {
	cutoff := now.Add(-w)
	out := make([]record.Record, 0, len(pool))
	for _, r := range pool {
		if !r.HasDate() {
			continue
		}
		if r.Date.Before(cutoff) || r.Date.After(now) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Merge combines freshly windowed records into the persisted history,
// dropping duplicates by (title, link) identity. The history copy of a
// duplicate wins, preserving the original sighting (and its original
// timestamp) over any reprocessing artifact. Survivors keep concatenation
// order: history first, then new.
func Merge(history, fresh []record.Record) []record.Record {
	out := make([]record.Record, 0, len(history)+len(fresh))
	seen := make(map[string]bool, len(history)+len(fresh))
	for _, r := range append(append([]record.Record{}, history...), fresh...) {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
