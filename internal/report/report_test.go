package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queensdev/devnews/internal/record"
)

func rec(title, link string, date time.Time) record.Record {
	return record.Record{Title: title, Link: link, Date: date}
}

// --- Window rollup ---

func TestInWindow_Boundaries(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	w := 48 * time.Hour

	pool := []record.Record{
		rec("inside", "l1", now.Add(-47*time.Hour)),
		rec("outside", "l2", now.Add(-49*time.Hour)),
		rec("right now", "l3", now),
		rec("exactly at cutoff", "l4", now.Add(-48*time.Hour)),
		rec("future", "l5", now.Add(time.Hour)),
	}

	got := InWindow(pool, w, now)
	titles := make([]string, len(got))
	for i, r := range got {
		titles[i] = r.Title
	}
	assert.Equal(t, []string{"inside", "right now", "exactly at cutoff"}, titles)
}

func TestInWindow_UndatedRecordsExcluded(t *testing.T) {
	now := time.Now()
	pool := []record.Record{
		rec("dated", "l1", now.Add(-time.Hour)),
		rec("undated", "l2", time.Time{}),
	}

	// Same policy at every window width.
	for _, w := range []time.Duration{48 * time.Hour, 7 * 24 * time.Hour} {
		got := InWindow(pool, w, now)
		require.Len(t, got, 1)
		assert.Equal(t, "dated", got[0].Title)
	}
}

func TestInWindow_EmptyPool(t *testing.T) {
	assert.Empty(t, InWindow(nil, 48*time.Hour, time.Now()))
}

// --- Dedup merge ---

func TestMerge_FirstSeenWins(t *testing.T) {
	t1 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	history := []record.Record{rec("A", "L", t1)}
	fresh := []record.Record{rec("A", "L", t2)}

	got := Merge(history, fresh)
	require.Len(t, got, 1)
	assert.Equal(t, t1, got[0].Date, "the history copy survives a collision")
}

func TestMerge_Idempotent(t *testing.T) {
	pool := []record.Record{
		rec("A", "L1", time.Now()),
		rec("B", "L2", time.Now()),
		rec("A", "L1", time.Now()), // duplicate within the input
	}

	once := Merge(nil, pool)
	twice := Merge(once, once)
	assert.Equal(t, len(once), len(twice), "merging a collection with itself changes nothing")
	assert.Equal(t, once, twice)
}

func TestMerge_OrderIsHistoryThenNew(t *testing.T) {
	history := []record.Record{rec("old1", "h1", time.Time{}), rec("old2", "h2", time.Time{})}
	fresh := []record.Record{rec("new1", "n1", time.Time{}), rec("old1", "h1", time.Time{})}

	got := Merge(history, fresh)
	require.Len(t, got, 3)
	assert.Equal(t, "old1", got[0].Title)
	assert.Equal(t, "old2", got[1].Title)
	assert.Equal(t, "new1", got[2].Title)
}

func TestMerge_EmptySides(t *testing.T) {
	pool := []record.Record{rec("A", "L", time.Now())}
	assert.Equal(t, pool, Merge(nil, pool))
	assert.Equal(t, pool, Merge(pool, nil))
	assert.Empty(t, Merge(nil, nil))
}

func TestMerge_TitleComparedExactly(t *testing.T) {
	history := []record.Record{rec("Tower Filed", "L", time.Time{})}
	fresh := []record.Record{rec("tower filed", "L", time.Time{})}
	assert.Len(t, Merge(history, fresh), 2, "identity matches the persisted rows literally")
}
