package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/time/rate"

	"github.com/queensdev/devnews/internal/config"
	"github.com/queensdev/devnews/internal/filter"
	"github.com/queensdev/devnews/internal/metrics"
	"github.com/queensdev/devnews/internal/record"
	"github.com/queensdev/devnews/internal/seen"
	"github.com/queensdev/devnews/internal/sources"
	"github.com/queensdev/devnews/internal/store"
)

// newsSite serves an RSS feed plus stub article pages, standing in for one
// configured source.
func newsSite(t *testing.T, items []feedItem) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/feed" {
			w.Header().Set("Content-Type", "application/rss+xml")
			fmt.Fprint(w, feedXML(srv.URL, items))
			return
		}
		// Article pages for enrichment; keep them bland so they never
		// influence the keyword tests.
		fmt.Fprint(w, "<article><p>article body text</p></article>")
	}))
	t.Cleanup(srv.Close)
	return srv
}

type feedItem struct {
	title string
	path  string
	desc  string
	date  time.Time
}

func feedXML(base string, items []feedItem) string {
	body := `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>test feed</title>`
	for _, it := range items {
		body += "<item>"
		body += "<title>" + it.title + "</title>"
		body += "<link>" + base + it.path + "</link>"
		body += "<description>" + it.desc + "</description>"
		if !it.date.IsZero() {
			body += "<pubDate>" + it.date.Format(time.RFC1123Z) + "</pubDate>"
		}
		body += "</item>"
	}
	return body + "</channel></rss>"
}

func writeConfigs(t *testing.T, dir string, sourcesYAML string) *config.Config {
	t.Helper()
	sourcesPath := filepath.Join(dir, "sources.yaml")
	keywordsPath := filepath.Join(dir, "keywords.yaml")
	require.NoError(t, os.WriteFile(sourcesPath, []byte(sourcesYAML), 0o644))
	require.NoError(t, os.WriteFile(keywordsPath, []byte(`
boroughs: ["queens", "astoria", "flushing"]
must_have_any: ["permit", "development", "rezoning"]
relaxed_sources: ["yimby"]
feed_hints: ["astoria", "flushing"]
`), 0o644))

	return &config.Config{
		OutputPath:          filepath.Join(dir, "out", "news.xlsx"),
		SeenPath:            filepath.Join(dir, "seen.txt"),
		SourcesPath:         sourcesPath,
		KeywordsPath:        keywordsPath,
		RequestTimeout:      5 * time.Second,
		UserAgent:           "test-agent",
		PerSourceItemLimit:  80,
		EnrichPreviewBudget: 1200,
		DailyWindow:         48 * time.Hour,
		WeeklyWindow:        7 * 24 * time.Hour,
	}
}

func TestRun_EndToEnd_OneSurvivorOfThree(t *testing.T) {
	fresh := time.Now().Add(-time.Hour)
	srv := newsSite(t, []feedItem{
		{title: "Rezoning approved for Flushing site", path: "/a", desc: "big development", date: fresh},
		{title: "Permit filed in Manhattan", path: "/b", desc: "no geography match", date: fresh},
		{title: "Local bakery anniversary", path: "/c", desc: "nothing relevant", date: fresh},
	})

	dir := t.TempDir()
	cfg := writeConfigs(t, dir, fmt.Sprintf(`
rss_sources:
  - name: "PincusCo Queens"
    source: "pincusco"
    url: "%s/feed"
`, srv.URL))

	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background(), ModeDaily))

	daily := store.LoadPartition(cfg.OutputPath, store.DailySheet)
	require.Len(t, daily, 1)
	assert.Equal(t, "Rezoning approved for Flushing site", daily[0].Title)

	weekly := store.LoadPartition(cfg.OutputPath, store.WeeklySheet)
	require.Len(t, weekly, 1)

	seenData, err := os.ReadFile(cfg.SeenPath)
	require.NoError(t, err)
	assert.Contains(t, string(seenData), srv.URL+"/a")
	assert.NotContains(t, string(seenData), srv.URL+"/b", "filtered-out links are not marked seen")
}

func TestRun_PartialSourceFailureToleration(t *testing.T) {
	fresh := time.Now().Add(-time.Hour)
	good := newsSite(t, []feedItem{
		{title: "Permit filed for Astoria development", path: "/a", date: fresh},
	})
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(broken.Close)

	dir := t.TempDir()
	cfg := writeConfigs(t, dir, fmt.Sprintf(`
rss_sources:
  - name: "Broken Feed"
    source: "pincusco"
    url: "%s/feed"
  - name: "Good Feed"
    source: "pincusco"
    url: "%s/feed"
html_sources:
  - name: "Broken Page"
    source: "cityrealty"
    url: "%s/page"
    list_selector: "article"
    title_selector: "h2 a"
`, broken.URL, good.URL, broken.URL))

	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background(), ModeDaily), "failed sources never abort the run")

	daily := store.LoadPartition(cfg.OutputPath, store.DailySheet)
	require.Len(t, daily, 1, "the healthy source's rows still land")
	assert.Equal(t, "Permit filed for Astoria development", daily[0].Title)
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	fresh := time.Now().Add(-time.Hour)
	srv := newsSite(t, []feedItem{
		{title: "Permit filed for Queens development", path: "/a", date: fresh},
	})

	dir := t.TempDir()
	cfg := writeConfigs(t, dir, fmt.Sprintf(`
rss_sources:
  - name: "PincusCo Queens"
    source: "pincusco"
    url: "%s/feed"
`, srv.URL))

	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background(), ModeDaily))

	// Fresh App the way a later cron invocation would be.
	b, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, b.Run(context.Background(), ModeWeekly))

	daily := store.LoadPartition(cfg.OutputPath, store.DailySheet)
	assert.Len(t, daily, 1, "reprocessing the same feed adds nothing")
	assert.Equal(t, int64(1), b.stats.ItemsSkipSeen, "the seen-set gated the repeat item")
}

func TestRun_UndatedItemsStayOutOfWindows(t *testing.T) {
	srv := newsSite(t, []feedItem{
		{title: "Permit filed for Queens development", path: "/undated"},
	})

	dir := t.TempDir()
	cfg := writeConfigs(t, dir, fmt.Sprintf(`
rss_sources:
  - name: "PincusCo Queens"
    source: "pincusco"
    url: "%s/feed"
`, srv.URL))

	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background(), ModeDaily))

	assert.Empty(t, store.LoadPartition(cfg.OutputPath, store.DailySheet))
	assert.Empty(t, store.LoadPartition(cfg.OutputPath, store.WeeklySheet))

	// The item was still processed: it will not be re-fetched next run.
	seenData, err := os.ReadFile(cfg.SeenPath)
	require.NoError(t, err)
	assert.Contains(t, string(seenData), srv.URL+"/undated")
}

func TestFailsafe_ArtifactAlwaysWellFormed(t *testing.T) {
	cfg := &config.Config{OutputPath: filepath.Join(t.TempDir(), "out", "news.xlsx")}
	Failsafe(cfg)

	f, err := excelize.OpenFile(cfg.OutputPath)
	require.NoError(t, err)
	defer f.Close()

	for _, sheet := range []string{store.DailySheet, store.WeeklySheet} {
		rows, err := f.GetRows(sheet)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, store.Columns, rows[0])
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeDaily, ParseMode(""))
	assert.Equal(t, ModeDaily, ParseMode("daily"))
	assert.Equal(t, ModeWeekly, ParseMode("weekly"))
	assert.Equal(t, ModeDaily, ParseMode("hourly"), "unknown modes run as daily instead of refusing the run")
}

// explodingFetcher stands in for a library-level crash on hostile input.
type explodingFetcher struct{}

func (explodingFetcher) Name() string     { return "exploding feed" }
func (explodingFetcher) SourceID() string { return "exploding" }
func (explodingFetcher) Fetch(context.Context) ([]record.Record, error) {
	panic("malformed input")
}

func TestRun_PanicBecomesRunFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		OutputPath:         filepath.Join(dir, "out", "news.xlsx"),
		SeenPath:           filepath.Join(dir, "seen.txt"),
		PerSourceItemLimit: 80,
		DailyWindow:        48 * time.Hour,
		WeeklyWindow:       7 * 24 * time.Hour,
	}
	a := &App{
		cfg:      cfg,
		fetchers: []sources.Fetcher{explodingFetcher{}},
		filter:   filter.New(&config.Keywords{}),
		seen:     seen.New(cfg.SeenPath, 0),
		stats:    metrics.NewRunStats(),
		pace:     rate.NewLimiter(rate.Inf, 1),
		now:      time.Now,
	}

	err := a.Run(context.Background(), ModeDaily)
	require.Error(t, err, "a panic inside the pipeline surfaces as a run failure, not a crash")
	assert.Contains(t, err.Error(), "panic")

	// The caller's failure path can then still leave the artifact behind.
	Failsafe(cfg)
	_, statErr := os.Stat(cfg.OutputPath)
	assert.NoError(t, statErr, "workbook exists even after a panicked run")
}
