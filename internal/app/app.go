// Package app wires the pipeline: fetch every configured source, normalize
// and filter, gate on the seen-set, roll the survivors into the two
// reporting windows, merge with persisted history, and rewrite the workbook.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/queensdev/devnews/internal/config"
	"github.com/queensdev/devnews/internal/enrich"
	"github.com/queensdev/devnews/internal/filter"
	"github.com/queensdev/devnews/internal/logger"
	"github.com/queensdev/devnews/internal/metrics"
	"github.com/queensdev/devnews/internal/record"
	"github.com/queensdev/devnews/internal/report"
	"github.com/queensdev/devnews/internal/seen"
	"github.com/queensdev/devnews/internal/sources"
	"github.com/queensdev/devnews/internal/store"
)

// Mode labels the run's reporting intent. Both partitions are recomputed
// and written regardless of mode; the label only tags logs, so the artifact
// never depends on which cron entry invoked the binary.
type Mode string

const (
	ModeDaily  Mode = "daily"
	ModeWeekly Mode = "weekly"
)

// ParseMode maps the positional argument to a run mode. Unknown values are
// tolerated with a warning and run as daily: mode never changes what the
// run computes, and a cron typo should not cost the scheduled artifact.
func ParseMode(arg string) Mode {
	switch arg {
	case "", string(ModeDaily):
		return ModeDaily
	case string(ModeWeekly):
		return ModeWeekly
	default:
		logger.Warn("unknown mode, running as daily", "mode", arg)
		return ModeDaily
	}
}

type App struct {
	cfg      *config.Config
	fetchers []sources.Fetcher
	filter   *filter.Filter
	enricher *enrich.Enricher
	seen     *seen.Set
	stats    *metrics.RunStats

	// pace spaces out source fetches so we never hammer the sites.
	pace *rate.Limiter

	// now is swappable for window tests.
	now func() time.Time
}

func New(cfg *config.Config) (*App, error) {
	srcs, err := config.LoadSources(cfg.SourcesPath)
	if err != nil {
		return nil, err
	}
	kw, err := config.LoadKeywords(cfg.KeywordsPath)
	if err != nil {
		return nil, err
	}

	client := sources.NewClient(cfg.RequestTimeout, cfg.UserAgent)

	fetchers := make([]sources.Fetcher, 0, len(srcs.RSSSources)+len(srcs.HTMLSources))
	for _, s := range srcs.RSSSources {
		fetchers = append(fetchers, sources.NewRSSFetcher(s, client))
	}
	for _, s := range srcs.HTMLSources {
		fetchers = append(fetchers, sources.NewHTMLFetcher(s, client))
	}

	pace := rate.NewLimiter(rate.Inf, 1)
	if cfg.SourceDelay > 0 {
		pace = rate.NewLimiter(rate.Every(cfg.SourceDelay), 1)
	}

	return &App{
		cfg:      cfg,
		fetchers: fetchers,
		filter:   filter.New(kw),
		enricher: enrich.New(client, cfg.EnrichPreviewBudget),
		seen:     seen.New(cfg.SeenPath, cfg.SeenRetentionDays),
		stats:    metrics.NewRunStats(),
		pace:     pace,
		now:      time.Now,
	}, nil
}

// Run executes one full pipeline pass. Per-source failures are contained
// inside crawlAll; an error returned here means the run itself failed and
// the caller should fall back to the failsafe write.
func (a *App) Run(ctx context.Context, mode Mode) (err error) {
	// A panic anywhere below (hostile feed input, library bugs) becomes a
	// normal run failure so the caller can still write the failsafe
	// artifact.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	logger.Info("run starting", "mode", string(mode))

	a.seen.Load()
	rows := a.crawlAll(ctx)
	logger.Info("crawl finished", "kept_rows", len(rows))

	dailyOld := store.LoadPartition(a.cfg.OutputPath, store.DailySheet)
	weeklyOld := store.LoadPartition(a.cfg.OutputPath, store.WeeklySheet)

	now := a.now()
	dailyFresh := report.InWindow(rows, a.cfg.DailyWindow, now)
	weeklyFresh := report.InWindow(rows, a.cfg.WeeklyWindow, now)

	dailyAll := report.Merge(dailyOld, dailyFresh)
	weeklyAll := report.Merge(weeklyOld, weeklyFresh)

	if err := store.SaveAll(a.cfg.OutputPath, dailyAll, weeklyAll); err != nil {
		return fmt.Errorf("persist workbook: %w", err)
	}

	// Record what we processed even when the crawl was only partially
	// successful, so the next run does not redo the same work.
	if err := a.seen.Save(); err != nil {
		logger.Error("seen-set not saved", "error", err)
	}

	logger.Info("workbook saved", "path", a.cfg.OutputPath,
		"daily_new", len(dailyFresh), "daily_total", len(dailyAll),
		"weekly_new", len(weeklyFresh), "weekly_total", len(weeklyAll))
	logger.Info("run complete", a.stats.Snapshot()...)
	return nil
}

// crawlAll visits every configured source in order, pacing requests and
// containing all per-source failures. One broken feed costs its own rows
// and a warning, never the run.
func (a *App) crawlAll(ctx context.Context) []record.Record {
	var rows []record.Record
	for _, f := range a.fetchers {
		if err := a.pace.Wait(ctx); err != nil {
			logger.Warn("crawl interrupted", "error", err)
			break
		}

		items, err := f.Fetch(ctx)
		if err != nil {
			logger.Warn("source fetch failed, skipping", "source", f.Name(), "error", err)
			a.stats.SourceDone(false)
			continue
		}
		if len(items) > a.cfg.PerSourceItemLimit {
			items = items[:a.cfg.PerSourceItemLimit]
		}
		a.stats.AddFetched(len(items))

		kept := 0
		for _, r := range items {
			if a.seen.Contains(r.Link) {
				a.stats.IncrSkipSeen()
				continue
			}
			preview := a.enricher.Preview(ctx, r.Link)
			if preview != "" {
				a.stats.IncrEnriched()
			}
			if !a.filter.Keep(r, preview) {
				continue
			}
			a.seen.Add(r.Link)
			rows = append(rows, r)
			kept++
			a.stats.IncrKept()
		}
		a.stats.SourceDone(true)
		logger.Info("source done", "source", f.Name(), "items", len(items), "kept", kept)
	}
	return rows
}

// Failsafe writes an empty but well-formed workbook so the artifact exists
// with both sheets even after a failed run.
func Failsafe(cfg *config.Config) {
	if err := store.SaveAll(cfg.OutputPath, nil, nil); err != nil {
		logger.Error("failsafe write failed", "path", cfg.OutputPath, "error", err)
		return
	}
	logger.Info("failsafe workbook written", "path", cfg.OutputPath)
}
