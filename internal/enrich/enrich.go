// Package enrich fetches a short text preview of an article's own page to
// improve keyword recall in the relevance filter. Everything here is
// best-effort: a failed or empty preview never blocks an item.
package enrich

import (
	"context"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/queensdev/devnews/internal/logger"
	"github.com/queensdev/devnews/internal/record"
	"github.com/queensdev/devnews/internal/sources"
)

const previewNodes = 6

type Enricher struct {
	client *sources.Client
	budget int // max runes of preview text

	// The same article often appears in several configured feeds; cache
	// previews so each URL is fetched at most once per run.
	mu    sync.Mutex
	cache map[string]string
}

func New(client *sources.Client, budget int) *Enricher {
	return &Enricher{
		client: client,
		budget: budget,
		cache:  make(map[string]string),
	}
}

// Preview returns the first few paragraph/heading/list text nodes of the
// article page, concatenated and truncated to the configured budget. On any
// failure it returns "".
func (e *Enricher) Preview(ctx context.Context, url string) string {
	e.mu.Lock()
	if p, ok := e.cache[url]; ok {
		e.mu.Unlock()
		return p
	}
	e.mu.Unlock()

	p := e.fetch(ctx, url)

	e.mu.Lock()
	e.cache[url] = p
	e.mu.Unlock()
	return p
}

func (e *Enricher) fetch(ctx context.Context, url string) string {
	body, err := e.client.Get(ctx, url)
	if err != nil {
		logger.Debug("enrichment fetch failed", "url", url, "error", err)
		return ""
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		logger.Debug("enrichment parse failed", "url", url, "error", err)
		return ""
	}

	scope := doc.Selection
	if el := doc.Find("article"); el.Length() > 0 {
		scope = el.First()
	} else if el := doc.Find(".entry-content"); el.Length() > 0 {
		scope = el.First()
	}

	var parts []string
	scope.Find("p, h2, li").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if txt := record.NormalizeText(s.Text()); txt != "" {
			parts = append(parts, txt)
		}
		return len(parts) < previewNodes
	})

	preview := strings.Join(parts, " ")
	if runes := []rune(preview); len(runes) > e.budget {
		preview = string(runes[:e.budget])
	}
	return preview
}
