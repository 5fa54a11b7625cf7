package sources

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/queensdev/devnews/internal/config"
	"github.com/queensdev/devnews/internal/record"
)

// RSSFetcher pulls one RSS/Atom feed and normalizes its entries.
type RSSFetcher struct {
	src    config.RSSSource
	client *Client
}

func NewRSSFetcher(src config.RSSSource, client *Client) *RSSFetcher {
	return &RSSFetcher{src: src, client: client}
}

func (f *RSSFetcher) Name() string     { return f.src.Name }
func (f *RSSFetcher) SourceID() string { return f.src.Source }

func (f *RSSFetcher) Fetch(ctx context.Context) ([]record.Record, error) {
	body, err := f.client.Get(ctx, f.src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", f.src.Name, err)
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.src.Name, err)
	}

	out := make([]record.Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		r := f.normalize(item)
		if r.Usable() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *RSSFetcher) normalize(item *gofeed.Item) record.Record {
	r := record.Record{
		Title:        record.NormalizeText(item.Title),
		Neighborhood: record.NormalizeText(item.Description),
		Source:       f.src.Source,
		FeedName:     f.src.Name,
	}
	if record.LooksLikeArticleLink(item.Link) {
		r.Link = item.Link
	}

	// gofeed pre-parses the common pubDate shapes; fall back to our own
	// parser for the odd feeds it gives up on.
	switch {
	case item.PublishedParsed != nil:
		r.Date = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		r.Date = *item.UpdatedParsed
	case item.Published != "":
		r.Date = record.ParseDate(item.Published)
	case item.Updated != "":
		r.Date = record.ParseDate(item.Updated)
	}
	return r
}
