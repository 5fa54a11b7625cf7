package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/queensdev/devnews/internal/config"
	"github.com/queensdev/devnews/internal/record"
)

// HTMLFetcher scrapes a listing page using the selectors declared in the
// source config and normalizes each listing block.
type HTMLFetcher struct {
	src    config.HTMLSource
	client *Client
}

func NewHTMLFetcher(src config.HTMLSource, client *Client) *HTMLFetcher {
	return &HTMLFetcher{src: src, client: client}
}

func (f *HTMLFetcher) Name() string     { return f.src.Name }
func (f *HTMLFetcher) SourceID() string { return f.src.Source }

func (f *HTMLFetcher) Fetch(ctx context.Context) ([]record.Record, error) {
	body, err := f.client.Get(ctx, f.src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch page %s: %w", f.src.Name, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", f.src.Name, err)
	}

	base, err := url.Parse(f.src.URL)
	if err != nil {
		return nil, fmt.Errorf("bad source url %s: %w", f.src.URL, err)
	}

	blocks := doc.Find(f.src.ListSelector)
	if f.src.ListSelector == "" {
		blocks = doc.Find("article")
	}

	var out []record.Record
	blocks.Each(func(_ int, b *goquery.Selection) {
		r := f.normalize(b, base)
		if r.Usable() {
			out = append(out, r)
		}
	})
	return out, nil
}

func (f *HTMLFetcher) normalize(b *goquery.Selection, base *url.URL) record.Record {
	titleEl := firstMatch(b, f.src.TitleSelector)
	if titleEl == nil {
		return record.Record{}
	}

	r := record.Record{
		Title:    record.NormalizeText(titleEl.Text()),
		Source:   f.src.Source,
		FeedName: f.src.Name,
	}

	linkEl := titleEl
	if f.src.LinkSelector != "" {
		if el := b.Find(f.src.LinkSelector); el.Length() > 0 {
			linkEl = el.First()
		}
	}
	if href, ok := linkEl.Attr("href"); ok {
		r.Link = resolveLink(base, href)
	}

	if f.src.DateSelector != "" {
		if el := b.Find(f.src.DateSelector); el.Length() > 0 {
			// Machine-readable datetime attribute beats visible text.
			txt, ok := el.First().Attr("datetime")
			if !ok {
				txt = el.First().Text()
			}
			r.Date = record.ParseDate(txt)
		}
	}

	if f.src.SummarySelector != "" {
		if el := b.Find(f.src.SummarySelector); el.Length() > 0 {
			r.Neighborhood = record.NormalizeText(el.First().Text())
		}
	}
	return r
}

// firstMatch tries each comma-separated selector in order and returns the
// first element found. Listing pages shift markup often enough that configs
// carry fallback selectors.
func firstMatch(b *goquery.Selection, selectors string) *goquery.Selection {
	for _, sel := range strings.Split(selectors, ",") {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		if el := b.Find(sel); el.Length() > 0 {
			return el.First()
		}
	}
	return nil
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if !record.LooksLikeArticleLink(href) {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
