// Package sources fetches the configured RSS feeds and HTML listing pages
// and normalizes every item into a record.Record. Per-source shapes stay in
// this package; nothing downstream knows what kind of site a record came
// from beyond its source id.
package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/queensdev/devnews/internal/record"
)

// Fetcher is one configured source. Fetch returns normalized records in
// listing order; unusable items (no title, no article link) are already
// dropped.
type Fetcher interface {
	Name() string
	SourceID() string
	Fetch(ctx context.Context) ([]record.Record, error)
}

// Client wraps the shared HTTP client: one timeout, one User-Agent for
// every request the pipeline makes.
type Client struct {
	http      *http.Client
	userAgent string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Get fetches a URL and returns the response body reader. The caller owns
// closing it.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return resp.Body, nil
}
