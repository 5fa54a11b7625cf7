package record

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

// Record is the canonical shape every fetched item is normalized into.
// All downstream stages (filter, windowing, dedup, persistence) operate on
// this type only; per-source shapes never leak past the fetchers.
type Record struct {
	Date         time.Time // zero value means the source date was absent or unparsable
	Title        string
	Neighborhood string // summary / neighborhood free text, may be empty
	Action       string // event descriptor ("permit filed", ...), may be empty
	Source       string // stable source id ("pincusco", "yimby", "cityrealty")
	Link         string // canonical URL, required; half of the dedup identity

	// FeedName is the declared name of the feed the item came from. It is
	// not persisted; the relevance filter uses it for the sub-feed
	// relaxation rule.
	FeedName string
}

// HasDate reports whether the record carries a usable timestamp.
func (r Record) HasDate() bool {
	return !r.Date.IsZero()
}

// Usable reports whether the record can enter the pipeline at all.
// A record without a link has no identity and is dropped at normalization.
func (r Record) Usable() bool {
	return r.Link != "" && r.Title != ""
}

// Key is the dedup identity: a stable hash of the exact (title, link)
// pair. Titles are already whitespace-normalized by the fetchers; beyond
// that the comparison is literal, matching the persisted rows.
func (r Record) Key() string {
	h := sha1.New()
	h.Write([]byte(r.Title + "|" + r.Link))
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeText collapses runs of whitespace to single spaces and trims the
// ends. Feed titles and scraped text nodes routinely arrive with embedded
// newlines and padding.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dateFormats covers the shapes seen in the wild across the configured
// sources: RSS pubDate variants, ISO timestamps from datetime attributes,
// and loosely formatted visible date text on listing pages.
var dateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"02 January 2006",
	"2 January 2006",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate parses a date string in any of the accepted formats. It fails
// soft: unparsable or empty input yields the zero time, never an error.
func ParseDate(s string) time.Time {
	s = NormalizeText(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// LooksLikeArticleLink rejects hrefs that cannot identify an article:
// fragments, javascript handlers, mail links.
func LooksLikeArticleLink(href string) bool {
	if href == "" {
		return false
	}
	lower := strings.ToLower(href)
	for _, bad := range []string{"#", "javascript:", "mailto:"} {
		if strings.HasPrefix(lower, bad) {
			return false
		}
	}
	return true
}
