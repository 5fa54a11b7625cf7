package filter

import (
	"strings"

	"github.com/queensdev/devnews/internal/config"
	"github.com/queensdev/devnews/internal/record"
)

// Filter decides whether a record is in scope for the report: it must
// mention one of the configured boroughs/neighborhoods AND one of the
// must-have topic keywords, except for designated sub-feeds whose identity
// already pins the geography.
type Filter struct {
	boroughs    []string
	mustHaveAny []string
	relaxed     map[string]bool
	feedHints   []string
}

func New(kw *config.Keywords) *Filter {
	relaxed := make(map[string]bool, len(kw.RelaxedSources))
	for _, s := range kw.RelaxedSources {
		relaxed[strings.ToLower(s)] = true
	}
	return &Filter{
		boroughs:    kw.Boroughs,
		mustHaveAny: kw.MustHaveAny,
		relaxed:     relaxed,
		feedHints:   kw.FeedHints,
	}
}

// containsAny reports whether any keyword appears in text as a
// case-insensitive substring. An empty keyword list never matches: with no
// configured keywords the filter is maximally strict, not wide open.
func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Keep applies the relevance test to one record. preview is optional
// enrichment text fetched from the article page; it widens keyword recall
// but its absence never blocks the decision.
func (f *Filter) Keep(r record.Record, preview string) bool {
	blob := strings.ToLower(strings.Join([]string{r.Title, r.Neighborhood, preview}, " "))

	hasBorough := containsAny(blob, f.boroughs)
	hasKeyword := containsAny(blob, f.mustHaveAny)

	if f.relaxedFeed(r) {
		// The feed itself is scoped to a known neighborhood, so the
		// geography test is already satisfied by the feed's identity.
		return hasKeyword
	}
	return hasBorough && hasKeyword
}

// relaxedFeed reports whether the record came from a designated source's
// neighborhood sub-feed (e.g. a YIMBY "Astoria" feed).
func (f *Filter) relaxedFeed(r record.Record) bool {
	if !f.relaxed[strings.ToLower(r.Source)] {
		return false
	}
	feedName := strings.ToLower(r.FeedName)
	for _, hint := range f.feedHints {
		hint = strings.ToLower(strings.TrimSpace(hint))
		if hint != "" && strings.Contains(feedName, hint) {
			return true
		}
	}
	return false
}
