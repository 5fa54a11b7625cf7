package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RSSSource is one feed entry in sources.yaml.
type RSSSource struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	URL    string `yaml:"url"`
}

// HTMLSource is one listing-page entry in sources.yaml. The selectors are
// opaque CSS strings handed to the HTML fetcher; TitleSelector may be a
// comma-separated candidate list.
type HTMLSource struct {
	Name            string `yaml:"name"`
	Source          string `yaml:"source"`
	URL             string `yaml:"url"`
	ListSelector    string `yaml:"list_selector"`
	TitleSelector   string `yaml:"title_selector"`
	LinkSelector    string `yaml:"link_selector"`
	DateSelector    string `yaml:"date_selector"`
	SummarySelector string `yaml:"summary_selector"`
}

type Sources struct {
	RSSSources  []RSSSource  `yaml:"rss_sources"`
	HTMLSources []HTMLSource `yaml:"html_sources"`
}

// Keywords drives the relevance filter. RelaxedSources names the source ids
// whose geography-scoped sub-feeds may qualify on topic match alone;
// FeedHints are the neighborhood strings a relaxed feed's name must contain.
type Keywords struct {
	Boroughs       []string `yaml:"boroughs"`
	MustHaveAny    []string `yaml:"must_have_any"`
	RelaxedSources []string `yaml:"relaxed_sources"`
	FeedHints      []string `yaml:"feed_hints"`
}

// LoadSources reads the source site list from a YAML file.
func LoadSources(path string) (*Sources, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources config: %w", err)
	}
	defer f.Close()

	var s Sources
	if err := yaml.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode sources config: %w", err)
	}
	return &s, nil
}

// LoadKeywords reads the filter keyword lists from a YAML file.
func LoadKeywords(path string) (*Keywords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keywords config: %w", err)
	}
	defer f.Close()

	var k Keywords
	if err := yaml.NewDecoder(f).Decode(&k); err != nil {
		return nil, fmt.Errorf("decode keywords config: %w", err)
	}
	return &k, nil
}
