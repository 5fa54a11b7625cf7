package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Artifact paths
	OutputPath string // two-sheet xlsx workbook
	SeenPath   string // one link per line, sorted

	// Config file paths
	SourcesPath  string
	KeywordsPath string

	// Fetch settings
	RequestTimeout     time.Duration
	UserAgent          string
	PerSourceItemLimit int
	SourceDelay        time.Duration // politeness pause between sources

	// Enrichment settings
	EnrichPreviewBudget int // max runes of article preview text

	// Reporting windows (fixed by the artifact contract)
	DailyWindow  time.Duration
	WeeklyWindow time.Duration

	// Seen-set retention: 0 keeps entries forever
	SeenRetentionDays int

	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		OutputPath:          "data/output/queens_dev_news.xlsx",
		SeenPath:            "data/seen_urls.txt",
		SourcesPath:         "configs/sources.yaml",
		KeywordsPath:        "configs/keywords.yaml",
		RequestTimeout:      20 * time.Second,
		UserAgent:           "Mozilla/5.0 (compatible; QueensDevNewsBot/1.0)",
		PerSourceItemLimit:  80,
		SourceDelay:         time.Second,
		EnrichPreviewBudget: 1200,
		DailyWindow:         48 * time.Hour,
		WeeklyWindow:        7 * 24 * time.Hour,
	}

	cfg.OutputPath = getEnvOrDefault("OUTPUT_XLSX_PATH", cfg.OutputPath)
	cfg.SeenPath = getEnvOrDefault("SEEN_FILE_PATH", cfg.SeenPath)
	cfg.SourcesPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesPath)
	cfg.KeywordsPath = getEnvOrDefault("KEYWORDS_CONFIG_PATH", cfg.KeywordsPath)

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("PER_SOURCE_ITEM_LIMIT"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.PerSourceItemLimit = val
		}
	}
	if v := os.Getenv("SOURCE_DELAY_MS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.SourceDelay = time.Duration(val) * time.Millisecond
		}
	}
	if v := os.Getenv("ENRICH_PREVIEW_BUDGET"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.EnrichPreviewBudget = val
		}
	}
	cfg.SeenRetentionDays = getEnvIntOrDefault("SEEN_RETENTION_DAYS", 0)

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("OUTPUT_XLSX_PATH must not be empty")
	}
	if c.SeenPath == "" {
		return fmt.Errorf("SEEN_FILE_PATH must not be empty")
	}
	if c.SeenRetentionDays < 0 {
		return fmt.Errorf("SEEN_RETENTION_DAYS must not be negative")
	}
	return nil
}
