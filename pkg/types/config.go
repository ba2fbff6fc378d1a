// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that talk to the
// registry API.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "trialscope/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retry attempts for transient failures
	// (timeouts, 429, 5xx). Zero uses the default (3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// CacheConfig holds the TTL policy for the in-memory response cache.
// Each endpoint class carries its own TTL: schema and enumerations
// change rarely, search results reflect live recruitment status and go
// stale fast.
type CacheConfig struct {
	// MetadataTTL applies to schema, search-area, and enum responses (default 24h).
	MetadataTTL time.Duration `json:"metadata_ttl" yaml:"metadata_ttl"`

	// StatisticsTTL applies to /stats responses (default 6h).
	StatisticsTTL time.Duration `json:"statistics_ttl" yaml:"statistics_ttl"`

	// StudyTTL applies to single-study lookups (default 1h).
	StudyTTL time.Duration `json:"study_ttl" yaml:"study_ttl"`

	// SearchTTL applies to search-result pages (default 15m).
	SearchTTL time.Duration `json:"search_ttl" yaml:"search_ttl"`
}

// ApplyDefaults fills in zero-valued TTLs.
func (c *CacheConfig) ApplyDefaults() {
	if c.MetadataTTL == 0 {
		c.MetadataTTL = 24 * time.Hour
	}
	if c.StatisticsTTL == 0 {
		c.StatisticsTTL = 6 * time.Hour
	}
	if c.StudyTTL == 0 {
		c.StudyTTL = time.Hour
	}
	if c.SearchTTL == 0 {
		c.SearchTTL = 15 * time.Minute
	}
}

// SearchConfig holds settings for the search and aggregation stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize is the number of records requested per page (default 50, max 1000).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxResults is the aggregation budget: the maximum number of
	// records fetched across all pages (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ApplyDefaults fills in zero-valued search settings.
func (c *SearchConfig) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "trialscope/0.1"
	}
	if c.PageSize == 0 {
		c.PageSize = 50
	}
	if c.MaxResults == 0 {
		c.MaxResults = 50
	}
}

// ArchiveConfig holds settings for the local trial archive.
type ArchiveConfig struct {
	// ArchiveDir is the directory holding the archive database
	// (default "archive").
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir"`

	// MaxResults is the default maximum number of archive query results
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups all component configurations. It is built once at
// startup and treated as read-only afterward.
type Config struct {
	Search  SearchConfig  `json:"search" yaml:"search"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
	Archive ArchiveConfig `json:"archive" yaml:"archive"`
}
