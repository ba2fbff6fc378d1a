// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ctgov

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmarkovic/trialscope/pkg/types"
)

// TTLClass names a category of cached responses sharing one
// time-to-live policy.
type TTLClass string

const (
	ClassMetadata   TTLClass = "metadata"
	ClassStatistics TTLClass = "statistics"
	ClassStudy      TTLClass = "study"
	ClassSearch     TTLClass = "search"
)

// Cache memoizes registry responses in memory, keyed by endpoint path
// and canonicalized parameters. Entries expire lazily on lookup; there
// is no background sweeper. Concurrent misses for the same key may
// both fetch, with the last write winning.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttls    map[TTLClass]time.Duration

	// now is replaced in tests to step through expiry.
	now func() time.Time
}

type cacheEntry struct {
	body    []byte
	created time.Time
	ttl     time.Duration
}

// NewCache builds a cache with the configured TTLs. Zero values fall
// back to the defaults in types.CacheConfig.
func NewCache(cfg types.CacheConfig) *Cache {
	cfg.ApplyDefaults()
	return &Cache{
		entries: map[string]cacheEntry{},
		ttls: map[TTLClass]time.Duration{
			ClassMetadata:   cfg.MetadataTTL,
			ClassStatistics: cfg.StatisticsTTL,
			ClassStudy:      cfg.StudyTTL,
			ClassSearch:     cfg.SearchTTL,
		},
		now: time.Now,
	}
}

// Get returns the cached body for key, if present and unexpired.
// Expired entries are evicted on the way out.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.created) >= entry.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.body, true
}

// Put stores a body under key with the TTL of the given class. Failed
// fetches must never be stored; callers only Put successful responses.
func (c *Cache) Put(key string, class TTLClass, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{body: body, created: c.now(), ttl: c.ttls[class]}
}

// Len reports the number of live entries, counting expired ones that
// have not been evicted yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheKey canonicalizes an endpoint path and its parameters: sorted
// keys, multi-values joined in order. Two requests that differ only in
// parameter ordering share one key.
func cacheKey(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(path)
	for _, k := range keys {
		b.WriteByte('?')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(params[k], "|"))
	}
	return b.String()
}

// classFor maps an endpoint path to its TTL class, mirroring how the
// registry's data changes: schema rarely, statistics slowly, study
// records hourly, search results quickly.
func classFor(path string) TTLClass {
	switch {
	case strings.Contains(path, "metadata"),
		strings.Contains(path, "search-areas"),
		strings.Contains(path, "enums"),
		strings.Contains(path, "version"):
		return ClassMetadata
	case strings.Contains(path, "/stats/"):
		return ClassStatistics
	case strings.Contains(path, "/studies/NCT"):
		return ClassStudy
	default:
		return ClassSearch
	}
}
