// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ctgov is the client for the ClinicalTrials.gov v2 API. It
// wraps the registry's endpoints with TTL-scoped response caching,
// retry-aware transport, and token-continuation aggregation.
package ctgov

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmarkovic/trialscope/internal/httputil"
	"github.com/dmarkovic/trialscope/pkg/types"
)

// apiBase is the registry API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://clinicaltrials.gov/api/v2"

// Client talks to the registry API.
type Client struct {
	httpClient *http.Client
	cfg        types.SearchConfig
	cache      *Cache

	// progress receives human-readable retry and fetch reports.
	progress io.Writer
}

// NewClient builds a registry client. A nil cache disables response
// caching; a nil progress writer discards progress reports.
func NewClient(cfg types.SearchConfig, cache *Cache, progress io.Writer) *Client {
	cfg.ApplyDefaults()
	if progress == nil {
		progress = io.Discard
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		cache:      cache,
		progress:   progress,
	}
}

// get fetches one endpoint, consulting the cache first. A hit returns
// the cached body with no network activity. On a miss the request runs
// through the retrying transport, the status is classified, and only
// successful bodies enter the cache.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	key := cacheKey(path, params)
	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			return body, nil
		}
	}

	reqURL := apiBase + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.cfg.MaxRetries, c.progress)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, path, string(body))
	}

	if c.cache != nil {
		c.cache.Put(key, classFor(path), body)
	}
	return body, nil
}

// SearchParams are the query parameters for one /studies search.
// Query and the structured query.* fields follow the registry's
// parameter model: Query goes to filter.advanced when it is an Essie
// expression, query.term otherwise.
type SearchParams struct {
	Query        string
	Condition    string
	Intervention string
	Sponsor      string
	Location     string
	Statuses     []string
	Fields       []string
	Sort         string
}

// Values renders the parameters for the /studies endpoint.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	if p.Query != "" {
		if strings.Contains(p.Query, "AREA[") || strings.Contains(p.Query, "SEARCH[") {
			v.Set("filter.advanced", p.Query)
		} else {
			v.Set("query.term", p.Query)
		}
	}
	if p.Condition != "" {
		v.Set("query.cond", p.Condition)
	}
	if p.Intervention != "" {
		v.Set("query.intr", p.Intervention)
	}
	if p.Sponsor != "" {
		v.Set("query.spons", p.Sponsor)
	}
	if p.Location != "" {
		v.Set("query.locn", p.Location)
	}
	if len(p.Statuses) > 0 {
		v.Set("filter.overallStatus", strings.Join(p.Statuses, "|"))
	}
	if len(p.Fields) > 0 {
		v.Set("fields", strings.Join(p.Fields, "|"))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	return v
}

// StudiesPage is one page of /studies results.
type StudiesPage struct {
	Studies       []types.Study `json:"studies"`
	NextPageToken string        `json:"nextPageToken"`
	TotalCount    int           `json:"totalCount"`
}

// SearchStudies fetches one page of search results. An empty pageToken
// requests the first page; countTotal asks upstream for the total
// match count, which it only reports when requested.
func (c *Client) SearchStudies(ctx context.Context, params SearchParams, pageSize int, pageToken string, countTotal bool) (*StudiesPage, error) {
	v := params.Values()
	v.Set("pageSize", strconv.Itoa(pageSize))
	if pageToken != "" {
		v.Set("pageToken", pageToken)
	}
	if countTotal {
		v.Set("countTotal", "true")
	}

	body, err := c.get(ctx, "/studies", v)
	if err != nil {
		return nil, err
	}
	var page StudiesPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parsing studies page: %w", err)
	}
	return &page, nil
}

// GetStudy fetches one study by NCT identifier. fields, when non-empty,
// restricts the returned modules.
func (c *Client) GetStudy(ctx context.Context, nctID string, fields []string) (*types.Study, error) {
	v := url.Values{}
	if len(fields) > 0 {
		v.Set("fields", strings.Join(fields, "|"))
	}
	body, err := c.get(ctx, "/studies/"+url.PathEscape(nctID), v)
	if err != nil {
		return nil, err
	}
	var study types.Study
	if err := json.Unmarshal(body, &study); err != nil {
		return nil, fmt.Errorf("parsing study %s: %w", nctID, err)
	}
	return &study, nil
}

// Metadata fetches the registry's data-model field descriptions. The
// document shape is owned by upstream and passed through opaquely.
func (c *Client) Metadata(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/studies/metadata", nil)
}

// SearchAreas fetches the searchable areas and their fields.
func (c *Client) SearchAreas(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/studies/search-areas", nil)
}

// Enums fetches the registry's enumeration type definitions.
func (c *Client) Enums(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/studies/enums", nil)
}

// FieldValues fetches value-frequency statistics for one field.
func (c *Client) FieldValues(ctx context.Context, field string) (*FieldStats, error) {
	body, err := c.get(ctx, "/stats/field/values", url.Values{"types": {field}})
	if err != nil {
		return nil, err
	}
	return parseFieldStats(body, field)
}

// FieldSizes fetches list-length statistics for one field.
func (c *Client) FieldSizes(ctx context.Context, field string) (json.RawMessage, error) {
	return c.get(ctx, "/stats/field/sizes", url.Values{"fields": {field}})
}

// OverallStats fetches registry-wide size statistics.
func (c *Client) OverallStats(ctx context.Context) (*SizeStats, error) {
	body, err := c.get(ctx, "/stats/size", nil)
	if err != nil {
		return nil, err
	}
	var stats SizeStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("parsing size stats: %w", err)
	}
	return &stats, nil
}

// Version fetches the API version document.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	body, err := c.get(ctx, "/version", nil)
	if err != nil {
		return nil, err
	}
	var info VersionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parsing version: %w", err)
	}
	return &info, nil
}

// FieldStats summarizes value frequencies for one field.
type FieldStats struct {
	Field        string       `json:"field"`
	UniqueValues int          `json:"uniqueValues"`
	TopValues    []ValueCount `json:"topValues"`
}

// ValueCount is one value and the number of studies carrying it.
type ValueCount struct {
	Value        string `json:"value"`
	StudiesCount int    `json:"studiesCount"`
}

// SizeStats is the registry-wide /stats/size document.
type SizeStats struct {
	TotalStudies     int `json:"totalStudies"`
	AverageSizeBytes int `json:"averageSizeBytes"`
	LargestStudies   []struct {
		ID        string `json:"id"`
		SizeBytes int    `json:"sizeBytes"`
	} `json:"largestStudies"`
}

// VersionInfo is the /version document.
type VersionInfo struct {
	APIVersion    string `json:"apiVersion"`
	DataTimestamp string `json:"dataTimestamp"`
}

// parseFieldStats decodes the /stats/field/values document, which
// wraps per-field stats in a top-level array.
func parseFieldStats(body []byte, field string) (*FieldStats, error) {
	var all []FieldStats
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, fmt.Errorf("parsing field stats: %w", err)
	}
	for _, fs := range all {
		if strings.EqualFold(fs.Field, field) {
			return &fs, nil
		}
	}
	if len(all) > 0 {
		return &all[0], nil
	}
	return nil, fmt.Errorf("no statistics returned for field %s", field)
}
