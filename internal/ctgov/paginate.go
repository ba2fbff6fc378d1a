// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ctgov

import (
	"context"
	"fmt"

	"github.com/dmarkovic/trialscope/pkg/types"
)

// maxPageSize is the upstream limit on pageSize.
const maxPageSize = 1000

// AggregateOptions bound one aggregation run.
type AggregateOptions struct {
	// PageSize is the per-page record count, clamped to the upstream
	// maximum. Zero uses the configured default.
	PageSize int

	// MaxResults is the record budget across all pages. Zero uses the
	// configured default; negative means unbounded.
	MaxResults int

	// BestEffort returns the records gathered before a mid-aggregation
	// failure alongside the error, instead of discarding them.
	BestEffort bool
}

// Aggregate is one logically complete, deduplicated result set
// assembled across pages for a single query.
type Aggregate struct {
	// Studies preserves upstream ordering within and across pages,
	// with duplicate NCT identifiers dropped.
	Studies []types.Study

	// TotalCount is upstream's reported total match count, independent
	// of how many records were actually fetched.
	TotalCount int

	// Truncated is set when the record budget stopped aggregation
	// before upstream reported the end of the sequence.
	Truncated bool
}

// Aggregate drives token-continuation fetches for params until
// upstream is exhausted, the record budget is hit, or a fetch fails.
// Pages are fetched sequentially, one outstanding request at a time.
// The total count is requested on the first page only.
//
// On failure the partial records are discarded unless BestEffort is
// set, in which case the returned aggregate carries whatever was
// gathered and the error is returned alongside it.
func (c *Client) Aggregate(ctx context.Context, params SearchParams, opts AggregateOptions) (*Aggregate, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = c.cfg.PageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	budget := opts.MaxResults
	if budget == 0 {
		budget = c.cfg.MaxResults
	}
	if budget > 0 && pageSize > budget {
		pageSize = budget
	}

	agg := &Aggregate{}
	seen := map[string]bool{}
	token := ""

	for {
		page, err := c.SearchStudies(ctx, params, pageSize, token, token == "")
		if err != nil {
			if opts.BestEffort {
				return agg, fmt.Errorf("aggregation failed after %d records: %w", len(agg.Studies), err)
			}
			return nil, fmt.Errorf("aggregation failed: %w", err)
		}

		if token == "" {
			agg.TotalCount = page.TotalCount
		}

		for i, study := range page.Studies {
			id := study.ProtocolSection.Identification.NCTID
			if id != "" && seen[id] {
				continue
			}
			seen[id] = true
			agg.Studies = append(agg.Studies, study)
			if budget > 0 && len(agg.Studies) >= budget {
				agg.Truncated = page.NextPageToken != "" || i < len(page.Studies)-1
				return agg, nil
			}
		}

		token = page.NextPageToken
		if token == "" {
			return agg, nil
		}
	}
}

// Summaries flattens the aggregate's studies.
func (a *Aggregate) Summaries() []types.StudySummary {
	out := make([]types.StudySummary, len(a.Studies))
	for i, s := range a.Studies {
		out[i] = s.Summarize()
	}
	return out
}
