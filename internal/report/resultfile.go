// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/dmarkovic/trialscope/pkg/types"
)

// ResultFile is the on-disk representation of a search and its
// results. A search can be saved to a file and reviewed later without
// re-querying the registry.
type ResultFile struct {
	Query   QueryParams          `yaml:"query"`
	Results []types.StudySummary `yaml:"results"`
	Summary ResultSummary        `yaml:"summary"`
}

// QueryParams stores the search inputs in a serializable form.
type QueryParams struct {
	Text       string   `yaml:"text,omitempty"`
	Essie      string   `yaml:"essie,omitempty"`
	Condition  string   `yaml:"condition,omitempty"`
	Phases     []string `yaml:"phases,omitempty"`
	Statuses   []string `yaml:"statuses,omitempty"`
	MaxResults int      `yaml:"max_results,omitempty"`
}

// ResultSummary stores result statistics and a timestamp.
type ResultSummary struct {
	Fetched    int       `yaml:"fetched"`
	TotalCount int       `yaml:"total_count"`
	Truncated  bool      `yaml:"truncated,omitempty"`
	Timestamp  time.Time `yaml:"timestamp"`
}

// WriteResultFile saves a search and its results to a YAML file.
func WriteResultFile(path string, query QueryParams, results []types.StudySummary, totalCount int, truncated bool) error {
	rf := ResultFile{
		Query:   query,
		Results: results,
		Summary: ResultSummary{
			Fetched:    len(results),
			TotalCount: totalCount,
			Truncated:  truncated,
			Timestamp:  time.Now(),
		},
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
