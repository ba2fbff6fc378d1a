// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes archived trials matching opts to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, opts ListOptions, path string) error {
	trials, err := s.exportTrials(ctx, opts)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(trials)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes archived trials matching opts to path as JSON.
func (s *Store) ExportJSON(ctx context.Context, opts ListOptions, path string) error {
	trials, err := s.exportTrials(ctx, opts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(trials, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportTrials(ctx context.Context, opts ListOptions) ([]ArchivedTrial, error) {
	opts.MaxResults = exportLimit
	trials, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return trials, nil
}
