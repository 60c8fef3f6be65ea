// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// QueryFile is the on-disk form of a ranking query, an alternative to
// putting the abstract in the main config file.
type QueryFile struct {
	// Title of the paper related work is being sought for.
	Title string `yaml:"title"`

	// Abstract is the query abstract.
	Abstract string `yaml:"abstract"`

	// TopK optionally overrides the configured output bound.
	TopK int `yaml:"top_k,omitempty"`
}

// ReadQueryFile loads a query YAML file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
