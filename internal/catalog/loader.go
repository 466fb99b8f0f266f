package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a catalog definition from a YAML file. An empty path
// yields the built-in catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file: %w", err)
	}

	return New(def)
}
