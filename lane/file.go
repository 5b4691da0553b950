package lane

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PatternSet is the on-disk form of extra lane patterns:
//
//	strategic:
//	  - '\broadmap\b'
//	implementation:
//	  - '\bscaffold\b'
type PatternSet = Config

// LoadPatternFile reads a YAML pattern set from path.
func LoadPatternFile(path string) (*PatternSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %w", err)
	}

	var set PatternSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse pattern file: %w", err)
	}
	return &set, nil
}
