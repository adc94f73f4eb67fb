package corrections

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML source format consumed by the catalog builder:
//
//	corrections:
//	  - pattern: "vaccine causes autism"
//	    correction: "..."
//	    topic: health
//	    source_url: https://...
type File struct {
	Corrections []Entry `yaml:"corrections"`
}

// LoadYAML reads catalog entries from a YAML source file in order.
func LoadYAML(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corrections source: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing corrections source: %w", err)
	}
	if len(f.Corrections) == 0 {
		return nil, fmt.Errorf("no corrections found in %s", path)
	}
	return f.Corrections, nil
}
