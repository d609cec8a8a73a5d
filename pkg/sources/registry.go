// pkg/sources/registry.go
package sources

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRegistry reads a source registry from a JSON file.
func LoadRegistry(path string) (*SourceRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg SourceRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Enabled returns the sources available for fetching.
func (r *SourceRegistry) Enabled() []Source {
	var out []Source
	for _, s := range r.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// Find looks a source up by id.
func (r *SourceRegistry) Find(id string) (Source, error) {
	for _, s := range r.Sources {
		if s.ID == id {
			return s, nil
		}
	}
	return Source{}, fmt.Errorf("unknown list source: %q", id)
}
