// Package profiles reads the optional YAML seed of browser profiles.
package profiles

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of profiles.yaml
type Loader struct {
	filePath string
}

// NewLoader creates a new profile seed loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the seed file. ${VAR} references are expanded from
// the environment before parsing.
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var file File
	if err := yaml.Unmarshal([]byte(expanded), &file); err != nil {
		return File{}, fmt.Errorf("failed to parse profile yaml: %w", err)
	}

	return file, nil
}
