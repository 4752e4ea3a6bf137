package params

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML parameter file. Values not present in the file
// keep the provided defaults.
func LoadConfig(path string, defaults Parameters) (Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("reading config: %w", err)
	}
	p := defaults
	if err := yaml.Unmarshal(data, &p); err != nil {
		return defaults, fmt.Errorf("parsing config: %w", err)
	}
	return p, nil
}

// SaveConfig writes the current parameters as a YAML file. Sizes serialize
// through the size-string grammar, so the file stays hand-editable.
func SaveConfig(path string, p Parameters) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
