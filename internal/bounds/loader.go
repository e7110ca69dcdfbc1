package bounds

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a bounds YAML file. Unknown fields fail immediately so a
// typo never silently leaves a metric on its default interval. An empty
// path returns the built-in defaults.
func Load(path string, required []string) (*Config, error) {
	if path == "" {
		cfg := Default()
		if err := cfg.Validate(required); err != nil {
			return nil, fmt.Errorf("default bounds invalid: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bounds file: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse bounds file %s: %w", path, err)
	}

	if err := cfg.Validate(required); err != nil {
		return nil, fmt.Errorf("bounds file %s: %w", path, err)
	}

	return &cfg, nil
}
