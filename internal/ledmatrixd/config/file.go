package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load builds the effective Config: defaults, overlaid by the file at path
// (if non-empty and present), overlaid by LED_-prefixed environment
// variables, then validated. A missing path is not an error; a present but
// unparseable file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.overlayEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
