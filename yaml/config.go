// Package yaml loads pipeline configuration from YAML files.
package yaml

import (
	"os"

	"gopkg.in/yaml.v3"

	"kbharvest"
)

// LoadConfig reads, parses, and normalizes the configuration at path.
// Top-level problems return ECONFIG; per-source problems are left for
// the caller so a bad source disables itself, not the run.
func LoadConfig(path string) (*kbharvest.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kbharvest.Errorf(kbharvest.ECONFIG, "reading config %q: %v", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and normalizes raw YAML configuration.
func ParseConfig(data []byte) (*kbharvest.Config, error) {
	var cfg kbharvest.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, kbharvest.Errorf(kbharvest.ECONFIG, "parsing config: %v", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
