// Package config loads the optional ~/.titi/config.yaml file used by
// cmd/titi-server (via internal/servercmd): YAML unmarshal with a
// missing-file-is-empty-config fallback. CLI flags always override
// whatever this file sets.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of ~/.titi/config.yaml.
type Config struct {
	Listen    string `yaml:"listen"`
	TokenFile string `yaml:"token_file"`
}

// DefaultPath returns ~/.titi/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolving home directory: %w", err)
	}
	return filepath.Join(home, ".titi", "config.yaml"), nil
}

// Load reads the config from ~/.titi/config.yaml. If the file does not
// exist, it returns an empty Config with no error.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path. If the file does not
// exist, it returns an empty Config with no error.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}
