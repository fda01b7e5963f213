// Package config loads the triplet configuration file describing what the
// recipe was expected to build.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/portlint/portlint/internal/domain"
	"gopkg.in/yaml.v3"
)

// YAMLLoader implements domain.ConfigLoader by reading a YAML triplet file.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads the triplet configuration from path. An empty path or a missing
// file yields the default configuration.
func (l *YAMLLoader) Load(path string) (domain.RunConfig, error) {
	if path == "" {
		return domain.DefaultRunConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultRunConfig(), nil
		}
		return domain.RunConfig{}, err
	}

	cfg := domain.DefaultRunConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.RunConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Validate before use — catches typos in the user's raw input.
	if err := cfg.Expected.Validate(); err != nil {
		return domain.RunConfig{}, fmt.Errorf("invalid %s: %w", path, err)
	}
	for _, name := range cfg.Policies {
		if _, ok := domain.ParsePolicy(name); !ok {
			return domain.RunConfig{}, fmt.Errorf("invalid %s: unknown policy %q", path, name)
		}
	}

	return cfg, nil
}
