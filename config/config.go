// Package config loads the optional .scryo.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"log/slog"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the working directory
// when no explicit path is given.
const DefaultFileName = ".scryo.yaml"

// Config mirrors the analyzer toggles plus file-discovery settings.
// CLI flags override anything loaded from the file.
//
// Thread Safety: immutable after loading; safe for concurrent use.
type Config struct {
	// Categories toggles which record categories are computed.
	Categories CategoryConfig `yaml:"categories"`

	// InnerCalls populates the commandsUsed/otherCalls side channels.
	InnerCalls *bool `yaml:"inner_calls"`

	// Scenarios enables the scenario-factory extension pass.
	Scenarios bool `yaml:"scenarios"`

	// Extensions adds file extensions to the discovery defaults.
	Extensions []string `yaml:"extensions"`

	// MaxFileSize caps analyzable file size in bytes. Zero keeps the
	// analyzer default.
	MaxFileSize int `yaml:"max_file_size"`
}

// CategoryConfig holds per-category toggles. Nil pointers keep the
// analyzer defaults (all categories on), so a config file only has to
// name the categories it wants to turn off.
type CategoryConfig struct {
	Added *bool `yaml:"added"`
	Used  *bool `yaml:"used"`
	Tests *bool `yaml:"tests"`
	Hooks *bool `yaml:"hooks"`
}

// Default returns the zero-value configuration, equivalent to running
// with no config file at all.
func Default() *Config {
	return &Config{}
}

// Load reads a config file. A missing file at the default path is a
// normal outcome and returns Default(); a missing file at an explicit
// path is an error, because the caller asked for that file.
func Load(path string, explicit bool) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			slog.Debug("no config file, using defaults", slog.String("path", path))
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.MaxFileSize < 0 {
		return nil, fmt.Errorf("config %s: max_file_size must not be negative", path)
	}

	slog.Debug("config loaded", slog.String("path", path))
	return cfg, nil
}

// enabled resolves a tri-state toggle against its default.
func enabled(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// CategoryToggles returns the effective added/used/tests/hooks toggles.
func (c *Config) CategoryToggles() (added, used, tests, hooks bool) {
	return enabled(c.Categories.Added, true),
		enabled(c.Categories.Used, true),
		enabled(c.Categories.Tests, true),
		enabled(c.Categories.Hooks, true)
}

// InnerCallsEnabled returns the effective inner-call toggle.
func (c *Config) InnerCallsEnabled() bool {
	return enabled(c.InnerCalls, true)
}
