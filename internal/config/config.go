// Package config resolves the module's on-disk configuration and data
// directories and loads/saves the YAML-tagged Config struct.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config is the top-level on-disk configuration for the graph store and its
// surrounding CLI/extraction tooling.
type Config struct {
	Graph     GraphConfig     `yaml:"graph"`
	Extract   ExtractConfig   `yaml:"extract"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GraphConfig controls the embedded database backing the graph index.
type GraphConfig struct {
	// DatabasePath is a database file location stored in the config file.
	// db.OpenDefault and the nexus CLI do not read it: they open --db or
	// <data dir>/graph.sqlite.
	DatabasePath string `yaml:"database_path,omitempty"`
}

// ExtractConfig controls the concurrent extraction builder (internal/extract).
type ExtractConfig struct {
	// MaxProducers is a worker count for the extraction builder, stored in
	// the config file. extract.Builder does not read it; Ingest always runs
	// four workers.
	MaxProducers int `yaml:"max_producers,omitempty"`
	// WatchDir is a tuple-file directory stored in the config file. `nexus
	// watch` does not read it; the directory is always its argument.
	WatchDir string `yaml:"watch_dir,omitempty"`
}

// TelemetryConfig is the telemetry section of the config file. The
// telemetry package does not read it: spans and metrics always go to the
// global OTel providers.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// GetConfigDir returns the XDG-compliant config directory.
func GetConfigDir() (string, error) {
	if override := os.Getenv("NEXUS_CONFIG_DIR"); override != "" {
		return override, nil
	}

	var base string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		base = xdg
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "nexus"), nil
}

// GetDataDir returns the platform-specific data directory.
func GetDataDir() (string, error) {
	if override := os.Getenv("NEXUS_DATA_DIR"); override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Nexus"), nil
	}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "nexus"), nil
	}

	return filepath.Join(home, ".local", "share", "nexus"), nil
}

// Load loads config from the config file, returning defaults if none exists.
func Load() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Save saves the config to the config file.
func (c *Config) Save() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
