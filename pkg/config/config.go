// Package config provides configuration loading and management for msneuron.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Label handling
	Labels struct {
		// LegacyToggle replays the old curation tool, where toggling a
		// label always marked the neuron Bad
		LegacyToggle bool `yaml:"legacyToggle"`
	} `yaml:"labels"`

	// Logging parameters
	Logging struct {
		// Level is one of debug, info, warn, error
		Level string `yaml:"level"`

		// File redirects log output; empty means stderr
		File string `yaml:"file"`
	} `yaml:"logging"`

	// Spatial analysis parameters
	Analysis struct {
		// Neighbors is the number of nearest neighbours reported per neuron
		Neighbors int `yaml:"neighbors"`

		// MergeDistance is the centroid distance in pixels under which two
		// neurons are reported as possible duplicates
		MergeDistance float64 `yaml:"mergeDistance"`
	} `yaml:"analysis"`

	// Rendering parameters
	Render struct {
		// OutputDir is where footprint overlays and heat maps are written
		OutputDir string `yaml:"outputDir"`

		// JPEGQuality is passed to the JPEG encoder (1-100)
		JPEGQuality int `yaml:"jpegQuality"`

		// HeatMapSize is the side length of the distance heat map in inches
		HeatMapSize float64 `yaml:"heatMapSize"`
	} `yaml:"render"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Labels.LegacyToggle = false

	cfg.Logging.Level = "info"
	cfg.Logging.File = ""

	cfg.Analysis.Neighbors = 3
	cfg.Analysis.MergeDistance = 5.0

	cfg.Render.OutputDir = "render"
	cfg.Render.JPEGQuality = 95
	cfg.Render.HeatMapSize = 6

	return cfg
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Analysis.Neighbors < 0 {
		return fmt.Errorf("analysis.neighbors must be non-negative, got %d", c.Analysis.Neighbors)
	}
	if c.Analysis.MergeDistance < 0 {
		return fmt.Errorf("analysis.mergeDistance must be non-negative, got %g", c.Analysis.MergeDistance)
	}
	if c.Render.JPEGQuality < 1 || c.Render.JPEGQuality > 100 {
		return fmt.Errorf("render.jpegQuality must be in 1..100, got %d", c.Render.JPEGQuality)
	}
	if c.Render.HeatMapSize <= 0 {
		return fmt.Errorf("render.heatMapSize must be positive, got %g", c.Render.HeatMapSize)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
