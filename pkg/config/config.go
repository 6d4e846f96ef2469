// Package config provides configuration loading and management for voxelgrid.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"voxelgrid/internal/models"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Geometry comparison parameters used by the elementwise operators
	Geometry struct {
		// RelativeTolerance bounds relative drift of origin and spacing
		RelativeTolerance float64 `yaml:"relativeTolerance"`

		// AbsoluteTolerance is the absolute floor applied near zero
		AbsoluteTolerance float64 `yaml:"absoluteTolerance"`

		// DirectionTolerance bounds per-entry drift of the direction matrix
		DirectionTolerance float64 `yaml:"directionTolerance"`
	} `yaml:"geometry"`

	// Cache parameters for the asset fetcher
	Cache struct {
		// Dir is the directory downloaded assets are stored in
		Dir string `yaml:"dir"`

		// Assets maps logical asset names to source URLs
		Assets map[string]string `yaml:"assets"`
	} `yaml:"cache"`

	// Viewer parameters for plane rendering
	Viewer struct {
		// JpegQuality is the encode quality for saved planes (1-100)
		JpegQuality int `yaml:"jpegQuality"`

		// PlaneFormat is the extension used by saved plane sequences
		PlaneFormat string `yaml:"planeFormat"`
	} `yaml:"viewer"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Geometry.RelativeTolerance = models.DefaultTolerance.Relative
	cfg.Geometry.AbsoluteTolerance = models.DefaultTolerance.Absolute
	cfg.Geometry.DirectionTolerance = models.DefaultTolerance.Direction

	cfg.Cache.Dir = filepath.Join(os.TempDir(), "voxelgrid-cache")
	cfg.Cache.Assets = map[string]string{}

	cfg.Viewer.JpegQuality = 90
	cfg.Viewer.PlaneFormat = "jpg"

	return cfg
}

// Tolerance converts the geometry section into the comparison tolerance
// used by the elementwise operators.
func (cfg *Config) Tolerance() models.Tolerance {
	return models.Tolerance{
		Relative:  cfg.Geometry.RelativeTolerance,
		Absolute:  cfg.Geometry.AbsoluteTolerance,
		Direction: cfg.Geometry.DirectionTolerance,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
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
