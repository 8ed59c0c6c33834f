// Package config provides configuration loading and management for
// cuberescale. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Processing parameters
	Processing struct {
		// Operation selects the cube operation: "resample" changes the
		// frame dimensions by the scale factor, "rescale" zooms frames
		// about a reference point at fixed dimensions.
		Operation string `yaml:"operation"`

		// Scale is the uniform scale factor used by the resample
		// operation, or the fallback factor for rescaling when no
		// wavelengths or explicit scale list are given.
		Scale float64 `yaml:"scale"`

		// Interpolation selects the resampling kernel: nearneig,
		// bilinear or bicubic.
		Interpolation string `yaml:"interpolation"`

		// Method selects the rescaling backend: geometric_transform or
		// affine_warp.
		Method string `yaml:"method"`

		// RefY and RefX anchor the rescale at an explicit (y, x)
		// coordinate. When either is omitted the frame center is used.
		RefY *float64 `yaml:"refY"`
		RefX *float64 `yaml:"refX"`

		// Workers bounds how many frames are processed concurrently.
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	// Input parameters
	Input struct {
		// Wavelengths gives the wavelength of each frame in micron,
		// in frame order. When set, the per-frame scale vector is
		// derived as max(wavelengths)/wavelength.
		Wavelengths []float64 `yaml:"wavelengths"`

		// Scales gives the per-frame scale factors directly. Ignored
		// when Wavelengths is set.
		Scales []float64 `yaml:"scales"`
	} `yaml:"input"`

	// Output parameters
	Output struct {
		// SaveCube determines whether every rescaled frame is written
		// out, in addition to the combined frame.
		SaveCube bool `yaml:"saveCube"`

		// Preview enables writing a downscaled 8-bit preview of the
		// combined frame.
		Preview bool `yaml:"preview"`

		// PreviewWidth is the pixel width of the preview image.
		PreviewWidth int `yaml:"previewWidth"`

		// Verbose controls the level of logging output.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.Operation = "rescale"
	cfg.Processing.Scale = 1.0
	cfg.Processing.Interpolation = "bicubic"
	cfg.Processing.Method = "affine_warp"
	cfg.Processing.Workers = runtime.NumCPU() // Use all available cores by default

	// Set default output parameters
	cfg.Output.SaveCube = true
	cfg.Output.Preview = false
	cfg.Output.PreviewWidth = 512
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
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

// SaveConfig saves the configuration to a YAML file.
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

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
