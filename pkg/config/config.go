// Package config provides collection description loading for xrdkit.
// It handles loading descriptions from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"xrdkit/pkg/imageset"
)

// Config represents a collection description loaded from YAML
type Config struct {
	// Lookup names the external correction files. The filenames are carried
	// into the collection lookup as-is; reading the payloads is the format
	// layer's job.
	Lookup struct {
		// Mask is the path of the external bad-pixel mask
		Mask string `yaml:"mask"`

		// Gain is the path of the external gain map
		Gain string `yaml:"gain"`

		// Pedestal is the path of the external pedestal map
		Pedestal string `yaml:"pedestal"`
	} `yaml:"lookup"`

	// Properties holds free-form collection metadata
	Properties map[string]string `yaml:"properties"`

	// Grid declares the grid shape of a still collection; both sides zero
	// means the collection is a plain sequence
	Grid struct {
		// Width is the number of grid columns
		Width int `yaml:"width"`

		// Height is the number of grid rows
		Height int `yaml:"height"`
	} `yaml:"grid"`
}

// Default returns an empty description: no lookup files, no properties and
// no grid
func Default() *Config {
	return &Config{Properties: map[string]string{}}
}

// Load loads a collection description from a YAML file
// If the file doesn't exist, it returns the default description
func Load(path string) (*Config, error) {
	cfg := Default()

	// Check if the description file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read description file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// Save saves the description to a YAML file
func Save(cfg *Config, path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal description to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// HasGrid reports whether the description declares a grid shape.
func (c *Config) HasGrid() bool {
	return c.Grid.Width != 0 || c.Grid.Height != 0
}

// Apply writes the description onto collection data: the properties first,
// then the lookup filenames. Lookup payloads are left untouched; the format
// layer loads them against the recorded names.
func (c *Config) Apply(data *imageset.Data) {
	for name, value := range c.Properties {
		data.SetProperty(name, value)
	}
	lookup := data.Lookup()
	if c.Lookup.Mask != "" {
		lookup.Mask().SetFilename(c.Lookup.Mask)
	}
	if c.Lookup.Gain != "" {
		lookup.Gain().SetFilename(c.Lookup.Gain)
	}
	if c.Lookup.Pedestal != "" {
		lookup.Pedestal().SetFilename(c.Lookup.Pedestal)
	}
}

// NewCollection applies the description to data and returns the view it
// declares: a grid-shaped view when a grid is present, otherwise a plain
// view over every image.
func (c *Config) NewCollection(data *imageset.Data) *imageset.ImageSet {
	c.Apply(data)
	if c.HasGrid() {
		grid := imageset.NewGrid(data, c.Grid.Width, c.Grid.Height)
		return &grid.ImageSet
	}
	return imageset.New(data)
}
