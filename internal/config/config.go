package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the dashboard.
type Config struct {
	DataPath  string  `yaml:"data_path"`
	Addr      string  `yaml:"addr"`
	LogFormat string  `yaml:"log_format"` // "text", "json" or "auto"
	RateLimit float64 `yaml:"rate_limit"` // requests per second per client, 0 disables
	Chart     Chart   `yaml:"chart"`
}

// Chart sizes the rendered percentile chart in pixels.
type Chart struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataPath:  "baseball-salaries-simplified.csv",
		Addr:      ":8080",
		LogFormat: "auto",
		Chart:     Chart{Width: 800, Height: 1000},
	}
}

// LoadFromFile reads a YAML config file and merges its non-empty values
// into c.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc Config
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.merge(fc)
	return c.Validate()
}

func (c *Config) merge(o Config) {
	if o.DataPath != "" {
		c.DataPath = o.DataPath
	}
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.RateLimit != 0 {
		c.RateLimit = o.RateLimit
	}
	if o.Chart.Width != 0 {
		c.Chart.Width = o.Chart.Width
	}
	if o.Chart.Height != 0 {
		c.Chart.Height = o.Chart.Height
	}
}

// Validate checks field values and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("data path is required")
	}
	switch c.LogFormat {
	case "text", "json", "auto":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.Chart.Width < 200 || c.Chart.Height < 200 {
		return fmt.Errorf("chart must be at least 200x200, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	return nil
}
