// Package config loads conversion settings from a JSON or YAML file and
// merges CLI flag overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"img2stitch/internal/settings"
)

// Config holds all configurable conversion and output settings.
type Config struct {
	// Paths
	Input     string `json:"input" yaml:"input"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Conversion settings
	Format           string  `json:"format" yaml:"format"`
	Width            float64 `json:"width_mm" yaml:"width_mm"`
	Height           float64 `json:"height_mm" yaml:"height_mm"`
	Density          float64 `json:"density" yaml:"density"`
	EdgeThreshold    int     `json:"edge_threshold" yaml:"edge_threshold"`
	FillAngle        float64 `json:"fill_angle" yaml:"fill_angle"`
	Underlay         *bool   `json:"underlay" yaml:"underlay"`
	PullCompensation float64 `json:"pull_compensation" yaml:"pull_compensation"`
	Color            string  `json:"color" yaml:"color"`
	ColorMode        string  `json:"color_mode" yaml:"color_mode"`

	// Output settings
	Proof   bool `json:"proof" yaml:"proof"`
	Workers int  `json:"workers" yaml:"workers"`

	// Logging
	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file" yaml:"log_file"`
}

// Load reads a config file. The format is chosen by extension: .yaml/.yml
// parse as YAML, everything else as JSON. Fields not set in the file keep
// their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Input     string
	OutputDir string
	Format    string
	Width     float64
	Height    float64
	Density   float64
	Workers   int
}

// Resolve fills in any empty fields with defaults. CLI flags take priority
// when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Input != "" {
		c.Input = flags.Input
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Density > 0 {
		c.Density = flags.Density
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	def := settings.Default()
	if c.Format == "" {
		c.Format = "dst"
	}
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.Density <= 0 {
		c.Density = def.Density
	}
	if c.EdgeThreshold <= 0 {
		c.EdgeThreshold = def.EdgeThreshold
	}
	if c.Color == "" {
		c.Color = def.Color
	}
	if c.ColorMode == "" {
		c.ColorMode = def.ColorMode.String()
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Settings converts the file/flag values into pipeline parameters. Range
// clamping is the sanitizer's job, not ours.
func (c *Config) Settings() settings.Processing {
	underlay := true
	if c.Underlay != nil {
		underlay = *c.Underlay
	}
	return settings.Processing{
		Width:            c.Width,
		Height:           c.Height,
		Density:          c.Density,
		EdgeThreshold:    c.EdgeThreshold,
		FillAngle:        c.FillAngle,
		UseUnderlay:      underlay,
		PullCompensation: c.PullCompensation,
		Color:            c.Color,
		ColorMode:        settings.ParseColorMode(c.ColorMode),
	}
}
