package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2stitch/internal/settings"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"input": "cat.png",
		"format": "jef",
		"width_mm": 120,
		"density": 3.5,
		"underlay": false,
		"color": "#FF0000"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cat.png", cfg.Input)
	assert.Equal(t, "jef", cfg.Format)
	assert.Equal(t, 120.0, cfg.Width)
	assert.Equal(t, 3.5, cfg.Density)
	require.NotNil(t, cfg.Underlay)
	assert.False(t, *cfg.Underlay)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
input: dog.jpg
format: dst
width_mm: 80
height_mm: 60
color_mode: color
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dog.jpg", cfg.Input)
	assert.Equal(t, "dst", cfg.Format)
	assert.Equal(t, 80.0, cfg.Width)
	assert.Equal(t, 60.0, cfg.Height)
	assert.Equal(t, "color", cfg.ColorMode)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadBadSyntax(t *testing.T) {
	path := writeFile(t, "config.json", "{not json")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})

	def := settings.Default()
	assert.Equal(t, "dst", cfg.Format)
	assert.Equal(t, def.Width, cfg.Width)
	assert.Equal(t, def.Height, cfg.Height)
	assert.Equal(t, def.Density, cfg.Density)
	assert.Equal(t, def.EdgeThreshold, cfg.EdgeThreshold)
	assert.Equal(t, def.Color, cfg.Color)
	assert.Equal(t, "grayscale", cfg.ColorMode)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestResolveFlagsOverrideFile(t *testing.T) {
	cfg := Config{Input: "file.png", Format: "pes", Width: 50}
	cfg.Resolve(Flags{Input: "flag.png", Format: "exp", Workers: 3})

	assert.Equal(t, "flag.png", cfg.Input)
	assert.Equal(t, "exp", cfg.Format)
	assert.Equal(t, 50.0, cfg.Width, "file value survives when flag unset")
	assert.Equal(t, 3, cfg.Workers)
}

func TestSettingsConversion(t *testing.T) {
	under := false
	cfg := Config{
		Width: 80, Height: 60, Density: 4,
		EdgeThreshold: 100, FillAngle: 45,
		Underlay: &under, PullCompensation: 1.5,
		Color: "#00FF00", ColorMode: "color",
	}
	s := cfg.Settings()

	assert.Equal(t, 80.0, s.Width)
	assert.Equal(t, 60.0, s.Height)
	assert.Equal(t, 4.0, s.Density)
	assert.Equal(t, 100, s.EdgeThreshold)
	assert.Equal(t, 45.0, s.FillAngle)
	assert.False(t, s.UseUnderlay)
	assert.Equal(t, 1.5, s.PullCompensation)
	assert.Equal(t, "#00FF00", s.Color)
	assert.Equal(t, settings.Color, s.ColorMode)
}

func TestSettingsUnderlayDefaultsOn(t *testing.T) {
	s := (&Config{}).Settings()
	assert.True(t, s.UseUnderlay)
}
