package batch

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2stitch/internal/config"
	"img2stitch/internal/format"
)

// writeSquarePNG writes a white-square-on-black test image.
func writeSquarePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			i := img.PixOffset(x, y)
			v := uint8(0)
			if x >= 20 && x < 80 && y >= 20 && y < 80 {
				v = 255
			}
			img.Pix[i] = v
			img.Pix[i+1] = v
			img.Pix[i+2] = v
			img.Pix[i+3] = 255
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func batchConfig(outDir string) Config {
	var cfg config.Config
	cfg.Resolve(config.Flags{})
	return Config{
		OutputDir: outDir,
		Format:    format.DST,
		Settings:  cfg,
		Workers:   2,
	}
}

func TestRunConvertsImages(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	jobs := []Job{
		{Path: writeSquarePNG(t, inDir, "a.png")},
		{Path: writeSquarePNG(t, inDir, "b.png")},
	}

	results := Run(context.Background(), batchConfig(outDir), jobs)
	require.Len(t, results, 2)

	for i, r := range results {
		require.True(t, r.Success, "job %d: %s", i, r.Error)
		assert.Greater(t, r.Stitches, 0)
		assert.FileExists(t, r.Output)
		assert.Equal(t, ".dst", filepath.Ext(r.Output))
	}
}

func TestRunReportsFailures(t *testing.T) {
	outDir := t.TempDir()
	jobs := []Job{{Path: filepath.Join(t.TempDir(), "missing.png")}}

	results := Run(context.Background(), batchConfig(outDir), jobs)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Error)
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	results := []Result{
		{Input: "a.png", Output: "a.dst", Stitches: 42, Colors: 1, Success: true},
		{Input: "b.png", Error: "no contours"},
	}
	require.NoError(t, WriteManifest(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, results, decoded)
}
