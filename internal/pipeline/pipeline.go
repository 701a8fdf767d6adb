// Package pipeline sequences the conversion stages from a raw RGBA image to
// an optimized stitch pattern. Stages are pure transforms; the Pipeline
// value owns the intermediate buffers and reports progress at stage
// boundaries.
package pipeline

import (
	"context"
	"image"
	"log/slog"
	"time"

	"img2stitch/internal/bitmap"
	"img2stitch/internal/contour"
	"img2stitch/internal/edge"
	"img2stitch/internal/errs"
	"img2stitch/internal/geom"
	"img2stitch/internal/quantize"
	"img2stitch/internal/settings"
	"img2stitch/internal/stitch"
)

// Stage names reported through the progress callback, in execution order.
const (
	StageProcessing = "processing"
	StageBitmap     = "bitmap"
	StageEdges      = "edges"
	StageContours   = "contours"
	StageGenerating = "generating"
	StageOptimizing = "optimizing"
)

// minPatternStitches is the smallest sewable pattern.
const minPatternStitches = 10

// ProgressFunc receives the stage name and a percentage (0 on entry,
// 100 on exit). Callbacks fire from the goroutine running Convert.
type ProgressFunc func(stage string, percent int)

// Options configures a Pipeline.
type Options struct {
	Settings   settings.Processing
	Name       string // pattern name for metadata; defaults to "untitled"
	OnProgress ProgressFunc
	Logger     *slog.Logger
}

// Pipeline converts one image per invocation. A Pipeline is not safe for
// concurrent use; create one per conversion.
type Pipeline struct {
	settings settings.Processing
	adjusted []string
	name     string
	progress ProgressFunc
	log      *slog.Logger
}

// New builds a Pipeline, sanitizing the settings up front.
func New(opts Options) *Pipeline {
	s, adjusted := settings.Sanitize(opts.Settings)
	name := opts.Name
	if name == "" {
		name = "untitled"
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		settings: s,
		adjusted: adjusted,
		name:     name,
		progress: opts.OnProgress,
		log:      log,
	}
}

// Settings returns the sanitized parameters the pipeline runs with.
func (p *Pipeline) Settings() settings.Processing { return p.settings }

// Adjusted returns the names of settings fields the sanitizer had to clamp.
func (p *Pipeline) Adjusted() []string { return p.adjusted }

// Convert runs the full stage sequence and returns the finished pattern.
// Cancellation is checked at stage boundaries.
func (p *Pipeline) Convert(ctx context.Context, img *image.NRGBA) (*stitch.Pattern, error) {
	if img == nil || len(img.Pix) == 0 || img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return nil, errs.New(errs.InvalidInput, "missing or empty image")
	}

	if len(p.adjusted) > 0 {
		p.log.Warn("settings adjusted", "fields", p.adjusted)
	}

	// Stage 1: palette quantization
	if err := p.enter(ctx, StageProcessing); err != nil {
		return nil, err
	}
	quantized, usedColors, err := quantize.ProcessImage(img, p.settings.ColorMode)
	if err != nil {
		return nil, errs.WithStage(err, StageProcessing)
	}
	p.exit(StageProcessing)

	// Stage 2: bitmap normalization
	if err := p.enter(ctx, StageBitmap); err != nil {
		return nil, err
	}
	bm, err := bitmap.CreateBitmap(quantized)
	if err != nil {
		return nil, errs.WithStage(err, StageBitmap)
	}
	p.exit(StageBitmap)

	// Stage 3: edge detection
	if err := p.enter(ctx, StageEdges); err != nil {
		return nil, err
	}
	edges, err := edge.DetectEdges(bm, p.settings.EdgeThreshold)
	if err != nil {
		return nil, errs.WithStage(err, StageEdges)
	}
	p.exit(StageEdges)

	// Stage 4: contour tracing
	if err := p.enter(ctx, StageContours); err != nil {
		return nil, err
	}
	contours := contour.TraceContours(edges)
	if len(contours) == 0 {
		return nil, errs.WithStage(errs.New(errs.NoContours, "no contours traced"), StageContours)
	}
	p.exit(StageContours)

	// Contours are in pixel space; scale onto the target canvas.
	contours = scaleToCanvas(contours, edges.Bounds().Dx(), edges.Bounds().Dy(), p.settings.Width, p.settings.Height)

	// Stage 5: stitch planning
	if err := p.enter(ctx, StageGenerating); err != nil {
		return nil, err
	}
	planned := stitch.Generate(contours, p.settings)
	p.exit(StageGenerating)

	// Stage 6: optimization
	if err := p.enter(ctx, StageOptimizing); err != nil {
		return nil, err
	}
	optimized, err := stitch.Optimize(planned)
	if err != nil {
		return nil, errs.WithStage(err, StageOptimizing)
	}
	p.exit(StageOptimizing)

	if len(optimized) < minPatternStitches {
		return nil, errs.New(errs.InsufficientStitches, "%d stitches after optimization, need %d", len(optimized), minPatternStitches)
	}
	for i, s := range optimized {
		if !s.Point().Finite() {
			return nil, errs.New(errs.InvalidCoordinates, "stitch %d at (%g, %g)", i, s.X, s.Y)
		}
	}

	// The planner stitches with the configured thread color; make sure it
	// is listed alongside the quantizer's used set.
	colors := usedColors
	if !containsColor(colors, p.settings.Color) {
		colors = append(append([]string(nil), colors...), p.settings.Color)
	}

	pattern := &stitch.Pattern{
		Stitches: optimized,
		Colors:   colors,
		Width:    p.settings.Width,
		Height:   p.settings.Height,
		Metadata: stitch.Metadata{
			Name:   p.name,
			Date:   time.Now().Format(time.RFC3339),
			Format: "internal",
		},
	}

	p.log.Info("conversion complete",
		"stitches", len(pattern.Stitches),
		"colors", len(pattern.Colors),
		"contours", len(contours))

	return pattern, nil
}

// enter checks cancellation and fires the 0% callback for a stage.
func (p *Pipeline) enter(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.Cancelled, err, "cancelled before %s", stage)
	}
	if p.progress != nil {
		p.progress(stage, 0)
	}
	return nil
}

func (p *Pipeline) exit(stage string) {
	if p.progress != nil {
		p.progress(stage, 100)
	}
}

func containsColor(colors []string, c string) bool {
	for _, v := range colors {
		if v == c {
			return true
		}
	}
	return false
}

// scaleToCanvas maps pixel-space contour points onto the target canvas in
// millimeters. Each axis is scaled on its own so the grid's corner pixels
// land on the canvas corners; the aspect ratio is not preserved.
func scaleToCanvas(contours [][]geom.Point, pxW, pxH int, wMM, hMM float64) [][]geom.Point {
	if pxW <= 1 || pxH <= 1 {
		return contours
	}
	sx := wMM / float64(pxW-1)
	sy := hMM / float64(pxH-1)
	out := make([][]geom.Point, len(contours))
	for i, c := range contours {
		sc := make([]geom.Point, len(c))
		for j, p := range c {
			sc[j] = geom.Point{X: p.X * sx, Y: p.Y * sy}
		}
		out[i] = sc
	}
	return out
}
