package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"img2stitch/internal/config"
	"img2stitch/internal/format"
	"img2stitch/internal/imaging"
	"img2stitch/internal/logging"
	"img2stitch/internal/pipeline"
	"img2stitch/internal/render"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (JSON or YAML)")
	input := flag.String("input", "", "Input image (PNG, JPEG, TGA, BMP)")
	output := flag.String("output", "", "Output file (default: input name with format extension)")
	formatName := flag.String("format", "", "Target format: dst, pes, jef, exp, vp3, hus, pat, qcc (default: dst)")
	width := flag.Float64("width", 0, "Canvas width in mm (default: 100)")
	height := flag.Float64("height", 0, "Canvas height in mm (default: 100)")
	density := flag.Float64("density", 0, "Stitch density per mm² (default: 2)")
	threshold := flag.Int("threshold", 0, "Edge threshold 64-192 (default: 128)")
	angle := flag.Float64("angle", 0, "Fill angle in degrees")
	noUnderlay := flag.Bool("no-underlay", false, "Disable underlay stitching")
	pullComp := flag.Float64("pullcomp", 0, "Pull compensation in mm")
	threadColor := flag.String("color", "", "Thread color as #RRGGBB (default: #000000)")
	colorMode := flag.String("mode", "", "Color mode: grayscale or color (default: grayscale)")
	proof := flag.Bool("proof", false, "Write a WebP proof sheet next to the output")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg.Resolve(config.Flags{
		Input:   *input,
		Format:  *formatName,
		Width:   *width,
		Height:  *height,
		Density: *density,
	})
	if *threshold > 0 {
		cfg.EdgeThreshold = *threshold
	}
	if *angle != 0 {
		cfg.FillAngle = *angle
	}
	if *noUnderlay {
		f := false
		cfg.Underlay = &f
	}
	if *pullComp > 0 {
		cfg.PullCompensation = *pullComp
	}
	if *threadColor != "" {
		cfg.Color = *threadColor
	}
	if *colorMode != "" {
		cfg.ColorMode = *colorMode
	}
	if *proof {
		cfg.Proof = true
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logging.Init(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	if cfg.Input == "" {
		fmt.Fprintln(os.Stderr, "Error: no input image. Use -input or a config file.")
		flag.Usage()
		os.Exit(1)
	}

	f, err := format.Parse(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, err := imaging.Load(cfg.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s := cfg.Settings()
	img = imaging.Fit(img, s.Width, s.Height)

	name := strings.TrimSuffix(filepath.Base(cfg.Input), filepath.Ext(cfg.Input))
	p := pipeline.New(pipeline.Options{
		Settings: s,
		Name:     name,
		Logger:   logging.With("pipeline"),
		OnProgress: func(stage string, percent int) {
			if percent == 0 {
				fmt.Printf("  %-12s...", stage)
			} else {
				fmt.Println(" done")
			}
		},
	})

	fmt.Printf("Converting %s → %s\n", cfg.Input, f)
	pattern, err := p.Convert(ctx, img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}

	data, err := format.Convert(pattern, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	outPath := *output
	if outPath == "" {
		outPath = filepath.Join(cfg.OutputDir, name+f.Extension())
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	if cfg.Proof {
		proofPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".webp"
		sheet := render.ProofSheet(pattern, 512)
		if err := render.WriteWebP(proofPath, sheet); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing proof sheet: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Proof sheet: %s\n", proofPath)
	}

	fmt.Printf("Wrote %s: %d stitches, %d colors, %d bytes\n",
		outPath, len(pattern.Stitches), len(pattern.Colors), len(data))
}
