package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"img2stitch/internal/batch"
	"img2stitch/internal/config"
	"img2stitch/internal/format"
	"img2stitch/internal/logging"
)

// imageExts are the input extensions picked up by the directory scan.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tga":  true,
	".bmp":  true,
}

func main() {
	configFile := flag.String("config", "", "Path to config file (JSON or YAML)")
	inputDir := flag.String("input", "", "Directory of input images")
	outputDir := flag.String("output", "", "Output directory (default: current directory)")
	formatName := flag.String("format", "", "Target format (default: dst)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	testN := flag.Int("test", 0, "Convert only first N images for testing")
	proof := flag.Bool("proof", false, "Write WebP proof sheets alongside outputs")

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
		Input:     *inputDir,
		OutputDir: *outputDir,
		Format:    *formatName,
		Workers:   *workers,
	})
	if *proof {
		cfg.Proof = true
	}

	logging.Init(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	if cfg.Input == "" {
		fmt.Fprintln(os.Stderr, "Error: no input directory. Use -input or a config file.")
		os.Exit(1)
	}

	f, err := format.Parse(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	jobs, err := scanJobs(cfg.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *testN > 0 && *testN < len(jobs) {
		jobs = jobs[:*testN]
	}
	if len(jobs) == 0 {
		fmt.Println("No images to convert.")
		os.Exit(0)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Image → %s batch converter\n", strings.ToUpper(string(f)))
	fmt.Printf("Images: %d, Workers: %d\n", len(jobs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(ctx, batch.Config{
		OutputDir: cfg.OutputDir,
		Format:    f,
		Settings:  cfg,
		Workers:   cfg.Workers,
		Proof:     cfg.Proof,
	}, jobs)

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing manifest: %v\n", err)
	}

	ok, failed := 0, 0
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed++
			fmt.Printf("  FAIL %s: %s\n", r.Input, r.Error)
		}
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %s: %d converted, %d failed\n",
		time.Since(start).Round(time.Millisecond), ok, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// scanJobs lists the image files in dir, sorted by name.
func scanJobs(dir string) ([]batch.Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var jobs []batch.Job
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			jobs = append(jobs, batch.Job{Path: filepath.Join(dir, e.Name())})
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Path < jobs[j].Path })
	return jobs, nil
}
