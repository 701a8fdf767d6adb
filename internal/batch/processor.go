// Package batch converts many images with a worker pool and writes a
// manifest describing the outputs.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"img2stitch/internal/config"
	"img2stitch/internal/format"
	"img2stitch/internal/imaging"
	"img2stitch/internal/logging"
	"img2stitch/internal/pipeline"
	"img2stitch/internal/render"
)

// proofSize is the pixel size of proof-sheet images.
const proofSize = 512

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir string
	Format    format.Format
	Settings  config.Config
	Workers   int
	Proof     bool
}

// Job is one input image to convert.
type Job struct {
	Path string
}

// Result holds the outcome of processing one job.
type Result struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	Stitches int    `json:"stitches"`
	Colors   int    `json:"colors"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// Run processes all jobs using a worker pool. Results are indexed like
// jobs; a periodic progress line reports throughput.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	log := logging.With("batch")
	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					log.Info("progress", "done", p, "total", total,
						"rate", fmt.Sprintf("%.1f/sec", float64(p)/elapsed))
				}
			}
		}
	}()

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(ctx, cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(ctx context.Context, cfg Config, job Job) Result {
	res := Result{Input: job.Path}

	img, err := imaging.Load(job.Path)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	s := cfg.Settings.Settings()
	img = imaging.Fit(img, s.Width, s.Height)

	name := strings.TrimSuffix(filepath.Base(job.Path), filepath.Ext(job.Path))
	p := pipeline.New(pipeline.Options{
		Settings: s,
		Name:     name,
		Logger:   logging.With("pipeline"),
	})

	pattern, err := p.Convert(ctx, img)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	data, err := format.Convert(pattern, cfg.Format)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	outPath := filepath.Join(cfg.OutputDir, name+cfg.Format.Extension())
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		res.Error = err.Error()
		return res
	}

	if cfg.Proof {
		proofPath := filepath.Join(cfg.OutputDir, name+".webp")
		sheet := render.ProofSheet(pattern, proofSize)
		if err := render.WriteWebP(proofPath, sheet); err != nil {
			res.Error = fmt.Sprintf("proof sheet: %v", err)
			return res
		}
	}

	res.Output = outPath
	res.Stitches = len(pattern.Stitches)
	res.Colors = len(pattern.Colors)
	res.Success = true
	return res
}
