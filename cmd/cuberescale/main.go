package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"strconv"
	"strings"
	"time"

	"cuberescale/pkg/config"
	"cuberescale/pkg/cube"
	"cuberescale/pkg/pipeline"
)

func main() {
	// Parse command line arguments
	inputDir := flag.String("input", "", "Directory containing the cube's frame images")
	outputDir := flag.String("output", "output", "Directory to write the processed frames to")
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	writeConfig := flag.Bool("write-config", false, "Write a default configuration file to the -config path and exit")
	operation := flag.String("op", "", "Cube operation: resample or rescale")
	scale := flag.Float64("scale", 0, "Uniform scale factor")
	interpolation := flag.String("interp", "", "Resampling kernel: nearneig, bilinear or bicubic")
	method := flag.String("method", "", "Rescaling backend: geometric_transform or affine_warp")
	refY := flag.Float64("ref-y", -1, "Rescale anchor row (default: frame center)")
	refX := flag.Float64("ref-x", -1, "Rescale anchor column (default: frame center)")
	wavelengths := flag.String("wavelengths", "", "Comma-separated per-frame wavelengths in micron")
	preview := flag.Bool("preview", false, "Also write a downscaled preview of the combined frame")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of CPU cores to use (default: all available)")
	quiet := flag.Bool("quiet", false, "Suppress progress output")
	flag.Parse()

	if *writeConfig {
		if *configPath == "" {
			log.Fatal("-write-config requires -config")
		}
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config file: %v", err)
		}
		fmt.Printf("Wrote default configuration to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *inputDir == "" {
		flag.Usage()
		log.Fatal("-input is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Command line flags override the configuration file
	if *operation != "" {
		cfg.Processing.Operation = *operation
	}
	if *scale != 0 {
		cfg.Processing.Scale = *scale
	}
	if *interpolation != "" {
		cfg.Processing.Interpolation = *interpolation
	}
	if *method != "" {
		cfg.Processing.Method = *method
	}
	if *refY >= 0 {
		cfg.Processing.RefY = refY
	}
	if *refX >= 0 {
		cfg.Processing.RefX = refX
	}
	if *wavelengths != "" {
		parsed, err := parseFloatList(*wavelengths)
		if err != nil {
			log.Fatalf("Invalid -wavelengths: %v", err)
		}
		cfg.Input.Wavelengths = parsed
	}
	if *preview {
		cfg.Output.Preview = true
	}
	cfg.Processing.Workers = *workers
	if *quiet {
		cfg.Output.Verbose = false
	}

	if cfg.Output.Verbose {
		fmt.Println("================================")
		fmt.Println("CUBERESCALE - SPECTRAL CUBE RESAMPLING AND RESCALING")
		fmt.Println("================================")
	}

	runner := pipeline.NewRunner(&pipeline.Params{
		InputDir:  *inputDir,
		OutputDir: *outputDir,
		Config:    cfg,
	})

	startTime := time.Now()
	if err := runner.Process(); err != nil {
		log.Fatalf("Processing failed: %v", err)
	}
	processingTime := time.Since(startTime)

	result := runner.Result()
	rows, cols := result.Dims()
	stats := cube.Stats(runner.Combined())

	fmt.Printf("\nProcessing completed in %.2f seconds\n", processingTime.Seconds())
	fmt.Printf("Result cube: %d frames of %dx%d pixels\n", result.NFrames(), rows, cols)
	fmt.Printf("Combined frame: min %.4g, max %.4g, mean %.4g, stddev %.4g\n",
		stats.Min, stats.Max, stats.Mean, stats.StdDev)
	fmt.Printf("Output written to: %s\n", *outputDir)
}

// parseFloatList parses a comma-separated list of floats.
func parseFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", part, err)
		}
		values = append(values, v)
	}
	return values, nil
}
