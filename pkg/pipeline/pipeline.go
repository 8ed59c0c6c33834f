// Package pipeline drives the end-to-end cube alignment flow: loading a
// stack of frame images from disk, deriving and normalizing the per-frame
// scale vector, resampling or rescaling the cube, median-combining the
// result, and writing the output frames.
package pipeline

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"gonum.org/v1/gonum/mat"

	"cuberescale/internal/models"
	"cuberescale/pkg/config"
	"cuberescale/pkg/cube"
	"cuberescale/pkg/interpolation"
	"cuberescale/pkg/rescaling"
	"cuberescale/pkg/visualization"
)

// Params holds the pipeline configuration.
type Params struct {
	// InputDir is the directory containing the cube's frame images
	// (PNG or JPEG), one file per frame, ordered by the numeric part of
	// their filenames.
	InputDir string

	// OutputDir is the directory the result frames are written to.
	OutputDir string

	// Config carries the processing, input and output settings. Nil
	// selects the defaults.
	Config *config.Config
}

// Runner executes the alignment pipeline. Create one with NewRunner, call
// Process, then read the results through the accessors.
type Runner struct {
	params *Params
	cfg    *config.Config

	// files holds the discovered frame files in cube order
	files []models.FrameFile

	// input is the loaded cube
	input *cube.Cube

	// scales is the normalized per-frame scale vector used for rescaling
	scales []float64

	// result is the processed cube
	result *cube.Cube

	// combined is the median-combined frame of the result
	combined *mat.Dense
}

// NewRunner creates a pipeline runner with the provided parameters.
func NewRunner(params *Params) *Runner {
	cfg := params.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Runner{params: params, cfg: cfg}
}

// Process runs the complete pipeline.
func (r *Runner) Process() error {
	r.logf("Step 1: Loading input frames from %s...\n", r.params.InputDir)
	if err := r.loadFrames(); err != nil {
		return fmt.Errorf("failed to load frames: %v", err)
	}
	rows, cols := r.input.Dims()
	r.logf("Loaded %d frames of %dx%d pixels\n", r.input.NFrames(), rows, cols)
	if r.cfg.Output.Verbose {
		stats := cube.Stats(r.input.Frame(0))
		r.logf("First frame: min %.4g max %.4g mean %.4g stddev %.4g\n",
			stats.Min, stats.Max, stats.Mean, stats.StdDev)
	}

	r.logf("Step 2: Preparing the scale vector...\n")
	if err := r.prepareScales(); err != nil {
		return fmt.Errorf("failed to prepare scale vector: %v", err)
	}

	r.logf("Step 3: Applying %s...\n", r.cfg.Processing.Operation)
	if err := r.runOperation(); err != nil {
		return fmt.Errorf("failed to %s cube: %v", r.cfg.Processing.Operation, err)
	}

	r.logf("Step 4: Combining frames...\n")
	if r.combined == nil {
		combined, err := r.result.MedianCombine()
		if err != nil {
			return fmt.Errorf("failed to combine frames: %v", err)
		}
		r.combined = combined
	}
	stats := cube.Stats(r.combined)
	r.logf("Combined frame: min %.4g max %.4g mean %.4g stddev %.4g\n",
		stats.Min, stats.Max, stats.Mean, stats.StdDev)

	if r.params.OutputDir != "" {
		r.logf("Step 5: Writing results to %s...\n", r.params.OutputDir)
		if err := r.saveResults(); err != nil {
			return fmt.Errorf("failed to save results: %v", err)
		}
	}

	return nil
}

// Result returns the processed cube.
func (r *Runner) Result() *cube.Cube {
	return r.result
}

// Combined returns the median-combined frame of the processed cube.
func (r *Runner) Combined() *mat.Dense {
	return r.combined
}

// Scales returns the normalized per-frame scale vector. Empty for the
// resample operation, which uses a single shared factor.
func (r *Runner) Scales() []float64 {
	return r.scales
}

// frameIndexPattern extracts the trailing number of a frame filename, so
// "frame_012.png" sorts as 12.
var frameIndexPattern = regexp.MustCompile(`(\d+)\D*$`)

// loadFrames discovers, orders and decodes the frame images in InputDir.
func (r *Runner) loadFrames() error {
	entries, err := os.ReadDir(r.params.InputDir)
	if err != nil {
		return fmt.Errorf("reading input directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
		default:
			continue
		}

		file := models.FrameFile{Path: filepath.Join(r.params.InputDir, entry.Name())}
		if m := frameIndexPattern.FindStringSubmatch(entry.Name()); m != nil {
			if idx, err := strconv.Atoi(m[1]); err == nil {
				file.Index = idx
			}
		}
		r.files = append(r.files, file)
	}
	if len(r.files) == 0 {
		return fmt.Errorf("no frame images found in %s", r.params.InputDir)
	}
	models.SortFrameFiles(r.files)

	if n := len(r.cfg.Input.Wavelengths); n > 0 {
		if n != len(r.files) {
			return fmt.Errorf("config lists %d wavelengths for %d frames", n, len(r.files))
		}
		for i := range r.files {
			r.files[i].Wavelength = r.cfg.Input.Wavelengths[i]
		}
	}

	frames := make([]*mat.Dense, len(r.files))
	for i, file := range r.files {
		frame, err := loadFrame(file.Path)
		if err != nil {
			return fmt.Errorf("loading frame %d (%s): %w", i, file.Path, err)
		}
		frames[i] = frame
	}

	c, err := cube.New(frames...)
	if err != nil {
		return err
	}
	r.input = c
	return nil
}

// loadFrame decodes a single frame image into a float frame.
func loadFrame(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return visualization.FrameFromImage(img)
}

// prepareScales derives the per-frame scale vector for the rescale
// operation: from the wavelength axis when available, from an explicit
// scale list otherwise, and as a last resort from the uniform scale
// factor. The vector is normalized so its minimum is exactly 1.
func (r *Runner) prepareScales() error {
	if r.cfg.Processing.Operation != "rescale" {
		r.logf("Resampling uses the uniform factor %g, no scale vector needed\n",
			r.cfg.Processing.Scale)
		return nil
	}

	n := r.input.NFrames()
	var scales []float64
	switch {
	case len(r.cfg.Input.Wavelengths) > 0:
		derived, err := rescaling.ScalesFromWavelengths(r.cfg.Input.Wavelengths)
		if err != nil {
			return err
		}
		scales = derived
		r.logf("Derived %d scale factors from the wavelength axis\n", len(scales))

	case len(r.cfg.Input.Scales) > 0:
		if len(r.cfg.Input.Scales) != n {
			return fmt.Errorf("config lists %d scale factors for %d frames", len(r.cfg.Input.Scales), n)
		}
		scales = r.cfg.Input.Scales
		r.logf("Using %d scale factors from the configuration\n", len(scales))

	default:
		scales = make([]float64, n)
		for i := range scales {
			scales[i] = r.cfg.Processing.Scale
		}
		r.logf("Using the uniform factor %g for all %d frames\n", r.cfg.Processing.Scale, n)
	}

	normalized, err := rescaling.NormalizeScales(scales)
	if err != nil {
		return err
	}
	r.scales = make([]float64, normalized.Len())
	for i := range r.scales {
		r.scales[i] = normalized.AtVec(i)
	}
	return nil
}

// runOperation dispatches to the configured cube operation.
func (r *Runner) runOperation() error {
	switch r.cfg.Processing.Operation {
	case "resample":
		kind, err := interpolation.ParseKind(r.cfg.Processing.Interpolation)
		if err != nil {
			return err
		}
		result, err := rescaling.ResampleCube(r.input, r.cfg.Processing.Scale, kind,
			&rescaling.ResampleOptions{Workers: r.cfg.Processing.Workers})
		if err != nil {
			return err
		}
		r.result = result
		return nil

	case "rescale":
		method, err := rescaling.ParseMethod(r.cfg.Processing.Method)
		if err != nil {
			return err
		}
		result, combined, err := rescaling.RescaleCube(r.input, r.scales, &rescaling.CubeRescaleOptions{
			RefY:    r.cfg.Processing.RefY,
			RefX:    r.cfg.Processing.RefX,
			Method:  method,
			Workers: r.cfg.Processing.Workers,
		})
		if err != nil {
			return err
		}
		r.result = result
		r.combined = combined
		return nil
	}

	return fmt.Errorf("unknown operation %q: valid operations are resample, rescale", r.cfg.Processing.Operation)
}

// saveResults writes the result frames, the combined frame, and the
// optional preview.
func (r *Runner) saveResults() error {
	if err := os.MkdirAll(r.params.OutputDir, 0755); err != nil {
		return err
	}

	if r.cfg.Output.SaveCube {
		framesDir := filepath.Join(r.params.OutputDir, "frames")
		if err := visualization.SaveCubeSequence(r.result, framesDir); err != nil {
			return err
		}
		r.logf("Wrote %d result frames to %s\n", r.result.NFrames(), framesDir)
	}

	combinedPath := filepath.Join(r.params.OutputDir, "combined.png")
	if err := visualization.SaveFrame(r.combined, combinedPath); err != nil {
		return err
	}
	r.logf("Wrote combined frame to %s\n", combinedPath)

	if r.cfg.Output.Preview {
		previewPath := filepath.Join(r.params.OutputDir, "preview.png")
		if err := visualization.SavePreview(r.combined, r.cfg.Output.PreviewWidth, previewPath); err != nil {
			return err
		}
		r.logf("Wrote preview to %s\n", previewPath)
	}
	return nil
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.cfg.Output.Verbose {
		fmt.Printf(format, args...)
	}
}
