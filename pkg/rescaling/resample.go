package rescaling

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"

	"cuberescale/pkg/cube"
	"cuberescale/pkg/interpolation"
)

// ResampleOptions carries the optional parameters of ResampleFrame and
// ResampleCube. A nil options value selects all defaults.
type ResampleOptions struct {
	// ScaleY and ScaleX override the uniform scale factor per axis when
	// non-nil.
	ScaleY *float64
	ScaleX *float64

	// Workers bounds the number of frames ResampleCube processes
	// concurrently. Zero or negative selects the number of CPUs.
	Workers int
}

func (o *ResampleOptions) axisScales(scale float64) (sy, sx float64) {
	sy, sx = scale, scale
	if o != nil && o.ScaleY != nil {
		sy = *o.ScaleY
	}
	if o != nil && o.ScaleX != nil {
		sx = *o.ScaleX
	}
	return sy, sx
}

func (o *ResampleOptions) workers() int {
	if o == nil || o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// checkFrame validates the 2D frame contract shared by the frame-level
// operations.
func checkFrame(op string, f *mat.Dense) error {
	if f == nil {
		return &ShapeError{Op: op, Detail: "input frame is nil, want a 2d frame"}
	}
	rows, cols := f.Dims()
	if rows == 0 || cols == 0 {
		return &ShapeError{Op: op, Detail: fmt.Sprintf("input frame is %dx%d, want non-empty 2d frame", rows, cols)}
	}
	return nil
}

// checkCube validates the cube contract shared by the cube-level
// operations.
func checkCube(op string, c *cube.Cube) error {
	if c == nil {
		return &ShapeError{Op: op, Detail: "input cube is nil, want a 3d cube"}
	}
	if err := c.Validate(); err != nil {
		return &ShapeError{Op: op, Detail: err.Error()}
	}
	return nil
}

// scaledDim returns round(dim * scale) as an output dimension.
func scaledDim(dim int, scale float64) int {
	return int(math.Round(float64(dim) * scale))
}

// ResampleFrame resizes a frame by a scale factor, producing a frame whose
// dimensions are round(dim * axisScale) along each axis. A factor below 1
// downsamples the frame, a factor above 1 upsamples it. The interpolation
// kernel is selected by kind; per-axis overrides in opts take priority over
// the uniform scale. Pixel values are kept in floating point and are not
// clamped.
func ResampleFrame(frame *mat.Dense, scale float64, kind interpolation.Kind, opts *ResampleOptions) (*mat.Dense, error) {
	const op = "ResampleFrame"
	if err := checkFrame(op, frame); err != nil {
		return nil, err
	}
	switch kind {
	case interpolation.Nearest, interpolation.Bilinear, interpolation.Bicubic:
	default:
		return nil, &ArgumentError{Op: op, Name: "interpolation",
			Detail: fmt.Sprintf("%v is not recognized: valid kinds are nearneig, bilinear, bicubic", kind)}
	}

	scaleY, scaleX := opts.axisScales(scale)
	rows, cols := frame.Dims()
	outRows := scaledDim(rows, scaleY)
	outCols := scaledDim(cols, scaleX)
	if outRows < 1 || outCols < 1 {
		return nil, &ArgumentError{Op: op, Name: "scale",
			Detail: fmt.Sprintf("factors (%g, %g) shrink a %dx%d frame to nothing", scaleY, scaleX, rows, cols)}
	}

	return interpolation.Resize(frame, outRows, outCols, kind)
}

// ResampleCube applies ResampleFrame to every frame of a cube with one
// shared scale, then divides every output pixel by scale*scale so the total
// flux of each frame is conserved across the change in pixel count.
// Per-axis overrides in opts affect the resampling geometry but, matching
// the established behavior of this operation, not the flux term.
//
// Frames are processed concurrently; results land at their original frame
// index.
func ResampleCube(c *cube.Cube, scale float64, kind interpolation.Kind, opts *ResampleOptions) (*cube.Cube, error) {
	const op = "ResampleCube"
	if err := checkCube(op, c); err != nil {
		return nil, err
	}

	n := c.NFrames()
	frames := make([]*mat.Dense, n)
	errs := make([]error, n)
	fluxFactor := 1 / (scale * scale)

	var wg sync.WaitGroup
	sem := make(chan struct{}, opts.workers())
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			out, err := ResampleFrame(c.Frame(i), scale, kind, opts)
			if err != nil {
				errs[i] = err
				return
			}
			out.Scale(fluxFactor, out)
			frames[i] = out
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return cube.New(frames...)
}
