// Package cube defines the in-memory data model shared by the resampling
// and rescaling operations: 2D frames represented as gonum dense matrices,
// and cubes, which are ordered stacks of equally sized frames indexed along
// a leading axis (typically wavelength or time).
package cube

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Cube is a stack of equally sized frames. The zero value is not usable;
// construct cubes with New, or fill Frames directly and call Validate.
type Cube struct {
	// Frames holds the stack in leading-axis order. All frames must be
	// non-nil and share the same dimensions.
	Frames []*mat.Dense
}

// New builds a cube from the given frames after validating the stack
// invariants: at least one frame, no nil frames, all frames sharing the
// same non-zero dimensions.
func New(frames ...*mat.Dense) (*Cube, error) {
	c := &Cube{Frames: frames}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the stack invariants and reports the first violation.
func (c *Cube) Validate() error {
	if c == nil || len(c.Frames) == 0 {
		return fmt.Errorf("cube has no frames")
	}
	if c.Frames[0] == nil {
		return fmt.Errorf("cube frame 0 is nil")
	}
	rows, cols := c.Frames[0].Dims()
	if rows == 0 || cols == 0 {
		return fmt.Errorf("cube frame 0 is empty")
	}
	for i, f := range c.Frames[1:] {
		if f == nil {
			return fmt.Errorf("cube frame %d is nil", i+1)
		}
		r, col := f.Dims()
		if r != rows || col != cols {
			return fmt.Errorf("cube frame %d is %dx%d, want %dx%d", i+1, r, col, rows, cols)
		}
	}
	return nil
}

// NFrames returns the number of frames in the stack.
func (c *Cube) NFrames() int {
	return len(c.Frames)
}

// Dims returns the dimensions shared by every frame.
func (c *Cube) Dims() (rows, cols int) {
	if len(c.Frames) == 0 || c.Frames[0] == nil {
		return 0, 0
	}
	return c.Frames[0].Dims()
}

// Frame returns the frame at index i.
func (c *Cube) Frame(i int) *mat.Dense {
	return c.Frames[i]
}

// Clone returns a deep copy of the cube; the copy shares no data with the
// original.
func (c *Cube) Clone() *Cube {
	frames := make([]*mat.Dense, len(c.Frames))
	for i, f := range c.Frames {
		frames[i] = mat.DenseCopyOf(f)
	}
	return &Cube{Frames: frames}
}

// MedianCombine collapses the cube along the frame axis into a single
// frame holding the per-pixel median. For stacks with an even number of
// frames the median is the mean of the two middle values.
func (c *Cube) MedianCombine() (*mat.Dense, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rows, cols := c.Dims()
	n := c.NFrames()

	out := mat.NewDense(rows, cols, nil)
	column := make([]float64, n)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			for i, f := range c.Frames {
				column[i] = f.At(y, x)
			}
			sort.Float64s(column)
			var m float64
			if n%2 == 1 {
				m = column[n/2]
			} else {
				m = 0.5 * (column[n/2-1] + column[n/2])
			}
			out.Set(y, x, m)
		}
	}
	return out, nil
}

// MeanCombine collapses the cube along the frame axis into a single frame
// holding the per-pixel mean.
func (c *Cube) MeanCombine() (*mat.Dense, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rows, cols := c.Dims()
	out := mat.NewDense(rows, cols, nil)
	for _, f := range c.Frames {
		out.Add(out, f)
	}
	out.Scale(1/float64(c.NFrames()), out)
	return out, nil
}
