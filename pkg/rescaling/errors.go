// Package rescaling implements geometric resampling and rescaling of image
// frames and cubes for spectral data alignment: resizing frames by a scale
// factor, zooming frames about a reference point at fixed dimensions, the
// cube-level variants of both, and normalization of per-frame scale vectors.
//
// All operations are pure: inputs are never modified (NormalizeScalesVec is
// the single documented exception) and outputs are freshly allocated.
// Failures are reported synchronously through typed errors; nothing is
// retried or logged.
package rescaling

import "fmt"

// ShapeError reports an input whose dimensionality or layout does not match
// the operation's contract, such as an empty frame or a cube with
// mismatched frame sizes.
type ShapeError struct {
	// Op is the operation that rejected the input.
	Op string

	// Detail describes the violated shape requirement.
	Detail string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: bad input shape: %s", e.Op, e.Detail)
}

// ArgumentError reports an argument whose value is outside the set the
// operation accepts, such as an unrecognized interpolation kind or a scale
// list of the wrong length.
type ArgumentError struct {
	// Op is the operation that rejected the argument.
	Op string

	// Name is the rejected argument.
	Name string

	// Detail describes why the value was rejected.
	Detail string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Op, e.Name, e.Detail)
}
