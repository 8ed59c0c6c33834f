package interpolation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// AffineTransform is a 2x3 affine matrix mapping (x, y) coordinates:
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
//
// stored row-major as [A B C D E F]. Coordinates are in (column, row)
// order, matching the usual image-processing convention for warp matrices.
type AffineTransform [6]float64

// IdentityTransform returns the affine transform that maps every point to
// itself.
func IdentityTransform() AffineTransform {
	return AffineTransform{1, 0, 0, 0, 1, 0}
}

// Apply maps the point (x, y) through the transform.
func (t AffineTransform) Apply(x, y float64) (float64, float64) {
	return t[0]*x + t[1]*y + t[2], t[3]*x + t[4]*y + t[5]
}

// Invert returns the inverse transform. It fails when the linear part of
// the matrix is singular.
func (t AffineTransform) Invert() (AffineTransform, error) {
	det := t[0]*t[4] - t[1]*t[3]
	if math.Abs(det) < 1e-300 {
		return AffineTransform{}, fmt.Errorf("affine transform %v is singular", t)
	}
	inv := AffineTransform{
		t[4] / det, -t[1] / det, 0,
		-t[3] / det, t[0] / det, 0,
	}
	inv[2] = -(inv[0]*t[2] + inv[1]*t[5])
	inv[5] = -(inv[3]*t[2] + inv[4]*t[5])
	return inv, nil
}

// WarpAffine applies the source-to-destination transform m to src and
// samples the result onto an outRows x outCols grid with bicubic
// interpolation, replicating the border for samples outside the frame.
// This is the cv2.warpAffine equivalent: the matrix is inverted internally
// so every destination pixel pulls its value from the source frame.
func WarpAffine(src *mat.Dense, m AffineTransform, outRows, outCols int) (*mat.Dense, error) {
	if src == nil {
		return nil, fmt.Errorf("warp affine: nil source frame")
	}
	if outRows < 1 || outCols < 1 {
		return nil, fmt.Errorf("warp affine: output dimensions %dx%d must be positive", outRows, outCols)
	}
	inv, err := m.Invert()
	if err != nil {
		return nil, fmt.Errorf("warp affine: %w", err)
	}

	dst := mat.NewDense(outRows, outCols, nil)
	for oy := 0; oy < outRows; oy++ {
		for ox := 0; ox < outCols; ox++ {
			sx, sy := inv.Apply(float64(ox), float64(oy))
			dst.Set(oy, ox, SampleBicubic(src, sy, sx))
		}
	}
	return dst, nil
}
