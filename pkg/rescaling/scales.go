package rescaling

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NormalizeScales converts a plain scale-factor list into a freshly
// allocated vector rescaled so its minimum is exactly 1, dividing every
// entry by the current minimum. Relative ratios between entries are
// preserved. This is the precondition normalization for multi-wavelength
// cube alignment: all factors must end up >= 1 so frames are scaled up to
// the longest wavelength.
func NormalizeScales(scales []float64) (*mat.VecDense, error) {
	const op = "NormalizeScales"
	if len(scales) == 0 {
		return nil, &ArgumentError{Op: op, Name: "scales", Detail: "scale list is empty"}
	}
	v := mat.NewVecDense(len(scales), append([]float64(nil), scales...))

	min := mat.Min(v)
	if min <= 0 {
		return nil, &ArgumentError{Op: op, Name: "scales",
			Detail: fmt.Sprintf("minimum factor %g is not positive", min)}
	}
	v.ScaleVec(1/min, v)
	return v, nil
}

// NormalizeScalesVec is the vector-input counterpart of NormalizeScales.
// It divides the entries by their minimum only when that minimum is below
// 1; a vector whose minimum is already >= 1 is returned untouched. The
// vector is rescaled in place and returned.
func NormalizeScalesVec(v *mat.VecDense) (*mat.VecDense, error) {
	const op = "NormalizeScalesVec"
	if v == nil || v.Len() == 0 {
		return nil, &ArgumentError{Op: op, Name: "scales", Detail: "scale vector is nil or empty"}
	}

	min := mat.Min(v)
	if min <= 0 {
		return nil, &ArgumentError{Op: op, Name: "scales",
			Detail: fmt.Sprintf("minimum factor %g is not positive", min)}
	}
	if min < 1 {
		v.ScaleVec(1/min, v)
	}
	return v, nil
}

// ScalesFromWavelengths derives the per-frame scale vector of a spectral
// cube from its wavelength axis: scale[i] = max(wavelengths)/wavelengths[i],
// so the frame at the longest wavelength keeps factor 1 and shorter
// wavelengths are scaled up to match its spatial sampling.
func ScalesFromWavelengths(wavelengths []float64) ([]float64, error) {
	const op = "ScalesFromWavelengths"
	if len(wavelengths) == 0 {
		return nil, &ArgumentError{Op: op, Name: "wavelengths", Detail: "wavelength list is empty"}
	}
	for i, w := range wavelengths {
		if w <= 0 {
			return nil, &ArgumentError{Op: op, Name: "wavelengths",
				Detail: fmt.Sprintf("wavelength %g at index %d is not positive", w, i)}
		}
	}

	max := floats.Max(wavelengths)
	scales := make([]float64, len(wavelengths))
	for i, w := range wavelengths {
		scales[i] = max / w
	}
	return scales, nil
}
