package cube

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// FrameCenter returns the geometric center coordinate (cy, cx) of a frame.
// For odd-sized dimensions this is the exact middle pixel, so a 5x5 frame
// has its center at (2, 2); even dimensions fall between two pixels.
func FrameCenter(f *mat.Dense) (cy, cx float64) {
	rows, cols := f.Dims()
	return float64(rows-1) / 2, float64(cols-1) / 2
}

// FrameStats summarizes a frame's pixel distribution. Used for step logging
// in the pipeline and the command-line tool.
type FrameStats struct {
	Min, Max, Mean, StdDev float64
}

// Stats computes summary statistics over every pixel of the frame.
func Stats(f *mat.Dense) FrameStats {
	data := flatten(f)
	return FrameStats{
		Min:    floats.Min(data),
		Max:    floats.Max(data),
		Mean:   stat.Mean(data, nil),
		StdDev: stat.StdDev(data, nil),
	}
}

// flatten returns the frame's pixels as a contiguous slice, copying only
// when the backing storage has row padding.
func flatten(f *mat.Dense) []float64 {
	raw := f.RawMatrix()
	if raw.Stride == raw.Cols {
		return raw.Data[:raw.Rows*raw.Cols]
	}
	data := make([]float64, 0, raw.Rows*raw.Cols)
	for i := 0; i < raw.Rows; i++ {
		data = append(data, raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols]...)
	}
	return data
}
