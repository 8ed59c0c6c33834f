package rescaling

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"cuberescale/pkg/cube"
)

func TestParseMethod(t *testing.T) {
	cases := []struct {
		in   string
		want Method
	}{
		{"geometric", MethodGeometric},
		{"geometric_transform", MethodGeometric},
		{"affine", MethodAffine},
		{"affine_warp", MethodAffine},
		{"warp_affine", MethodAffine},
	}
	for _, tc := range cases {
		got, err := ParseMethod(tc.in)
		if err != nil {
			t.Errorf("ParseMethod(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMethod(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseMethod("perspective"); err == nil {
		t.Error("ParseMethod should reject unknown methods")
	}
}

func TestRescaleFrameIdentity(t *testing.T) {
	f := gaussianFrame(16, 16, 3.0)

	for _, method := range []Method{MethodGeometric, MethodAffine} {
		out, err := RescaleFrame(f, &RescaleOptions{Scale: 1.0, Method: method})
		if err != nil {
			t.Fatalf("RescaleFrame(%v) returned error: %v", method, err)
		}
		rows, cols := out.Dims()
		if r, c := f.Dims(); rows != r || cols != c {
			t.Fatalf("RescaleFrame(%v) changed dimensions to %dx%d", method, rows, cols)
		}
		if !mat.EqualApprox(out, f, 1e-9) {
			t.Errorf("RescaleFrame(%v) with unit scale is not a no-op", method)
		}
	}
}

func TestRescaleFrameDefaultsToUnitScale(t *testing.T) {
	f := gaussianFrame(12, 12, 2.5)

	out, err := RescaleFrame(f, nil)
	if err != nil {
		t.Fatalf("RescaleFrame returned error: %v", err)
	}
	if !mat.EqualApprox(out, f, 1e-9) {
		t.Error("RescaleFrame with nil options is not a no-op")
	}
}

func TestRescaleFrameReferencePointEquivalence(t *testing.T) {
	f := gaussianFrame(17, 17, 3.0)
	cy, cx := cube.FrameCenter(f)

	for _, method := range []Method{MethodGeometric, MethodAffine} {
		implicit, err := RescaleFrame(f, &RescaleOptions{Scale: 1.3, Method: method})
		if err != nil {
			t.Fatalf("RescaleFrame(%v) returned error: %v", method, err)
		}
		explicit, err := RescaleFrame(f, &RescaleOptions{
			Scale: 1.3, Method: method, RefY: &cy, RefX: &cx,
		})
		if err != nil {
			t.Fatalf("RescaleFrame(%v) returned error: %v", method, err)
		}
		if !mat.EqualApprox(implicit, explicit, 1e-12) {
			t.Errorf("explicit center reference differs from the default for %v", method)
		}
	}
}

func TestRescaleFrameBackendEquivalence(t *testing.T) {
	// Both backends use cubic interpolation, so on a smooth synthetic
	// field they must agree closely away from the frame border.
	f := gaussianFrame(32, 32, 6.0)

	geo, err := RescaleFrame(f, &RescaleOptions{Scale: 1.2, Method: MethodGeometric})
	if err != nil {
		t.Fatalf("geometric rescale returned error: %v", err)
	}
	aff, err := RescaleFrame(f, &RescaleOptions{Scale: 1.2, Method: MethodAffine})
	if err != nil {
		t.Fatalf("affine rescale returned error: %v", err)
	}

	for y := 4; y < 28; y++ {
		for x := 4; x < 28; x++ {
			diff := math.Abs(geo.At(y, x) - aff.At(y, x))
			if diff > 0.02 {
				t.Fatalf("backends disagree at (%d, %d) by %f", y, x, diff)
			}
		}
	}
}

func TestRescaleFrameZoomMovesContentOutward(t *testing.T) {
	// Zooming in about the center spreads the central peak, so a pixel a
	// fixed distance from the center must see its value increase.
	f := gaussianFrame(33, 33, 4.0)

	out, err := RescaleFrame(f, &RescaleOptions{Scale: 1.5, Method: MethodAffine})
	if err != nil {
		t.Fatalf("RescaleFrame returned error: %v", err)
	}

	// (16, 24) is 8 pixels from the center; zoomed by 1.5 it samples the
	// source at ~5.3 pixels out, where the Gaussian is larger.
	if out.At(16, 24) <= f.At(16, 24) {
		t.Errorf("zoomed value %f should exceed original %f away from center",
			out.At(16, 24), f.At(16, 24))
	}
	// The peak itself stays put.
	if math.Abs(out.At(16, 16)-f.At(16, 16)) > 1e-6 {
		t.Errorf("zoom moved the reference point: %f vs %f", out.At(16, 16), f.At(16, 16))
	}
}

func TestRescaleFramePerAxisOverride(t *testing.T) {
	f := gaussianFrame(21, 21, 4.0)

	// ScaleY override with unit x keeps columns through the reference
	// unchanged.
	out, err := RescaleFrame(f, &RescaleOptions{
		Scale:  1.0,
		ScaleY: floatPtr(1.4),
		Method: MethodAffine,
	})
	if err != nil {
		t.Fatalf("RescaleFrame returned error: %v", err)
	}
	if math.Abs(out.At(10, 10)-f.At(10, 10)) > 1e-9 {
		t.Errorf("reference pixel moved under per-axis zoom")
	}
	if out.At(16, 10) <= f.At(16, 10) {
		t.Errorf("y-axis zoom should raise values below the center")
	}
	// Along x through the center the y coordinate is unscaled, so values
	// match the original row.
	for x := 3; x < 18; x++ {
		if math.Abs(out.At(10, x)-f.At(10, x)) > 1e-6 {
			t.Errorf("x row through reference changed at col %d: %f vs %f",
				x, out.At(10, x), f.At(10, x))
		}
	}
}

func TestRescaleFrameErrors(t *testing.T) {
	var shapeErr *ShapeError
	if _, err := RescaleFrame(nil, nil); !errors.As(err, &shapeErr) {
		t.Errorf("nil frame should yield a ShapeError, got %v", err)
	}

	f := gaussianFrame(8, 8, 2.0)
	var argErr *ArgumentError
	_, err := RescaleFrame(f, &RescaleOptions{Method: Method(9)})
	if !errors.As(err, &argErr) {
		t.Fatalf("unknown method should yield an ArgumentError, got %v", err)
	}
	for _, name := range []string{"geometric_transform", "affine_warp"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("method error %q should name %q", err.Error(), name)
		}
	}

	if _, err := RescaleFrame(f, &RescaleOptions{ScaleY: floatPtr(0)}); !errors.As(err, &argErr) {
		t.Errorf("zero scale should yield an ArgumentError, got %v", err)
	}
}

func TestRescaleCube(t *testing.T) {
	frames := []*mat.Dense{
		gaussianFrame(16, 16, 3.0),
		gaussianFrame(16, 16, 4.0),
		gaussianFrame(16, 16, 5.0),
	}
	c, err := cube.New(frames...)
	if err != nil {
		t.Fatalf("cube.New returned error: %v", err)
	}

	scales := []float64{1.3, 1.1, 1.0}
	out, combined, err := RescaleCube(c, scales, nil)
	if err != nil {
		t.Fatalf("RescaleCube returned error: %v", err)
	}

	if out.NFrames() != 3 {
		t.Errorf("RescaleCube changed frame count: got %d", out.NFrames())
	}
	rows, cols := out.Dims()
	if rows != 16 || cols != 16 {
		t.Errorf("RescaleCube changed frame dimensions to %dx%d", rows, cols)
	}

	// The combined frame must equal the per-pixel median of the returned
	// stack, verified by recomputation.
	recomputed, err := out.MedianCombine()
	if err != nil {
		t.Fatalf("MedianCombine returned error: %v", err)
	}
	if !mat.EqualApprox(combined, recomputed, 1e-12) {
		t.Error("combined frame does not match the median of the rescaled cube")
	}

	// The frame with unit scale must come through unchanged.
	if !mat.EqualApprox(out.Frame(2), frames[2], 1e-9) {
		t.Error("unit-scale frame was altered by RescaleCube")
	}
}

func TestRescaleCubeErrors(t *testing.T) {
	c, err := cube.New(gaussianFrame(8, 8, 2.0), gaussianFrame(8, 8, 2.0))
	if err != nil {
		t.Fatalf("cube.New returned error: %v", err)
	}

	var shapeErr *ShapeError
	if _, _, err := RescaleCube(nil, nil, nil); !errors.As(err, &shapeErr) {
		t.Errorf("nil cube should yield a ShapeError, got %v", err)
	}

	var argErr *ArgumentError
	if _, _, err := RescaleCube(c, []float64{1.0}, nil); !errors.As(err, &argErr) {
		t.Errorf("short scale list should yield an ArgumentError, got %v", err)
	}
	if _, _, err := RescaleCube(c, []float64{1, 1}, &CubeRescaleOptions{ScalesY: []float64{1}}); !errors.As(err, &argErr) {
		t.Errorf("short per-axis override should yield an ArgumentError, got %v", err)
	}
}
