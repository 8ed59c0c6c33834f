package interpolation

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAffineTransformApply(t *testing.T) {
	// Pure scaling about the origin.
	m := AffineTransform{2, 0, 0, 0, 3, 0}
	x, y := m.Apply(1, 1)
	if x != 2 || y != 3 {
		t.Errorf("Apply(1, 1) = (%g, %g), want (2, 3)", x, y)
	}

	// Translation only.
	m = AffineTransform{1, 0, 5, 0, 1, -2}
	x, y = m.Apply(1, 1)
	if x != 6 || y != -1 {
		t.Errorf("Apply(1, 1) = (%g, %g), want (6, -1)", x, y)
	}
}

func TestAffineTransformInvertRoundTrip(t *testing.T) {
	m := AffineTransform{1.3, 0.2, 4.0, -0.1, 0.8, -2.5}
	inv, err := m.Invert()
	if err != nil {
		t.Fatalf("Invert returned error: %v", err)
	}

	for _, pt := range [][2]float64{{0, 0}, {3, 7}, {-2.5, 1.25}} {
		fx, fy := m.Apply(pt[0], pt[1])
		bx, by := inv.Apply(fx, fy)
		if math.Abs(bx-pt[0]) > 1e-10 || math.Abs(by-pt[1]) > 1e-10 {
			t.Errorf("round trip of (%g, %g) gave (%g, %g)", pt[0], pt[1], bx, by)
		}
	}
}

func TestAffineTransformInvertSingular(t *testing.T) {
	m := AffineTransform{0, 0, 1, 0, 0, 2}
	if _, err := m.Invert(); err == nil {
		t.Error("Invert should reject a singular matrix")
	}
}

func TestWarpAffineIdentity(t *testing.T) {
	f := rampFrame(8, 8, 1.0, -0.5, 2.0)

	out, err := WarpAffine(f, IdentityTransform(), 8, 8)
	if err != nil {
		t.Fatalf("WarpAffine returned error: %v", err)
	}
	if !mat.EqualApprox(out, f, 1e-9) {
		t.Error("identity warp altered the frame")
	}
}

func TestWarpAffineOutputShape(t *testing.T) {
	f := uniformFrame(6, 6, 1.0)

	out, err := WarpAffine(f, IdentityTransform(), 4, 9)
	if err != nil {
		t.Fatalf("WarpAffine returned error: %v", err)
	}
	rows, cols := out.Dims()
	if rows != 4 || cols != 9 {
		t.Errorf("WarpAffine output is %dx%d, want 4x9", rows, cols)
	}
}

func TestWarpAffineTranslationOnRamp(t *testing.T) {
	f := rampFrame(10, 10, 1.0, 3.0, 0.0)

	// Shift content one pixel right: destination (ox) samples source
	// column ox-1.
	m := AffineTransform{1, 0, 1, 0, 1, 0}
	out, err := WarpAffine(f, m, 10, 10)
	if err != nil {
		t.Fatalf("WarpAffine returned error: %v", err)
	}
	for y := 0; y < 10; y++ {
		for x := 2; x < 10; x++ {
			got := out.At(y, x)
			want := f.At(y, x-1)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("translated warp at (%d, %d) = %f, want %f", y, x, got, want)
			}
		}
	}
}
