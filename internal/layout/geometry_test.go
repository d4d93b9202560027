package layout

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestPageGeometryRoundTrip(t *testing.T) {
	geom, err := NewPageGeometry(0, 0, 595.28, 841.89, 1)
	if err != nil {
		t.Fatalf("NewPageGeometry: %v", err)
	}

	dx, dy := geom.NativeToDevice.Apply(72, 720)
	if !approx(dx, 72) || !approx(dy, 841.89-720) {
		t.Errorf("native->device = (%v, %v), want (72, %v)", dx, dy, 841.89-720)
	}

	nx, ny := geom.DeviceToNative.Apply(dx, dy)
	if !approx(nx, 72) || !approx(ny, 720) {
		t.Errorf("round trip = (%v, %v), want (72, 720)", nx, ny)
	}

	if !approx(geom.Width, 595.28) || !approx(geom.Height, 841.89) {
		t.Errorf("size = %vx%v", geom.Width, geom.Height)
	}
}

func TestPageGeometryOffsetBox(t *testing.T) {
	geom, err := NewPageGeometry(10, 20, 110, 220, 2)
	if err != nil {
		t.Fatalf("NewPageGeometry: %v", err)
	}
	dx, dy := geom.NativeToDevice.Apply(10, 220)
	if !approx(dx, 0) || !approx(dy, 0) {
		t.Errorf("top-left = (%v, %v), want origin", dx, dy)
	}
	dx, dy = geom.NativeToDevice.Apply(110, 20)
	if !approx(dx, 200) || !approx(dy, 400) {
		t.Errorf("bottom-right = (%v, %v), want (200, 400)", dx, dy)
	}
}

func TestPageGeometryInvalidScale(t *testing.T) {
	if _, err := NewPageGeometry(0, 0, 100, 100, 0); err == nil {
		t.Error("expected error for zero scale")
	}
}

func TestMatrixInverse(t *testing.T) {
	m := Matrix{2, 0, 0, 3, 5, 7}
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	id := m.Multiply(inv)
	for i, v := range (Matrix{1, 0, 0, 1, 0, 0}) {
		if !approx(id[i], v) {
			t.Fatalf("m * inv = %v, want identity", id)
		}
	}

	_, err = Matrix{1, 2, 2, 4, 0, 0}.Inverse()
	if !errors.Is(err, ErrSingularMatrix) {
		t.Errorf("singular inverse error = %v", err)
	}
}
