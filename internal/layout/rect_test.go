package layout

import "testing"

func a4(t *testing.T) PageGeometry {
	t.Helper()
	geom, err := NewPageGeometry(0, 0, 595.28, 841.89, 1)
	if err != nil {
		t.Fatalf("NewPageGeometry: %v", err)
	}
	return geom
}

func TestToNativeRect(t *testing.T) {
	geom := a4(t)
	run := TextRun{Text: "ACME LTDA", DeviceX: 72, DeviceY: 841.89 - 720, DeviceWidth: 60, DeviceHeight: 12}

	r := ToNativeRect(run, geom)

	if !approx(r.X, 72) {
		t.Errorf("X = %v, want 72", r.X)
	}
	if !approx(r.YBottom, 720) {
		t.Errorf("YBottom = %v, want 720 (baseline)", r.YBottom)
	}
	if !approx(r.YTop, 732) {
		t.Errorf("YTop = %v, want 732", r.YTop)
	}
	if !approx(r.Width, 60) || !approx(r.Height, 12) {
		t.Errorf("size = %vx%v, want 60x12", r.Width, r.Height)
	}
	if !approx(r.FontSize, 12) {
		t.Errorf("FontSize = %v, want 12", r.FontSize)
	}
	if !approx(r.YBottom+r.Height/2, 726) || !approx(r.X+r.Width, 132) {
		t.Errorf("center/right = %v/%v", r.YBottom+r.Height/2, r.X+r.Width)
	}
}

func TestToNativeRectNonNegative(t *testing.T) {
	geom := a4(t)
	runs := []TextRun{
		{DeviceX: 300, DeviceY: 400, DeviceWidth: -40, DeviceHeight: 10},
		{DeviceX: 300, DeviceY: 400, DeviceWidth: 40, DeviceHeight: -10},
		{DeviceX: 0, DeviceY: 0, DeviceWidth: 0, DeviceHeight: 0},
	}
	for _, run := range runs {
		r := ToNativeRect(run, geom)
		if r.Width < 0 || r.Height < 0 {
			t.Errorf("ToNativeRect(%+v) = %+v, want non-negative size", run, r)
		}
		if r.YTop < r.YBottom {
			t.Errorf("ToNativeRect(%+v): YTop %v below YBottom %v", run, r.YTop, r.YBottom)
		}
	}
}

func TestToNativeRectDegenerateFontSize(t *testing.T) {
	geom := a4(t)
	r := ToNativeRect(TextRun{DeviceX: 10, DeviceY: 10, DeviceWidth: 5}, geom)
	if r.FontSize != defaultFallbackFontSize {
		t.Errorf("FontSize = %v, want %v", r.FontSize, defaultFallbackFontSize)
	}
	if r.FontSize < minFallbackFontSize || r.FontSize > maxFallbackFontSize {
		t.Errorf("fallback FontSize %v outside clamp", r.FontSize)
	}
}
