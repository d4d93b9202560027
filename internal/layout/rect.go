package layout

import "math"

// Font sizes used when a run has no measurable height.
const (
	minFallbackFontSize     = 10
	maxFallbackFontSize     = 13
	defaultFallbackFontSize = 11
)

// Rect is a run's bounding box in native page coordinates.
// YTop is the visual top edge (larger y), YBottom the lower edge.
type Rect struct {
	X        float64
	YTop     float64
	YBottom  float64
	Width    float64
	Height   float64
	FontSize float64
}

// IsZero reports whether r is the zero rectangle.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// ToNativeRect converts a run's device-space box into native coordinates.
//
// The baseline origin (x, y) and the opposite corner (x+w, y-h) are pushed
// through the device-to-native transform independently, and the box is
// derived from the two converted points. The transform flips the vertical
// axis, so device width and height are never reused directly.
func ToNativeRect(run TextRun, geom PageGeometry) Rect {
	x1, y1 := geom.DeviceToNative.Apply(run.DeviceX, run.DeviceY)
	x2, y2 := geom.DeviceToNative.Apply(run.DeviceX+run.DeviceWidth, run.DeviceY-run.DeviceHeight)

	r := Rect{
		X:       math.Min(x1, x2),
		YTop:    math.Max(y1, y2),
		YBottom: math.Min(y1, y2),
		Width:   math.Abs(x2 - x1),
		Height:  math.Abs(y2 - y1),
	}

	r.FontSize = r.Height
	if r.FontSize == 0 {
		h := math.Abs(run.DeviceHeight)
		if h == 0 {
			h = defaultFallbackFontSize
		}
		r.FontSize = math.Max(minFallbackFontSize, math.Min(maxFallbackFontSize, h))
	}
	return r
}
