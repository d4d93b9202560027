// Package overlay draws replacement text over fixed-layout PDF pages.
//
// The only mutation a finished PDF page supports is drawing on top of it, so
// a field is replaced by first painting an opaque box over the printed text
// and then drawing the new text inside that box.
package overlay

// Color is an RGB color with components in 0..255.
type Color struct{ R, G, B int }

var (
	White = Color{255, 255, 255}
	Black = Color{0, 0, 0}
)

// FontMetrics measures text without rendering it.
type FontMetrics interface {
	Width(text string, size float64, bold bool) float64
}

// Canvas is one page that accepts overlays. Coordinates are native PDF
// units with the origin at the bottom-left corner.
type Canvas interface {
	FontMetrics
	// Size returns the page width and height.
	Size() (width, height float64)
	// FillRect paints an opaque rectangle whose lower-left corner is (x, y).
	FillRect(x, y, w, h float64, c Color)
	// DrawText draws text in black with its baseline starting at (x, y).
	DrawText(x, y float64, text string, size float64, bold bool)
}

// Box is a rectangle with its lower-left corner at (X, Y).
type Box struct {
	X, Y          float64
	Width, Height float64
}

// Top returns the upper edge of b.
func (b Box) Top() float64 { return b.Y + b.Height }

// Right returns the right edge of b.
func (b Box) Right() float64 { return b.X + b.Width }

// Covers reports whether b fully contains o.
func (b Box) Covers(o Box) bool {
	const eps = 1e-9
	return b.X <= o.X+eps && b.Y <= o.Y+eps && b.Right() >= o.Right()-eps && b.Top() >= o.Top()-eps
}
