package overlay

import "unicode/utf8"

type fill struct {
	Box   Box
	Color Color
}

type text struct {
	X, Y float64
	Text string
	Size float64
	Bold bool
}

// fakeCanvas records drawing calls. Glyphs are half the font size wide,
// bold ones 0.6.
type fakeCanvas struct {
	w, h  float64
	fills []fill
	texts []text
}

func newFakeCanvas() *fakeCanvas { return &fakeCanvas{w: 595.28, h: 841.89} }

func (c *fakeCanvas) Width(s string, size float64, bold bool) float64 {
	f := 0.5
	if bold {
		f = 0.6
	}
	return float64(utf8.RuneCountInString(s)) * size * f
}

func (c *fakeCanvas) Size() (float64, float64) { return c.w, c.h }

func (c *fakeCanvas) FillRect(x, y, w, h float64, col Color) {
	c.fills = append(c.fills, fill{Box{x, y, w, h}, col})
}

func (c *fakeCanvas) DrawText(x, y float64, s string, size float64, bold bool) {
	c.texts = append(c.texts, text{x, y, s, size, bold})
}
