package overlay

import (
	"math"
	"strings"

	"github.com/farmacob/cobtool/internal/layout"
)

// Renderer places replacement fields. The zero value is not useful; start
// from DefaultRenderer.
type Renderer struct {
	// PadX is the horizontal padding on each side of the redaction box.
	PadX float64
	// PadY is added once to the redaction box height.
	PadY float64
	// LineHeight multiplies the taller of the old run and the new font.
	LineHeight float64
}

// DefaultRenderer returns the renderer tuned to the templates' line spacing.
func DefaultRenderer() Renderer {
	return Renderer{PadX: 10, PadY: 6, LineHeight: 1.4}
}

// FieldPlacement records how one field was drawn.
type FieldPlacement struct {
	Rect     layout.Rect
	Text     string
	Bold     bool
	OffsetX  float64
	OffsetY  float64
	FontSize float64
	// Clear is the opaque redaction box.
	Clear Box
	// TextX and TextY are the baseline origin of the new text.
	TextX, TextY float64
	// TextWidth is the measured width of Text.
	TextWidth float64
}

// Layout computes a placement without drawing it.
func (r Renderer) Layout(metrics FontMetrics, rect layout.Rect, text string, fontSize float64, bold bool, offsetX, offsetY float64) FieldPlacement {
	if fontSize <= 0 {
		fontSize = rect.FontSize
	}
	textWidth := metrics.Width(text, fontSize, bold)

	clearW := math.Max(rect.Width, textWidth) + 2*r.PadX
	clearH := math.Max(rect.Height, fontSize)*r.LineHeight + r.PadY
	bottom := rect.YTop - clearH

	return FieldPlacement{
		Rect:      rect,
		Text:      text,
		Bold:      bold,
		OffsetX:   offsetX,
		OffsetY:   offsetY,
		FontSize:  fontSize,
		Clear:     Box{X: rect.X - r.PadX + offsetX, Y: bottom + offsetY, Width: clearW, Height: clearH},
		TextX:     rect.X + offsetX,
		TextY:     bottom + (clearH-fontSize)*0.5 + offsetY,
		TextWidth: textWidth,
	}
}

// Place redacts the area of rect and draws text inside it. A fontSize of
// zero or less uses the run's own size. It returns false, drawing nothing,
// only when rect is the zero value.
func (r Renderer) Place(page Canvas, rect layout.Rect, text string, fontSize float64, bold bool, offsetX, offsetY float64) (FieldPlacement, bool) {
	if rect.IsZero() {
		return FieldPlacement{}, false
	}
	p := r.Layout(page, rect, text, fontSize, bold, offsetX, offsetY)
	page.FillRect(p.Clear.X, p.Clear.Y, p.Clear.Width, p.Clear.Height, White)
	if strings.TrimSpace(text) != "" {
		page.DrawText(p.TextX, p.TextY, text, p.FontSize, bold)
	}
	return p, true
}

// PlaceAt draws text with its top at yTop and no redaction. It returns
// false when text is blank.
func PlaceAt(page Canvas, x, yTop, fontSize float64, text string, bold bool) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	page.DrawText(x, yTop-fontSize, text, fontSize, bold)
	return true
}
