// Package fontmetrics measures text set in the PDF standard fonts.
//
// Widths come from the core-font AFM tables bundled with fpdf, so text can
// be measured without rendering it and without embedding a font file.
package fontmetrics

import (
	"strings"

	"codeberg.org/go-pdf/fpdf"
)

// Measurer reports the advance width of text in points.
type Measurer interface {
	Width(text string, size float64, bold bool) float64
}

// Core measures text in Helvetica and the other core families.
// A Core is not safe for concurrent use; create one per document.
type Core struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
}

var _ Measurer = (*Core)(nil)

// NewCore returns a measurer backed by fpdf's core-font metrics.
func NewCore() *Core {
	pdf := fpdf.New("P", "pt", "A4", "")
	return &Core{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// Width returns the width of text set in Helvetica (bold when requested).
func (c *Core) Width(text string, size float64, bold bool) float64 {
	style := ""
	if bold {
		style = "B"
	}
	return c.measure("Helvetica", style, text, size)
}

// WidthForBaseFont returns the width of text set in the standard font named
// by a PDF BaseFont entry such as "Helvetica-Bold" or "Times-Roman".
// Unknown families are measured as Helvetica.
func (c *Core) WidthForBaseFont(baseFont, text string, size float64) float64 {
	family, style := coreFamily(baseFont)
	return c.measure(family, style, text, size)
}

func (c *Core) measure(family, style, text string, size float64) float64 {
	if text == "" || size <= 0 {
		return 0
	}
	c.pdf.SetFont(family, style, size)
	return c.pdf.GetStringWidth(c.translate(text))
}

// Translate converts UTF-8 text into the core-font code page (cp1252).
func (c *Core) Translate(text string) string {
	return c.translate(text)
}

func coreFamily(baseFont string) (family, style string) {
	name := baseFont
	// Subset fonts carry a six-letter tag: ABCDEF+Helvetica.
	if i := strings.IndexByte(name, '+'); i == 6 {
		name = name[i+1:]
	}
	lower := strings.ToLower(name)

	switch {
	case strings.Contains(lower, "courier"):
		family = "Courier"
	case strings.Contains(lower, "times"):
		family = "Times"
	default:
		family = "Helvetica"
	}

	if strings.Contains(lower, "bold") {
		style += "B"
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		style += "I"
	}
	return family, style
}
