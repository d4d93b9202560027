package layout

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// wordGapFactor is the gap, relative to the font size, above which a space
// is inserted between two joined glyphs.
const wordGapFactor = 0.2

type runBuilder struct {
	font  string
	size  float64
	x, y  float64 // native baseline origin
	end   float64 // native x of the right edge so far
	text  strings.Builder
	empty bool
}

func (b *runBuilder) accepts(g pdf.Text, opts Options) bool {
	if b.empty {
		return false
	}
	if g.Font != b.font || math.Abs(g.FontSize-b.size) > 0.01 {
		return false
	}
	if math.Abs(g.Y-b.y) > opts.LineTolerance {
		return false
	}
	gap := g.X - b.end
	return gap >= -b.size*0.5 && gap <= b.size*opts.GapFactor
}

func (b *runBuilder) start(g pdf.Text) {
	b.font = g.Font
	b.size = g.FontSize
	b.x = g.X
	b.y = g.Y
	b.end = g.X + g.W
	b.text.Reset()
	b.text.WriteString(g.S)
	b.empty = false
}

func (b *runBuilder) add(g pdf.Text) {
	if g.X-b.end > b.size*wordGapFactor && !strings.HasSuffix(b.text.String(), " ") && g.S != " " {
		b.text.WriteByte(' ')
	}
	b.text.WriteString(g.S)
	b.end = math.Max(b.end, g.X+g.W)
}

func (b *runBuilder) run(geom PageGeometry) (TextRun, bool) {
	text := strings.TrimSpace(b.text.String())
	if b.empty || text == "" {
		return TextRun{}, false
	}
	scale := math.Abs(geom.NativeToDevice[0])
	dx, dy := geom.NativeToDevice.Apply(b.x, b.y)
	return TextRun{
		Text:         text,
		DeviceX:      dx,
		DeviceY:      dy,
		DeviceWidth:  (b.end - b.x) * scale,
		DeviceHeight: b.size * scale,
	}, true
}

// widthFunc measures text set in the named base font.
type widthFunc func(baseFont, text string, size float64) float64

// repairAdvances fills in glyph widths the extractor could not read.
// Standard fonts written without a Widths array come back with W == 0 and
// every glyph of a string at the same origin; those glyphs are re-measured
// and laid out one after another from the string's origin.
func repairAdvances(glyphs []pdf.Text, measure widthFunc) []pdf.Text {
	out := make([]pdf.Text, 0, len(glyphs))
	var (
		rawX, rawY, end float64
		stacked         bool
	)
	for _, g := range glyphs {
		if g.W != 0 || g.S == "" || measure == nil {
			stacked = false
			out = append(out, g)
			continue
		}
		g.W = measure(g.Font, g.S, g.FontSize)
		if stacked && math.Abs(g.X-rawX) < 0.01 && math.Abs(g.Y-rawY) < 0.01 {
			g.X = end
		} else {
			rawX, rawY = g.X, g.Y
		}
		end = g.X + g.W
		stacked = true
		out = append(out, g)
	}
	return out
}

// groupRuns joins the extractor's per-glyph output into runs. Glyphs are
// joined while they share font, size and baseline and follow each other
// horizontally, which approximates a viewer's text items.
func groupRuns(glyphs []pdf.Text, geom PageGeometry, opts Options) []TextRun {
	var (
		runs []TextRun
		b    = runBuilder{empty: true}
	)
	flush := func() {
		if r, ok := b.run(geom); ok {
			runs = append(runs, r)
		}
		b.empty = true
	}

	for _, g := range glyphs {
		if g.S == "" || g.S == "\n" || g.S == "\r" {
			continue
		}
		if b.accepts(g, opts) {
			b.add(g)
			continue
		}
		flush()
		if strings.TrimSpace(g.S) == "" {
			continue
		}
		b.start(g)
	}
	flush()
	return runs
}
