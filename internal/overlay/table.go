package overlay

import (
	"math"
	"strings"

	"github.com/farmacob/cobtool/internal/layout"
)

// DefaultHeaders are the column titles of the installments table.
var DefaultHeaders = []string{"NOTA FISCAL", "PARCELA", "VENCIMENTO", "R$ VALOR"}

// TableLayout positions a table on a page. Top is the upper edge of the
// cleared area; the header line sits just above it.
type TableLayout struct {
	ColX       []float64
	ColW       []float64
	Top        float64
	FontSize   float64
	LineHeight float64
	ClearLeft  float64
	ClearRight float64
	// MinRows is the number of rows the cleared area always spans.
	MinRows int
	Headers []string
}

// FractionalTable lays the table out from fixed fractions of the page.
func FractionalTable(width, height float64) TableLayout {
	const fontSize = 11
	colX := []float64{width * 0.12, width * 0.33, width * 0.52, width * 0.72}
	colW := []float64{width * 0.15, width * 0.12, width * 0.15, width * 0.15}
	return TableLayout{
		ColX:       colX,
		ColW:       colW,
		Top:        height * 0.84,
		FontSize:   fontSize,
		LineHeight: fontSize + 3,
		ClearLeft:  colX[0] - 6,
		ClearRight: colX[3] + colW[3] + 40,
		MinRows:    6,
		Headers:    DefaultHeaders,
	}
}

// Shift moves the layout by (dx, dy), from page-relative to native
// coordinates on pages whose MediaBox does not start at the origin.
func (tl TableLayout) Shift(dx, dy float64) TableLayout {
	colX := make([]float64, len(tl.ColX))
	for i, x := range tl.ColX {
		colX[i] = x + dx
	}
	tl.ColX = colX
	tl.Top += dy
	tl.ClearLeft += dx
	tl.ClearRight += dx
	return tl
}

// AnchoredTable lays the table out from the printed column headers.
func AnchoredTable(invoice, installment, due, amount layout.Rect) TableLayout {
	fontSize := math.Max(8, math.Min(11, orDefault(invoice.Height, 11))+1)
	colX := []float64{invoice.X, installment.X, due.X, amount.X}
	colW := []float64{
		installment.X - invoice.X - 18,
		due.X - installment.X - 18,
		amount.X - due.X - 18,
		46,
	}
	return TableLayout{
		ColX:       colX,
		ColW:       colW,
		Top:        invoice.YBottom + 36,
		FontSize:   fontSize,
		LineHeight: fontSize + 3,
		ClearLeft:  colX[0] - 6,
		ClearRight: colX[3] + colW[3] + 13,
		MinRows:    6,
		Headers:    DefaultHeaders,
	}
}

func orDefault(v, d float64) float64 {
	if v == 0 {
		return d
	}
	return v
}

// TablePlacement records how a table was drawn.
type TablePlacement struct {
	Clear Box
	Cells []CellPlacement
}

// CellPlacement is one drawn cell. Row -1 is the header.
type CellPlacement struct {
	Row, Col int
	Text     string
	X, Y     float64
}

// DrawTable clears the table area and draws the header and rows with each
// cell centered in its column. Nothing is drawn for an empty row set.
func (r Renderer) DrawTable(page Canvas, tl TableLayout, rows [][]string) (TablePlacement, bool) {
	if len(rows) == 0 {
		return TablePlacement{}, false
	}

	lh, fs := tl.LineHeight, tl.FontSize
	spanRows := max(len(rows), tl.MinRows)
	bottom := tl.Top - lh*(float64(spanRows)+1.2)
	clear := Box{X: tl.ClearLeft, Y: bottom, Width: tl.ClearRight - tl.ClearLeft, Height: tl.Top - bottom}
	page.FillRect(clear.X, clear.Y, clear.Width, clear.Height, White)

	out := TablePlacement{Clear: clear}
	cell := func(row, col int, text string, y float64, bold bool) {
		if col >= len(tl.ColX) {
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		w := page.Width(text, fs, bold)
		x := tl.ColX[col] + math.Max(0, (tl.ColW[col]-w)/2)
		page.DrawText(x, y, text, fs, bold)
		out.Cells = append(out.Cells, CellPlacement{Row: row, Col: col, Text: text, X: x, Y: y})
	}

	headerY := tl.Top + lh*0.15
	for i, label := range tl.Headers {
		cell(-1, i, label, headerY, true)
	}
	for i, row := range rows {
		y := tl.Top - lh*float64(i+1) + (lh-fs)*0.5
		for j, text := range row {
			cell(i, j, text, y, false)
		}
	}
	return out, true
}
