package overlay

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/farmacob/cobtool/internal/fontmetrics"
)

// ErrOpen is returned when a template cannot be imported for overlaying.
var ErrOpen = errors.New("cannot open document for overlay")

// PDFDocument is a PDF whose pages accept overlays. Every page of the
// source is imported as a form XObject and overlays are drawn above it.
// A PDFDocument is not safe for concurrent use.
type PDFDocument struct {
	src     []byte
	pages   []*Page
	metrics *fontmetrics.Core
	out     []byte
}

// Page is one page of a PDFDocument. It implements Canvas.
type Page struct {
	doc    *PDFDocument
	number int // 1-based
	// llx, lly is the MediaBox origin. The imported page is shifted by it,
	// so overlays in native coordinates are shifted the same way.
	llx, lly float64
	width    float64
	height   float64
	ops      []drawOp
}

var _ Canvas = (*Page)(nil)

type drawOp struct {
	fill       bool
	x, y, w, h float64
	color      Color
	text       string
	size       float64
	bold       bool
}

// OpenPDF imports data for overlaying.
func OpenPDF(data []byte) (doc *PDFDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrOpen, r)
		}
	}()

	scratch := fpdf.New("P", "pt", "A4", "")
	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(data))
	imp.ImportPageFromStream(scratch, &rs, 1, "/MediaBox")

	sizes := imp.GetPageSizes()
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrOpen)
	}

	doc = &PDFDocument{src: data, metrics: fontmetrics.NewCore()}
	for n := 1; n <= len(sizes); n++ {
		box, ok := sizes[n]["/MediaBox"]
		if !ok {
			return nil, fmt.Errorf("%w: page %d has no media box", ErrOpen, n)
		}
		doc.pages = append(doc.pages, &Page{
			doc:    doc,
			number: n,
			llx:    box["llx"],
			lly:    box["lly"],
			width:  box["w"],
			height: box["h"],
		})
	}
	return doc, nil
}

// PageCount returns the number of pages.
func (d *PDFDocument) PageCount() int { return len(d.pages) }

// Page returns page i (0-based), or nil when i is out of range.
func (d *PDFDocument) Page(i int) *Page {
	if i < 0 || i >= len(d.pages) {
		return nil
	}
	return d.pages[i]
}

// Bytes renders the document with all overlays. The result is cached until
// another overlay is drawn.
func (d *PDFDocument) Bytes() (out []byte, err error) {
	if d.out != nil {
		return d.out, nil
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("render overlays: %v", r)
		}
	}()

	first := d.pages[0]
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: first.width, Ht: first.height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(d.src))

	for _, p := range d.pages {
		// Always portrait: fpdf swaps the size for "L".
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: p.width, Ht: p.height})
		tpl := imp.ImportPageFromStream(pdf, &rs, p.number, "/MediaBox")
		imp.UseImportedTemplate(pdf, tpl, 0, 0, p.width, p.height)

		for _, op := range p.ops {
			x, y := p.toOutput(op.x, op.y)
			if op.fill {
				pdf.SetFillColor(op.color.R, op.color.G, op.color.B)
				pdf.Rect(x, y-op.h, op.w, op.h, "F")
				continue
			}
			style := ""
			if op.bold {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, op.size)
			pdf.SetTextColor(Black.R, Black.G, Black.B)
			pdf.Text(x, y, translate(op.text))
		}
	}

	if pdf.Err() {
		return nil, fmt.Errorf("render overlays: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render overlays: %w", err)
	}
	d.out = buf.Bytes()
	return d.out, nil
}

// Index returns the 0-based position of p in its document.
func (p *Page) Index() int { return p.number - 1 }

// Size returns the page's MediaBox size.
func (p *Page) Size() (float64, float64) { return p.width, p.height }

// Origin returns the lower-left corner of the page's MediaBox.
func (p *Page) Origin() (float64, float64) { return p.llx, p.lly }

// toOutput maps a native point to fpdf's top-left page space.
func (p *Page) toOutput(x, y float64) (float64, float64) {
	return x - p.llx, p.height - (y - p.lly)
}

// Width measures text in Helvetica.
func (p *Page) Width(text string, size float64, bold bool) float64 {
	return p.doc.metrics.Width(text, size, bold)
}

// FillRect queues an opaque rectangle.
func (p *Page) FillRect(x, y, w, h float64, c Color) {
	p.doc.out = nil
	p.ops = append(p.ops, drawOp{fill: true, x: x, y: y, w: w, h: h, color: c})
}

// DrawText queues a line of text.
func (p *Page) DrawText(x, y float64, text string, size float64, bold bool) {
	p.doc.out = nil
	p.ops = append(p.ops, drawOp{x: x, y: y, text: text, size: size, bold: bold})
}
