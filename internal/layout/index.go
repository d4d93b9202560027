// Package layout extracts positioned text runs from PDF pages and converts
// their geometry between device and native page coordinates.
package layout

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/farmacob/cobtool/internal/fontmetrics"
)

// TextRun is one contiguous run of glyphs on a rendered page, in device
// space. DeviceY is the baseline; the run extends DeviceHeight above it.
type TextRun struct {
	Text         string
	DeviceX      float64
	DeviceY      float64
	DeviceWidth  float64
	DeviceHeight float64
}

// Index is the text layout of one page.
type Index struct {
	Page     int
	Runs     []TextRun
	Geometry PageGeometry
}

// Options configures an extraction pass. It is passed explicitly to every
// Build call; there is no package-level extractor state.
type Options struct {
	// Scale is the device scale. Anchoring assumes 1 so device and native
	// units differ only by the page transform.
	Scale float64
	// LineTolerance is the maximum baseline drift, in points, for glyphs
	// that belong to the same run.
	LineTolerance float64
	// GapFactor is the largest horizontal gap, as a multiple of the font
	// size, that still joins two glyphs into one run.
	GapFactor float64
}

// DefaultOptions returns the options used for template anchoring.
func DefaultOptions() Options {
	return Options{
		Scale:         1,
		LineTolerance: 2,
		GapFactor:     0.6,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Scale <= 0 {
		o.Scale = d.Scale
	}
	if o.LineTolerance <= 0 {
		o.LineTolerance = d.LineTolerance
	}
	if o.GapFactor <= 0 {
		o.GapFactor = d.GapFactor
	}
	return o
}

// ErrExtraction is the category of all text layout failures.
var ErrExtraction = errors.New("layout extraction failed")

// ExtractionError reports that a page has no usable text layer.
// It is fatal for the document and must not be retried.
type ExtractionError struct {
	Page   int
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("layout extraction failed for page %d: %s", e.Page, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// Build extracts the text runs of page pageNumber (1-indexed) of a PDF.
func Build(ctx context.Context, data []byte, pageNumber int, opts Options) (idx *Index, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = &ExtractionError{Page: pageNumber, Reason: "extractor failed", Err: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Page: pageNumber, Reason: "cannot parse document", Err: err}
	}
	if pageNumber < 1 || pageNumber > reader.NumPage() {
		return nil, &ExtractionError{
			Page:   pageNumber,
			Reason: fmt.Sprintf("page out of range (document has %d pages)", reader.NumPage()),
		}
	}

	page := reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, &ExtractionError{Page: pageNumber, Reason: "page object missing"}
	}

	llx, lly, urx, ury := mediaBox(page)
	geom, err := NewPageGeometry(llx, lly, urx, ury, opts.Scale)
	if err != nil {
		return nil, &ExtractionError{Page: pageNumber, Reason: "invalid page box", Err: err}
	}

	metrics := fontmetrics.NewCore()
	glyphs := repairAdvances(page.Content().Text, metrics.WidthForBaseFont)
	runs := groupRuns(glyphs, geom, opts)
	if len(runs) == 0 {
		return nil, &ExtractionError{Page: pageNumber, Reason: "page has no text layer"}
	}

	return &Index{Page: pageNumber, Runs: runs, Geometry: geom}, nil
}

// Texts returns the text of every run, in extraction order.
func (idx *Index) Texts() []string {
	out := make([]string, len(idx.Runs))
	for i, r := range idx.Runs {
		out[i] = r.Text
	}
	return out
}

// mediaBox returns the page's MediaBox, walking up the page tree for
// inherited values. US Letter is assumed when no box is present.
func mediaBox(page pdf.Page) (llx, lly, urx, ury float64) {
	for v := page.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			return box.Index(0).Float64(), box.Index(1).Float64(), box.Index(2).Float64(), box.Index(3).Float64()
		}
	}
	return 0, 0, 612, 792
}
