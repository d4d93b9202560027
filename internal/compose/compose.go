// Package compose assembles an output PDF from pages of several source
// documents in a caller-given order.
package compose

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is a loaded source document.
type Document struct {
	Name  string
	data  []byte
	pages int
}

// Load opens data and records its page count. name is used in errors.
func Load(name string, data []byte) (*Document, error) {
	n, err := api.PageCount(bytes.NewReader(data), newConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return &Document{Name: name, data: data, pages: n}, nil
}

// PageCount returns the number of pages in d.
func (d *Document) PageCount() int { return d.pages }

// PageSource selects pages (0-based) of one document, in output order.
type PageSource struct {
	Document    *Document
	PageIndexes []int
}

// AllPages returns every page index of d in order.
func AllPages(d *Document) []int {
	return PageRange(0, d.PageCount())
}

// PageRange returns the indexes from (inclusive) to to (exclusive).
func PageRange(from, to int) []int {
	if to <= from {
		return nil
	}
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

// ErrPageRange is the category of out-of-range page selections.
var ErrPageRange = errors.New("page index out of range")

// ErrNoPages is returned when the sources select no page at all.
var ErrNoPages = errors.New("no pages selected")

// RangeError reports a page index outside its document.
type RangeError struct {
	Source    int // position in the source list
	Document  string
	Index     int
	PageCount int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("source %d (%s): page index %d out of range [0, %d)", e.Source, e.Document, e.Index, e.PageCount)
}

func (e *RangeError) Is(target error) bool { return target == ErrPageRange }

// Assemble copies the selected pages of every source into one document and
// returns it. Every index is validated before anything is written, so a bad
// selection fails the whole assembly.
func Assemble(sources []PageSource) ([]byte, error) {
	total := 0
	for i, src := range sources {
		if src.Document == nil {
			return nil, fmt.Errorf("source %d has no document", i)
		}
		for _, idx := range src.PageIndexes {
			if idx < 0 || idx >= src.Document.pages {
				return nil, &RangeError{Source: i, Document: src.Document.Name, Index: idx, PageCount: src.Document.pages}
			}
		}
		total += len(src.PageIndexes)
	}
	if total == 0 {
		return nil, ErrNoPages
	}

	conf := newConfig()
	var parts []io.ReadSeeker
	for i, src := range sources {
		if len(src.PageIndexes) == 0 {
			continue
		}
		selected := make([]string, len(src.PageIndexes))
		for j, idx := range src.PageIndexes {
			selected[j] = strconv.Itoa(idx + 1)
		}
		var buf bytes.Buffer
		if err := api.Collect(bytes.NewReader(src.Document.data), &buf, selected, conf); err != nil {
			return nil, fmt.Errorf("failed to copy pages of source %d (%s): %w", i, src.Document.Name, err)
		}
		parts = append(parts, bytes.NewReader(buf.Bytes()))
	}

	if len(parts) == 1 {
		data, err := io.ReadAll(parts[0])
		if err != nil {
			return nil, err
		}
		return data, nil
	}

	var out bytes.Buffer
	if err := api.MergeRaw(parts, &out, false, conf); err != nil {
		return nil, fmt.Errorf("failed to merge %d parts: %w", len(parts), err)
	}
	return out.Bytes(), nil
}

func newConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}
