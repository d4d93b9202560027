package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"

	"github.com/farmacob/cobtool/internal/layout"
)

// A4 page size in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// Text is one string on a fixture page. X and Y are the baseline origin
// in native PDF coordinates (origin bottom-left).
type Text struct {
	X, Y float64
	Size float64
	Bold bool
	S    string
}

// Page is one fixture page.
type Page struct {
	Width, Height float64
	Texts         []Text
}

// A4Page returns an A4 page carrying texts.
func A4Page(texts ...Text) Page {
	return Page{Width: A4Width, Height: A4Height, Texts: texts}
}

// BuildPDF writes a PDF with the given pages using Helvetica.
func BuildPDF(t testing.TB, pages ...Page) []byte {
	t.Helper()
	if len(pages) == 0 {
		t.Fatal("BuildPDF needs at least one page")
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: pages[0].Width, Ht: pages[0].Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, p := range pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: p.Width, Ht: p.Height})
		for _, txt := range p.Texts {
			style := ""
			if txt.Bold {
				style = "B"
			}
			size := txt.Size
			if size <= 0 {
				size = 11
			}
			pdf.SetFont("Helvetica", style, size)
			pdf.Text(txt.X, p.Height-txt.Y, tr(txt.S))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build fixture pdf: %v", err)
	}
	return buf.Bytes()
}

// PageMarkers builds a document whose page i carries the single line
// "<prefix><i>", 0-indexed, so page order survives composition checks.
func PageMarkers(t testing.TB, prefix string, n int) []byte {
	t.Helper()
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = A4Page(Text{X: 72, Y: 720, Size: 14, S: prefix + strconv.Itoa(i)})
	}
	return BuildPDF(t, pages...)
}

// LetterPages returns a two-page letter template: a first page with the
// company placeholder, a CNPJ line and a greeting, and a closing page.
func LetterPages(placeholder string) []Page {
	return []Page{
		A4Page(
			Text{X: 72, Y: 780, Size: 14, Bold: true, S: "NOTIFICAÇÃO EXTRAJUDICIAL"},
			Text{X: 72, Y: 700, Size: 12, Bold: true, S: placeholder},
			Text{X: 72, Y: 684, Size: 12, Bold: true, S: "CNPJ: 00.000.000/0000-00"},
			Text{X: 72, Y: 640, Size: 11, S: "Prezados Senhores,"},
		),
		A4Page(Text{X: 72, Y: 700, Size: 11, S: "Atenciosamente,"}),
	}
}

// WriteTemplate writes a fixture PDF at root/name, creating directories.
// name uses forward slashes, the way template names do.
func WriteTemplate(t testing.TB, root, name string, pages ...Page) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create template dir: %v", err)
	}
	if err := os.WriteFile(path, BuildPDF(t, pages...), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

// OffsetPDF writes a one-page PDF whose MediaBox starts at (llx, lly)
// instead of the origin. Texts use native coordinates and must be ASCII.
func OffsetPDF(t testing.TB, llx, lly, width, height float64, texts ...Text) []byte {
	t.Helper()

	var content bytes.Buffer
	for _, txt := range texts {
		font, size := "/F1", txt.Size
		if txt.Bold {
			font = "/F2"
		}
		if size <= 0 {
			size = 11
		}
		content.WriteString("BT " + font + " " + num(size) + " Tf " + num(txt.X) + " " + num(txt.Y) + " Td (" + pdfString(txt.S) + ") Tj ET\n")
	}

	box := "[" + num(llx) + " " + num(lly) + " " + num(llx+width) + " " + num(lly+height) + "]"
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox " + box + " /Contents 4 0 R /Resources << /Font << /F1 5 0 R /F2 6 0 R >> >> >>",
		"<< /Length " + strconv.Itoa(content.Len()) + " >>\nstream\n" + content.String() + "endstream",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		buf.WriteString(strconv.Itoa(i+1) + " 0 obj\n" + obj + "\nendobj\n")
	}
	xref := buf.Len()
	buf.WriteString("xref\n0 " + strconv.Itoa(len(objects)+1) + "\n0000000000 65535 f \n")
	for _, off := range offsets {
		s := strconv.Itoa(off)
		buf.WriteString(strings.Repeat("0", 10-len(s)) + s + " 00000 n \n")
	}
	buf.WriteString("trailer\n<< /Size " + strconv.Itoa(len(objects)+1) + " /Root 1 0 R >>\nstartxref\n" + strconv.Itoa(xref) + "\n%%EOF\n")
	return buf.Bytes()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func pdfString(s string) string {
	return strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(s)
}

// HasText reports whether any run of idx contains s, ignoring case.
func HasText(idx *layout.Index, s string) bool {
	needle := strings.ToUpper(s)
	for _, r := range idx.Runs {
		if strings.Contains(strings.ToUpper(r.Text), needle) {
			return true
		}
	}
	return false
}
