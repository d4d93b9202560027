package letters

import (
	"context"
	"fmt"
	"strings"

	"github.com/farmacob/cobtool/internal/anchor"
	"github.com/farmacob/cobtool/internal/compose"
	"github.com/farmacob/cobtool/internal/layout"
	"github.com/farmacob/cobtool/internal/overlay"
	"github.com/farmacob/cobtool/internal/templates"
)

// NotificationRequest holds the fields of an extrajudicial notification.
type NotificationRequest struct {
	// Category selects the template family: NDS (default) or PRATI.
	Category string `json:"category,omitempty"`
	Company  string `json:"company,omitempty"`
	TaxID    string `json:"tax_id,omitempty"`
	// Date is YYYY-MM-DD or DD/MM/YYYY; blank or invalid means today.
	Date string `json:"date,omitempty"`
	// Table is the pasted installments block, one row per line.
	Table string `json:"table,omitempty"`
}

// ParseCategory normalizes a notification category. Blank means NDS.
func ParseCategory(raw string) (string, error) {
	switch c := strings.ToUpper(strings.TrimSpace(raw)); c {
	case "":
		return templates.CategoryNDS, nil
	case templates.CategoryNDS, templates.CategoryPRATI:
		return c, nil
	default:
		return "", &InputError{Field: FieldCategory, Message: fmt.Sprintf("Categoria desconhecida: %s.", raw)}
	}
}

func (r NotificationRequest) category() (string, error) {
	return ParseCategory(r.Category)
}

// Notification renders an extrajudicial notification letter.
func (g *Generator) Notification(ctx context.Context, req NotificationRequest) (*Result, error) {
	r := g.begin("notification")

	category, err := req.category()
	if err != nil {
		return nil, r.fail(err)
	}
	if strings.TrimSpace(req.Company) == "" && strings.TrimSpace(req.TaxID) == "" && strings.TrimSpace(req.Table) == "" {
		return nil, r.fail(&InputError{Field: FieldCompany, Message: "Preencha pelo menos Razão Social, CNPJ ou Títulos."})
	}

	name := templates.NotificationTemplate(category, CountLines(req.Table))
	r.logger.Debug("fetching template", "template", name)
	_, data, err := templates.FetchFirst(ctx, g.templates, []string{name})
	if err != nil {
		return nil, r.fail(err)
	}

	idx, err := layout.Build(ctx, data, 1, g.layout)
	if err != nil {
		return nil, r.fail(err)
	}
	doc, err := overlay.OpenPDF(data)
	if err != nil {
		return nil, r.fail(err)
	}

	p := g.notification
	placements, err := g.annotateFirstPage(doc.Page(0), idx, p, fields{
		company: UpperPT(req.Company),
		taxLine: TaxLine(req.TaxID),
		date:    g.dateLine(req.Date),
	})
	if err != nil {
		return nil, r.fail(err)
	}

	var table *overlay.TablePlacement
	if rows := ParseTable(req.Table); len(rows) > 0 && p.Table != nil {
		if tp, ok := g.drawTable(ctx, doc, data, idx, p.Table, rows); ok {
			table = &tp
		}
	}

	annotated, err := doc.Bytes()
	if err != nil {
		return nil, r.fail(err)
	}
	base, err := compose.Load(name, annotated)
	if err != nil {
		return nil, r.fail(err)
	}
	out, err := compose.Assemble([]compose.PageSource{{Document: base, PageIndexes: compose.AllPages(base)}})
	if err != nil {
		return nil, r.fail(err)
	}

	digits := OnlyDigits(req.TaxID)
	if digits == "" {
		digits = "SEM_CNPJ"
	}
	return r.done(&Result{
		FileName:   fmt.Sprintf("Notificação Extrajudicial - %s - %s.pdf", digits, category),
		Data:       out,
		Pages:      base.PageCount(),
		Template:   name,
		Placements: placements,
		Table:      table,
	}), nil
}

// drawTable writes the installments table on page 2 when the template has
// one and the slot asks for it, else on page 1.
func (g *Generator) drawTable(ctx context.Context, doc *overlay.PDFDocument, data []byte, first *layout.Index, slot *TableSlot, rows [][]string) (overlay.TablePlacement, bool) {
	page, idx := doc.Page(0), first
	if slot.PreferSecondPage && doc.PageCount() > 1 {
		page, idx = doc.Page(1), nil
		if slot.UseHeaders {
			// Unreadable second pages fall back to the fixed layout.
			if second, err := layout.Build(ctx, data, 2, g.layout); err == nil {
				idx = second
			}
		}
	}

	tl := overlay.FractionalTable(page.Size()).Shift(page.Origin())
	if slot.UseHeaders && idx != nil {
		if anchored, ok := headerLayout(idx); ok {
			tl = anchored
		}
	}
	return g.renderer.DrawTable(page, tl, rows)
}

var tableHeaders = []anchor.Query{
	{Name: "invoice header", Match: anchor.CollapseSpaces(anchor.AllOf(anchor.Contains("NOTA"), anchor.Contains("FISCAL")))},
	{Name: "installment header", Match: anchor.CollapseSpaces(anchor.AnyOf(anchor.Contains("PARCELA"), anchor.Contains("PARC")))},
	{Name: "due date header", Match: anchor.CollapseSpaces(anchor.AllOf(anchor.Contains("DATA"), anchor.Contains("VENCTO")))},
	{Name: "amount header", Match: anchor.CollapseSpaces(anchor.Contains("VALOR"))},
}

func headerLayout(idx *layout.Index) (overlay.TableLayout, bool) {
	ms, err := anchor.FindAll(idx.Runs, tableHeaders...)
	if err != nil {
		return overlay.TableLayout{}, false
	}
	var rects [4]layout.Rect
	for i, m := range ms {
		rects[i] = layout.ToNativeRect(m.Run, idx.Geometry)
	}
	return overlay.AnchoredTable(rects[0], rects[1], rects[2], rects[3]), true
}
