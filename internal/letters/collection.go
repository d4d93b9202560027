package letters

import (
	"context"
	"strings"

	"github.com/farmacob/cobtool/internal/compose"
	"github.com/farmacob/cobtool/internal/layout"
	"github.com/farmacob/cobtool/internal/overlay"
	"github.com/farmacob/cobtool/internal/templates"
)

// CollectionRequest holds the fields of an operator's collection letter.
type CollectionRequest struct {
	Operator string
	Company  string
	TaxID    string
	Date     string
	// Attachment is the PDF inserted after the letter's first page.
	Attachment []byte
}

// CollectionTemplates returns the template names tried, in order, for an
// operator's collection letter.
func (g *Generator) CollectionTemplates(operator string) []string {
	return templates.CollectionTemplates(operator, g.operators)
}

// Collection renders a collection letter: the operator's template with the
// debtor's data on its first page, followed by every page of the
// attachment, followed by the template's remaining pages.
func (g *Generator) Collection(ctx context.Context, req CollectionRequest) (*Result, error) {
	r := g.begin("collection")

	digits := OnlyDigits(req.TaxID)
	if len(digits) > 14 {
		digits = digits[:14]
	}
	switch {
	case strings.TrimSpace(req.Company) == "":
		return nil, r.fail(&InputError{Field: FieldCompany, Message: "Informe a Razão Social."})
	case len(digits) != 14:
		return nil, r.fail(&InputError{Field: FieldTaxID, Message: "Informe um CNPJ com 14 dígitos."})
	case strings.TrimSpace(req.Operator) == "":
		return nil, r.fail(&InputError{Field: FieldOperator, Message: "Selecione o operador."})
	case len(req.Attachment) == 0:
		return nil, r.fail(&InputError{Field: FieldAttachment, Message: "Selecione o PDF para anexar."})
	}

	upload, err := compose.Load("attachment", req.Attachment)
	if err != nil {
		r.logger.Debug("attachment rejected", "error", err)
		return nil, r.fail(&InputError{Field: FieldAttachment, Message: "O arquivo enviado não é um PDF válido."})
	}

	candidates := g.CollectionTemplates(req.Operator)
	name, data, err := templates.FetchFirst(ctx, g.templates, candidates)
	if err != nil {
		return nil, r.fail(err)
	}
	r.logger.Debug("template resolved", "template", name, "candidates", len(candidates))

	idx, err := layout.Build(ctx, data, 1, g.layout)
	if err != nil {
		return nil, r.fail(err)
	}
	doc, err := overlay.OpenPDF(data)
	if err != nil {
		return nil, r.fail(err)
	}

	placements, err := g.annotateFirstPage(doc.Page(0), idx, g.collection, fields{
		company: UpperPT(req.Company),
		taxLine: "CNPJ: " + FormatCNPJ(digits),
		date:    g.dateLine(req.Date),
	})
	if err != nil {
		return nil, r.fail(err)
	}

	annotated, err := doc.Bytes()
	if err != nil {
		return nil, r.fail(err)
	}
	base, err := compose.Load(name, annotated)
	if err != nil {
		return nil, r.fail(err)
	}

	out, err := compose.Assemble([]compose.PageSource{
		{Document: base, PageIndexes: []int{0}},
		{Document: upload, PageIndexes: compose.AllPages(upload)},
		{Document: base, PageIndexes: compose.PageRange(1, base.PageCount())},
	})
	if err != nil {
		return nil, r.fail(err)
	}

	return r.done(&Result{
		FileName:   "Carta de Cobranca - " + digits + ".pdf",
		Data:       out,
		Pages:      base.PageCount() + upload.PageCount(),
		Template:   name,
		Placements: placements,
	}), nil
}
