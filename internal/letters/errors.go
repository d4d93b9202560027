package letters

import (
	"errors"
	"fmt"

	"github.com/farmacob/cobtool/internal/anchor"
	"github.com/farmacob/cobtool/internal/compose"
	"github.com/farmacob/cobtool/internal/layout"
	"github.com/farmacob/cobtool/internal/overlay"
	"github.com/farmacob/cobtool/internal/templates"
)

// ErrInvalidInput is the category of rejected letter requests.
var ErrInvalidInput = errors.New("invalid input")

// InputError reports a missing or malformed request field. Message is
// shown to the operator as is.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// Kind names a failure category.
type Kind string

const (
	KindInvalidInput     Kind = "InvalidInput"
	KindTemplateNotFound Kind = "TemplateNotFound"
	KindLayoutExtraction Kind = "LayoutExtractionError"
	KindAnchorNotFound   Kind = "AnchorNotFound"
	KindComposerRange    Kind = "ComposerRangeError"
	KindInternal         Kind = "Internal"
)

// Field names used in anchor queries and input errors.
const (
	FieldCompany    = "company"
	FieldTaxID      = "tax_id"
	FieldAttachment = "attachment"
	FieldOperator   = "operator"
	FieldCategory   = "category"
)

// Describe maps err to its category and the message shown to the operator.
func Describe(err error) (Kind, string) {
	var (
		input *InputError
		nf    *anchor.NotFoundError
	)
	switch {
	case errors.As(err, &input):
		return KindInvalidInput, input.Message
	case errors.Is(err, templates.ErrNotFound):
		return KindTemplateNotFound, "Não foi possível carregar o PDF base."
	case errors.Is(err, layout.ErrExtraction), errors.Is(err, overlay.ErrOpen):
		return KindLayoutExtraction, "Falha ao ler texto do PDF base."
	case errors.As(err, &nf):
		if nf.Field == FieldTaxID {
			return KindAnchorNotFound, "Não foi possível posicionar o CNPJ no PDF base."
		}
		return KindAnchorNotFound, "Não foi possível posicionar a Razão Social no PDF base."
	case errors.Is(err, compose.ErrPageRange):
		return KindComposerRange, "Não foi possível montar o documento final: página fora do intervalo."
	default:
		return KindInternal, "Não foi possível gerar o PDF."
	}
}
