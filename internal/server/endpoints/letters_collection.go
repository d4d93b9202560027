package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/farmacob/cobtool/internal/api"
	"github.com/farmacob/cobtool/internal/letters"
	"github.com/farmacob/cobtool/internal/svcctx"
)

// maxAttachmentSize caps the uploaded PDF.
const maxAttachmentSize = 64 << 20

// CollectionEndpoint handles POST /api/letters/collection with a multipart
// form: operator, company, tax_id and date fields plus the attachment file.
type CollectionEndpoint struct{}

var _ api.Endpoint = (*CollectionEndpoint)(nil)

func (e *CollectionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/letters/collection", e.handler
}

func (e *CollectionEndpoint) RequiresInit() bool { return true }

// handler fills the operator's collection template from a multipart form
// (operator, company, tax_id, date and the attachment file) and inserts the
// attachment after its first page. It answers with the PDF, or a JSON
// ErrorResponse with 400, 404, 422 or 503.
func (e *CollectionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
			logger.Warn("rejected collection upload", "error", err)
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := letters.CollectionRequest{
		Operator: r.FormValue("operator"),
		Company:  r.FormValue("company"),
		TaxID:    r.FormValue("tax_id"),
		Date:     r.FormValue("date"),
	}
	if files := r.MultipartForm.File["attachment"]; len(files) > 0 {
		src, err := files[0].Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to open attachment: %v", err))
			return
		}
		req.Attachment, err = io.ReadAll(src)
		src.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read attachment: %v", err))
			return
		}
	}

	gen := svcctx.GeneratorFrom(r.Context())
	if gen == nil {
		writeError(w, http.StatusServiceUnavailable, "letter generator not initialized")
		return
	}

	res, err := gen.Collection(r.Context(), req)
	if err != nil {
		writeLetterError(w, r, err)
		return
	}
	writeLetter(w, r, res)
}

func (e *CollectionEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		operator, company, taxID, date string
		attachment, out                string
	)
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Render a collection letter with an attached PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			if attachment == "" {
				return fmt.Errorf("--attachment is required")
			}
			data, err := os.ReadFile(attachment)
			if err != nil {
				return fmt.Errorf("failed to read attachment: %w", err)
			}

			client := api.NewClient(getServerURL())
			f, err := client.PostMultipartForFile(cmd.Context(), "/api/letters/collection", map[string]string{
				"operator": operator,
				"company":  company,
				"tax_id":   taxID,
				"date":     date,
			}, api.FormFile{Field: "attachment", FileName: filepath.Base(attachment), Data: data})
			if err != nil {
				return err
			}
			saved, err := saveLetter(f, out)
			if err != nil {
				return err
			}
			return api.Output(saved)
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "Operator whose template is used")
	cmd.Flags().StringVar(&company, "company", "", "Company name (Razão Social)")
	cmd.Flags().StringVar(&taxID, "tax-id", "", "CNPJ, 14 digits")
	cmd.Flags().StringVar(&date, "date", "", "Letter date, YYYY-MM-DD or DD/MM/YYYY (default: today)")
	cmd.Flags().StringVar(&attachment, "attachment", "", "PDF inserted after the first page (required)")
	cmd.Flags().StringVar(&out, "out", "", "Output file or directory (default: server file name in the current directory)")
	return cmd
}
