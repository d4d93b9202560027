package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/cobra"

	"github.com/farmacob/cobtool/internal/api"
	"github.com/farmacob/cobtool/internal/letters"
	"github.com/farmacob/cobtool/internal/svcctx"
)

// maxNotificationBody caps the JSON body; the pasted table dominates it.
const maxNotificationBody = 1 << 20

var notificationSchema = []byte(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "category": {"type": "string", "maxLength": 16},
    "company": {"type": "string", "maxLength": 300},
    "tax_id": {"type": "string", "maxLength": 32},
    "date": {"type": "string", "maxLength": 32},
    "table": {"type": "string"}
  }
}`)

var compileNotificationSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("notification.json", bytes.NewReader(notificationSchema)); err != nil {
		return nil, fmt.Errorf("failed to load notification schema: %w", err)
	}
	return compiler.Compile("notification.json")
})

// decodeNotification validates body against the request schema and decodes it.
func decodeNotification(body []byte) (letters.NotificationRequest, error) {
	var req letters.NotificationRequest

	schema, err := compileNotificationSchema()
	if err != nil {
		return req, err
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return req, fmt.Errorf("request does not match schema: %w", err)
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("invalid request: %w", err)
	}
	return req, nil
}

// NotificationEndpoint handles POST /api/letters/notification.
type NotificationEndpoint struct{}

var _ api.Endpoint = (*NotificationEndpoint)(nil)

func (e *NotificationEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/letters/notification", e.handler
}

func (e *NotificationEndpoint) RequiresInit() bool { return true }

// handler fills the notification template for the request's category with
// the debtor's data and installments table. The body is a JSON
// NotificationRequest; ?format=json returns the metadata with the PDF
// inline. Failures are a JSON ErrorResponse with 400, 404, 422 or 503.
func (e *NotificationEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxNotificationBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	req, err := decodeNotification(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: string(letters.KindInvalidInput)})
		return
	}

	gen := svcctx.GeneratorFrom(r.Context())
	if gen == nil {
		writeError(w, http.StatusServiceUnavailable, "letter generator not initialized")
		return
	}

	res, err := gen.Notification(r.Context(), req)
	if err != nil {
		writeLetterError(w, r, err)
		return
	}
	writeLetter(w, r, res)
}

func (e *NotificationEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		req       letters.NotificationRequest
		tableFile string
		out       string
	)
	cmd := &cobra.Command{
		Use:   "notification",
		Short: "Render an extrajudicial notification",
		Long: `Render an extrajudicial notification and save the PDF.

The installments table is read from --table-file ("-" for stdin), one row
per line, columns separated by tabs or runs of spaces.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tableFile != "" {
				var (
					data []byte
					err  error
				)
				if tableFile == "-" {
					data, err = io.ReadAll(cmd.InOrStdin())
				} else {
					data, err = os.ReadFile(tableFile)
				}
				if err != nil {
					return fmt.Errorf("failed to read table: %w", err)
				}
				req.Table = string(data)
			}

			client := api.NewClient(getServerURL())
			f, err := client.PostForFile(cmd.Context(), "/api/letters/notification", req)
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
	cmd.Flags().StringVar(&req.Category, "category", "NDS", "Template category: NDS or PRATI")
	cmd.Flags().StringVar(&req.Company, "company", "", "Company name (Razão Social)")
	cmd.Flags().StringVar(&req.TaxID, "tax-id", "", "CNPJ, digits or formatted")
	cmd.Flags().StringVar(&req.Date, "date", "", "Letter date, YYYY-MM-DD or DD/MM/YYYY (default: today)")
	cmd.Flags().StringVar(&tableFile, "table-file", "", "File with the installments table, - for stdin")
	cmd.Flags().StringVar(&out, "out", "", "Output file or directory (default: server file name in the current directory)")
	return cmd
}
