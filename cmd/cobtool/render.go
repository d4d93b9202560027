package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/farmacob/cobtool/internal/api"
	"github.com/farmacob/cobtool/internal/home"
	"github.com/farmacob/cobtool/internal/letters"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render letters locally without a server",
	Long: `Render letters in this process using the configured template source.

Letters are written to --out, or to ~/.cobtool/output/ under the letter's
file name. When no template source is configured, ~/.cobtool/templates/
is used.`,
}

// RenderedLetter is printed after a local render.
type RenderedLetter struct {
	File     string `json:"file" yaml:"file"`
	RenderID string `json:"render_id" yaml:"render_id"`
	Template string `json:"template" yaml:"template"`
	Pages    int    `json:"pages" yaml:"pages"`
}

func (r RenderedLetter) Text() string {
	return fmt.Sprintf("saved %s (%d pages, template %s)", r.File, r.Pages, r.Template)
}

// newGenerator builds a generator from the loaded config.
func newGenerator() (*letters.Generator, *home.Dir, error) {
	h, err := getHome()
	if err != nil {
		return nil, nil, err
	}
	mgr, err := loadConfig(h)
	if err != nil {
		return nil, nil, err
	}
	cfg := mgr.Get().WithDefaultTemplatesDir(h.TemplatesPath())
	lc, err := cfg.GeneratorConfig()
	if err != nil {
		return nil, nil, err
	}
	lc.Logger = newLogger()
	gen, err := letters.NewGenerator(lc)
	if err != nil {
		return nil, nil, err
	}
	return gen, h, nil
}

// saveRendered writes res and prints where it went.
func saveRendered(h *home.Dir, res *letters.Result) error {
	path := renderOut
	if path == "" {
		path = h.OutputFile(res.FileName)
	}
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return fmt.Errorf("failed to save letter: %w", err)
	}
	return api.Output(RenderedLetter{File: path, RenderID: res.ID, Template: res.Template, Pages: res.Pages})
}

// renderFailure turns a letter error into the operator-facing message.
func renderFailure(err error) error {
	kind, msg := letters.Describe(err)
	return fmt.Errorf("%s (%s): %w", msg, kind, err)
}

func notificationRenderCmd() *cobra.Command {
	var (
		req       letters.NotificationRequest
		tableFile string
	)
	cmd := &cobra.Command{
		Use:   "notification",
		Short: "Render an extrajudicial notification",
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

			gen, h, err := newGenerator()
			if err != nil {
				return err
			}
			res, err := gen.Notification(cmd.Context(), req)
			if err != nil {
				return renderFailure(err)
			}
			return saveRendered(h, res)
		},
	}
	cmd.Flags().StringVar(&req.Category, "category", "NDS", "Template category: NDS or PRATI")
	cmd.Flags().StringVar(&req.Company, "company", "", "Company name (Razão Social)")
	cmd.Flags().StringVar(&req.TaxID, "tax-id", "", "CNPJ, digits or formatted")
	cmd.Flags().StringVar(&req.Date, "date", "", "Letter date, YYYY-MM-DD or DD/MM/YYYY (default: today)")
	cmd.Flags().StringVar(&tableFile, "table-file", "", "File with the installments table, - for stdin")
	return cmd
}

func collectionRenderCmd() *cobra.Command {
	var (
		req        letters.CollectionRequest
		attachment string
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
			req.Attachment = data

			gen, h, err := newGenerator()
			if err != nil {
				return err
			}
			res, err := gen.Collection(cmd.Context(), req)
			if err != nil {
				return renderFailure(err)
			}
			return saveRendered(h, res)
		},
	}
	cmd.Flags().StringVar(&req.Operator, "operator", "", "Operator whose template is used")
	cmd.Flags().StringVar(&req.Company, "company", "", "Company name (Razão Social)")
	cmd.Flags().StringVar(&req.TaxID, "tax-id", "", "CNPJ, 14 digits")
	cmd.Flags().StringVar(&req.Date, "date", "", "Letter date, YYYY-MM-DD or DD/MM/YYYY (default: today)")
	cmd.Flags().StringVar(&attachment, "attachment", "", "PDF inserted after the first page (required)")
	return cmd
}

func init() {
	renderCmd.PersistentFlags().StringVar(&renderOut, "out", "", "Output file (default: ~/.cobtool/output/<letter name>)")

	renderCmd.AddCommand(notificationRenderCmd())
	renderCmd.AddCommand(collectionRenderCmd())
	rootCmd.AddCommand(renderCmd)
}
