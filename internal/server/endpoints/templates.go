package endpoints

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/farmacob/cobtool/internal/api"
	"github.com/farmacob/cobtool/internal/letters"
	"github.com/farmacob/cobtool/internal/svcctx"
	"github.com/farmacob/cobtool/internal/templates"
)

// ResolveTemplatesResponse lists template names in the order they are tried.
type ResolveTemplatesResponse struct {
	Letter     string   `json:"letter" yaml:"letter"`
	Candidates []string `json:"candidates" yaml:"candidates"`
}

// ResolveTemplatesEndpoint handles GET /api/templates/resolve.
//
// With ?operator= it resolves a collection letter; otherwise it resolves a
// notification from ?category= and ?lines= (installment rows).
type ResolveTemplatesEndpoint struct{}

var _ api.Endpoint = (*ResolveTemplatesEndpoint)(nil)

func (e *ResolveTemplatesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/templates/resolve", e.handler
}

func (e *ResolveTemplatesEndpoint) RequiresInit() bool { return true }

// handler lists the template files a letter request would try, as a
// ResolveTemplatesResponse.
func (e *ResolveTemplatesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if operator := q.Get("operator"); operator != "" {
		gen := svcctx.GeneratorFrom(r.Context())
		if gen == nil {
			writeError(w, http.StatusServiceUnavailable, "letter generator not initialized")
			return
		}
		writeJSON(w, http.StatusOK, ResolveTemplatesResponse{
			Letter:     "collection",
			Candidates: gen.CollectionTemplates(operator),
		})
		return
	}

	category, err := letters.ParseCategory(q.Get("category"))
	if err != nil {
		writeLetterError(w, r, err)
		return
	}
	lines := 0
	if raw := q.Get("lines"); raw != "" {
		lines, err = strconv.Atoi(raw)
		if err != nil || lines < 0 {
			writeError(w, http.StatusBadRequest, "lines must be a non-negative integer")
			return
		}
	}
	writeJSON(w, http.StatusOK, ResolveTemplatesResponse{
		Letter:     "notification",
		Candidates: []string{templates.NotificationTemplate(category, lines)},
	})
}

func (e *ResolveTemplatesEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		operator, category string
		lines              int
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the template names a letter would try",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if operator != "" {
				q.Set("operator", operator)
			} else {
				q.Set("category", category)
				q.Set("lines", strconv.Itoa(lines))
			}
			client := api.NewClient(getServerURL())
			var resp ResolveTemplatesResponse
			if err := client.Get(cmd.Context(), "/api/templates/resolve?"+q.Encode(), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "Operator for a collection letter")
	cmd.Flags().StringVar(&category, "category", "NDS", "Notification category: NDS or PRATI")
	cmd.Flags().IntVar(&lines, "lines", 0, "Installment rows in the notification table")
	return cmd
}

