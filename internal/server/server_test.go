package server

import (
	"bytes"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/farmacob/cobtool/internal/config"
	"github.com/farmacob/cobtool/internal/home"
	"github.com/farmacob/cobtool/internal/letters"
	"github.com/farmacob/cobtool/internal/server/endpoints"
	"github.com/farmacob/cobtool/internal/templates"
	"github.com/farmacob/cobtool/internal/testutil"
)

const (
	notificationTemplate = "notificação/NDS_04tl.pdf"
	pedroTemplate        = "notificação/" + templates.CollectionPrefix + "Pedro.pdf"
)

// newTestServer starts a handler backed by a config file whose template
// directory holds a notification and a collection template.
func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	cfg := testutil.NewServerConfig(t)
	pages := testutil.LetterPages(letters.DefaultPlaceholder)
	testutil.WriteTemplate(t, cfg.TemplatesDir, notificationTemplate, pages...)
	testutil.WriteTemplate(t, cfg.TemplatesDir, pedroTemplate, pages...)

	content := "templates:\n  dir: " + cfg.TemplatesDir + "\n"
	if err := os.WriteFile(cfg.ConfigFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	mgr, err := config.NewManager(cfg.ConfigFile)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	srv, err := New(Config{ConfigManager: mgr, Logger: cfg.Logger})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if srv.Generator() == nil {
		t.Fatal("generator should be built from config")
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, srv
}

func decodeError(t *testing.T, resp *http.Response) endpoints.ErrorResponse {
	t.Helper()
	var e endpoints.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return e
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthAndReady(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		var health endpoints.HealthResponse
		err = json.NewDecoder(resp.Body).Decode(&health)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK || health.Status != "ok" {
			t.Errorf("%s = %d %+v, want 200 ok", path, resp.StatusCode, health)
		}
	}
}

func TestReady_NoGenerator(t *testing.T) {
	srv, err := New(Config{Port: "0", Logger: testutil.Logger(t)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", resp.StatusCode)
	}

	resp2 := postJSON(t, ts.URL+"/api/letters/notification", `{"company":"X"}`)
	if resp2.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("notification status = %d, want 503", resp2.StatusCode)
	}
}

func TestNotification_PDF(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/letters/notification",
		`{"company":"Northwind Distribuidora","tax_id":"12.345.678/0001-99","date":"2025-03-05"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body error %+v", resp.StatusCode, decodeError(t, resp))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("Content-Disposition: %v", err)
	}
	if want := "Notificação Extrajudicial - 12345678000199 - NDS.pdf"; params["filename"] != want {
		t.Errorf("filename = %q, want %q", params["filename"], want)
	}
	if resp.Header.Get("X-Render-ID") == "" {
		t.Error("missing X-Render-ID")
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	n, err := pdfapi.PageCount(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 2 {
		t.Errorf("pages = %d, want 2", n)
	}
}

func TestNotification_JSONFormat(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/letters/notification?format=json",
		`{"company":"Northwind","tax_id":"12345678000199","date":"05/03/2025"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var lr endpoints.LetterResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lr.Template != notificationTemplate {
		t.Errorf("template = %q", lr.Template)
	}
	if len(lr.PDF) == 0 || lr.Pages != 2 {
		t.Errorf("pdf bytes = %d, pages = %d", len(lr.PDF), lr.Pages)
	}
	fields := map[string]string{}
	for _, p := range lr.Placements {
		fields[p.Field] = p.Text
	}
	if fields[letters.FieldCompany] != "NORTHWIND" {
		t.Errorf("company text = %q", fields[letters.FieldCompany])
	}
	if fields[letters.FieldTaxID] != "CNPJ: 12.345.678/0001-99" {
		t.Errorf("tax text = %q", fields[letters.FieldTaxID])
	}
}

func TestNotification_Errors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		kind   letters.Kind
	}{
		{"unknown field", `{"company":"X","surprise":1}`, http.StatusBadRequest, letters.KindInvalidInput},
		{"wrong type", `{"company":42}`, http.StatusBadRequest, letters.KindInvalidInput},
		{"not json", `company=X`, http.StatusBadRequest, letters.KindInvalidInput},
		{"all blank", `{}`, http.StatusBadRequest, letters.KindInvalidInput},
		{"bad category", `{"company":"X","category":"ZZZ"}`, http.StatusBadRequest, letters.KindInvalidInput},
		{"template missing", `{"company":"X","category":"PRATI"}`, http.StatusNotFound, letters.KindTemplateNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/letters/notification", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			e := decodeError(t, resp)
			if e.Kind != string(tt.kind) {
				t.Errorf("kind = %q, want %q", e.Kind, tt.kind)
			}
			if e.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func multipartBody(t *testing.T, fields map[string]string, attachment []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if attachment != nil {
		part, err := mw.CreateFormFile("attachment", "boletos.pdf")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(attachment)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestCollection(t *testing.T) {
	ts, _ := newTestServer(t)
	fields := map[string]string{
		"operator": "pedro",
		"company":  "Northwind",
		"tax_id":   "12345678000199",
		"date":     "2025-03-05",
	}

	t.Run("renders with attachment", func(t *testing.T) {
		body, ct := multipartBody(t, fields, testutil.PageMarkers(t, "BOLETO ", 2))
		resp, err := http.Post(ts.URL+"/api/letters/collection", ct, body)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, error %+v", resp.StatusCode, decodeError(t, resp))
		}
		if got := resp.Header.Get("X-Page-Count"); got != "4" {
			t.Errorf("X-Page-Count = %q, want 4", got)
		}
		_, params, _ := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
		if params["filename"] != "Carta de Cobranca - 12345678000199.pdf" {
			t.Errorf("filename = %q", params["filename"])
		}
	})

	t.Run("missing attachment", func(t *testing.T) {
		body, ct := multipartBody(t, fields, nil)
		resp, err := http.Post(ts.URL+"/api/letters/collection", ct, body)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
		if e := decodeError(t, resp); e.Kind != string(letters.KindInvalidInput) {
			t.Errorf("kind = %q", e.Kind)
		}
	})

	t.Run("unknown operator", func(t *testing.T) {
		f := map[string]string{"operator": "Zeca", "company": "X", "tax_id": "12345678000199"}
		body, ct := multipartBody(t, f, testutil.PageMarkers(t, "BOLETO ", 1))
		resp, err := http.Post(ts.URL+"/api/letters/collection", ct, body)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/letters/collection", `{}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestResolveTemplates(t *testing.T) {
	ts, _ := newTestServer(t)

	get := func(query string) (int, endpoints.ResolveTemplatesResponse) {
		resp, err := http.Get(ts.URL + "/api/templates/resolve?" + query)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()
		var r endpoints.ResolveTemplatesResponse
		json.NewDecoder(resp.Body).Decode(&r)
		return resp.StatusCode, r
	}

	status, r := get("operator=L%C3%BAcia")
	if status != http.StatusOK || r.Letter != "collection" {
		t.Fatalf("operator resolve = %d %+v", status, r)
	}
	if len(r.Candidates) == 0 || r.Candidates[0] != "notificação/"+templates.CollectionPrefix+"Lúcia.pdf" {
		t.Errorf("candidates = %v", r.Candidates)
	}

	status, r = get("category=prati&lines=12")
	if status != http.StatusOK || len(r.Candidates) != 1 || r.Candidates[0] != "notificação/PRATI_12tl.pdf" {
		t.Errorf("notification resolve = %d %+v", status, r)
	}

	if status, _ := get("lines=-1"); status != http.StatusBadRequest {
		t.Errorf("negative lines status = %d, want 400", status)
	}
	if status, _ := get("category=XYZ"); status != http.StatusBadRequest {
		t.Errorf("bad category status = %d, want 400", status)
	}
}

func TestNew_HomeTemplatesFallback(t *testing.T) {
	cfg := testutil.NewServerConfig(t)
	if err := os.WriteFile(cfg.ConfigFile, []byte("templates:\n  base_url: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mgr, err := config.NewManager(cfg.ConfigFile)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	srv, err := New(Config{ConfigManager: mgr, Logger: cfg.Logger})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if srv.Generator() != nil {
		t.Error("no template source and no home should leave the generator unset")
	}

	h := homeDir(t, filepath.Join(t.TempDir(), "home"))
	srv, err = New(Config{ConfigManager: mgr, Home: h, Logger: cfg.Logger})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if srv.Generator() == nil {
		t.Error("home templates directory should back the generator")
	}
}

func homeDir(t *testing.T, path string) *home.Dir {
	t.Helper()
	h, err := home.New(path)
	if err != nil {
		t.Fatalf("home.New: %v", err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}
	return h
}
