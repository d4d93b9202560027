package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/farmacob/cobtool/internal/api"
	"github.com/farmacob/cobtool/internal/letters"
	"github.com/farmacob/cobtool/internal/templates"
)

func TestDecodeNotification(t *testing.T) {
	req, err := decodeNotification([]byte(`{"category":"prati","company":"ACME","tax_id":"1","date":"2025-01-02","table":"a\tb"}`))
	if err != nil {
		t.Fatalf("decodeNotification: %v", err)
	}
	want := letters.NotificationRequest{Category: "prati", Company: "ACME", TaxID: "1", Date: "2025-01-02", Table: "a\tb"}
	if req != want {
		t.Errorf("req = %+v, want %+v", req, want)
	}

	for _, body := range []string{`[]`, `{"company":1}`, `{"extra":"x"}`, `{`} {
		if _, err := decodeNotification([]byte(body)); err == nil {
			t.Errorf("%s: expected error", body)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[letters.Kind]int{
		letters.KindInvalidInput:     http.StatusBadRequest,
		letters.KindTemplateNotFound: http.StatusNotFound,
		letters.KindLayoutExtraction: http.StatusUnprocessableEntity,
		letters.KindAnchorNotFound:   http.StatusUnprocessableEntity,
		letters.KindComposerRange:    http.StatusUnprocessableEntity,
		letters.KindInternal:         http.StatusInternalServerError,
	}
	for kind, want := range tests {
		if got := statusFor(kind); got != want {
			t.Errorf("statusFor(%s) = %d, want %d", kind, got, want)
		}
	}
	if got := statusFor(letters.Kind("other")); got != http.StatusInternalServerError {
		t.Errorf("unknown kind = %d", got)
	}
	kind, _ := letters.Describe(errors.New("boom"))
	if kind != letters.KindInternal {
		t.Errorf("plain error kind = %s", kind)
	}
}

func TestWriteLetterError(t *testing.T) {
	fetchTimeout := &templates.NotFoundError{
		Names: []string{"notificação/NDS_04tl.pdf"},
		Err:   fmt.Errorf("Get \"http://templates/x.pdf\": %w", context.DeadlineExceeded),
	}

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	tests := []struct {
		name     string
		ctx      context.Context
		wantCode int
	}{
		{"fetch timeout on live request", context.Background(), http.StatusNotFound},
		{"request deadline expired", expired, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/letters/notification", nil).WithContext(tt.ctx)
			w := httptest.NewRecorder()

			writeLetterError(w, r, fetchTimeout)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Kind != string(letters.KindTemplateNotFound) {
				t.Errorf("kind = %q, want %q", resp.Kind, letters.KindTemplateNotFound)
			}
		})
	}
}

func TestSaveLetter(t *testing.T) {
	dir := t.TempDir()
	header := http.Header{}
	header.Set("X-Render-ID", "r-1")
	header.Set("X-Page-Count", "3")

	t.Run("into directory keeps server name", func(t *testing.T) {
		saved, err := saveLetter(&api.File{Name: "Carta.pdf", Data: []byte("pdf"), Header: header}, dir)
		if err != nil {
			t.Fatalf("saveLetter: %v", err)
		}
		if saved.File != filepath.Join(dir, "Carta.pdf") || saved.Bytes != 3 || saved.RenderID != "r-1" {
			t.Errorf("saved = %+v", saved)
		}
		if saved.Text() != "saved "+saved.File+" (3 bytes, 3 pages)" {
			t.Errorf("Text() = %q", saved.Text())
		}
	})

	t.Run("server name cannot escape", func(t *testing.T) {
		saved, err := saveLetter(&api.File{Name: "../../evil.pdf", Data: []byte("x"), Header: header}, dir)
		if err != nil {
			t.Fatalf("saveLetter: %v", err)
		}
		if saved.File != filepath.Join(dir, "evil.pdf") {
			t.Errorf("File = %q", saved.File)
		}
	})

	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(dir, "out.pdf")
		if _, err := saveLetter(&api.File{Data: []byte("x"), Header: header}, path); err != nil {
			t.Fatalf("saveLetter: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s: %v", path, err)
		}
	})
}
