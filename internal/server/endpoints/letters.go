package endpoints

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/farmacob/cobtool/internal/api"
	"github.com/farmacob/cobtool/internal/letters"
)

// LetterResponse describes a rendered letter when ?format=json is requested.
type LetterResponse struct {
	ID         string              `json:"id"`
	FileName   string              `json:"file_name"`
	Template   string              `json:"template"`
	Pages      int                 `json:"pages"`
	Placements []PlacementResponse `json:"placements"`
	TableCells int                 `json:"table_cells,omitempty"`
	PDF        []byte              `json:"pdf"`
}

// PlacementResponse is one drawn field.
type PlacementResponse struct {
	Field    string  `json:"field"`
	Page     int     `json:"page"`
	Anchor   string  `json:"anchor,omitempty"`
	Fallback bool    `json:"fallback,omitempty"`
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"font_size"`
}

func newLetterResponse(res *letters.Result) LetterResponse {
	resp := LetterResponse{
		ID:         res.ID,
		FileName:   res.FileName,
		Template:   res.Template,
		Pages:      res.Pages,
		Placements: make([]PlacementResponse, 0, len(res.Placements)),
		PDF:        res.Data,
	}
	for _, p := range res.Placements {
		resp.Placements = append(resp.Placements, PlacementResponse{
			Field:    p.Field,
			Page:     p.Page,
			Anchor:   p.Anchor,
			Fallback: p.Fallback,
			Text:     p.Text,
			X:        p.TextX,
			Y:        p.TextY,
			FontSize: p.FontSize,
		})
	}
	if res.Table != nil {
		resp.TableCells = len(res.Table.Cells)
	}
	return resp
}

// writeLetter writes a rendered letter as a PDF download, or as JSON when
// the request asks for ?format=json.
func writeLetter(w http.ResponseWriter, r *http.Request, res *letters.Result) {
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, newLetterResponse(res))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-Render-ID", res.ID)
	w.Header().Set("X-Page-Count", strconv.Itoa(res.Pages))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

// statusFor maps a letter failure category to an HTTP status.
func statusFor(kind letters.Kind) int {
	switch kind {
	case letters.KindInvalidInput:
		return http.StatusBadRequest
	case letters.KindTemplateNotFound:
		return http.StatusNotFound
	case letters.KindLayoutExtraction, letters.KindAnchorNotFound, letters.KindComposerRange:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeLetterError writes the operator-facing message for a failed render.
// The generator has already logged the underlying error. Only an expired
// request deadline is a 504; a template fetch timeout stays TemplateNotFound.
func writeLetterError(w http.ResponseWriter, r *http.Request, err error) {
	kind, msg := letters.Describe(err)
	status := statusFor(kind)
	if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Kind: string(kind)})
}

// SavedLetter is printed by the CLI after a letter is written to disk.
type SavedLetter struct {
	File     string `json:"file" yaml:"file"`
	Bytes    int    `json:"bytes" yaml:"bytes"`
	RenderID string `json:"render_id,omitempty" yaml:"render_id,omitempty"`
	Pages    string `json:"pages,omitempty" yaml:"pages,omitempty"`
}

func (s SavedLetter) Text() string {
	if s.Pages != "" {
		return fmt.Sprintf("saved %s (%d bytes, %s pages)", s.File, s.Bytes, s.Pages)
	}
	return fmt.Sprintf("saved %s (%d bytes)", s.File, s.Bytes)
}

// saveLetter writes a downloaded letter to out. A directory, or an empty
// out, keeps the server's file name.
func saveLetter(f *api.File, out string) (SavedLetter, error) {
	name := filepath.Base(filepath.Clean("/" + f.Name))
	if name == "/" || name == "." {
		name = "letter.pdf"
	}
	path := out
	if path == "" {
		path = name
	} else if info, err := os.Stat(out); err == nil && info.IsDir() {
		path = filepath.Join(out, name)
	}
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return SavedLetter{}, fmt.Errorf("failed to save letter: %w", err)
	}
	return SavedLetter{
		File:     path,
		Bytes:    len(f.Data),
		RenderID: f.Header.Get("X-Render-ID"),
		Pages:    f.Header.Get("X-Page-Count"),
	}, nil
}
