// Package letters renders collection letters from fixed-layout PDF templates
// and the debtor's data.
package letters

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"github.com/farmacob/cobtool/internal/anchor"
	"github.com/farmacob/cobtool/internal/layout"
	"github.com/farmacob/cobtool/internal/overlay"
	"github.com/farmacob/cobtool/internal/templates"
)

// Config configures a Generator.
type Config struct {
	Templates templates.Source
	Layout    layout.Options
	// City starts the date line.
	City string
	// Location defines "today" when a request carries no usable date.
	Location *time.Location
	// Operators maps operator keys to template name spellings.
	Operators map[string][]string
	// Notification and Collection override the stock profiles.
	Notification *Profile
	Collection   *Profile
	Now          func() time.Time
	Logger       *slog.Logger
}

// Generator renders letters. It holds no per-request state and can serve
// concurrent requests.
type Generator struct {
	templates    templates.Source
	layout       layout.Options
	renderer     overlay.Renderer
	city         string
	loc          *time.Location
	operators    map[string][]string
	notification Profile
	collection   Profile
	now          func() time.Time
	logger       *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Templates == nil {
		return nil, errors.New("letters: template source is required")
	}
	g := &Generator{
		templates:    cfg.Templates,
		layout:       cfg.Layout,
		renderer:     overlay.DefaultRenderer(),
		city:         cfg.City,
		loc:          cfg.Location,
		operators:    cfg.Operators,
		notification: NotificationProfile(""),
		collection:   CollectionProfile(""),
		now:          cfg.Now,
		logger:       cfg.Logger,
	}
	if g.city == "" {
		g.city = "Toledo"
	}
	if g.loc == nil {
		loc, err := time.LoadLocation("America/Sao_Paulo")
		if err != nil {
			return nil, fmt.Errorf("letters: failed to load default timezone: %w", err)
		}
		g.loc = loc
	}
	if g.operators == nil {
		g.operators = templates.DefaultOperators()
	}
	if cfg.Notification != nil {
		g.notification = *cfg.Notification
	}
	if cfg.Collection != nil {
		g.collection = *cfg.Collection
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g, nil
}

// Result is a rendered letter.
type Result struct {
	ID         string
	FileName   string
	Data       []byte
	Pages      int
	Template   string
	Placements []Placement
	// Table is set when an installments table was drawn.
	Table *overlay.TablePlacement
}

// Placement records one drawn field.
type Placement struct {
	Field    string
	Page     int // 0-based
	Anchor   string
	Fallback bool
	overlay.FieldPlacement
}

// render is the per-request state of one letter.
type render struct {
	id      string
	logger  *slog.Logger
	started time.Time
}

func (g *Generator) begin(kind string) *render {
	id := uuid.NewString()
	r := &render{id: id, logger: g.logger.With("render_id", id, "letter", kind), started: time.Now()}
	r.logger.Info("rendering letter")
	return r
}

func (r *render) fail(err error) error {
	kind, _ := Describe(err)
	r.logger.Error("letter failed", "kind", kind, "error", err, "duration", time.Since(r.started))
	return err
}

func (r *render) done(res *Result) *Result {
	res.ID = r.id
	r.logger.Info("letter rendered",
		"template", res.Template,
		"file", res.FileName,
		"pages", res.Pages,
		"bytes", len(res.Data),
		"duration", time.Since(r.started))
	return res
}

// fields are the overlay values shared by every letter.
type fields struct {
	company string
	taxLine string
	date    string
}

// annotateFirstPage writes the company, tax ID and date onto page.
func (g *Generator) annotateFirstPage(page *overlay.Page, idx *layout.Index, p Profile, f fields) ([]Placement, error) {
	companyQ, taxQ := p.fieldQueries()

	company, err := anchor.Find(idx.Runs, companyQ)
	if err != nil {
		g.logger.Debug("anchor not found", "field", FieldCompany, "runs", idx.Texts())
		return nil, fmt.Errorf("failed to locate company field: %w", err)
	}
	var tax anchor.Match
	if f.taxLine != "" {
		tax, err = anchor.Find(idx.Runs, taxQ)
		if err != nil {
			g.logger.Debug("anchor not found", "field", FieldTaxID, "runs", idx.Texts())
			return nil, fmt.Errorf("failed to locate tax id field: %w", err)
		}
	}

	var out []Placement
	out = append(out, g.placeField(page, idx, p, FieldCompany, company, f.company))
	if f.taxLine != "" {
		out = append(out, g.placeField(page, idx, p, FieldTaxID, tax, f.taxLine))
	}
	if p.Date != nil && f.date != "" {
		out = append(out, g.placeDate(page, p.Date, f.date))
	}
	return out, nil
}

func (g *Generator) placeField(page *overlay.Page, idx *layout.Index, p Profile, field string, m anchor.Match, text string) Placement {
	rect := layout.ToNativeRect(m.Run, idx.Geometry)
	pl := Placement{Field: field, Page: page.Index(), Anchor: m.Query.Name, Fallback: m.IsFallback()}

	if !m.IsFallback() {
		pl.FieldPlacement, _ = g.renderer.Place(page, rect, text, p.FontSize, p.Bold, p.OffsetX, p.OffsetY)
		return pl
	}

	size := rect.Height
	if size == 0 {
		size = p.FontSize
	}
	size = math.Max(p.FallbackMinSize, math.Min(p.FallbackMaxSize, size))
	yTop := rect.YTop + size*p.FallbackLineGap*m.Query.LinesAbove
	overlay.PlaceAt(page, rect.X, yTop, size, text, p.Bold)

	pl.FieldPlacement = overlay.FieldPlacement{
		Rect:      rect,
		Text:      text,
		Bold:      p.Bold,
		FontSize:  size,
		TextX:     rect.X,
		TextY:     yTop - size,
		TextWidth: page.Width(text, size, p.Bold),
	}
	return pl
}

func (g *Generator) placeDate(page *overlay.Page, slot *DateSlot, line string) Placement {
	w, h := page.Size()
	ox, oy := page.Origin()
	rect := layout.Rect{
		X:        ox + w*slot.XFrac,
		YTop:     oy + h*slot.YTopFrac,
		YBottom:  oy + h*slot.YTopFrac - slot.Height,
		Width:    slot.Width,
		Height:   slot.Height,
		FontSize: slot.FontSize,
	}
	fp, _ := g.renderer.Place(page, rect, line, slot.FontSize, false, slot.OffsetX, slot.OffsetY)
	return Placement{Field: "date", Page: page.Index(), Anchor: "date slot", FieldPlacement: fp}
}

func (g *Generator) dateLine(raw string) string {
	return DateLine(g.city, ResolveDate(raw, g.now(), g.loc))
}
