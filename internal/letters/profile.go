package letters

import (
	"github.com/farmacob/cobtool/internal/anchor"
)

// DefaultPlaceholder is the company name printed on the stock templates
// where the debtor's name goes.
const DefaultPlaceholder = "L R PEREIRA JUNIOR LTDA"

// Profile describes where a letter template expects its fields.
type Profile struct {
	Name string
	// Fields holds the company query (First) and the tax ID query (Second).
	Fields anchor.Pair
	// Swap exchanges the two field targets for templates that print the
	// lines the other way round.
	Swap bool

	FontSize float64
	Bold     bool
	OffsetX  float64
	OffsetY  float64

	// Fallback placements are drawn LinesAbove lines above the matched run
	// in a size clamped to [FallbackMinSize, FallbackMaxSize], one line
	// being FallbackLineGap times that size.
	FallbackMinSize float64
	FallbackMaxSize float64
	FallbackLineGap float64

	Date  *DateSlot
	Table *TableSlot
}

// DateSlot places the date line at page-relative coordinates.
type DateSlot struct {
	XFrac, YTopFrac float64
	Width, Height   float64
	FontSize        float64
	OffsetX         float64
	OffsetY         float64
}

// TableSlot configures the installments table.
type TableSlot struct {
	// PreferSecondPage draws the table on page 2 when the template has one.
	PreferSecondPage bool
	// UseHeaders positions the columns from the printed headers when all
	// four are found, instead of fixed page fractions.
	UseHeaders bool
}

func greeting(linesAbove float64) anchor.Query {
	return anchor.Query{Name: "greeting", Match: anchor.Matches(`prezados`), LinesAbove: linesAbove}
}

func baseProfile(name, placeholder string) Profile {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return Profile{
		Name: name,
		Fields: anchor.Pair{
			First: anchor.Query{
				Name:      FieldCompany,
				Match:     anchor.CollapseSpaces(anchor.Contains(placeholder)),
				Fallbacks: []anchor.Query{greeting(2)},
			},
			Second: anchor.Query{
				Name:      FieldTaxID,
				Match:     anchor.StartsWith("CNPJ:"),
				Fallbacks: []anchor.Query{greeting(1)},
			},
		},
		FontSize:        12,
		Bold:            true,
		FallbackMinSize: 11,
		FallbackMaxSize: 13,
		FallbackLineGap: 1.2,
		Date: &DateSlot{
			XFrac:    0.58,
			YTopFrac: 0.78,
			Width:    220,
			Height:   12,
			FontSize: 10,
			OffsetX:  23,
			OffsetY:  -12,
		},
	}
}

// NotificationProfile returns the profile of the extrajudicial notification
// templates.
func NotificationProfile(placeholder string) Profile {
	p := baseProfile("notification", placeholder)
	p.Table = &TableSlot{PreferSecondPage: true}
	return p
}

// CollectionProfile returns the profile of the operators' collection
// letter templates.
func CollectionProfile(placeholder string) Profile {
	return baseProfile("collection", placeholder)
}

// fieldQueries returns the company and tax ID queries after applying Swap.
func (p Profile) fieldQueries() (company, taxID anchor.Query) {
	pair := p.Fields
	if p.Swap {
		pair = pair.Swapped()
	}
	return pair.First, pair.Second
}
