package fontmetrics

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestCoreWidth(t *testing.T) {
	c := NewCore()

	// Helvetica "A" is 667 units, Helvetica-Bold "A" is 722.
	if got := c.Width("A", 10, false); !approx(got, 6.67) {
		t.Errorf("Width(A, regular) = %v, want 6.67", got)
	}
	if got := c.Width("A", 10, true); !approx(got, 7.22) {
		t.Errorf("Width(A, bold) = %v, want 7.22", got)
	}
	if got := c.Width("", 10, false); got != 0 {
		t.Errorf("Width(empty) = %v, want 0", got)
	}
	if got := c.Width("A", 0, false); got != 0 {
		t.Errorf("Width(size 0) = %v, want 0", got)
	}
}

func TestCoreWidthForBaseFont(t *testing.T) {
	c := NewCore()

	tests := []struct {
		baseFont string
		want     float64
	}{
		{"Courier", 18},
		{"Courier-Bold", 18},
		{"ABCDEF+Courier", 18},
		{"Helvetica", c.Width("abc", 10, false)},
		{"Helvetica-Bold", c.Width("abc", 10, true)},
		{"UnknownSans", c.Width("abc", 10, false)},
	}
	for _, tt := range tests {
		t.Run(tt.baseFont, func(t *testing.T) {
			if got := c.WidthForBaseFont(tt.baseFont, "abc", 10); !approx(got, tt.want) {
				t.Errorf("WidthForBaseFont(%q) = %v, want %v", tt.baseFont, got, tt.want)
			}
		})
	}
}

func TestCoreFamily(t *testing.T) {
	tests := []struct {
		in, family, style string
	}{
		{"Helvetica", "Helvetica", ""},
		{"Helvetica-BoldOblique", "Helvetica", "BI"},
		{"Times-Roman", "Times", ""},
		{"Times-BoldItalic", "Times", "BI"},
		{"XYZABC+Courier-Oblique", "Courier", "I"},
		{"Arial,Bold", "Helvetica", "B"},
	}
	for _, tt := range tests {
		family, style := coreFamily(tt.in)
		if family != tt.family || style != tt.style {
			t.Errorf("coreFamily(%q) = %q, %q; want %q, %q", tt.in, family, style, tt.family, tt.style)
		}
	}
}

func TestCoreTranslate(t *testing.T) {
	c := NewCore()
	if got := c.Translate("é"); got != "\xe9" {
		t.Errorf("Translate(é) = %q, want cp1252 0xe9", got)
	}
}
