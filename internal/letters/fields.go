package letters

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OnlyDigits strips everything but ASCII digits.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCNPJ formats up to 14 digits as 12.345.678/0001-99. Shorter inputs
// are grouped as far as they go; extra digits are dropped.
func FormatCNPJ(raw string) string {
	d := OnlyDigits(raw)
	if len(d) > 14 {
		d = d[:14]
	}
	groups := []struct {
		sep  string
		size int
	}{{"", 2}, {".", 3}, {".", 3}, {"/", 4}, {"-", 2}}

	var b strings.Builder
	for _, g := range groups {
		if d == "" {
			break
		}
		n := min(g.size, len(d))
		b.WriteString(g.sep)
		b.WriteString(d[:n])
		d = d[n:]
	}
	return b.String()
}

// TaxLine returns the "CNPJ: ..." line for raw, or "" when raw is blank.
// Complete 14-digit inputs are formatted; anything else is printed as given.
func TaxLine(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if d := OnlyDigits(raw); len(d) == 14 {
		raw = FormatCNPJ(d)
	}
	return "CNPJ: " + raw
}

var upperPT = cases.Upper(language.BrazilianPortuguese)

// UpperPT upper-cases s with Brazilian Portuguese rules.
func UpperPT(s string) string {
	return upperPT.String(strings.TrimSpace(s))
}

var (
	isoDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	brDate  = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
)

// ParseDate accepts YYYY-MM-DD or DD/MM/YYYY and rejects impossible
// calendar dates.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	var y, m, d int
	if p := isoDate.FindStringSubmatch(raw); p != nil {
		y, m, d = atoi(p[1]), atoi(p[2]), atoi(p[3])
	} else if p := brDate.FindStringSubmatch(raw); p != nil {
		y, m, d = atoi(p[3]), atoi(p[2]), atoi(p[1])
	} else {
		return time.Time{}, false
	}
	if y == 0 || m == 0 || d == 0 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ResolveDate parses raw, falling back to the current day in loc when raw
// is blank or not a valid date.
func ResolveDate(raw string, now time.Time, loc *time.Location) time.Time {
	if t, ok := ParseDate(raw, loc); ok {
		return t
	}
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
}

var months = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// DateLine renders the letter's place and date: "Toledo, 05 de março de 2025".
func DateLine(city string, t time.Time) string {
	return fmt.Sprintf("%s, %02d de %s de %d", city, t.Day(), months[t.Month()-1], t.Year())
}

var (
	twoOrMoreSpaces = regexp.MustCompile(`\s{2,}`)
	anySpaces       = regexp.MustCompile(`\s+`)
)

// CountLines returns the number of non-blank lines in raw.
func CountLines(raw string) int {
	n := 0
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// ParseTable splits pasted installment rows into four columns: invoice,
// installment, due date and amount. Cells are separated by tabs, or by runs
// of two or more spaces, or by single spaces when that yields too few
// cells. Rows with five or more cells skip the third one. A leading header
// row is dropped.
func ParseTable(raw string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var parts []string
		if strings.Contains(line, "\t") {
			parts = strings.Split(line, "\t")
		} else {
			parts = twoOrMoreSpaces.Split(line, -1)
		}
		parts = compact(parts)
		if len(parts) < 4 {
			parts = compact(anySpaces.Split(line, -1))
		}

		if len(parts) >= 5 {
			parts = []string{parts[0], parts[1], parts[3], parts[4]}
		}
		for len(parts) < 4 {
			parts = append(parts, "")
		}
		rows = append(rows, parts[:4])
	}

	if len(rows) > 0 && strings.Contains(strings.ToUpper(strings.Join(rows[0], " ")), "NOTA") {
		rows = rows[1:]
	}
	return rows
}

func compact(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimFunc(p, unicode.IsSpace); p != "" {
			out = append(out, p)
		}
	}
	return out
}
