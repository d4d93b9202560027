package letters

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFormatCNPJ(t *testing.T) {
	tests := map[string]string{
		"12345678000199":     "12.345.678/0001-99",
		"12.345.678/0001-99": "12.345.678/0001-99",
		"1234567800019988":   "12.345.678/0001-99",
		"12":                 "12",
		"123":                "12.3",
		"12345678":           "12.345.678",
		"123456780001":       "12.345.678/0001",
		"":                   "",
	}
	for in, want := range tests {
		if got := FormatCNPJ(in); got != want {
			t.Errorf("FormatCNPJ(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTaxLine(t *testing.T) {
	tests := map[string]string{
		"12345678000199": "CNPJ: 12.345.678/0001-99",
		" 123.456 ":      "CNPJ: 123.456",
		"   ":            "",
	}
	for in, want := range tests {
		if got := TaxLine(in); got != want {
			t.Errorf("TaxLine(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUpperPT(t *testing.T) {
	if got := UpperPT("  Northwind Distribuição ltda "); got != "NORTHWIND DISTRIBUIÇÃO LTDA" {
		t.Errorf("UpperPT = %q", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-03-05", "2025-03-05", true},
		{"05/03/2025", "2025-03-05", true},
		{"09/08/2024", "2024-08-09", true},
		{"2025-02-30", "", false},
		{"31/04/2025", "", false},
		{"2025-3-5", "", false},
		{"0000-01-01", "", false},
		{"amanhã", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in, time.UTC)
		if ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestResolveDateDefaultsToTodayInLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	// 01:30 UTC on the 6th is still the 5th at UTC-3.
	now := time.Date(2025, 3, 6, 1, 30, 0, 0, time.UTC)

	for _, raw := range []string{"", "garbage", "2025-13-01"} {
		got := ResolveDate(raw, now, loc)
		if got.Format("2006-01-02") != "2025-03-05" {
			t.Errorf("ResolveDate(%q) = %s, want 2025-03-05", raw, got.Format("2006-01-02"))
		}
	}
	if got := ResolveDate("01/01/2024", now, loc); got.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("explicit date ignored: %s", got)
	}
}

func TestDateLine(t *testing.T) {
	d := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	if got := DateLine("Toledo", d); got != "Toledo, 05 de março de 2025" {
		t.Errorf("DateLine = %q", got)
	}
	d = time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)
	if got := DateLine("Cascavel", d); got != "Cascavel, 25 de dezembro de 2024" {
		t.Errorf("DateLine = %q", got)
	}
}

func TestParseTable(t *testing.T) {
	raw := "NOTA FISCAL\tPARCELA\tVENCIMENTO\tVALOR\n" +
		"1001\t1/3\t05/03/2025\t150,00\n" +
		"\n" +
		"1002  2/3  SERIE  05/04/2025  150,00\n" +
		"1003 3/3 05/05/2025 150,00\n" +
		"1004\n"

	want := [][]string{
		{"1001", "1/3", "05/03/2025", "150,00"},
		{"1002", "2/3", "05/04/2025", "150,00"},
		{"1003", "3/3", "05/05/2025", "150,00"},
		{"1004", "", "", ""},
	}
	if diff := cmp.Diff(want, ParseTable(raw)); diff != "" {
		t.Errorf("ParseTable mismatch (-want +got):\n%s", diff)
	}
	if rows := ParseTable("  \n\n"); len(rows) != 0 {
		t.Errorf("blank table parsed to %v", rows)
	}
	if n := CountLines(raw); n != 5 {
		t.Errorf("CountLines = %d, want 5", n)
	}
}

func TestOnlyDigits(t *testing.T) {
	if got := OnlyDigits("12.345.678/0001-99 ¹²"); got != "12345678000199" {
		t.Errorf("OnlyDigits = %q", got)
	}
}
