package templates

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Notification letter categories.
const (
	CategoryNDS   = "NDS"
	CategoryPRATI = "PRATI"
)

// Directories that hold the letter templates, in lookup order.
var letterDirs = []string{"notificação", "notificacao"}

// CollectionPrefix starts every collection letter template name.
const CollectionPrefix = "NOTIFICAÇÃO DE BOLETOS EM ATRASO - "

// NotificationTemplate returns the template for a notification letter whose
// installments table has lines non-empty lines. Short tables share the
// 4-line template; longer ones have one template per line count up to 31.
func NotificationTemplate(category string, lines int) string {
	n := 4
	if lines >= 5 {
		n = min(lines, 31)
	}
	return fmt.Sprintf("%s/%s_%02dtl.pdf", letterDirs[0], strings.ToUpper(category), n)
}

// DefaultOperators maps operator keys to the spellings their template file
// names may use.
func DefaultOperators() map[string][]string {
	return map[string][]string{
		"carlyle":    {"Carlyle"},
		"lucia":      {"Lúcia", "Lucia"},
		"pedro":      {"Pedro"},
		"rafael":     {"Rafael"},
		"renan":      {"Renan"},
		"vanderleia": {"Vanderleia"},
	}
}

// OperatorKey normalizes an operator name for lookup: trimmed, lower-case
// and without accents.
func OperatorKey(name string) string {
	return strings.ToLower(Fold(strings.TrimSpace(name)))
}

// CollectionTemplates returns the candidate template names for an
// operator's collection letter. Each known spelling is tried as written and
// accent-folded, in each letter directory. An unknown operator is looked up
// by the name given.
func CollectionTemplates(operator string, operators map[string][]string) []string {
	spellings := operators[OperatorKey(operator)]
	if len(spellings) == 0 {
		if name := strings.TrimSpace(operator); name != "" {
			spellings = []string{name}
		}
	}

	var (
		out  []string
		seen = map[string]bool{}
	)
	add := func(file string) {
		for _, dir := range letterDirs {
			name := dir + "/" + file
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	for _, s := range spellings {
		s = strings.TrimSpace(s)
		add(CollectionPrefix + s + ".pdf")
		add(CollectionPrefix + Fold(s) + ".pdf")
	}
	return out
}

// Fold removes diacritics: "Lúcia" becomes "Lucia".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
