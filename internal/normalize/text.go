package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// mojibake maps the most common UTF-8-read-as-Latin-1 sequences seen in the
// historical exports back to the intended characters. Applied before any other
// normalization.
var mojibake = []struct{ bad, good string }{
	{"Ã£", "ã"}, {"Ã¡", "á"}, {"Ã¢", "â"}, {"Ã ", "à"},
	{"Ãµ", "õ"}, {"Ã³", "ó"}, {"Ã´", "ô"},
	{"Ã©", "é"}, {"Ãª", "ê"}, {"Ã­", "í"}, {"Ãº", "ú"}, {"Ã§", "ç"},
	{"Ã‰", "É"}, {"ÃŠ", "Ê"}, {"Ã‡", "Ç"},
	{"Â", ""},
}

// CleanText strips control and zero-width characters, repairs mis-decoded
// byte sequences and collapses whitespace. Pure and total: any input yields a
// usable (possibly empty) string.
func CleanText(s string) string {
	if s == "" {
		return ""
	}

	for _, m := range mojibake {
		s = strings.ReplaceAll(s, m.bad, m.good)
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\uFEFF', r >= '\u200B' && r <= '\u200D', r == '\uFFFE', r == '\uFFFF':
			// BOM and zero-width characters
		case unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r':
		default:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes diacritics: "João" becomes "Joao".
func StripAccents(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}
