package normalize

import "strings"

// Document reduces a document number (CPF, RG and the like) to its digits.
// "123.456.789-09" becomes "12345678909"; input with no digits yields "".
func Document(raw string) string {
	if raw == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
