package normalize

import "strings"

// Honorific prefixes and generational suffixes dropped from names. Matching
// against "dr joao silva jr" must behave the same as against "joao silva".
var (
	namePrefixes = map[string]bool{
		"dr": true, "dra": true, "sr": true, "sra": true,
		"srta": true, "prof": true, "profa": true,
	}
	nameSuffixes = map[string]bool{
		"jr": true, "junior": true, "filho": true, "filha": true,
		"neto": true, "neta": true, "sobrinho": true, "sobrinha": true,
	}
	// Prepositions vary freely between report systems ("Joao da Silva" and
	// "Joao Silva" are the same person), so they are dropped to keep the
	// name-based join keys stable.
	namePrepositions = map[string]bool{
		"da": true, "de": true, "do": true, "dos": true, "das": true,
	}
)

// Name canonicalizes a person name for matching: cleans mis-decoded bytes,
// lowercases, strips diacritics, removes everything but letters, digits and
// spaces, and drops honorific prefixes, generational suffixes and
// prepositions. Idempotent: Name(Name(x)) == Name(x).
func Name(raw string) string {
	s := CleanText(raw)
	if s == "" {
		return ""
	}

	s = strings.ToLower(StripAccents(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			b.WriteRune(r)
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if namePrefixes[w] || nameSuffixes[w] || namePrepositions[w] {
			continue
		}
		kept = append(kept, w)
	}

	return strings.Join(kept, " ")
}
