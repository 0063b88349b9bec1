package normalize

import (
	"strings"

	"nexo/internal/model"
)

var sexSynonyms = map[string]model.Sex{
	"m": model.SexMale, "masculino": model.SexMale, "masc": model.SexMale,
	"h": model.SexMale, "homem": model.SexMale,
	"f": model.SexFemale, "feminino": model.SexFemale, "fem": model.SexFemale,
	"mulher": model.SexFemale,
}

// Sex maps a raw sex code onto the closed {M, F, unknown} enumeration.
// Anything outside the synonym set, including empty input, is unknown.
func Sex(raw string) model.Sex {
	s := strings.ToLower(strings.TrimSpace(CleanText(raw)))
	if v, ok := sexSynonyms[s]; ok {
		return v
	}
	return model.SexUnknown
}
