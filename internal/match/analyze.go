package match

import "nexo/internal/model"

// analyze determines which fields two records agree on exactly and derives
// the match tier: a shared document number or three or more agreeing fields
// upgrade the pair to exact, a phonetic-key collision without an exact name
// marks it phonetic, anything else is fuzzy.
func analyze(a, b *model.Identity) (model.MatchTier, []string) {
	var fields []string

	docMatch := a.NormCPF != "" && a.NormCPF == b.NormCPF
	if docMatch {
		fields = append(fields, model.FieldCPF)
	}
	if a.NormName != "" && a.NormName == b.NormName {
		fields = append(fields, model.FieldName)
	}
	phonetic := a.Keys.Phonetic != "" && a.Keys.Phonetic == b.Keys.Phonetic
	if phonetic {
		fields = append(fields, model.FieldPhonetic)
	}
	if a.BirthDate != nil && b.BirthDate != nil && a.BirthDate.Equal(*b.BirthDate) {
		fields = append(fields, model.FieldBirthDate)
	}
	if a.NormMother != "" && a.NormMother == b.NormMother {
		fields = append(fields, model.FieldMother)
	}
	if a.NormRG != "" && a.NormRG == b.NormRG {
		fields = append(fields, model.FieldRG)
	}

	switch {
	case docMatch || len(fields) >= 3:
		return model.TierExact, fields
	case phonetic:
		return model.TierPhonetic, fields
	default:
		return model.TierFuzzy, fields
	}
}
