package model

// MatchTier classifies how a match was established.
type MatchTier string

const (
	TierExact    MatchTier = "exact"    // shared strong key, document match, or >=3 matched fields
	TierPhonetic MatchTier = "phonetic" // names collide on the phonetic key
	TierFuzzy    MatchTier = "fuzzy"    // similarity above threshold without a stronger anchor
)

// Confidence is the three-valued label summarizing score plus matched fields.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceFor applies the score-to-confidence rule: high requires
// score >= 0.95 and either a document-number match or at least three matched
// fields; medium requires score >= 0.85; everything else is low.
func ConfidenceFor(score float64, matchedFields []string) Confidence {
	docMatch := false
	for _, f := range matchedFields {
		if f == FieldCPF {
			docMatch = true
			break
		}
	}
	switch {
	case score >= 0.95 && (docMatch || len(matchedFields) >= 3):
		return ConfidenceHigh
	case score >= 0.85:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Matched-field names reported in MatchResult.MatchedFields.
const (
	FieldName      = "name"
	FieldCPF       = "cpf"
	FieldRG        = "rg"
	FieldBirthDate = "birth_date"
	FieldMother    = "mother_name"
	FieldPhonetic  = "phonetic"
	FieldStrongKey = "strong_key"
)

// Pass identifies which tier pass of the engine produced a match.
type Pass string

const (
	PassStrong   Pass = "strong"   // join on name + full birth date
	PassModerate Pass = "moderate" // join on name + birth year
	PassWeak     Pass = "weak"     // join on name alone
)

// MatchResult is the edge connecting a source record to a target record.
// Created once by the matching engine, immutable thereafter.
type MatchResult struct {
	SourceID      string      `json:"source_id"`
	TargetID      string      `json:"target_id"`
	SourceDataset DatasetKind `json:"source_dataset"`
	TargetDataset DatasetKind `json:"target_dataset"`
	Pass          Pass        `json:"pass"`
	Tier          MatchTier   `json:"tier"`
	Score         float64     `json:"score"` // similarity in [0,1]
	MatchedFields []string    `json:"matched_fields,omitempty"`
	Confidence    Confidence  `json:"confidence"`
}
