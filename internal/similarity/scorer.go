// Package similarity computes field-weighted similarity between two
// candidate records.
package similarity

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"nexo/internal/model"
)

// Field weights. Records rarely populate every field, so the score is
// renormalized over the weights of the fields both records actually carry:
// a corpse report without a document number is not penalized for the absence.
const (
	weightName     = 0.30
	weightCPF      = 0.25
	weightBirth    = 0.15
	weightMother   = 0.15
	weightRG       = 0.10
	weightPhonetic = 0.05
)

// Scorer computes pairwise similarity scores.
type Scorer struct{}

// NewScorer creates a new scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns the weighted similarity between two records in [0,1].
// Fields missing on either side are excluded from both the numerator and the
// denominator; when nothing is comparable the score is 0. Symmetric:
// Score(a,b) == Score(b,a).
func (s *Scorer) Score(a, b *model.Identity) float64 {
	type comparison struct {
		va, vb string
		weight float64
	}

	aBirth, bBirth := "", ""
	if a.BirthDate != nil {
		aBirth = a.BirthDate.Format("2006-01-02")
	}
	if b.BirthDate != nil {
		bBirth = b.BirthDate.Format("2006-01-02")
	}

	comparisons := []comparison{
		{a.NormName, b.NormName, weightName},
		{a.NormCPF, b.NormCPF, weightCPF},
		{aBirth, bBirth, weightBirth},
		{a.NormMother, b.NormMother, weightMother},
		{a.NormRG, b.NormRG, weightRG},
		{a.Keys.Phonetic, b.Keys.Phonetic, weightPhonetic},
	}

	total, used := 0.0, 0.0
	for _, c := range comparisons {
		if c.va == "" || c.vb == "" {
			continue
		}
		total += Ratio(c.va, c.vb) * c.weight
		used += c.weight
	}

	if used == 0 {
		return 0.0
	}
	return total / used
}

// Ratio is the normalized edit-distance similarity between two strings:
// 1.0 for identical input, 0.0 for completely disjoint input.
func Ratio(a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
