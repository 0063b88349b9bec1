// Package keys derives the blocking and matching keys used to pair records
// across datasets without scoring every combination.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"nexo/internal/model"
)

// Strong builds the strongest identity key: normalized name plus the full
// birth date. Empty when either input is missing.
func Strong(normName string, birthDate *time.Time) string {
	if normName == "" || birthDate == nil {
		return ""
	}
	return normName + "|" + birthDate.Format("2006-01-02")
}

// Moderate builds the name-plus-birth-year key. Empty when either input is
// missing.
func Moderate(normName string, birthYear *int) string {
	if normName == "" || birthYear == nil {
		return ""
	}
	return fmt.Sprintf("%s|%d", normName, *birthYear)
}

// Weak is the name alone. Empty when the name is missing.
func Weak(normName string) string {
	return normName
}

// phoneticClass maps consonants onto nine articulation classes: labials,
// velars, dentals, liquids, nasals, rhotics, labio-dentals,
// palatals/affricates and sibilants. Vowels (and anything unmapped) are
// skipped.
var phoneticClass = map[byte]byte{
	'B': '1', 'P': '1',
	'C': '2', 'K': '2', 'Q': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
	'F': '7', 'V': '7',
	'G': '8', 'J': '8',
	'S': '9', 'Z': '9', 'X': '9',
}

const phoneticLength = 6

// Phonetic encodes a normalized name so that differently spelled but
// similar-sounding names collide: the first character is kept verbatim, each
// following letter maps to its consonant class, immediately repeated class
// codes collapse, and the result is padded or truncated to six characters.
// Empty input yields an empty (absent) key.
func Phonetic(normName string) string {
	s := strings.ToUpper(strings.TrimSpace(normName))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.WriteByte(s[0])
	last := byte(0)
	for i := 1; i < len(s); i++ {
		code, ok := phoneticClass[s[i]]
		if !ok {
			continue
		}
		if code == last {
			continue
		}
		b.WriteByte(code)
		last = code
	}

	out := b.String()
	if len(out) > phoneticLength {
		return out[:phoneticLength]
	}
	return out + strings.Repeat("0", phoneticLength-len(out))
}

// CompositeInput names the identity fields that feed the composite key.
// Absent fields are omitted from the hash input; they are never replaced by a
// placeholder, so two records missing the same field do not gain agreement.
type CompositeInput struct {
	Name       string
	CPF        string
	BirthDate  *time.Time
	MotherName string
}

// Composite produces a content-addressed hash over whichever identity fields
// are present, each labeled so that field values cannot bleed into each
// other. Empty when no field is present.
func Composite(in CompositeInput) string {
	var parts []string
	if in.Name != "" {
		parts = append(parts, "name:"+in.Name)
	}
	if in.CPF != "" {
		parts = append(parts, "cpf:"+in.CPF)
	}
	if in.BirthDate != nil {
		parts = append(parts, "birth_date:"+in.BirthDate.Format("2006-01-02"))
	}
	if in.MotherName != "" {
		parts = append(parts, "mother_name:"+in.MotherName)
	}
	if len(parts) == 0 {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Generate fills the record's key set from its normalized fields. Any key
// whose required inputs are absent stays absent.
func Generate(id *model.Identity) model.KeySet {
	return model.KeySet{
		Strong:   Strong(id.NormName, id.BirthDate),
		Moderate: Moderate(id.NormName, id.BirthYear),
		Weak:     Weak(id.NormName),
		Phonetic: Phonetic(id.NormName),
		Composite: Composite(CompositeInput{
			Name:       id.NormName,
			CPF:        id.NormCPF,
			BirthDate:  id.BirthDate,
			MotherName: id.NormMother,
		}),
	}
}
