// Package ingest loads delimited source exports into typed records. It owns
// the messy edges (header remapping, encoding repair, field normalization,
// key derivation) so the matching core only ever sees canonical fields.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"nexo/internal/keys"
	"nexo/internal/model"
	"nexo/internal/normalize"
)

// idPrefixes per dataset kind, used when a row lacks a usable source id.
var idPrefixes = map[model.DatasetKind]string{
	model.DatasetDisappearance: "D",
	model.DatasetCorpse:        "C",
	model.DatasetHomicide:      "H",
}

// Row is one source row with canonical field names.
type Row map[string]string

// ReadRows parses a delimited file into canonical rows. Headers are remapped
// via FieldMapping; cell text is repaired but otherwise untouched.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = CanonicalHeader(h)
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		row := make(Row, len(fields))
		for i, cell := range record {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			if v := normalize.CleanText(cell); v != "" {
				row[fields[i]] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadFile reads one dataset file and builds the identities for its kind.
func LoadFile(path string, kind model.DatasetKind) ([]*model.Identity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return BuildIdentities(rows, kind), nil
}

// BuildIdentities turns canonical rows into enriched identities: normalized
// fields, estimated age and the full key set. A malformed field degrades to
// an absence; it never aborts the batch.
func BuildIdentities(rows []Row, kind model.DatasetKind) []*model.Identity {
	out := make([]*model.Identity, 0, len(rows))
	for i, row := range rows {
		id := buildIdentity(row, kind, i)
		out = append(out, id)
	}
	return out
}

func buildIdentity(row Row, kind model.DatasetKind, index int) *model.Identity {
	id := &model.Identity{
		ID:         rowID(row, kind, index),
		Dataset:    kind,
		Name:       row["name"],
		MotherName: row["mother_name"],
		FatherName: row["father_name"],
		CPF:        row["cpf"],
		RG:         row["rg"],
		RawBirth:   row["birth_date"],
		RawSex:     row["sex"],
		Narrative:  row["narrative"],
		Location:   row["location"],

		NormName:   normalize.Name(row["name"]),
		NormMother: normalize.Name(row["mother_name"]),
		NormCPF:    normalize.Document(row["cpf"]),
		NormRG:     normalize.Document(row["rg"]),
		Sex:        normalize.Sex(row["sex"]),
		BirthDate:  normalize.Date(row["birth_date"]),
		EventDate:  normalize.Date(row["event_date"]),
	}

	// Implausible birth dates (future, after the event, >120 years) are
	// treated as unparseable.
	if id.BirthDate != nil && !normalize.PlausibleBirthDate(id.BirthDate, id.EventDate, time.Now()) {
		id.BirthDate = nil
	}
	id.BirthYear = normalize.Year(id.BirthDate)
	id.EstimatedAge = estimatedAge(id, row["age_at_occurrence"])
	id.Keys = keys.Generate(id)
	return id
}

// estimatedAge prefers the age computed from the birth date at the event
// date, falling back to the reported age-at-occurrence column.
func estimatedAge(id *model.Identity, reported string) *int {
	if id.BirthDate != nil && id.EventDate != nil {
		if age := normalize.Age(id.BirthDate, *id.EventDate); age != nil {
			return age
		}
	}
	if reported != "" {
		if v, err := strconv.Atoi(strings.TrimSpace(reported)); err == nil && v >= 0 && v <= 120 {
			return &v
		}
	}
	return nil
}

// rowID prefers the source's own stable identifiers (subject code, then
// sequential) and falls back to the row index. Unique within a dataset, not
// across datasets.
func rowID(row Row, kind model.DatasetKind, index int) string {
	prefix := idPrefixes[kind]
	if prefix == "" {
		prefix = "R"
	}
	if v := digitsOnly(row["subject_code"]); v != "" {
		return fmt.Sprintf("%s_%s", prefix, v)
	}
	if v := digitsOnly(row["sequential"]); v != "" {
		return fmt.Sprintf("%s_%s", prefix, v)
	}
	return fmt.Sprintf("%s_row%d", prefix, index+1)
}

func digitsOnly(s string) string {
	return normalize.Document(s)
}
