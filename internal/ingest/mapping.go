package ingest

import (
	"regexp"
	"strings"

	"nexo/internal/normalize"
)

// FieldMapping maps the historical header spellings found in the source
// exports, including their mis-encoded variants, onto canonical field
// names. Headers not listed here are cleaned to snake_case automatically.
var FieldMapping = map[string]string{
	"Sequencial":                   "sequential",
	"Cd.Envolvido":                 "subject_code",
	"Nome envolvido":               "name",
	"Mãe do envolvido":             "mother_name",
	"MÃ£e do envolvido":            "mother_name",
	"Pai do envolvido":             "father_name",
	"Sexo":                         "sex",
	"Sexo Padronizado":             "sex",
	"Nascimento":                   "birth_date",
	"CPF":                          "cpf",
	"Identidade":                   "rg",
	"Idade ocorrência":             "age_at_occurrence",
	"Idade ocorrÃªncia":            "age_at_occurrence",
	"Data Início do Fato":          "event_date",
	"Data InÃ­cio do Fato":         "event_date",
	"Data do Registro":             "registered_date",
	"Número":                       "report_number",
	"NÃºmero":                      "report_number",
	"Cidade com RA":                "location",
	"Unidade Policial de Registro": "unit",
	"Histórico":                    "narrative",
	"HistÃ³rico":                   "narrative",
	"Natureza":                     "nature",
	"Pessoa localizada":            "located",
	"Causa Morte Presumida":        "presumed_cause",
	"Possui laudo IML":             "has_iml_report",
	"Arma Utilizada":               "weapon",
	"Circunstâncias":               "circumstance",
	"CircunstÃ¢ncias":              "circumstance",
}

var nonWordRun = regexp.MustCompile(`[^a-z0-9]+`)

// CanonicalHeader resolves one raw header: mapped names win, everything else
// is repaired (BOM, mojibake), accent-stripped and snake_cased. The raw
// spelling is tried before cleaning so the mis-encoded variants in
// FieldMapping resolve directly.
func CanonicalHeader(raw string) string {
	if mapped, ok := FieldMapping[raw]; ok {
		return mapped
	}
	cleaned := normalize.CleanText(raw)
	if mapped, ok := FieldMapping[cleaned]; ok {
		return mapped
	}
	s := strings.ToLower(normalize.StripAccents(cleaned))
	s = nonWordRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
