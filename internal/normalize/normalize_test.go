package normalize

import (
	"testing"
	"time"

	"nexo/internal/model"
)

func TestName_Basic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"accents stripped", "João Silva", "joao silva"},
		{"prepositions dropped", "João da Silva", "joao silva"},
		{"dos dropped", "Maria dos Santos", "maria santos"},
		{"uppercase lowered", "MARIA APARECIDA", "maria aparecida"},
		{"honorific prefix dropped", "Dr. João Silva", "joao silva"},
		{"generational suffix dropped", "Carlos Souza Filho", "carlos souza"},
		{"junior dropped", "José Santos Jr", "jose santos"},
		{"punctuation removed", "ana-paula o'brien", "anapaula obrien"},
		{"whitespace collapsed", "  ana   maria  ", "ana maria"},
		{"empty", "", ""},
		{"only punctuation", "...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.in); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestName_Idempotent(t *testing.T) {
	inputs := []string{
		"Dr. João da Silva Jr",
		"MARIA  APARECIDA  DOS SANTOS",
		"Æthelred çedilha",
		"", "x", "sr sr sr",
	}
	for _, in := range inputs {
		once := Name(in)
		twice := Name(once)
		if once != twice {
			t.Errorf("Name not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestCleanText_Mojibake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"JoÃ£o", "João"},
		{"SÃ©rgio", "Sérgio"},
		{"conceiÃ§Ã£o", "conceição"},
		{"\uFEFFnome", "nome"},
		{"a\u200Bb", "ab"},
		{"a\u200Db", "ab"},
		{"fim\uFFFF", "fim"},
		{"tab\tand\nnewline", "tab and newline"},
	}
	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDocument_DigitsOnly(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123.456.789-09", "12345678909"},
		{"12.345.678-X", "12345678"},
		{"no digits here", ""},
		{"", ""},
		{" 0 1 2 ", "012"},
	}
	for _, tt := range tests {
		got := Document(tt.in)
		if got != tt.want {
			t.Errorf("Document(%q) = %q, want %q", tt.in, got, tt.want)
		}
		for _, r := range got {
			if r < '0' || r > '9' {
				t.Errorf("Document(%q) produced non-digit %q", tt.in, r)
			}
		}
	}
}

func TestDate_KnownFormats(t *testing.T) {
	tests := []struct {
		in   string
		want string // YYYY-MM-DD, or "" for nil
	}{
		{"25/12/1990", "1990-12-25"},
		{"25/12/1990 14:30", "1990-12-25"},
		{"25/12/1990 14:30:59", "1990-12-25"},
		{"1990-12-25", "1990-12-25"},
		{"1990-12-25 00:00:00", "1990-12-25"},
		{"25-12-1990", "1990-12-25"},
		{"not a date", ""},
		{"32/13/1990", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := Date(tt.in)
		if tt.want == "" {
			if got != nil {
				t.Errorf("Date(%q) = %v, want nil", tt.in, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("Date(%q) = nil, want %s", tt.in, tt.want)
			continue
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("Date(%q) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestSex_ClosedEnumeration(t *testing.T) {
	tests := []struct {
		in   string
		want model.Sex
	}{
		{"M", model.SexMale},
		{"masculino", model.SexMale},
		{"HOMEM", model.SexMale},
		{"F", model.SexFemale},
		{"Feminino", model.SexFemale},
		{"mulher", model.SexFemale},
		{"", model.SexUnknown},
		{"X", model.SexUnknown},
		{"não informado", model.SexUnknown},
	}
	for _, tt := range tests {
		if got := Sex(tt.in); got != tt.want {
			t.Errorf("Sex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAge(t *testing.T) {
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		reference time.Time
		want      int
	}{
		{"after birthday", time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC), 30},
		{"before birthday", time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), 29},
		{"on birthday", time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Age(&birth, tt.reference)
			if got == nil || *got != tt.want {
				t.Errorf("Age = %v, want %d", got, tt.want)
			}
		})
	}

	if Age(nil, time.Now()) != nil {
		t.Error("Age(nil) should be nil")
	}

	future := time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC)
	if Age(&future, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) != nil {
		t.Error("negative age should be nil")
	}
}

func TestPlausibleBirthDate(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	birth := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	ancient := time.Date(1880, 1, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	event := time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC)

	if !PlausibleBirthDate(&birth, nil, now) {
		t.Error("ordinary birth date should be plausible")
	}
	if PlausibleBirthDate(nil, nil, now) {
		t.Error("nil birth date is not plausible")
	}
	if PlausibleBirthDate(&future, nil, now) {
		t.Error("future birth date is not plausible")
	}
	if PlausibleBirthDate(&ancient, nil, now) {
		t.Error("age over 120 is not plausible")
	}
	if PlausibleBirthDate(&birth, &event, now) {
		t.Error("birth after the event is not plausible")
	}
}
