package keys

import (
	"testing"
	"time"

	"nexo/internal/model"
)

func datePtr(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func intPtr(v int) *int { return &v }

func TestStrong(t *testing.T) {
	if got := Strong("joao silva", datePtr(1990, 1, 2)); got != "joao silva|1990-01-02" {
		t.Errorf("Strong = %q", got)
	}
	if Strong("", datePtr(1990, 1, 2)) != "" {
		t.Error("Strong without name should be absent")
	}
	if Strong("joao silva", nil) != "" {
		t.Error("Strong without birth date should be absent")
	}
}

func TestModerate(t *testing.T) {
	if got := Moderate("joao silva", intPtr(1990)); got != "joao silva|1990" {
		t.Errorf("Moderate = %q", got)
	}
	if Moderate("joao silva", nil) != "" {
		t.Error("Moderate without year should be absent")
	}
	if Moderate("", intPtr(1990)) != "" {
		t.Error("Moderate without name should be absent")
	}
}

func TestPhonetic(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"joao", "J00000"},            // vowels skipped after the first char
		{"joao silva", "J94700"},      // s=9, l=4, v=7
		{"pedro", "P36000"},           // p kept, d=3, r=6
		{"barbara", "B61600"},         // repeated classes collapse only when adjacent
	}
	for _, tt := range tests {
		if got := Phonetic(tt.in); got != tt.want {
			t.Errorf("Phonetic(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhonetic_SimilarNamesCollide(t *testing.T) {
	pairs := [][2]string{
		{"philipe", "filipe"},
		{"souza", "sousa"},
		{"weslei", "wesley"},
	}
	for _, p := range pairs {
		a, b := Phonetic(p[0]), Phonetic(p[1])
		if a == "" || b == "" {
			t.Fatalf("unexpected absent key for %v", p)
		}
		// The first character is verbatim, so only same-initial variants are
		// expected to collide.
		if p[0][0] == p[1][0] && a != b {
			t.Errorf("Phonetic(%q)=%q and Phonetic(%q)=%q should collide", p[0], a, p[1], b)
		}
	}
}

func TestComposite_OmitsAbsentFields(t *testing.T) {
	full := Composite(CompositeInput{
		Name:       "joao silva",
		CPF:        "12345678909",
		BirthDate:  datePtr(1990, 1, 1),
		MotherName: "maria silva",
	})
	partial := Composite(CompositeInput{Name: "joao silva"})

	if full == "" || partial == "" {
		t.Fatal("expected non-empty composite keys")
	}
	if full == partial {
		t.Error("dropping fields must change the composite key")
	}
	if Composite(CompositeInput{}) != "" {
		t.Error("composite with no fields should be absent")
	}

	// Deterministic.
	again := Composite(CompositeInput{Name: "joao silva"})
	if partial != again {
		t.Error("composite key must be deterministic")
	}
}

func TestGenerate(t *testing.T) {
	id := &model.Identity{
		ID:        "D_1",
		NormName:  "joao silva",
		NormCPF:   "12345678909",
		BirthDate: datePtr(1990, 1, 2),
		BirthYear: intPtr(1990),
	}
	ks := Generate(id)

	if ks.Strong != "joao silva|1990-01-02" {
		t.Errorf("Strong = %q", ks.Strong)
	}
	if ks.Moderate != "joao silva|1990" {
		t.Errorf("Moderate = %q", ks.Moderate)
	}
	if ks.Weak != "joao silva" {
		t.Errorf("Weak = %q", ks.Weak)
	}
	if len(ks.Phonetic) != 6 {
		t.Errorf("Phonetic length = %d, want 6", len(ks.Phonetic))
	}
	if ks.Composite == "" {
		t.Error("Composite should be present")
	}

	// A nameless record gets no keys at all.
	empty := Generate(&model.Identity{ID: "D_2"})
	if empty.Strong != "" || empty.Moderate != "" || empty.Weak != "" || empty.Phonetic != "" || empty.Composite != "" {
		t.Errorf("expected all keys absent, got %+v", empty)
	}
}
