package correlate

import (
	"testing"
	"time"

	"nexo/internal/model"
)

func day(n int) time.Time {
	return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func event(id string, t model.EventType, d int) model.Event {
	return model.Event{RecordID: id, Type: t, Date: day(d)}
}

func TestCorrelate_StrongPair(t *testing.T) {
	c := NewCorrelator(30, 90)

	pairs := c.Correlate("P1", []model.Event{
		event("D_1", model.EventDisappearance, 0),
		event("C_1", model.EventCorpseFound, 25),
	})

	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	p := pairs[0]
	if p.ElapsedDays != 25 {
		t.Errorf("elapsed = %d, want 25", p.ElapsedDays)
	}
	if p.Strength != model.StrengthStrong {
		t.Errorf("strength = %q, want strong", p.Strength)
	}
}

func TestCorrelate_SameDayDeathPairs(t *testing.T) {
	c := NewCorrelator(30, 90)

	// The corpse id sorts before the disappearance id; the date tie must
	// still place the disappearance first so the pair is emitted.
	pairs := c.Correlate("P1", []model.Event{
		event("C_1", model.EventCorpseFound, 0),
		event("D_1", model.EventDisappearance, 0),
	})

	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	p := pairs[0]
	if p.Source.RecordID != "D_1" || p.Death.RecordID != "C_1" {
		t.Errorf("pair = %s→%s, want D_1→C_1", p.Source.RecordID, p.Death.RecordID)
	}
	if p.ElapsedDays != 0 {
		t.Errorf("elapsed = %d, want 0", p.ElapsedDays)
	}
	if p.Strength != model.StrengthStrong {
		t.Errorf("strength = %q, want strong", p.Strength)
	}
}

func TestCorrelate_InterveningEventInconclusive(t *testing.T) {
	c := NewCorrelator(30, 90)

	pairs := c.Correlate("P1", []model.Event{
		event("D_1", model.EventDisappearance, 0),
		event("O_1", model.EventOther, 10),
		event("C_1", model.EventCorpseFound, 40),
	})

	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	p := pairs[0]
	if !p.Intervening {
		t.Error("expected intervening event to be detected")
	}
	if p.Strength != model.StrengthInconclusive {
		t.Errorf("strength = %q, want inconclusive", p.Strength)
	}
}

func TestCorrelate_WeakPair(t *testing.T) {
	c := NewCorrelator(30, 90)

	pairs := c.Correlate("P1", []model.Event{
		event("D_1", model.EventDisappearance, 0),
		event("H_1", model.EventHomicide, 120),
	})

	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].Strength != model.StrengthWeak {
		t.Errorf("strength = %q, want weak", pairs[0].Strength)
	}
	if pairs[0].ElapsedDays != 120 {
		t.Errorf("elapsed = %d, want 120", pairs[0].ElapsedDays)
	}
}

func TestCorrelate_ModerateBoundary(t *testing.T) {
	c := NewCorrelator(30, 90)

	tests := []struct {
		days int
		want model.Strength
	}{
		{0, model.StrengthStrong},
		{30, model.StrengthStrong},
		{31, model.StrengthModerate},
		{90, model.StrengthModerate},
		{91, model.StrengthWeak},
	}
	for _, tt := range tests {
		pairs := c.Correlate("P1", []model.Event{
			event("D_1", model.EventDisappearance, 0),
			event("C_1", model.EventCorpseFound, tt.days),
		})
		if len(pairs) != 1 {
			t.Fatalf("days=%d: expected 1 pair, got %d", tt.days, len(pairs))
		}
		if pairs[0].Strength != tt.want {
			t.Errorf("days=%d: strength = %q, want %q", tt.days, pairs[0].Strength, tt.want)
		}
	}
}

func TestCorrelate_AllOrderedPairsNotJustNeighbors(t *testing.T) {
	c := NewCorrelator(30, 90)

	// One disappearance followed by two death events: both pairs emitted.
	// The second pair has the corpse discovery as an intervening event.
	pairs := c.Correlate("P1", []model.Event{
		event("D_1", model.EventDisappearance, 0),
		event("C_1", model.EventCorpseFound, 20),
		event("H_1", model.EventHomicide, 50),
	})

	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Death.RecordID != "C_1" || pairs[0].Strength != model.StrengthStrong {
		t.Errorf("first pair = %s/%q", pairs[0].Death.RecordID, pairs[0].Strength)
	}
	if pairs[1].Death.RecordID != "H_1" || pairs[1].Strength != model.StrengthInconclusive {
		t.Errorf("second pair = %s/%q, want H_1/inconclusive", pairs[1].Death.RecordID, pairs[1].Strength)
	}
}

func TestCorrelate_DeathBeforeDisappearanceIgnored(t *testing.T) {
	c := NewCorrelator(30, 90)

	pairs := c.Correlate("P1", []model.Event{
		event("C_1", model.EventCorpseFound, 0),
		event("D_1", model.EventDisappearance, 10),
	})
	if len(pairs) != 0 {
		t.Fatalf("expected no pairs when the death precedes the disappearance, got %d", len(pairs))
	}
}

func TestBuildTimeline_RecomputesPairs(t *testing.T) {
	c := NewCorrelator(30, 90)

	events := []model.Event{
		event("C_1", model.EventCorpseFound, 25),
		event("D_1", model.EventDisappearance, 0),
	}
	tl := c.BuildTimeline("P1", "João Silva", events)

	if tl.Events[0].RecordID != "D_1" {
		t.Errorf("events not sorted by date: first is %s", tl.Events[0].RecordID)
	}
	if len(tl.Pairs) != 1 || tl.Pairs[0].Strength != model.StrengthStrong {
		t.Fatalf("unexpected pairs: %+v", tl.Pairs)
	}

	// Adding an event invalidates the old labels: rebuilding from the new
	// event set must reclassify.
	events = append(events, event("O_1", model.EventOther, 10))
	tl = c.BuildTimeline("P1", "João Silva", events)
	if tl.Pairs[0].Strength != model.StrengthInconclusive {
		t.Errorf("strength = %q after adding intervening event, want inconclusive", tl.Pairs[0].Strength)
	}
}

func TestBestPerPerson(t *testing.T) {
	pairs := []model.CorrelatedPair{
		{PersonKey: "P1", Source: model.Event{RecordID: "D_2"}, ElapsedDays: 40},
		{PersonKey: "P1", Source: model.Event{RecordID: "D_1"}, ElapsedDays: 12},
		{PersonKey: "P2", Source: model.Event{RecordID: "D_3"}, ElapsedDays: 7},
		{PersonKey: "P1", Source: model.Event{RecordID: "D_4"}, ElapsedDays: 12},
	}

	best := BestPerPerson(pairs)
	if len(best) != 2 {
		t.Fatalf("expected 2 persons, got %d", len(best))
	}

	byPerson := map[string]model.CorrelatedPair{}
	for _, p := range best {
		byPerson[p.PersonKey] = p
	}
	// Smallest elapsed wins; the 12-day tie breaks on the earlier record id.
	if got := byPerson["P1"]; got.ElapsedDays != 12 || got.Source.RecordID != "D_1" {
		t.Errorf("P1 best = %s/%d, want D_1/12", got.Source.RecordID, got.ElapsedDays)
	}
	if got := byPerson["P2"]; got.Source.RecordID != "D_3" {
		t.Errorf("P2 best = %s, want D_3", got.Source.RecordID)
	}
}

func TestResolvePersons(t *testing.T) {
	records := []*model.Identity{
		{ID: "C_1", Dataset: model.DatasetCorpse},
		{ID: "D_1", Dataset: model.DatasetDisappearance},
		{ID: "D_2", Dataset: model.DatasetDisappearance},
		{ID: "H_1", Dataset: model.DatasetHomicide},
	}
	matches := []model.MatchResult{
		{SourceID: "D_1", TargetID: "C_1"},
		{SourceID: "D_1", TargetID: "H_1"},
	}

	groups := ResolvePersons(records, matches)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// D_1, C_1 and H_1 collapse into one person keyed by the smallest id.
	group, ok := groups["C_1"]
	if !ok {
		t.Fatalf("expected group keyed by C_1, got keys %v", groupKeys(groups))
	}
	if len(group) != 3 {
		t.Errorf("expected 3 records in the resolved person, got %d", len(group))
	}
	if solo, ok := groups["D_2"]; !ok || len(solo) != 1 {
		t.Error("unmatched record should form its own group")
	}
}

func groupKeys(groups map[string][]*model.Identity) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	return keys
}
