package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"nexo/internal/model"
	"nexo/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "nexo.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, model.DatasetDisappearance, model.DatasetCorpse, 120, 80)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if runID == 0 {
		t.Fatal("expected run ID to be assigned")
	}

	run, err := s.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if run == nil || run.ID != runID {
		t.Fatalf("unexpected latest run: %#v", run)
	}
	if run.Status != store.RunRunning {
		t.Fatalf("expected running status, got %q", run.Status)
	}
	if run.FinishedAt != nil {
		t.Fatal("expected no finish time on a running run")
	}

	if err := s.FinishRun(ctx, runID, store.RunComplete); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}
	run, err = s.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun after finish failed: %v", err)
	}
	if run.Status != store.RunComplete || run.FinishedAt == nil {
		t.Fatalf("expected completed run with finish time, got %#v", run)
	}
}

func TestLatestRunEmptyDatabase(t *testing.T) {
	s := openStore(t)

	run, err := s.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil run on empty database, got %#v", run)
	}
}

func TestSaveAndQueryMatches(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, model.DatasetDisappearance, model.DatasetCorpse, 2, 2)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	matches := []model.MatchResult{
		{
			SourceID:      "D_1",
			TargetID:      "C_1",
			SourceDataset: model.DatasetDisappearance,
			TargetDataset: model.DatasetCorpse,
			Pass:          model.PassStrong,
			Tier:          model.TierExact,
			Score:         1.0,
			MatchedFields: []string{"strong_key", "name", "birth_date"},
			Confidence:    model.ConfidenceHigh,
		},
		{
			SourceID:      "D_2",
			TargetID:      "C_2",
			SourceDataset: model.DatasetDisappearance,
			TargetDataset: model.DatasetCorpse,
			Pass:          model.PassWeak,
			Tier:          model.TierFuzzy,
			Score:         0.88,
			MatchedFields: []string{"name"},
			Confidence:    model.ConfidenceMedium,
		},
	}
	if err := s.SaveMatches(ctx, runID, matches); err != nil {
		t.Fatalf("SaveMatches failed: %v", err)
	}

	all, err := s.MatchesByConfidence(ctx, runID, "")
	if err != nil {
		t.Fatalf("MatchesByConfidence failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(all))
	}
	if all[0].SourceID != "D_1" {
		t.Fatalf("expected highest score first, got %q", all[0].SourceID)
	}
	if len(all[0].MatchedFields) != 3 || all[0].MatchedFields[0] != "strong_key" {
		t.Fatalf("matched fields did not round-trip: %#v", all[0].MatchedFields)
	}

	high, err := s.MatchesByConfidence(ctx, runID, model.ConfidenceHigh)
	if err != nil {
		t.Fatalf("MatchesByConfidence(high) failed: %v", err)
	}
	if len(high) != 1 || high[0].TargetID != "C_1" {
		t.Fatalf("unexpected high-confidence matches: %#v", high)
	}
}

func TestPairsAndReviews(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, model.DatasetDisappearance, model.DatasetCorpse, 1, 1)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	day := func(n int) time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	}
	pairs := []store.Pair{
		{
			PersonName:      "joao silva",
			SourceNarrative: "last seen leaving work",
			DeathNarrative:  "body recovered near the river",
			CorrelatedPair: model.CorrelatedPair{
				PersonKey:   "D_1",
				Source:      model.Event{RecordID: "D_1", Dataset: model.DatasetDisappearance, Type: model.EventDisappearance, Date: day(0)},
				Death:       model.Event{RecordID: "C_1", Dataset: model.DatasetCorpse, Type: model.EventCorpseFound, Date: day(25)},
				ElapsedDays: 25,
				Strength:    model.StrengthStrong,
			},
		},
		{
			PersonName: "maria santos",
			CorrelatedPair: model.CorrelatedPair{
				PersonKey:   "D_2",
				Source:      model.Event{RecordID: "D_2", Dataset: model.DatasetDisappearance, Type: model.EventDisappearance, Date: day(0)},
				Death:       model.Event{RecordID: "H_1", Dataset: model.DatasetHomicide, Type: model.EventHomicide, Date: day(120)},
				ElapsedDays: 120,
				Strength:    model.StrengthWeak,
			},
		},
	}
	if err := s.SavePairs(ctx, runID, pairs); err != nil {
		t.Fatalf("SavePairs failed: %v", err)
	}

	stored, err := s.PairsForRun(ctx, runID)
	if err != nil {
		t.Fatalf("PairsForRun failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(stored))
	}
	first := stored[0]
	if first.PersonKey != "D_1" || first.Strength != model.StrengthStrong {
		t.Fatalf("unexpected first pair: %#v", first)
	}
	if first.SourceNarrative != "last seen leaving work" {
		t.Fatalf("narrative did not round-trip: %q", first.SourceNarrative)
	}
	if !first.Source.Date.Equal(day(0)) || !first.Death.Date.Equal(day(25)) {
		t.Fatalf("dates did not round-trip: %v / %v", first.Source.Date, first.Death.Date)
	}
	if first.Death.Type != model.EventCorpseFound {
		t.Fatalf("death type did not round-trip: %q", first.Death.Type)
	}

	unreviewed, err := s.UnreviewedPairs(ctx, runID)
	if err != nil {
		t.Fatalf("UnreviewedPairs failed: %v", err)
	}
	if len(unreviewed) != 2 {
		t.Fatalf("expected 2 unreviewed pairs, got %d", len(unreviewed))
	}

	review := model.Review{
		PersonKey: "D_1",
		SourceID:  "D_1",
		DeathID:   "C_1",
		Verdict:   model.VerdictCorroborated,
		Reasoning: "narratives describe the same location",
		Provider:  "ollama",
		Model:     "llama3",
	}
	if err := s.SaveReview(ctx, review); err != nil {
		t.Fatalf("SaveReview failed: %v", err)
	}

	unreviewed, err = s.UnreviewedPairs(ctx, runID)
	if err != nil {
		t.Fatalf("UnreviewedPairs after review failed: %v", err)
	}
	if len(unreviewed) != 1 || unreviewed[0].PersonKey != "D_2" {
		t.Fatalf("expected one unreviewed pair for D_2, got %#v", unreviewed)
	}

	got, err := s.GetReview(ctx, "D_1", "C_1")
	if err != nil {
		t.Fatalf("GetReview failed: %v", err)
	}
	if got == nil || got.Verdict != model.VerdictCorroborated {
		t.Fatalf("unexpected review: %#v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected review creation time to be set")
	}

	// Upsert replaces the previous verdict for the same pair.
	review.Verdict = model.VerdictInconclusive
	if err := s.SaveReview(ctx, review); err != nil {
		t.Fatalf("SaveReview upsert failed: %v", err)
	}
	got, err = s.GetReview(ctx, "D_1", "C_1")
	if err != nil {
		t.Fatalf("GetReview after upsert failed: %v", err)
	}
	if got.Verdict != model.VerdictInconclusive {
		t.Fatalf("expected upserted verdict, got %q", got.Verdict)
	}
}

func TestSummarize(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	sum, err := s.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize on empty store failed: %v", err)
	}
	if sum.Run != nil || sum.TotalMatches != 0 {
		t.Fatalf("expected empty summary, got %#v", sum)
	}

	runID, err := s.BeginRun(ctx, model.DatasetDisappearance, model.DatasetHomicide, 3, 3)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	matches := []model.MatchResult{
		{SourceID: "D_1", TargetID: "H_1", Pass: model.PassStrong, Tier: model.TierExact, Score: 1.0, Confidence: model.ConfidenceHigh},
		{SourceID: "D_2", TargetID: "H_2", Pass: model.PassModerate, Tier: model.TierFuzzy, Score: 0.9, Confidence: model.ConfidenceMedium},
		{SourceID: "D_3", TargetID: "H_3", Pass: model.PassWeak, Tier: model.TierFuzzy, Score: 0.86, Confidence: model.ConfidenceMedium},
	}
	if err := s.SaveMatches(ctx, runID, matches); err != nil {
		t.Fatalf("SaveMatches failed: %v", err)
	}

	sum, err = s.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if sum.Run == nil || sum.Run.ID != runID {
		t.Fatalf("summary missing run: %#v", sum.Run)
	}
	if sum.TotalMatches != 3 {
		t.Fatalf("expected 3 total matches, got %d", sum.TotalMatches)
	}
	if sum.Matches[model.ConfidenceHigh] != 1 || sum.Matches[model.ConfidenceMedium] != 2 {
		t.Fatalf("unexpected confidence counts: %#v", sum.Matches)
	}
}

func TestSchemaVersionPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nexo.db")

	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s.BeginRun(context.Background(), model.DatasetDisappearance, model.DatasetCorpse, 0, 0); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := store.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	run, err := reopened.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("LatestRun after reopen failed: %v", err)
	}
	if run == nil {
		t.Fatal("expected persisted run after reopen")
	}
}
