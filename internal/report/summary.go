package report

import (
	"fmt"
	"io"

	"nexo/internal/model"
	"nexo/internal/store"
)

// RunSummary is the terminal recap printed at the end of a run.
type RunSummary struct {
	SourceDataset model.DatasetKind
	TargetDataset model.DatasetKind
	SourceCount   int
	TargetCount   int
	Matches       []model.MatchResult
	Pairs         []store.Pair
	Persons       int
	OutputDir     string
}

// RenderSummary prints a human-readable recap of a completed run.
func RenderSummary(w io.Writer, s RunSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Linkage Summary ===")
	fmt.Fprintf(w, "Datasets:     %s (%d records) -> %s (%d records)\n",
		s.SourceDataset, s.SourceCount, s.TargetDataset, s.TargetCount)

	byConf := make(map[model.Confidence]int)
	byPass := make(map[model.Pass]int)
	for _, m := range s.Matches {
		byConf[m.Confidence]++
		byPass[m.Pass]++
	}
	fmt.Fprintf(w, "Matches:      %d total", len(s.Matches))
	if len(s.Matches) > 0 {
		fmt.Fprintf(w, " (high %d, medium %d, low %d)",
			byConf[model.ConfidenceHigh], byConf[model.ConfidenceMedium], byConf[model.ConfidenceLow])
	}
	fmt.Fprintln(w)
	if len(s.Matches) > 0 {
		fmt.Fprintf(w, "Passes:       strong %d, moderate %d, weak %d\n",
			byPass[model.PassStrong], byPass[model.PassModerate], byPass[model.PassWeak])
	}

	if s.Persons > 0 {
		fmt.Fprintf(w, "Persons:      %d resolved identities\n", s.Persons)
	}

	byStrength := make(map[model.Strength]int)
	for _, p := range s.Pairs {
		byStrength[p.Strength]++
	}
	fmt.Fprintf(w, "Correlations: %d pairs", len(s.Pairs))
	if len(s.Pairs) > 0 {
		fmt.Fprintf(w, " (strong %d, moderate %d, weak %d, inconclusive %d)",
			byStrength[model.StrengthStrong], byStrength[model.StrengthModerate],
			byStrength[model.StrengthWeak], byStrength[model.StrengthInconclusive])
	}
	fmt.Fprintln(w)

	if s.OutputDir != "" {
		fmt.Fprintf(w, "Output:       %s\n", s.OutputDir)
	}
}

// RenderStatus prints the persisted state of the latest run for the status
// command.
func RenderStatus(w io.Writer, sum *store.Summary) {
	if sum == nil || sum.Run == nil {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	run := sum.Run
	fmt.Fprintf(w, "Run #%d  %s -> %s  [%s]\n", run.ID, run.SourceDataset, run.TargetDataset, run.Status)
	fmt.Fprintf(w, "Started:      %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Fprintf(w, "Finished:     %s\n", run.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "Records:      %d source / %d target\n", run.SourceCount, run.TargetCount)
	fmt.Fprintf(w, "Matches:      %d (high %d, medium %d, low %d)\n",
		sum.TotalMatches,
		sum.Matches[model.ConfidenceHigh], sum.Matches[model.ConfidenceMedium], sum.Matches[model.ConfidenceLow])
	fmt.Fprintf(w, "Correlations: %d (strong %d, moderate %d, weak %d, inconclusive %d)\n",
		sum.TotalPairs,
		sum.Pairs[model.StrengthStrong], sum.Pairs[model.StrengthModerate],
		sum.Pairs[model.StrengthWeak], sum.Pairs[model.StrengthInconclusive])
	if sum.TotalReviews > 0 {
		fmt.Fprintf(w, "Reviews:      %d (corroborated %d, refuted %d, inconclusive %d)\n",
			sum.TotalReviews,
			sum.Reviews[model.VerdictCorroborated], sum.Reviews[model.VerdictRefuted],
			sum.Reviews[model.VerdictInconclusive])
	}
}
