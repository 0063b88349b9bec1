// Package report writes linkage results to disk and renders run summaries.
// Matches are split into one CSV per confidence tier so that analysts can
// triage the high-confidence file first.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"nexo/internal/model"
	"nexo/internal/store"
)

// Writer renders run output under a single directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

var matchHeader = []string{
	"source_id", "target_id", "source_dataset", "target_dataset",
	"pass", "tier", "score", "matched_fields", "confidence",
}

// WriteMatches writes one CSV per confidence tier present in the results and
// returns the written paths keyed by confidence.
func (w *Writer) WriteMatches(matches []model.MatchResult) (map[model.Confidence]string, error) {
	byConfidence := make(map[model.Confidence][]model.MatchResult)
	for _, m := range matches {
		byConfidence[m.Confidence] = append(byConfidence[m.Confidence], m)
	}

	paths := make(map[model.Confidence]string, len(byConfidence))
	for conf, group := range byConfidence {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Score != group[j].Score {
				return group[i].Score > group[j].Score
			}
			return group[i].SourceID < group[j].SourceID
		})

		path := filepath.Join(w.dir, fmt.Sprintf("matches_%s.csv", conf))
		if err := w.writeCSV(path, matchHeader, len(group), func(i int) []string {
			m := group[i]
			return []string{
				m.SourceID,
				m.TargetID,
				string(m.SourceDataset),
				string(m.TargetDataset),
				string(m.Pass),
				string(m.Tier),
				formatScore(m.Score),
				strings.Join(m.MatchedFields, ";"),
				string(m.Confidence),
			}
		}); err != nil {
			return nil, err
		}
		paths[conf] = path
	}
	return paths, nil
}

var pairHeader = []string{
	"person_key", "person_name", "disappearance_id", "disappearance_date",
	"death_id", "death_type", "death_date", "elapsed_days", "intervening", "strength",
}

// WritePairs writes the correlated disappearance→death pairs to a single CSV.
func (w *Writer) WritePairs(pairs []store.Pair) (string, error) {
	path := filepath.Join(w.dir, "correlations.csv")
	if err := w.writeCSV(path, pairHeader, len(pairs), func(i int) []string {
		p := pairs[i]
		return []string{
			p.PersonKey,
			p.PersonName,
			p.Source.RecordID,
			p.Source.Date.Format("2006-01-02"),
			p.Death.RecordID,
			string(p.Death.Type),
			p.Death.Date.Format("2006-01-02"),
			strconv.Itoa(p.ElapsedDays),
			strconv.FormatBool(p.Intervening),
			string(p.Strength),
		}
	}); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTimelines writes the full per-person case timelines as JSON.
func (w *Writer) WriteTimelines(timelines []model.CaseTimeline) (string, error) {
	path := filepath.Join(w.dir, "timelines.json")
	data, err := json.MarshalIndent(timelines, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal timelines: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write timelines: %w", err)
	}
	return path, nil
}

var reviewHeader = []string{
	"person_key", "disappearance_id", "death_id", "verdict", "reasoning", "provider", "model", "created_at",
}

// WriteReviews writes the advisory review verdicts to a CSV. Reviews never
// alter the match or correlation files; they are a separate layer.
func (w *Writer) WriteReviews(reviews []model.Review) (string, error) {
	path := filepath.Join(w.dir, "reviews.csv")
	if err := w.writeCSV(path, reviewHeader, len(reviews), func(i int) []string {
		r := reviews[i]
		return []string{
			r.PersonKey,
			r.SourceID,
			r.DeathID,
			string(r.Verdict),
			r.Reasoning,
			r.Provider,
			r.Model,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
	}); err != nil {
		return "", err
	}
	return path, nil
}

func (w *Writer) writeCSV(path string, header []string, rows int, row func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < rows; i++ {
		if err := cw.Write(row(i)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	return nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 4, 64)
}
