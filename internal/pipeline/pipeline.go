// Package pipeline orchestrates a complete linkage run: ingest two datasets,
// match records, resolve persons, correlate timelines and persist plus export
// the results.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"nexo/internal/correlate"
	"nexo/internal/ingest"
	"nexo/internal/match"
	"nexo/internal/model"
	"nexo/internal/report"
	"nexo/internal/store"
)

// Pipeline wires the deterministic stages together. The advisory review stage
// is not part of the run; it operates afterwards on the persisted pairs.
type Pipeline struct {
	engine     *match.Engine
	correlator *correlate.Correlator
	store      *store.Store
	config     *model.Config
}

// NewPipeline creates a pipeline from the runtime configuration. The store
// may be nil, in which case results are exported but not persisted.
func NewPipeline(cfg *model.Config, st *store.Store) *Pipeline {
	return &Pipeline{
		engine:     match.NewEngine(cfg.Matching.Threshold, cfg.Matching.MaxAgeDiffYears),
		correlator: correlate.NewCorrelator(cfg.Correlation.StrongDays, cfg.Correlation.ModerateDays),
		store:      st,
		config:     cfg,
	}
}

// RunInput names the two dataset files for one run.
type RunInput struct {
	SourcePath string
	SourceKind model.DatasetKind
	TargetPath string
	TargetKind model.DatasetKind

	// BestOnly reduces each person's correlated pairs to the single most
	// plausible one.
	BestOnly bool
}

// RunResult is the complete outcome of one linkage run.
type RunResult struct {
	RunID       int64
	SourceCount int
	TargetCount int
	Matches     []model.MatchResult
	Timelines   []model.CaseTimeline
	Pairs       []store.Pair
	Persons     int
}

// Run executes the full linkage sequence.
func (p *Pipeline) Run(ctx context.Context, in RunInput) (*RunResult, error) {
	source, err := ingest.LoadFile(in.SourcePath, in.SourceKind)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", in.SourceKind, err)
	}
	target, err := ingest.LoadFile(in.TargetPath, in.TargetKind)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", in.TargetKind, err)
	}

	return p.run(ctx, source, target, in)
}

// RunIdentities executes the linkage sequence on already-loaded records.
func (p *Pipeline) RunIdentities(ctx context.Context, source, target []*model.Identity, in RunInput) (*RunResult, error) {
	return p.run(ctx, source, target, in)
}

func (p *Pipeline) run(ctx context.Context, source, target []*model.Identity, in RunInput) (*RunResult, error) {
	var runID int64
	if p.store != nil {
		var err error
		runID, err = p.store.BeginRun(ctx, in.SourceKind, in.TargetKind, len(source), len(target))
		if err != nil {
			return nil, fmt.Errorf("begin run: %w", err)
		}
	}

	result, err := p.link(source, target, in.BestOnly)
	if err != nil {
		if p.store != nil {
			_ = p.store.FinishRun(ctx, runID, store.RunFailed)
		}
		return nil, err
	}
	result.RunID = runID

	if p.store != nil {
		if err := p.store.SaveMatches(ctx, runID, result.Matches); err != nil {
			_ = p.store.FinishRun(ctx, runID, store.RunFailed)
			return nil, fmt.Errorf("save matches: %w", err)
		}
		if err := p.store.SavePairs(ctx, runID, result.Pairs); err != nil {
			_ = p.store.FinishRun(ctx, runID, store.RunFailed)
			return nil, fmt.Errorf("save pairs: %w", err)
		}
		if err := p.store.FinishRun(ctx, runID, store.RunComplete); err != nil {
			return nil, fmt.Errorf("finish run: %w", err)
		}
	}

	return result, nil
}

func (p *Pipeline) link(source, target []*model.Identity, bestOnly bool) (*RunResult, error) {
	matches := p.engine.Match(source, target)

	all := make([]*model.Identity, 0, len(source)+len(target))
	all = append(all, source...)
	all = append(all, target...)
	persons := correlate.ResolvePersons(all, matches)

	byID := make(map[string]*model.Identity, len(all))
	for _, id := range all {
		byID[id.ID] = id
	}

	personKeys := make([]string, 0, len(persons))
	for key := range persons {
		personKeys = append(personKeys, key)
	}
	sort.Strings(personKeys)

	var (
		timelines []model.CaseTimeline
		allPairs  []model.CorrelatedPair
		names     = make(map[string]string)
	)
	for _, key := range personKeys {
		group := persons[key]

		var events []model.Event
		name := ""
		for _, id := range group {
			if id.EventDate != nil {
				events = append(events, id.Event())
			}
			if name == "" && id.NormName != "" {
				name = id.NormName
			}
		}
		if len(events) == 0 {
			continue
		}
		names[key] = name

		timeline := p.correlator.BuildTimeline(key, name, events)
		timelines = append(timelines, timeline)
		allPairs = append(allPairs, timeline.Pairs...)
	}

	if bestOnly {
		allPairs = correlate.BestPerPerson(allPairs)
	}

	pairs := make([]store.Pair, 0, len(allPairs))
	for _, cp := range allPairs {
		pairs = append(pairs, store.Pair{
			PersonName:      names[cp.PersonKey],
			SourceNarrative: narrativeFor(byID, cp.Source.RecordID),
			DeathNarrative:  narrativeFor(byID, cp.Death.RecordID),
			CorrelatedPair:  cp,
		})
	}

	return &RunResult{
		SourceCount: len(source),
		TargetCount: len(target),
		Matches:     matches,
		Timelines:   timelines,
		Pairs:       pairs,
		Persons:     len(timelines),
	}, nil
}

func narrativeFor(byID map[string]*model.Identity, recordID string) string {
	if id, ok := byID[recordID]; ok {
		return id.Narrative
	}
	return ""
}

// Export writes a run's results under the configured output directory and
// returns the writer for summary rendering.
func (p *Pipeline) Export(result *RunResult) (*report.Writer, error) {
	writer, err := report.NewWriter(p.config.Output.Dir)
	if err != nil {
		return nil, err
	}
	if _, err := writer.WriteMatches(result.Matches); err != nil {
		return nil, fmt.Errorf("write matches: %w", err)
	}
	if _, err := writer.WritePairs(result.Pairs); err != nil {
		return nil, fmt.Errorf("write pairs: %w", err)
	}
	if _, err := writer.WriteTimelines(result.Timelines); err != nil {
		return nil, fmt.Errorf("write timelines: %w", err)
	}
	return writer, nil
}
