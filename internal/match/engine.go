// Package match implements the tiered record-linkage engine: a strong pass
// joining on name + full birth date, a moderate pass on name + birth year and
// a weak pass on name alone, each restricted to records the earlier passes
// left unmatched.
package match

import (
	"sort"

	"nexo/internal/model"
	"nexo/internal/similarity"
)

// Exclusion tracks which source and target ids earlier passes already
// matched. It is an immutable accumulator: each pass returns a new value
// rather than mutating shared state, so pass ordering is explicit.
type Exclusion struct {
	source map[string]bool
	target map[string]bool
}

// NewExclusion returns an empty exclusion set.
func NewExclusion() Exclusion {
	return Exclusion{source: map[string]bool{}, target: map[string]bool{}}
}

// With returns a copy extended with the given matches.
func (e Exclusion) With(matches []model.MatchResult) Exclusion {
	next := Exclusion{
		source: make(map[string]bool, len(e.source)+len(matches)),
		target: make(map[string]bool, len(e.target)+len(matches)),
	}
	for id := range e.source {
		next.source[id] = true
	}
	for id := range e.target {
		next.target[id] = true
	}
	for _, m := range matches {
		next.source[m.SourceID] = true
		next.target[m.TargetID] = true
	}
	return next
}

// Excludes reports whether either side of a candidate pair is already taken.
func (e Exclusion) Excludes(sourceID, targetID string) bool {
	return e.source[sourceID] || e.target[targetID]
}

// Engine runs the tiered matching between two record sets.
type Engine struct {
	scorer          *similarity.Scorer
	threshold       float64
	maxAgeDiffYears int
}

// NewEngine creates an engine with the given similarity threshold and
// weak-pass age tolerance.
func NewEngine(threshold float64, maxAgeDiffYears int) *Engine {
	return &Engine{
		scorer:          similarity.NewScorer(),
		threshold:       threshold,
		maxAgeDiffYears: maxAgeDiffYears,
	}
}

// Match runs the strong, moderate and weak passes in order and returns every
// match found. A record is matched at most once per pass, and ids matched by
// an earlier pass never reappear in a later one. Records without the key a
// pass joins on simply do not participate; that is a non-match, not an error.
func (e *Engine) Match(source, target []*model.Identity) []model.MatchResult {
	excl := NewExclusion()

	strong := e.strongPass(source, target, excl)
	excl = excl.With(strong)

	moderate := e.scoredPass(model.PassModerate, source, target, excl)
	excl = excl.With(moderate)

	weak := e.scoredPass(model.PassWeak, source, target, excl)

	out := make([]model.MatchResult, 0, len(strong)+len(moderate)+len(weak))
	out = append(out, strong...)
	out = append(out, moderate...)
	out = append(out, weak...)
	return out
}

// strongPass joins on strong-key equality. A shared strong key already
// encodes name + full birth date, so every pair is an automatic exact match
// with high confidence; no scoring needed.
func (e *Engine) strongPass(source, target []*model.Identity, excl Exclusion) []model.MatchResult {
	byKey := make(map[string][]*model.Identity)
	for _, t := range target {
		if k := t.Keys.Strong; k != "" && !excl.target[t.ID] {
			byKey[k] = append(byKey[k], t)
		}
	}
	for _, group := range byKey {
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}

	ordered := sortedByID(source)
	taken := map[string]bool{}
	var matches []model.MatchResult

	for _, s := range ordered {
		key := s.Keys.Strong
		if key == "" || excl.source[s.ID] {
			continue
		}
		for _, t := range byKey[key] {
			if taken[t.ID] {
				continue
			}
			taken[t.ID] = true
			matches = append(matches, model.MatchResult{
				SourceID:      s.ID,
				TargetID:      t.ID,
				SourceDataset: s.Dataset,
				TargetDataset: t.Dataset,
				Pass:          model.PassStrong,
				Tier:          model.TierExact,
				Score:         1.0,
				MatchedFields: []string{model.FieldStrongKey, model.FieldName, model.FieldBirthDate},
				Confidence:    model.ConfidenceHigh,
			})
			break
		}
	}
	return matches
}

// candidate is a scored source/target pairing awaiting the pass tie-break.
type candidate struct {
	source *model.Identity
	target *model.Identity
	score  float64
}

// scoredPass joins on the pass key (moderate or weak), requires compatible
// sex codes, applies the weak-pass age gate, scores each candidate and keeps
// pairs clearing the threshold. When several candidates share a key in the
// same pass, the highest score wins, ties broken by lowest target id then
// lowest source id; each id is consumed at most once per pass.
func (e *Engine) scoredPass(pass model.Pass, source, target []*model.Identity, excl Exclusion) []model.MatchResult {
	passKey := func(id *model.Identity) string {
		if pass == model.PassModerate {
			return id.Keys.Moderate
		}
		return id.Keys.Weak
	}

	byKey := make(map[string][]*model.Identity)
	for _, t := range target {
		if k := passKey(t); k != "" && !excl.target[t.ID] {
			byKey[k] = append(byKey[k], t)
		}
	}

	var candidates []candidate
	for _, s := range source {
		key := passKey(s)
		if key == "" || excl.source[s.ID] {
			continue
		}
		for _, t := range byKey[key] {
			if !s.Sex.Compatible(t.Sex) {
				continue
			}
			if pass == model.PassWeak && !e.agesCompatible(s, t) {
				continue
			}
			score := e.scorer.Score(s, t)
			if score < e.threshold {
				continue
			}
			candidates = append(candidates, candidate{source: s, target: t, score: score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.target.ID != b.target.ID {
			return a.target.ID < b.target.ID
		}
		return a.source.ID < b.source.ID
	})

	usedSource := map[string]bool{}
	usedTarget := map[string]bool{}
	var matches []model.MatchResult

	for _, c := range candidates {
		if usedSource[c.source.ID] || usedTarget[c.target.ID] {
			continue
		}
		usedSource[c.source.ID] = true
		usedTarget[c.target.ID] = true

		tier, fields := analyze(c.source, c.target)
		matches = append(matches, model.MatchResult{
			SourceID:      c.source.ID,
			TargetID:      c.target.ID,
			SourceDataset: c.source.Dataset,
			TargetDataset: c.target.Dataset,
			Pass:          pass,
			Tier:          tier,
			Score:         c.score,
			MatchedFields: fields,
			Confidence:    model.ConfidenceFor(c.score, fields),
		})
	}
	return matches
}

// agesCompatible applies the weak-pass age gate: when both sides carry an
// estimated age the difference must not exceed the configured tolerance.
// A missing age on either side passes.
func (e *Engine) agesCompatible(a, b *model.Identity) bool {
	if a.EstimatedAge == nil || b.EstimatedAge == nil {
		return true
	}
	diff := *a.EstimatedAge - *b.EstimatedAge
	if diff < 0 {
		diff = -diff
	}
	return diff <= e.maxAgeDiffYears
}

func sortedByID(ids []*model.Identity) []*model.Identity {
	out := make([]*model.Identity, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
