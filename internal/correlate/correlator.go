// Package correlate orders the events attributed to one resolved person and
// classifies the strength of each disappearance→death sequence.
package correlate

import (
	"sort"

	"nexo/internal/model"
)

// Correlator classifies disappearance→death pairs by elapsed time and
// intervening events.
type Correlator struct {
	strongDays   int
	moderateDays int
}

// NewCorrelator creates a correlator with the given day thresholds
// (defaults: 30 and 90).
func NewCorrelator(strongDays, moderateDays int) *Correlator {
	if strongDays <= 0 {
		strongDays = 30
	}
	if moderateDays <= strongDays {
		moderateDays = strongDays * 3
	}
	return &Correlator{strongDays: strongDays, moderateDays: moderateDays}
}

// Correlate sorts the person's events by date and emits one CorrelatedPair
// for every (disappearance, later death) ordered pair, not just immediate
// neighbors, since the same disappearance may precede several death records.
// No pair is discarded here; down-selecting to one case per person is the
// separate BestPerPerson reducer.
func (c *Correlator) Correlate(personKey string, events []model.Event) []model.CorrelatedPair {
	if len(events) < 2 {
		return nil
	}

	sorted := sortEvents(events)

	var pairs []model.CorrelatedPair
	for i, disappearance := range sorted {
		if disappearance.Type != model.EventDisappearance {
			continue
		}
		for j := i + 1; j < len(sorted); j++ {
			death := sorted[j]
			if !death.Type.IsDeath() {
				continue
			}

			elapsed := int(death.Date.Sub(disappearance.Date).Hours() / 24)
			intervening := hasIntervening(sorted, disappearance, death)

			pairs = append(pairs, model.CorrelatedPair{
				PersonKey:   personKey,
				Source:      disappearance,
				Death:       death,
				ElapsedDays: elapsed,
				Intervening: intervening,
				Strength:    c.classify(elapsed, intervening),
			})
		}
	}
	return pairs
}

// sortEvents orders events by date. On equal dates the disappearance comes
// first, so a death recorded the same day still follows it and produces an
// elapsed-zero pair. Remaining ties break by record id.
func sortEvents(events []model.Event) []model.Event {
	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if (a.Type == model.EventDisappearance) != (b.Type == model.EventDisappearance) {
			return a.Type == model.EventDisappearance
		}
		return a.RecordID < b.RecordID
	})
	return sorted
}

// hasIntervening reports whether any other event for the person falls
// strictly between the two dates. An intervening event means the person may
// have been located alive in between, which breaks the continuity assumption.
func hasIntervening(events []model.Event, from, to model.Event) bool {
	for _, ev := range events {
		if ev.RecordID == from.RecordID || ev.RecordID == to.RecordID {
			continue
		}
		if ev.Date.After(from.Date) && ev.Date.Before(to.Date) {
			return true
		}
	}
	return false
}

func (c *Correlator) classify(elapsedDays int, intervening bool) model.Strength {
	if intervening {
		return model.StrengthInconclusive
	}
	switch {
	case elapsedDays <= c.strongDays:
		return model.StrengthStrong
	case elapsedDays <= c.moderateDays:
		return model.StrengthModerate
	default:
		return model.StrengthWeak
	}
}

// BuildTimeline assembles the case timeline for one person: events sorted by
// date with the pairs recomputed from scratch. Strength labels are never
// carried over from a previous event set.
func (c *Correlator) BuildTimeline(personKey, name string, events []model.Event) model.CaseTimeline {
	sorted := sortEvents(events)

	return model.CaseTimeline{
		PersonKey: personKey,
		Name:      name,
		Events:    sorted,
		Pairs:     c.Correlate(personKey, sorted),
	}
}
